package magic

// BuiltinPath is the Path of compiled-in rules.
const BuiltinPath = "[built-in]"

var builtin = []Rule{
	{Name: "8BIMWTEXT", Offset: 0, Target: []byte("8\x00B\x00I\x00M\x00#")},
	{Name: "8BIMTEXT", Offset: 0, Target: []byte("8BIM#")},
	{Name: "8BIM", Offset: 0, Target: []byte("8BIM")},
	{Name: "BMP", Offset: 0, Target: []byte("BA")},
	{Name: "BMP", Offset: 0, Target: []byte("BM")},
	{Name: "BMP", Offset: 0, Target: []byte("CI")},
	{Name: "BMP", Offset: 0, Target: []byte("CP")},
	{Name: "BMP", Offset: 0, Target: []byte("IC")},
	{Name: "PICT", Offset: 0, Target: []byte("PICT")},
	{Name: "BMP", Offset: 0, Target: []byte("PI")},
	{Name: "CALS", Offset: 21, Target: []byte("version: MIL-STD-1840")},
	{Name: "CALS", Offset: 0, Target: []byte("srcdocid:")},
	{Name: "CALS", Offset: 9, Target: []byte("srcdocid:")},
	{Name: "CALS", Offset: 8, Target: []byte("rorient:")},
	{Name: "CGM", Offset: 0, Target: []byte("BEGMF")},
	{Name: "CIN", Offset: 0, Target: []byte("\x80*_\xd7")},
	{Name: "CRW", Offset: 0, Target: []byte("II\x1a\x00\x00\x00HEAPCCDR")},
	{Name: "DCM", Offset: 128, Target: []byte("DICM")},
	{Name: "DCX", Offset: 0, Target: []byte("\xb1h\xde:")},
	{Name: "DIB", Offset: 0, Target: []byte("(\x00")},
	{Name: "DDS", Offset: 0, Target: []byte("DDS ")},
	{Name: "DJVU", Offset: 0, Target: []byte("AT&TFORM")},
	{Name: "DOT", Offset: 0, Target: []byte("digraph")},
	{Name: "DPX", Offset: 0, Target: []byte("SDPX")},
	{Name: "DPX", Offset: 0, Target: []byte("XPDS")},
	{Name: "EMF", Offset: 40, Target: []byte(" EMF\x00\x00\x01\x00")},
	{Name: "EPT", Offset: 0, Target: []byte("\xc5\xd0\xd3\xc6")},
	{Name: "EXR", Offset: 0, Target: []byte("v/1\x01")},
	{Name: "FAX", Offset: 0, Target: []byte("DFAX")},
	{Name: "FIG", Offset: 0, Target: []byte("#FIG")},
	{Name: "FITS", Offset: 0, Target: []byte("IT0")},
	{Name: "FITS", Offset: 0, Target: []byte("SIMPLE")},
	{Name: "FLIF", Offset: 0, Target: []byte("FLIF")},
	{Name: "GIF", Offset: 0, Target: []byte("GIF8")},
	{Name: "GPLT", Offset: 0, Target: []byte("#!/usr/local/bin/gnuplot")},
	{Name: "HDF", Offset: 1, Target: []byte("HDF")},
	{Name: "HDR", Offset: 0, Target: []byte("#?RADIANCE")},
	{Name: "HDR", Offset: 0, Target: []byte("#?RGBE")},
	{Name: "HEIC", Offset: 8, Target: []byte("heic")},
	{Name: "HPGL", Offset: 0, Target: []byte("IN;")},
	{Name: "HTML", Offset: 1, Target: []byte("HTML")},
	{Name: "HTML", Offset: 1, Target: []byte("html")},
	{Name: "ILBM", Offset: 8, Target: []byte("ILBM")},
	{Name: "IPTCWTEXT", Offset: 0, Target: []byte("2\x00#\x000\x00=\x00\"\x00&\x00#\x000\x00;\x00&\x00#\x002\x00;\x00\"\x00")},
	{Name: "IPTCTEXT", Offset: 0, Target: []byte("2#0=\"&#0;&#2;\"")},
	{Name: "IPTC", Offset: 0, Target: []byte("\x1c\x02")},
	{Name: "JNG", Offset: 0, Target: []byte("\x8bJNG\x0d\x0a\x1a\x0a")},
	{Name: "JPEG", Offset: 0, Target: []byte("\xff\xd8\xff")},
	{Name: "J2K", Offset: 0, Target: []byte("\xffO\xffQ")},
	{Name: "JPC", Offset: 0, Target: []byte("\x0d\x0a\x87\x0a")},
	{Name: "JP2", Offset: 0, Target: []byte("\x00\x00\x00\x0cjP  \x0d\x0a\x87\x0a")},
	{Name: "MAT", Offset: 0, Target: []byte("MATLAB 5.0 MAT-file,")},
	{Name: "MIFF", Offset: 0, Target: []byte("Id=ImageMagick")},
	{Name: "MIFF", Offset: 0, Target: []byte("id=ImageMagick")},
	{Name: "MNG", Offset: 0, Target: []byte("\x8aMNG\x0d\x0a\x1a\x0a")},
	{Name: "MPC", Offset: 0, Target: []byte("id=MagickCache")},
	{Name: "MPEG", Offset: 0, Target: []byte("\x00\x00\x01\xb3")},
	{Name: "MRW", Offset: 0, Target: []byte("\x00MRM")},
	{Name: "ORF", Offset: 0, Target: []byte("IIRO\x08\x00\x00\x00")},
	{Name: "PCD", Offset: 2048, Target: []byte("PCD_")},
	{Name: "PCL", Offset: 0, Target: []byte("\x1bE\x1b")},
	{Name: "PCX", Offset: 0, Target: []byte("\x0a\x02")},
	{Name: "PCX", Offset: 0, Target: []byte("\x0a\x05")},
	{Name: "PDB", Offset: 60, Target: []byte("vIMGView")},
	{Name: "PDF", Offset: 0, Target: []byte("%PDF-")},
	{Name: "PES", Offset: 0, Target: []byte("#PES")},
	{Name: "PFA", Offset: 0, Target: []byte("%!PS-AdobeFont-1.0")},
	{Name: "PFB", Offset: 6, Target: []byte("%!PS-AdobeFont-1.0")},
	{Name: "PGX", Offset: 0, Target: []byte("(G\x10M&")},
	{Name: "PICT", Offset: 522, Target: []byte("\x00\x11\x02\xff\x0c\x00")},
	{Name: "PNG", Offset: 0, Target: []byte("\x89PNG\x0d\x0a\x1a\x0a")},
	{Name: "PBM", Offset: 0, Target: []byte("P1")},
	{Name: "PGM", Offset: 0, Target: []byte("P2")},
	{Name: "PPM", Offset: 0, Target: []byte("P3")},
	{Name: "PBM", Offset: 0, Target: []byte("P4")},
	{Name: "PGM", Offset: 0, Target: []byte("P5")},
	{Name: "PPM", Offset: 0, Target: []byte("P6")},
	{Name: "PAM", Offset: 0, Target: []byte("P7")},
	{Name: "PFM", Offset: 0, Target: []byte("PF")},
	{Name: "PFM", Offset: 0, Target: []byte("Pf")},
	{Name: "PGX", Offset: 0, Target: []byte("PG ML")},
	{Name: "PGX", Offset: 0, Target: []byte("PG LM")},
	{Name: "PS", Offset: 0, Target: []byte("%!")},
	{Name: "PS", Offset: 0, Target: []byte("\x04%!")},
	{Name: "PS", Offset: 0, Target: []byte("\xc5\xd0\xd3\xc6")},
	{Name: "PSB", Offset: 0, Target: []byte("8BPB")},
	{Name: "PSD", Offset: 0, Target: []byte("8BPS")},
	{Name: "PWP", Offset: 0, Target: []byte("SFW95")},
	{Name: "RAF", Offset: 0, Target: []byte("FUJIFILMCCD-RAW ")},
	{Name: "RLE", Offset: 0, Target: []byte("R\xcc")},
	{Name: "SCT", Offset: 0, Target: []byte("CT")},
	{Name: "SFW", Offset: 0, Target: []byte("SFW94")},
	{Name: "SGI", Offset: 0, Target: []byte("\x01\xda")},
	{Name: "SUN", Offset: 0, Target: []byte("Y\xa6j\x95")},
	{Name: "SVG", Offset: 1, Target: []byte("?XML")},
	{Name: "SVG", Offset: 1, Target: []byte("?xml")},
	{Name: "TIFF", Offset: 0, Target: []byte("MM\x00*")},
	{Name: "TIFF", Offset: 0, Target: []byte("II*\x00")},
	{Name: "TIFF64", Offset: 0, Target: []byte("MM\x00+\x00\x08\x00\x00")},
	{Name: "TIFF64", Offset: 0, Target: []byte("II+\x00\x08\x00\x00\x00")},
	{Name: "TTF", Offset: 0, Target: []byte("\x00\x01\x00\x00\x00")},
	{Name: "TXT", Offset: 0, Target: []byte("# ImageMagick pixel enumeration:")},
	{Name: "VICAR", Offset: 0, Target: []byte("LBLSIZE")},
	{Name: "VICAR", Offset: 0, Target: []byte("NJPL1I")},
	{Name: "VIFF", Offset: 0, Target: []byte("\xab\x01")},
	{Name: "WEBP", Offset: 8, Target: []byte("WEBP")},
	{Name: "WMF", Offset: 0, Target: []byte("\xd7\xcd\xc6\x9a")},
	{Name: "WMF", Offset: 0, Target: []byte("\x01\x00\x09\x00")},
	{Name: "WPG", Offset: 0, Target: []byte("\xffWPC")},
	{Name: "XBM", Offset: 0, Target: []byte("#define")},
	{Name: "XCF", Offset: 0, Target: []byte("gimp xcf")},
	{Name: "XEF", Offset: 0, Target: []byte("FOVb")},
	{Name: "XPM", Offset: 1, Target: []byte("* XPM *")},
}
