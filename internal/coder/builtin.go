package coder

// BuiltinPath is the Path of compiled-in rows.
const BuiltinPath = "[built-in]"

// builtin maps a format name to the coder that handles it.
var builtin = [][2]string{
	{"3FR", "DNG"},
	{"3GP", "MPEG"},
	{"3G2", "MPEG"},
	{"8BIMTEXT", "META"},
	{"8BIMWTEXT", "META"},
	{"AFM", "TTF"},
	{"A", "RAW"},
	{"AI", "PDF"},
	{"APP1JPEG", "META"},
	{"APP1", "META"},
	{"ARW", "DNG"},
	{"AVI", "MPEG"},
	{"BIE", "JBIG"},
	{"BMP2", "BMP"},
	{"BMP3", "BMP"},
	{"B", "RAW"},
	{"BRF", "BRAILLE"},
	{"BGRA", "BGR"},
	{"BGRO", "BGR"},
	{"CMYKA", "CMYK"},
	{"C", "RAW"},
	{"CAL", "CALS"},
	{"CANVAS", "XC"},
	{"CMYKA", "CMYK"},
	{"CR2", "DNG"},
	{"CRW", "DNG"},
	{"CUR", "ICON"},
	{"DATA", "INLINE"},
	{"DCR", "DNG"},
	{"DCX", "PCX"},
	{"DFONT", "TTF"},
	{"DXT1", "DDS"},
	{"DXT5", "DDS"},
	{"EPDF", "PDF"},
	{"EPI", "PS"},
	{"EPS2", "PS2"},
	{"EPS3", "PS3"},
	{"EPSF", "PS"},
	{"EPSI", "PS"},
	{"EPS", "PS"},
	{"EPT2", "EPT"},
	{"EPT3", "EPT"},
	{"ERF", "DNG"},
	{"EXIF", "META"},
	{"FILE", "URL"},
	{"FRACTAL", "PLASMA"},
	{"FTP", "URL"},
	{"FTS", "FITS"},
	{"G3", "FAX"},
	{"G4", "FAX"},
	{"GIF87", "GIF"},
	{"G", "RAW"},
	{"GRANITE", "MAGICK"},
	{"GROUP4", "TIFF"},
	{"GV", "DOT"},
	{"HTM", "HTML"},
	{"ICB", "TGA"},
	{"ICO", "ICON"},
	{"IIQ", "DNG"},
	{"K25", "DNG"},
	{"KDC", "DNG"},
	{"H", "MAGICK"},
	{"HTM", "HTML"},
	{"HTTP", "URL"},
	{"HTTPS", "URL"},
	{"ICB", "TGA"},
	{"ICC", "META"},
	{"ICM", "META"},
	{"ICO", "ICON"},
	{"IMPLICIT", "***"},
	{"IPTC", "META"},
	{"IPTCTEXT", "META"},
	{"IPTCWTEXT", "META"},
	{"ISOBRL", "BRAILLE"},
	{"ISOBRL6", "BRAILLE"},
	{"JBG", "JBIG"},
	{"JNG", "PNG"},
	{"JPC", "JP2"},
	{"JPT", "JP2"},
	{"JPM", "JP2"},
	{"J2C", "JP2"},
	{"J2K", "JP2"},
	{"JNG", "PNG"},
	{"JPE", "JPEG"},
	{"JPG", "JPEG"},
	{"JPM", "JP2"},
	{"JPS", "JPEG"},
	{"JPT", "JP2"},
	{"JPX", "JP2"},
	{"K", "RAW"},
	{"K25", "DNG"},
	{"KDC", "DNG"},
	{"LOGO", "MAGICK"},
	{"M", "RAW"},
	{"M2V", "MPEG"},
	{"M4V", "MPEG"},
	{"MEF", "DNG"},
	{"MKV", "MPEG"},
	{"MNG", "PNG"},
	{"MOV", "MPEG"},
	{"MP4", "MPEG"},
	{"MPG", "MPEG"},
	{"MPRI", "MPR"},
	{"MEF", "DNG"},
	{"MRW", "DNG"},
	{"MSVG", "SVG"},
	{"NEF", "DNG"},
	{"NETSCAPE", "MAGICK"},
	{"NRW", "DNG"},
	{"O", "RAW"},
	{"ORF", "DNG"},
	{"OTF", "TTF"},
	{"P7", "PNM"},
	{"PAL", "UYVY"},
	{"PAM", "PNM"},
	{"PBM", "PNM"},
	{"PCDS", "PCD"},
	{"PCT", "PICT"},
	{"PDFA", "PDF"},
	{"PEF", "DNG"},
	{"PEF", "DNG"},
	{"PFA", "TTF"},
	{"PFB", "TTF"},
	{"PFM", "PNM"},
	{"PGM", "PNM"},
	{"PGX", "JP2"},
	{"PICON", "XPM"},
	{"PJPEG", "JPEG"},
	{"PM", "XPM"},
	{"PNG00", "PNG"},
	{"PNG24", "PNG"},
	{"PNG32", "PNG"},
	{"PNG48", "PNG"},
	{"PNG64", "PNG"},
	{"PNG8", "PNG"},
	{"PPM", "PNM"},
	{"PSB", "PSD"},
	{"PTIF", "TIFF"},
	{"R", "RAW"},
	{"RADIAL-GRADIENT", "GRADIENT"},
	{"RAF", "DNG"},
	{"RAS", "SUN"},
	{"RAW", "DNG"},
	{"RGBA", "RGB"},
	{"RGBO", "RGB"},
	{"RMF", "DNG"},
	{"ROSE", "MAGICK"},
	{"RW2", "DNG"},
	{"SHTML", "HTML"},
	{"SIX", "SIXEL"},
	{"SPARSE-COLOR", "TXT"},
	{"SR2", "DNG"},
	{"SRF", "DNG"},
	{"SVGZ", "SVG"},
	{"TEXT", "TXT"},
	{"TIFF64", "TIFF"},
	{"TIF", "TIFF"},
	{"TTC", "TTF"},
	{"UBRL", "BRAILLE"},
	{"UBRL6", "BRAILLE"},
	{"VDA", "TGA"},
	{"VST", "TGA"},
	{"WIZARD", "MAGICK"},
	{"WMF", "EMF"},
	{"WMV", "MPEG"},
	{"WMZ", "WMF"},
	{"X3f", "DNG"},
	{"XMP", "META"},
	{"XTRNARRAY", "XTRN"},
	{"XV", "VIFF"},
	{"Y", "RAW"},
	{"YCbCrA", "YCbCr"},
}
