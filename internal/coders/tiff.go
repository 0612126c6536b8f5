//go:build !exclude_coder_tiff

package coders

import (
	"io"

	"github.com/disintegration/imaging"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/pkg/imagex"
	"golang.org/x/image/tiff"
)

func init() {
	add(entry("TIFF", tiffFamily))
}

func encodeTIFF(w io.Writer, img *imagex.Image) error {
	m, err := first(img)
	if err != nil {
		return err
	}
	return imaging.Encode(w, m, imaging.TIFF)
}

func tiffFamily() family {
	tiffInfo := func(name, desc string) *format.Info {
		info := format.AcquireInfo("TIFF", name, desc)
		info.Decoder = single(tiff.Decode)
		info.Encoder = format.EncoderFunc(encodeTIFF)
		info.MimeType = "image/tiff"
		info.Set(format.DecoderSeekableStream, true).
			Set(format.EncoderSeekableStream, true).
			Set(format.EndianSupport, true).
			Set(format.Adjoin, false)
		return info
	}

	primary := tiffInfo("TIFF", "Tagged Image File Format")
	primary.Sniffer = sniffer("II*\x00", "MM\x00*")
	return family{
		primary,
		tiffInfo("TIF", "Tagged Image File Format"),
	}
}
