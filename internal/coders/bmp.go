//go:build !exclude_coder_bmp

package coders

import (
	"io"

	"github.com/disintegration/imaging"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/pkg/imagex"
	"golang.org/x/image/bmp"
)

func init() {
	add(entry("BMP", bmpFamily))
}

func encodeBMP(w io.Writer, img *imagex.Image) error {
	m, err := first(img)
	if err != nil {
		return err
	}
	return imaging.Encode(w, m, imaging.BMP)
}

func bmpFamily() family {
	bmpInfo := func(name, desc string) *format.Info {
		info := format.AcquireInfo("BMP", name, desc)
		info.Decoder = single(bmp.Decode)
		info.Encoder = format.EncoderFunc(encodeBMP)
		info.MimeType = "image/bmp"
		info.Set(format.Adjoin, false)
		return info
	}

	primary := bmpInfo("BMP", "Microsoft Windows bitmap image")
	primary.Sniffer = sniffer("BM")
	return family{
		primary,
		bmpInfo("BMP2", "Microsoft Windows bitmap image (V2)"),
		bmpInfo("BMP3", "Microsoft Windows bitmap image (V3)"),
	}
}
