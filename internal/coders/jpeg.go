//go:build !exclude_coder_jpeg

package coders

import (
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/pkg/imagex"
)

const defaultJPEGQuality = 92

func init() {
	add(entry("JPEG", jpegFamily))
}

func encodeJPEG(w io.Writer, img *imagex.Image) error {
	m, err := first(img)
	if err != nil {
		return err
	}
	return imaging.Encode(w, m, imaging.JPEG, imaging.JPEGQuality(quality(img, defaultJPEGQuality)))
}

func jpegFamily() family {
	jpegInfo := func(name, desc string) *format.Info {
		info := format.AcquireInfo("JPEG", name, desc)
		info.Decoder = single(jpeg.Decode)
		info.Encoder = format.EncoderFunc(encodeJPEG)
		info.MimeType = "image/jpeg"
		info.Set(format.Adjoin, false)
		return info
	}

	primary := jpegInfo("JPEG", "Joint Photographic Experts Group JFIF format")
	primary.Sniffer = sniffer("\xff\xd8\xff")
	return family{
		primary,
		jpegInfo("JPE", "Joint Photographic Experts Group JFIF format"),
		jpegInfo("JPG", "Joint Photographic Experts Group JFIF format"),
		jpegInfo("PJPEG", "Progressive Joint Photographic Experts Group JFIF"),
	}
}
