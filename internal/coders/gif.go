//go:build !exclude_coder_gif

package coders

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/disintegration/imaging"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/pkg/imagex"
)

func init() {
	add(entry("GIF", gifFamily))
}

func decodeGIF(r io.Reader) (*imagex.Image, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	img := &imagex.Image{LoopCount: g.LoopCount}
	for i, p := range g.Image {
		f := imagex.Frame{Image: p}
		if i < len(g.Delay) {
			f.Delay = g.Delay[i]
		}
		if i < len(g.Disposal) {
			f.Disposal = g.Disposal[i]
		}
		img.Frames = append(img.Frames, f)
	}
	return img, nil
}

func encodeGIF(w io.Writer, img *imagex.Image) error {
	if img.Len() <= 1 {
		m, err := first(img)
		if err != nil {
			return err
		}
		return imaging.Encode(w, m, imaging.GIF)
	}

	g := &gif.GIF{LoopCount: img.LoopCount}
	for _, f := range img.Frames {
		p, ok := f.Image.(*image.Paletted)
		if !ok {
			b := f.Bounds()
			p = image.NewPaletted(b, paletteFor(f.Image))
			draw.FloydSteinberg.Draw(p, b, f.Image, b.Min)
		}
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, f.Delay)
		g.Disposal = append(g.Disposal, f.Disposal)
	}
	return gif.EncodeAll(w, g)
}

func paletteFor(m image.Image) []color.Color {
	if p, ok := m.ColorModel().(color.Palette); ok {
		return p
	}
	return palette.Plan9
}

func gifFamily() family {
	primary := format.AcquireInfo("GIF", "GIF", "CompuServe graphics interchange format")
	primary.Decoder = format.DecoderFunc(decodeGIF)
	primary.Encoder = format.EncoderFunc(encodeGIF)
	primary.Sniffer = sniffer("GIF8?a")
	primary.MimeType = "image/gif"

	gif87 := format.AcquireInfo("GIF", "GIF87", "CompuServe graphics interchange format")
	gif87.Decoder = format.DecoderFunc(decodeGIF)
	gif87.Encoder = format.EncoderFunc(encodeGIF)
	gif87.Version = "version 87a"
	gif87.MimeType = "image/gif"
	gif87.Set(format.Adjoin, false)
	return family{primary, gif87}
}
