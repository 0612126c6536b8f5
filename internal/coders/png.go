//go:build !exclude_coder_png

package coders

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"io"

	"github.com/disintegration/imaging"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/mocukie/imagecore/pkg/imagex/pngx"
)

func init() {
	add(entry("PNG", pngFamily))
}

func decodePNG(r io.Reader) (*imagex.Image, error) {
	m, meta, err := pngx.Decode(r)
	if err != nil {
		return nil, err
	}
	img := imagex.New("", m)
	if !meta.Empty() {
		img.Meta = meta
	}
	return img, nil
}

// pngEncoder writes the first frame after converting it with depth and
// carries the profiles in img.Meta over.
func pngEncoder(depth func(image.Image) image.Image) format.Encoder {
	return format.EncoderFunc(func(w io.Writer, img *imagex.Image) error {
		m, err := first(img)
		if err != nil {
			return err
		}
		if depth != nil {
			m = depth(m)
		}
		if img.Meta.Empty() {
			return imaging.Encode(w, m, imaging.PNG)
		}
		var buf bytes.Buffer
		if err = imaging.Encode(&buf, m, imaging.PNG); err != nil {
			return err
		}
		return pngx.InsertMeta(w, buf.Bytes(), img.Meta)
	})
}

func toPaletted(m image.Image) image.Image {
	b := m.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(p, b, m, b.Min)
	return p
}

func toOpaque(m image.Image) image.Image {
	n := imaging.Clone(m)
	for i := 3; i < len(n.Pix); i += 4 {
		n.Pix[i] = 0xff
	}
	return n
}

func toNRGBA(m image.Image) image.Image {
	return imaging.Clone(m)
}

func toOpaque16(m image.Image) image.Image {
	b := m.Bounds()
	out := image.NewRGBA64(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(m.At(x, y)).(color.NRGBA64)
			c.A = 0xffff
			out.Set(x, y, c)
		}
	}
	return out
}

func toNRGBA64(m image.Image) image.Image {
	b := m.Bounds()
	out := image.NewNRGBA64(b)
	draw.Draw(out, b, m, b.Min, draw.Src)
	return out
}

func pngFamily() family {
	pngInfo := func(name, desc string, depth func(image.Image) image.Image) *format.Info {
		info := format.AcquireInfo("PNG", name, desc)
		info.Decoder = format.DecoderFunc(decodePNG)
		info.Encoder = pngEncoder(depth)
		info.MimeType = "image/png"
		info.Set(format.Adjoin, false)
		return info
	}

	primary := pngInfo("PNG", "Portable Network Graphics", nil)
	primary.Sniffer = sniffer(pngx.Magic)
	primary.Note = "See http://www.libpng.org/ for details about the PNG format."
	return family{
		primary,
		pngInfo("PNG8", "8-bit indexed with optional binary transparency", toPaletted),
		pngInfo("PNG24", "opaque or binary transparent 24-bit RGB", toOpaque),
		pngInfo("PNG32", "opaque or transparent 32-bit RGBA", toNRGBA),
		pngInfo("PNG48", "opaque or binary transparent 48-bit RGB", toOpaque16),
		pngInfo("PNG64", "opaque or transparent 64-bit RGBA", toNRGBA64),
		pngInfo("PNG00", "PNG inheriting bit-depth, color-type from original, if possible", nil),
	}
}
