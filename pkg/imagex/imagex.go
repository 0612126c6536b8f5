// Package imagex is the image handle passed between the registries and the
// codecs. The registries never look inside it.
package imagex

import (
	"bufio"
	"image"
	"io"

	"github.com/pkg/errors"
)

// Profile tags carried in Meta.
const (
	ICCP = "ICCP"
	EXIF = "EXIF"
	XMP  = "XMP"
)

// Meta holds raw profile payloads keyed by tag.
type Meta map[string][]byte

func (m Meta) Get(tag string) []byte {
	return m[tag]
}

func (m Meta) Empty() bool {
	return len(m) == 0
}

type Frame struct {
	image.Image
	// Delay in 100ths of a second, only meaningful for animated formats.
	Delay    int
	Disposal byte
}

type Image struct {
	Frames    []Frame
	Magick    string
	LoopCount int
	Props     map[string]string
	Meta      Meta
}

func New(magick string, frames ...image.Image) *Image {
	img := &Image{Magick: magick}
	for _, f := range frames {
		img.Frames = append(img.Frames, Frame{Image: f})
	}
	return img
}

func (img *Image) Len() int {
	if img == nil {
		return 0
	}
	return len(img.Frames)
}

// First returns the first frame or nil for an empty handle.
func (img *Image) First() image.Image {
	if img.Len() == 0 {
		return nil
	}
	return img.Frames[0].Image
}

func (img *Image) Bounds() image.Rectangle {
	if f := img.First(); f != nil {
		return f.Bounds()
	}
	return image.Rectangle{}
}

func (img *Image) SetProp(key, value string) {
	if img.Props == nil {
		img.Props = map[string]string{}
	}
	img.Props[key] = value
}

// Map replaces every frame with fn(frame). Frames are untouched on error.
func (img *Image) Map(fn func(image.Image) (image.Image, error)) error {
	out := make([]image.Image, len(img.Frames))
	for i, f := range img.Frames {
		m, err := fn(f.Image)
		if err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
		out[i] = m
	}
	for i := range img.Frames {
		img.Frames[i].Image = out[i]
	}
	return nil
}

// Peeker is a reader that can look ahead without consuming.
type Peeker interface {
	io.Reader
	Peek(int) ([]byte, error)
}

func AsPeeker(r io.Reader) Peeker {
	if p, ok := r.(Peeker); ok {
		return p
	}
	return bufio.NewReader(r)
}

// MatchMagic compares header against magic where '?' matches any byte.
func MatchMagic(header []byte, magic string) bool {
	if len(header) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != header[i] && magic[i] != '?' {
			return false
		}
	}
	return true
}
