package component

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mocukie/imagecore/internal/core"
	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/pixel"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
)

const (
	KindConvert  = "conv"
	KindCopy     = "copy"
	KindIdentify = "ident"
)

// Codec is the work a job does on its input. Warnings do not fail a job.
type Codec interface {
	Kind() string
	Convert(in io.Reader, out io.Writer) (summary string, warnings []error, err error)
}

type Copy struct{}

func (*Copy) Kind() string { return KindCopy }

func (*Copy) Convert(in io.Reader, out io.Writer) (string, []error, error) {
	var r, w = bufio.NewReader(in), bufio.NewWriter(out)
	if _, err := io.Copy(w, r); err != nil {
		return "", nil, errors.Wrap(err, "[Copy] copy failed")
	}
	if err := w.Flush(); err != nil {
		return "", nil, errors.Wrap(err, "[Copy] flush output failed")
	}
	return "", nil, nil
}

// Converter decodes with whatever format the input is, applies Ops and
// encodes as Format.
type Converter struct {
	Env    *core.Environment
	Format string
	Ops    []pixel.Op
	Props  map[string]string
	// StripMeta drops ICC, EXIF and XMP profiles.
	StripMeta bool
}

func (*Converter) Kind() string { return KindConvert }

func (c *Converter) Convert(in io.Reader, out io.Writer) (string, []error, error) {
	img, err := c.Env.Decode(in, "")
	if err != nil {
		return "", nil, errors.WithMessage(err, "[Convert] decode image failed")
	}
	from := img.Magick
	for k, v := range c.Props {
		img.SetProp(k, v)
	}
	if c.StripMeta {
		img.Meta = nil
	}
	if err = pixel.Apply(img, c.Ops...); err != nil {
		return "", nil, errors.WithMessage(err, "[Convert] apply operations failed")
	}

	var warnings []error
	if err = c.Env.Encode(out, img, c.Format); err != nil {
		if !exception.IsWarning(err) {
			return "", nil, errors.WithMessage(err, "[Convert] encode failed")
		}
		warnings = append(warnings, err)
	}
	return fmt.Sprintf("%s=>%s %s", from, c.Format, describe(img)), warnings, nil
}

// Identifier reports format and geometry; it writes nothing.
type Identifier struct {
	Env *core.Environment
	// Ping stops after identifying the format.
	Ping bool
}

func (*Identifier) Kind() string { return KindIdentify }

func (id *Identifier) Convert(in io.Reader, _ io.Writer) (string, []error, error) {
	name, p, err := id.Env.Identify(in)
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		return "", nil, exception.New(exception.Error, exception.UnrecognizedImageFormat, "stream")
	}
	if id.Ping {
		return name, nil, nil
	}
	img, err := id.Env.Decode(p, name)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s", name, describe(img)), nil, nil
}

func describe(img *imagex.Image) string {
	b := img.Bounds()
	s := fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
	if n := img.Len(); n > 1 {
		s += fmt.Sprintf(" %d frames", n)
	}
	return s
}
