package core

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/pixel"
	"github.com/mocukie/imagecore/internal/policy"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
)

// Identify names the format of the stream without consuming it. The magic
// rules are asked first, then every registered format's sniffer. An
// unrecognized stream yields "" and no error. Read from the returned
// Peeker afterwards, not from r.
func (env *Environment) Identify(r io.Reader) (string, imagex.Peeker, error) {
	p := imagex.AsPeeker(r)
	n := env.Magic.Extent()
	if n <= 0 {
		n = 1
	}
	header, err := p.Peek(n)
	if err != nil && len(header) == 0 && err != io.EOF {
		return "", p, errors.Wrap(err, "read header")
	}
	if len(header) == 0 {
		return "", p, nil
	}
	if name := env.Magic.Identify(header); name != "" {
		return name, p, nil
	}
	return env.Formats.Sniff(header), p, nil
}

// FormatForPath guesses a format from the file extension. Formats without
// UseExtension are never chosen this way.
func (env *Environment) FormatForPath(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return ""
	}
	info := env.Formats.Lookup(ext)
	if info == nil || !info.Has(format.UseExtension) || info.IsStealth() {
		return ""
	}
	return info.Name
}

func (env *Environment) lookup(name string, rights policy.Rights) (*format.Info, error) {
	info := env.Formats.Lookup(name)
	if info == nil || info.IsStealth() {
		reason := exception.NoDecodeDelegate
		if rights&policy.Write != 0 {
			reason = exception.NoEncodeDelegate
		}
		return nil, exception.New(exception.Error, reason, name)
	}
	if err := env.Policy.Authorize(policy.Coder, rights, info.Name); err != nil {
		return nil, err
	}
	return info, nil
}

// Decode reads an image of format name, identifying the stream when name
// is empty.
func (env *Environment) Decode(r io.Reader, name string) (*imagex.Image, error) {
	if name == "" {
		var err error
		if name, r, err = env.Identify(r); err != nil {
			return nil, err
		}
		if name == "" {
			return nil, exception.New(exception.Error, exception.UnrecognizedImageFormat, "stream")
		}
	}
	info, err := env.lookup(name, policy.Read)
	if err != nil {
		return nil, err
	}
	if !info.CanDecode() {
		return nil, exception.New(exception.Error, exception.NoDecodeDelegate, info.Name)
	}
	img, err := info.Decode(r)
	if err != nil {
		return nil, errors.WithMessagef(err, "decode %s", info.Name)
	}
	return img, nil
}

// Encode writes img as format name, or as img.Magick when name is empty.
func (env *Environment) Encode(w io.Writer, img *imagex.Image, name string) error {
	if name == "" {
		name = img.Magick
	}
	info, err := env.lookup(name, policy.Write)
	if err != nil {
		return err
	}
	if !info.CanEncode() {
		return exception.New(exception.Error, exception.NoEncodeDelegate, info.Name)
	}
	if err = info.Encode(w, img); err != nil && !exception.IsWarning(err) {
		return errors.WithMessagef(err, "encode %s", info.Name)
	}
	return err
}

// Convert decodes in, applies ops and encodes the result to out. Empty
// format names are identified from the stream or kept from the input.
func (env *Environment) Convert(in io.Reader, out io.Writer, inName, outName string, ops ...pixel.Op) error {
	img, err := env.Decode(in, inName)
	if err != nil {
		return err
	}
	if err = pixel.Apply(img, ops...); err != nil {
		return err
	}
	return env.Encode(out, img, outName)
}
