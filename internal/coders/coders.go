// Package coders holds the compiled-in format modules. Each file adds its
// module to the static table from init; build tags of the form
// exclude_coder_<name> leave a module out.
package coders

import (
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/module"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
)

// QualityProp is the image property encoders read their quality from.
const QualityProp = "quality"

var table []module.Entry

func add(e module.Entry) {
	table = append(table, e)
}

// Modules returns the static module table.
func Modules() []module.Entry {
	entries := make([]module.Entry, len(table))
	copy(entries, table)
	return entries
}

// family registers infos and removes the ones it still owns.
type family []*format.Info

func (f family) register(reg *format.Populator) uint32 {
	for _, info := range f {
		reg.Register(info)
	}
	return module.Signature
}

func (f family) unregister(reg *format.Populator) {
	for _, info := range f {
		reg.UnregisterOwned(info.Module, info.Name)
	}
}

func entry(name string, build func() family) module.Entry {
	return module.Entry{
		Name: name,
		Register: func(reg *format.Populator) uint32 {
			return build().register(reg)
		},
		Unregister: func(reg *format.Populator) {
			build().unregister(reg)
		},
	}
}

func sniffer(magics ...string) format.Sniffer {
	return format.SnifferFunc(func(b []byte) bool {
		for _, m := range magics {
			if imagex.MatchMagic(b, m) {
				return true
			}
		}
		return false
	})
}

// single adapts a one-frame stdlib style decoder.
func single(decode func(io.Reader) (image.Image, error)) format.Decoder {
	return format.DecoderFunc(func(r io.Reader) (*imagex.Image, error) {
		m, err := decode(r)
		if err != nil {
			return nil, err
		}
		return imagex.New("", m), nil
	})
}

func first(img *imagex.Image) (image.Image, error) {
	m := img.First()
	if m == nil {
		return nil, errors.New("image has no frames")
	}
	return m, nil
}

// quality reads QualityProp, falling back to def when unset or invalid.
func quality(img *imagex.Image, def int) int {
	if img == nil || img.Props == nil {
		return def
	}
	q, err := strconv.Atoi(strings.TrimSpace(img.Props[QualityProp]))
	if err != nil || q < 1 || q > 100 {
		return def
	}
	return q
}
