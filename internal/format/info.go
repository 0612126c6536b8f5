package format

import (
	"io"
	"sync"

	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/pkg/imagex"
	"golang.org/x/text/cases"
)

type Flags uint32

const (
	Adjoin Flags = 1 << iota
	BlobSupport
	DecoderSeekableStream
	EncoderSeekableStream
	Raw
	DecoderThreadSupport
	EncoderThreadSupport
	EndianSupport
	UseExtension
	Stealth

	DefaultFlags = Adjoin | BlobSupport | DecoderThreadSupport | EncoderThreadSupport | UseExtension
)

type Decoder interface {
	Decode(r io.Reader) (*imagex.Image, error)
}

type Encoder interface {
	Encode(w io.Writer, img *imagex.Image) error
}

// Sniffer reports whether b starts with the format's signature.
type Sniffer interface {
	Sniff(b []byte) bool
}

type DecoderFunc func(r io.Reader) (*imagex.Image, error)

func (f DecoderFunc) Decode(r io.Reader) (*imagex.Image, error) { return f(r) }

type EncoderFunc func(w io.Writer, img *imagex.Image) error

func (f EncoderFunc) Encode(w io.Writer, img *imagex.Image) error { return f(w, img) }

type SnifferFunc func(b []byte) bool

func (f SnifferFunc) Sniff(b []byte) bool { return f(b) }

// Info describes one registered format. It is filled in by the owning
// module and must not be modified once passed to Registry.Register.
type Info struct {
	Name        string
	Module      string
	Description string
	Note        string
	Version     string
	MimeType    string

	Decoder Decoder
	Encoder Encoder
	Sniffer Sniffer
	Flags   Flags

	// serializes coders that lack thread support
	mu *sync.Mutex
}

// AcquireInfo returns an Info with the default flags set.
func AcquireInfo(module, name, description string) *Info {
	return &Info{
		Name:        name,
		Module:      module,
		Description: description,
		Flags:       DefaultFlags,
	}
}

func (info *Info) Has(f Flags) bool {
	return info.Flags&f == f
}

func (info *Info) Set(f Flags, on bool) *Info {
	if on {
		info.Flags |= f
	} else {
		info.Flags &^= f
	}
	return info
}

func (info *Info) IsStealth() bool { return info.Has(Stealth) }

func (info *Info) CanDecode() bool { return info.Decoder != nil }

func (info *Info) CanEncode() bool { return info.Encoder != nil }

// Decode runs the decoder, serialized when the coder is not thread safe.
func (info *Info) Decode(r io.Reader) (*imagex.Image, error) {
	if info.Decoder == nil {
		return nil, exception.New(exception.Error, exception.NoDecodeDelegate, info.Name)
	}
	if info.mu != nil && !info.Has(DecoderThreadSupport) {
		info.mu.Lock()
		defer info.mu.Unlock()
	}
	img, err := info.Decoder.Decode(r)
	if err != nil {
		return nil, err
	}
	if img != nil && img.Magick == "" {
		img.Magick = info.Name
	}
	return img, nil
}

func (info *Info) Encode(w io.Writer, img *imagex.Image) error {
	if info.Encoder == nil {
		return exception.New(exception.Error, exception.NoEncodeDelegate, info.Name)
	}
	if info.mu != nil && !info.Has(EncoderThreadSupport) {
		info.mu.Lock()
		defer info.mu.Unlock()
	}
	return info.Encoder.Encode(w, img)
}

// Key is the case-insensitive map key for a format name.
func Key(name string) string {
	// a Caser keeps state, so one per call
	return cases.Fold().String(name)
}
