// Package filter runs static image filters by tag.
package filter

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/internal/policy"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
)

// Signature must be returned by every filter that completes.
const Signature uint32 = 0xabacadab

// Func analyzes or changes img and returns Signature.
type Func func(img *imagex.Image, args []string) (uint32, error)

type Entry struct {
	Name        string
	Description string
	Func        Func
}

var builtin []Entry

func add(e Entry) {
	builtin = append(builtin, e)
}

// Builtin returns the filters compiled into this binary.
func Builtin() []Entry {
	entries := make([]Entry, len(builtin))
	copy(entries, builtin)
	return entries
}

type Options struct {
	Policy *policy.Set
	Logger hclog.Logger
}

// Set is an immutable collection of filters.
type Set struct {
	entries map[string]Entry
	policy  *policy.Set
	log     hclog.Logger
}

func NewSet(entries []Entry, opts Options) *Set {
	s := &Set{
		entries: make(map[string]Entry, len(entries)),
		policy:  opts.Policy,
		log:     logging.OrNull(opts.Logger),
	}
	for _, e := range entries {
		s.entries[format.Key(e.Name)] = e
	}
	return s
}

// Invoke runs the filter named tag on img.
func (s *Set) Invoke(tag string, img *imagex.Image, args ...string) error {
	if err := s.policy.Authorize(policy.Filter, policy.Read, tag); err != nil {
		return err
	}
	e, ok := s.entries[format.Key(tag)]
	if !ok || e.Func == nil {
		return exception.New(exception.Error, exception.UnableToLoadModule, tag)
	}

	s.log.Trace("invoke filter", "filter", e.Name, "args", args)
	sig, err := call(e.Func, img, args)
	if err != nil {
		return errors.WithMessagef(err, "filter %s", e.Name)
	}
	if sig != Signature {
		return exception.Newf(exception.Error, exception.ImageFilterSignatureMismatch, e.Name, "%#x", sig)
	}
	return nil
}

func call(fn Func, img *imagex.Image, args []string) (sig uint32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("filter panicked: %v", r)
		}
	}()
	return fn(img, args)
}

func (s *Set) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

func (s *Set) ListTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Filter     Description")
	fmt.Fprintln(bw, "-------------------------------------------------------------------------------")
	for _, name := range s.Names() {
		fmt.Fprintf(bw, "%-10s %s\n", name, s.entries[format.Key(name)].Description)
	}
	return bw.Flush()
}
