// Package coder maps format names to the coder module that implements them,
// e.g. JPG to JPEG. The catalog is built on first use and is read-only.
package coder

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mocukie/imagecore/internal/config"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/pkg/atomicx"
)

type Info struct {
	Path   string
	Magick string
	Name   string
	// Exempt rows are compiled in.
	Exempt  bool
	Stealth bool
}

type Options struct {
	Logger hclog.Logger
	Files  []config.CoderFile
}

type Registry struct {
	initMu       sync.Mutex
	instantiated atomicx.Bool

	mu    sync.RWMutex
	infos map[string]*Info
	first *Info

	opts Options
	log  hclog.Logger
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, log: logging.OrNull(opts.Logger)}
}

func (r *Registry) instantiate() {
	if r.instantiated.T() {
		return
	}
	r.initMu.Lock()
	defer r.initMu.Unlock()
	if r.instantiated.T() {
		return
	}

	infos := make(map[string]*Info, len(builtin))
	var first *Info
	add := func(info *Info) {
		if first == nil {
			first = info
		}
		infos[format.Key(info.Magick)] = info
	}
	for _, row := range builtin {
		add(&Info{Path: BuiltinPath, Magick: row[0], Name: row[1], Exempt: true})
	}
	for _, f := range r.opts.Files {
		for _, c := range f.Coders {
			if c.Magick == "" || c.Name == "" {
				r.log.Warn("skip incomplete coder entry", "path", f.Path, "magick", c.Magick)
				continue
			}
			add(&Info{Path: f.Path, Magick: c.Magick, Name: c.Name, Stealth: c.Stealth})
		}
	}

	r.mu.Lock()
	r.infos, r.first = infos, first
	r.mu.Unlock()
	r.instantiated.Set(true)
	r.log.Trace("coder catalog built", "count", len(infos))
}

// Lookup returns the row for a format name. "*" or "" returns the first
// built-in row.
func (r *Registry) Lookup(name string) *Info {
	r.instantiate()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" || name == "*" {
		return r.first
	}
	return r.infos[format.Key(name)]
}

// Resolve maps an alias to its coder name. Unknown names map to themselves.
func (r *Registry) Resolve(name string) string {
	if info := r.Lookup(name); info != nil && name != "*" {
		return info.Name
	}
	return name
}

// List returns the non-stealth rows whose format name matches pattern,
// sorted by path then coder name.
func (r *Registry) List(pattern string) []*Info {
	r.instantiate()
	if pattern == "" {
		pattern = "*"
	}
	pattern = strings.ToUpper(pattern)
	if _, err := path.Match(pattern, ""); err != nil {
		return nil
	}
	r.mu.RLock()
	list := make([]*Info, 0, len(r.infos))
	for _, info := range r.infos {
		if info.Stealth {
			continue
		}
		if ok, _ := path.Match(pattern, strings.ToUpper(info.Magick)); ok {
			list = append(list, info)
		}
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if x, y := strings.ToUpper(a.Name), strings.ToUpper(b.Name); x != y {
			return x < y
		}
		return strings.ToUpper(a.Magick) < strings.ToUpper(b.Magick)
	})
	return list
}

// Names returns the format names matching pattern, sorted.
func (r *Registry) Names(pattern string) []string {
	list := r.List(pattern)
	names := make([]string, len(list))
	for i, info := range list {
		names[i] = info.Magick
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToUpper(names[i]) < strings.ToUpper(names[j]) })
	return names
}

func (r *Registry) ListTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	first := true
	var last string
	for _, info := range r.List("*") {
		if first || info.Path != last {
			fmt.Fprintf(bw, "\nPath: %s\n\n", info.Path)
			fmt.Fprintln(bw, "Magick      Coder")
			fmt.Fprintln(bw, strings.Repeat("-", 79))
		}
		first, last = false, info.Path
		fmt.Fprintf(bw, "%-12s%s\n", info.Magick, info.Name)
	}
	return bw.Flush()
}

// Destroy drops the catalog; the next call rebuilds it.
func (r *Registry) Destroy() {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	r.mu.Lock()
	r.infos, r.first = nil, nil
	r.mu.Unlock()
	r.instantiated.Set(false)
}
