// Package magic identifies image formats from their leading bytes.
//
// Rules are tried longest target first; rules that matched before are kept
// in a small cache that is consulted ahead of the full list.
package magic

import (
	"math"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mocukie/imagecore/internal/config"
	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/internal/metrics"
	"github.com/mocukie/imagecore/pkg/atomicx"
)

// MaxSafeExtent bounds Extent. Larger extents are reported as 0.
const MaxSafeExtent = math.MaxInt32

type Options struct {
	Logger  hclog.Logger
	Metrics *metrics.Metrics
	// Files are magic.yaml overlays appended to the built-in rules.
	Files []config.MagicFile
	// Rules replaces the built-in table when not nil.
	Rules []Rule
}

type Engine struct {
	initMu       sync.Mutex
	instantiated atomicx.Bool

	mu     sync.RWMutex
	rules  []*Rule
	err    error
	extent int64

	cacheMu sync.Mutex
	cache   []*Rule

	opts    Options
	log     hclog.Logger
	metrics *metrics.Metrics
}

func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:    opts,
		log:     logging.OrNull(opts.Logger),
		metrics: opts.Metrics,
		extent:  -1,
	}
}

func (e *Engine) instantiate() {
	if e.instantiated.T() {
		return
	}
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.instantiated.T() {
		return
	}

	rules, err := e.build()
	e.mu.Lock()
	if err != nil {
		e.log.Error("magic rules unavailable", "error", err)
		e.rules, e.err = nil, err
	} else {
		e.rules, e.err = rules, nil
	}
	e.extent = -1
	e.mu.Unlock()

	e.cacheMu.Lock()
	e.cache = nil
	e.cacheMu.Unlock()

	e.instantiated.Set(true)
}

func (e *Engine) build() ([]*Rule, error) {
	table := e.opts.Rules
	if table == nil {
		table = builtin
	}
	var list []*Rule
	for i := range table {
		r := table[i]
		if r.Path == "" {
			r.Path = BuiltinPath
		}
		list = insertSorted(list, &r)
	}
	for _, f := range e.opts.Files {
		for _, m := range f.Magic {
			target, err := m.Bytes()
			if err != nil {
				return nil, exception.Newf(exception.Error, exception.InvalidConfiguration, f.Path, "%v", err)
			}
			if m.Name == "" || len(target) == 0 || m.Offset < 0 {
				return nil, exception.Newf(exception.Error, exception.InvalidConfiguration, f.Path,
					"incomplete magic rule %q", m.Name)
			}
			list = insertSorted(list, &Rule{
				Name:       m.Name,
				Offset:     m.Offset,
				Target:     target,
				SkipSpaces: m.SkipSpaces,
				Stealth:    m.Stealth,
				Path:       f.Path,
			})
		}
	}
	e.log.Trace("magic rules loaded", "count", len(list))
	return list, nil
}

// Err reports why the engine could not be built. A failed engine matches
// nothing.
func (e *Engine) Err() error {
	e.instantiate()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// Match returns the first rule satisfied by b, or nil.
func (e *Engine) Match(b []byte) *Rule {
	e.instantiate()

	e.cacheMu.Lock()
	for _, r := range e.cache {
		if CompareSignature(b, r) {
			e.cacheMu.Unlock()
			e.metrics.Sniff(metrics.SniffCache)
			return r
		}
	}
	e.cacheMu.Unlock()

	var hit *Rule
	e.mu.RLock()
	for _, r := range e.rules {
		if CompareSignature(b, r) {
			hit = r
			break
		}
	}
	e.mu.RUnlock()
	if hit == nil {
		e.metrics.Sniff(metrics.SniffNone)
		return nil
	}

	e.cacheMu.Lock()
	e.cache = insertSorted(e.cache, hit)
	e.cacheMu.Unlock()
	e.metrics.Sniff(metrics.SniffList)
	return hit
}

// Identify returns the format name for b, or "".
func (e *Engine) Identify(b []byte) string {
	if r := e.Match(b); r != nil {
		return r.Name
	}
	return ""
}

// Extent is the number of leading bytes needed to test every rule.
func (e *Engine) Extent() int {
	e.instantiate()
	e.mu.RLock()
	extent := e.extent
	e.mu.RUnlock()
	if extent >= 0 {
		return int(extent)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.extent >= 0 {
		return int(e.extent)
	}
	var max int64
	for _, r := range e.rules {
		n := int64(len(r.Target))
		if r.Offset > MaxSafeExtent-n {
			max = 0
			break
		}
		if r.Offset+n > max {
			max = r.Offset + n
		}
	}
	e.extent = max
	return int(max)
}

// List returns the non-stealth rules whose name matches pattern, sorted by
// path then name.
func (e *Engine) List(pattern string) []*Rule {
	e.instantiate()
	if pattern == "" {
		pattern = "*"
	}
	pattern = strings.ToUpper(pattern)
	if _, err := path.Match(pattern, ""); err != nil {
		return nil
	}
	e.mu.RLock()
	var list []*Rule
	for _, r := range e.rules {
		if r.Stealth {
			continue
		}
		if ok, _ := path.Match(pattern, strings.ToUpper(r.Name)); ok {
			list = append(list, r)
		}
	}
	e.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Path != list[j].Path {
			return list[i].Path < list[j].Path
		}
		return strings.ToUpper(list[i].Name) < strings.ToUpper(list[j].Name)
	})
	return list
}

// Names returns the distinct names of the rules matching pattern, sorted.
func (e *Engine) Names(pattern string) []string {
	var names []string
	seen := map[string]bool{}
	for _, r := range e.List(pattern) {
		key := strings.ToUpper(r.Name)
		if !seen[key] {
			seen[key] = true
			names = append(names, r.Name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return strings.ToUpper(names[i]) < strings.ToUpper(names[j]) })
	return names
}

// Destroy releases the rules and the cache. The next call rebuilds them.
func (e *Engine) Destroy() {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	e.mu.Lock()
	e.rules, e.err, e.extent = nil, nil, -1
	e.mu.Unlock()
	e.cacheMu.Lock()
	e.cache = nil
	e.cacheMu.Unlock()
	e.instantiated.Set(false)
}
