// Package format is the catalog of registered image formats.
//
// Entries are kept in registration order. The first query of a Registry
// adds the internal stealth formats and asks its Modules to register
// everything compiled in.
package format

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/internal/metrics"
	"github.com/mocukie/imagecore/pkg/atomicx"
	"github.com/mocukie/imagecore/pkg/eventbus"
)

const (
	TopicRegistered   eventbus.Topic = "format.registered"
	TopicUnregistered eventbus.Topic = "format.unregistered"
)

// Modules populates a registry on demand.
type Modules interface {
	// RegisterAll registers every available module. It must be idempotent.
	RegisterAll() error
	// Load registers the module that provides name, reporting whether one did.
	Load(name string) bool
}

type Options struct {
	Logger  hclog.Logger
	Bus     *eventbus.Bus
	Metrics *metrics.Metrics
}

type Registry struct {
	initMu       sync.Mutex
	instantiated atomicx.Bool

	mu      sync.RWMutex
	entries map[string]*Info
	order   []string
	modules Modules
	err     error

	log     hclog.Logger
	bus     *eventbus.Bus
	metrics *metrics.Metrics
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		log:     logging.OrNull(opts.Logger),
		bus:     opts.Bus,
		metrics: opts.Metrics,
	}
}

// SetModules attaches the module source used to populate the registry.
func (r *Registry) SetModules(m Modules) {
	r.initMu.Lock()
	r.modules = m
	r.initMu.Unlock()
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

	r.mu.Lock()
	if r.entries == nil {
		r.entries = map[string]*Info{}
	}
	for _, name := range []string{"ephemeral", "clipmask"} {
		info := AcquireInfo("", name, "")
		info.Flags |= Stealth
		r.insertLocked(info)
	}
	r.err = nil
	r.mu.Unlock()

	if r.modules != nil {
		if err := r.modules.RegisterAll(); err != nil {
			r.log.Warn("module registration incomplete", "error", err)
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
		}
	}
	r.instantiated.Set(true)
	r.log.Debug("format registry instantiated", "formats", r.Len())
}

// Err reports failures recorded while populating the registry.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Register inserts info or replaces the entry with the same name. A
// replaced entry keeps its position in traversal order. The registry is
// populated first, so a caller's entry is never overwritten by a built-in
// module registered later.
func (r *Registry) Register(info *Info) *Info {
	r.instantiate()
	return r.register(info)
}

// Populator is the registry view handed to module register functions.
// Its writes do not trigger population, so they are safe while the
// registry is being instantiated.
type Populator struct {
	r *Registry
}

func (r *Registry) Populator() *Populator {
	if r == nil {
		return nil
	}
	return &Populator{r: r}
}

func (p *Populator) Register(info *Info) *Info {
	return p.r.register(info)
}

func (p *Populator) Unregister(name string) bool {
	return p.r.Unregister(name)
}

// UnregisterOwned removes name only while module still owns the entry.
func (p *Populator) UnregisterOwned(module, name string) bool {
	return p.r.unregisterIf(name, func(info *Info) bool {
		return Key(info.Module) == Key(module)
	})
}

func (r *Registry) register(info *Info) *Info {
	if info == nil || info.Name == "" {
		return nil
	}
	if info.mu == nil && (!info.Has(DecoderThreadSupport) || !info.Has(EncoderThreadSupport)) {
		info.mu = &sync.Mutex{}
	}
	r.mu.Lock()
	if r.entries == nil {
		r.entries = map[string]*Info{}
	}
	replaced := r.insertLocked(info)
	n := len(r.entries)
	r.mu.Unlock()

	r.metrics.SetFormats(n)
	r.log.Trace("register format", "name", info.Name, "module", info.Module, "replaced", replaced)
	r.bus.Publish(TopicRegistered, info)
	return info
}

func (r *Registry) insertLocked(info *Info) bool {
	key := Key(info.Name)
	_, replaced := r.entries[key]
	if !replaced {
		r.order = append(r.order, key)
	}
	r.entries[key] = info
	return replaced
}

// Unregister removes name and reports whether it was registered.
func (r *Registry) Unregister(name string) bool {
	return r.unregisterIf(name, nil)
}

func (r *Registry) unregisterIf(name string, match func(*Info) bool) bool {
	key := Key(name)
	r.mu.Lock()
	info, ok := r.entries[key]
	if ok && match != nil && !match(info) {
		ok = false
	}
	if ok {
		delete(r.entries, key)
		for i, k := range r.order {
			if k == key {
				r.order = append(r.order[:i:i], r.order[i+1:]...)
				break
			}
		}
	}
	n := len(r.entries)
	r.mu.Unlock()
	if !ok {
		return false
	}
	r.metrics.SetFormats(n)
	r.log.Trace("unregister format", "name", info.Name)
	r.bus.Publish(TopicUnregistered, info)
	return true
}

func (r *Registry) get(name string) *Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[Key(name)]
}

// Lookup finds a format by case-insensitive name. On a miss the module
// source gets one chance to provide it. An empty name or "*" registers all
// modules and returns the first entry.
func (r *Registry) Lookup(name string) *Info {
	r.instantiate()
	if name == "" || name == "*" {
		if r.modules != nil {
			if err := r.modules.RegisterAll(); err != nil {
				r.log.Warn("module registration incomplete", "error", err)
				r.mu.Lock()
				r.err = err
				r.mu.Unlock()
			}
		}
		r.mu.RLock()
		defer r.mu.RUnlock()
		if len(r.order) == 0 {
			return nil
		}
		return r.entries[r.order[0]]
	}

	if info := r.get(name); info != nil {
		r.metrics.Lookup(metrics.LookupHit)
		return info
	}
	if r.modules != nil && r.modules.Load(name) {
		if info := r.get(name); info != nil {
			r.log.Debug("format loaded on demand", "name", name, "module", info.Module)
			r.metrics.Lookup(metrics.LookupLoaded)
			return info
		}
	}
	r.metrics.Lookup(metrics.LookupMiss)
	return nil
}

// List returns the non-stealth formats whose name matches the glob pattern,
// sorted by name. An empty pattern matches everything.
func (r *Registry) List(pattern string) []*Info {
	if r.Lookup("*") == nil {
		return nil
	}
	if pattern == "" {
		pattern = "*"
	}
	pattern = strings.ToUpper(pattern)
	if _, err := path.Match(pattern, ""); err != nil {
		r.log.Debug("bad format pattern", "pattern", pattern, "error", err)
		return nil
	}

	r.mu.RLock()
	list := make([]*Info, 0, len(r.order))
	for _, key := range r.order {
		info := r.entries[key]
		if info.IsStealth() {
			continue
		}
		if ok, _ := path.Match(pattern, strings.ToUpper(info.Name)); ok {
			list = append(list, info)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToUpper(list[i].Name) < strings.ToUpper(list[j].Name)
	})
	return list
}

func (r *Registry) Names(pattern string) []string {
	list := r.List(pattern)
	names := make([]string, len(list))
	for i, info := range list {
		names[i] = info.Name
	}
	return names
}

// Sniff asks every format's sniffer in traversal order and returns the
// name of the first match, or "".
func (r *Registry) Sniff(b []byte) string {
	r.instantiate()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		info := r.entries[key]
		if info.Sniffer != nil && info.Sniffer.Sniff(b) {
			return info.Name
		}
	}
	return ""
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Destroy drops every entry. The next query instantiates the registry again.
func (r *Registry) Destroy() {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	r.mu.Lock()
	r.entries = nil
	r.order = nil
	r.err = nil
	r.mu.Unlock()
	r.instantiated.Set(false)
	r.metrics.SetFormats(0)
}

// Owned returns the names registered by module without populating the
// registry.
func (r *Registry) Owned(module string) []string {
	r.mu.RLock()
	var names []string
	for _, key := range r.order {
		if info := r.entries[key]; Key(info.Module) == Key(module) && !info.IsStealth() {
			names = append(names, info.Name)
		}
	}
	r.mu.RUnlock()
	sort.Slice(names, func(i, j int) bool { return strings.ToUpper(names[i]) < strings.ToUpper(names[j]) })
	return names
}
