package module

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/mocukie/imagecore/internal/coder"
	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/logging"
	"github.com/mocukie/imagecore/internal/metrics"
	"github.com/mocukie/imagecore/internal/policy"
	"github.com/mocukie/imagecore/pkg/eventbus"
	"github.com/pkg/errors"
)

const (
	TopicRegistered   eventbus.Topic = "module.registered"
	TopicUnregistered eventbus.Topic = "module.unregistered"
)

type Options struct {
	Formats *format.Registry
	Coders  *coder.Registry
	Policy  *policy.Set
	Loader  *Loader
	Logger  hclog.Logger
	Bus     *eventbus.Bus
	Metrics *metrics.Metrics
}

type slot struct {
	Entry
	registered bool
	// failed entries are not retried until UnregisterAll
	failed  bool
	dynamic bool
}

// Table is the set of modules known to a registry. Only the registered
// state of an entry changes after construction.
type Table struct {
	mu    sync.Mutex
	slots []*slot
	index map[string]*slot

	formats *format.Registry
	coders  *coder.Registry
	policy  *policy.Set
	loader  *Loader
	log     hclog.Logger
	bus     *eventbus.Bus
	metrics *metrics.Metrics
}

func NewTable(entries []Entry, opts Options) *Table {
	t := &Table{
		index:   map[string]*slot{},
		formats: opts.Formats,
		coders:  opts.Coders,
		policy:  opts.Policy,
		loader:  opts.Loader,
		log:     logging.OrNull(opts.Logger),
		bus:     opts.Bus,
		metrics: opts.Metrics,
	}
	for _, e := range entries {
		t.add(e, false)
	}
	return t
}

func (t *Table) add(e Entry, dynamic bool) *slot {
	key := format.Key(e.Name)
	if s, ok := t.index[key]; ok {
		return s
	}
	s := &slot{Entry: e, dynamic: dynamic}
	t.slots = append(t.slots, s)
	t.index[key] = s
	return s
}

// RegisterAll registers every entry that is not registered yet. Failures
// do not stop the remaining entries.
func (t *Table) RegisterAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var result *multierror.Error
	for _, s := range t.slots {
		if err := t.registerLocked(s); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// RegisterOne registers the module providing name, which may be an alias
// known to the coder registry. It reports false without error when no
// compiled-in module matches.
func (t *Table) RegisterOne(name string) (bool, error) {
	canonical := t.resolve(name)
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.index[format.Key(canonical)]
	if !ok {
		return false, nil
	}
	if err := t.registerLocked(s); err != nil {
		return false, err
	}
	return s.registered, nil
}

func (t *Table) resolve(name string) string {
	if t.coders == nil {
		return name
	}
	return t.coders.Resolve(name)
}

func (t *Table) registerLocked(s *slot) error {
	if s.registered || s.failed {
		return nil
	}
	if !t.policy.IsAuthorized(policy.Module, policy.Read|policy.Write, s.Name) {
		t.metrics.ModuleLoad(s.Name, "denied")
		return exception.New(exception.Error, exception.NotAuthorized, s.Name)
	}

	sig, err := t.invoke(s)
	if err != nil {
		s.failed = true
		t.metrics.ModuleLoad(s.Name, "failed")
		return exception.Newf(exception.Error, exception.UnableToLoadModule, s.Name, "%v", err)
	}
	if sig != Signature {
		s.failed = true
		t.unregister(s)
		t.metrics.ModuleLoad(s.Name, "mismatch")
		return exception.Newf(exception.Error, exception.ModuleSignatureMismatch, s.Name, "%#x", sig)
	}

	s.registered = true
	t.metrics.ModuleLoad(s.Name, "registered")
	t.log.Trace("module registered", "module", s.Name, "dynamic", s.dynamic)
	t.bus.Publish(TopicRegistered, s.Name)
	return nil
}

func (t *Table) invoke(s *slot) (sig uint32, err error) {
	if s.Register == nil {
		return 0, errors.New("no register function")
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("register panicked: %v", r)
		}
	}()
	return s.Register(t.formats.Populator()), nil
}

func (t *Table) unregister(s *slot) {
	if s.Unregister == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("unregister panicked", "module", s.Name, "panic", r)
		}
	}()
	s.Unregister(t.formats.Populator())
}

// Load implements format.Modules: a compiled-in module first, then the
// dynamic loader.
func (t *Table) Load(name string) bool {
	ok, err := t.RegisterOne(name)
	if err != nil {
		t.log.Debug("module not registered", "name", name, "error", err)
		return false
	}
	if ok || t.loader == nil {
		return ok
	}

	canonical := t.resolve(name)
	entry, err := t.loader.Open(canonical)
	if err != nil {
		t.log.Debug("module not loaded", "name", canonical, "error", err)
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.add(entry, true)
	if err = t.registerLocked(s); err != nil {
		t.log.Warn("dynamic module rejected", "module", entry.Name, "error", err)
		return false
	}
	return s.registered
}

// UnregisterOne unregisters name and reports whether it was registered.
func (t *Table) UnregisterOne(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.index[format.Key(t.resolve(name))]
	if !ok || !s.registered {
		return false
	}
	t.unregisterLocked(s)
	return true
}

// UnregisterAll unregisters every entry in reverse order and forgets
// earlier failures.
func (t *Table) UnregisterAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.slots) - 1; i >= 0; i-- {
		s := t.slots[i]
		if s.registered {
			t.unregisterLocked(s)
		}
		s.failed = false
	}
}

func (t *Table) unregisterLocked(s *slot) {
	t.unregister(s)
	s.registered = false
	t.log.Trace("module unregistered", "module", s.Name)
	t.bus.Publish(TopicUnregistered, s.Name)
}

func (t *Table) IsRegistered(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.index[format.Key(t.resolve(name))]
	return ok && s.registered
}

func (t *Table) List() []Status {
	t.mu.Lock()
	list := make([]Status, len(t.slots))
	for i, s := range t.slots {
		list[i] = Status{Name: s.Name, Registered: s.registered, Dynamic: s.dynamic}
	}
	t.mu.Unlock()
	if t.formats != nil {
		for i := range list {
			list[i].Formats = t.formats.Owned(list[i].Name)
		}
	}
	return list
}

func (t *Table) ListTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Module     Registered Formats")
	fmt.Fprintln(bw, strings.Repeat("-", 79))
	for _, s := range t.List() {
		state := "no"
		if s.Registered {
			state = "yes"
		}
		if s.Dynamic {
			state += "*"
		}
		fmt.Fprintf(bw, "%-10s %-10s %s\n", s.Name, state, strings.Join(s.Formats, " "))
	}
	fmt.Fprint(bw, "\n* dynamically loaded\n")
	return bw.Flush()
}
