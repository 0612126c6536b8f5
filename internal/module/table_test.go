package module

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mocukie/imagecore/internal/coder"
	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/internal/policy"
	"github.com/mocukie/imagecore/pkg/eventbus"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type counted struct {
	registers   int32
	unregisters int32
}

func entry(name string, c *counted, formats ...string) Entry {
	return Entry{
		Name: name,
		Register: func(reg *format.Populator) uint32 {
			atomic.AddInt32(&c.registers, 1)
			for _, f := range formats {
				reg.Register(format.AcquireInfo(name, f, f+" image"))
			}
			return Signature
		},
		Unregister: func(reg *format.Populator) {
			atomic.AddInt32(&c.unregisters, 1)
			for _, f := range formats {
				reg.Unregister(f)
			}
		},
	}
}

func newTable(t *testing.T, pol *policy.Set, entries ...Entry) (*Table, *format.Registry) {
	t.Helper()
	formats := format.NewRegistry(format.Options{})
	table := NewTable(entries, Options{
		Formats: formats,
		Coders:  coder.NewRegistry(coder.Options{}),
		Policy:  pol,
	})
	formats.SetModules(table)
	return table, formats
}

func TestRegisterAllIdempotent(t *testing.T) {
	var png, gif counted
	table, formats := newTable(t, nil,
		entry("PNG", &png, "PNG", "PNG8"),
		entry("GIF", &gif, "GIF"),
	)
	assert.NilError(t, table.RegisterAll())
	assert.NilError(t, table.RegisterAll())
	assert.Equal(t, png.registers, int32(1))
	assert.Equal(t, gif.registers, int32(1))
	assert.Assert(t, table.IsRegistered("PNG"))

	assert.Assert(t, formats.Lookup("png8") != nil)
	assert.Equal(t, png.registers, int32(1))
}

func TestConcurrentRegisterAll(t *testing.T) {
	var a, b, c counted
	table, formats := newTable(t, nil,
		entry("A", &a, "A1", "A2"),
		entry("B", &b, "B1"),
		entry("C", &c, "C1", "C2", "C3"),
	)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.Check(t, table.RegisterAll())
		}()
		go func() {
			defer wg.Done()
			for _, name := range []string{"A1", "B1", "C3", "nope"} {
				if info := formats.Lookup(name); info != nil {
					assert.Check(t, info.Module != "")
				}
			}
		}()
	}
	wg.Wait()
	for _, n := range []int32{a.registers, b.registers, c.registers} {
		assert.Equal(t, n, int32(1))
	}
	assert.DeepEqual(t, formats.Names("*"), []string{"A1", "A2", "B1", "C1", "C2", "C3"})
}

func TestRegisterOneResolvesAlias(t *testing.T) {
	var jpeg counted
	table, _ := newTable(t, nil, entry("JPEG", &jpeg, "JPEG", "JPG"))

	ok, err := table.RegisterOne("jpg")
	assert.NilError(t, err)
	assert.Assert(t, ok)
	ok, err = table.RegisterOne("JPEG")
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, jpeg.registers, int32(1))

	ok, err = table.RegisterOne("NOSUCH")
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestPolicyDenied(t *testing.T) {
	var tiff counted
	pol := policy.New(policy.Rule{Domain: policy.Module, Rights: policy.None, Pattern: "TIFF"})
	table, formats := newTable(t, pol, entry("TIFF", &tiff, "TIFF"))

	ok, err := table.RegisterOne("TIF")
	assert.Assert(t, !ok)
	assert.Assert(t, exception.IsNotAuthorized(err))
	assert.Equal(t, tiff.registers, int32(0))

	assert.Assert(t, formats.Lookup("TIFF") == nil)
	assert.Assert(t, exception.IsNotAuthorized(formats.Err()))
}

func TestSignatureMismatch(t *testing.T) {
	var undone int32
	bad := Entry{
		Name: "BAD",
		Register: func(reg *format.Populator) uint32 {
			reg.Register(format.AcquireInfo("BAD", "BAD", ""))
			return 42
		},
		Unregister: func(reg *format.Populator) {
			atomic.AddInt32(&undone, 1)
			reg.Unregister("BAD")
		},
	}
	var calls int32
	panicky := Entry{
		Name: "PANIC",
		Register: func(reg *format.Populator) uint32 {
			atomic.AddInt32(&calls, 1)
			panic("boom")
		},
	}
	var ok counted
	table, formats := newTable(t, nil, bad, panicky, entry("OK", &ok, "OK"))

	err := table.RegisterAll()
	assert.ErrorContains(t, err, "ModuleSignatureMismatch")
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, undone, int32(1))
	assert.Assert(t, formats.Lookup("BAD") == nil)
	assert.Assert(t, formats.Lookup("OK") != nil)

	// failed entries are not retried until reset
	assert.NilError(t, table.RegisterAll())
	assert.Equal(t, calls, int32(1))

	table.UnregisterAll()
	err = table.RegisterAll()
	assert.Assert(t, err != nil)
	assert.Equal(t, calls, int32(2))
}

func TestUnregister(t *testing.T) {
	bus := eventbus.New()
	sub := make(eventbus.Subscriber, 8)
	bus.Subscribe(sub, TopicRegistered, TopicUnregistered)

	var gif counted
	formats := format.NewRegistry(format.Options{})
	table := NewTable([]Entry{entry("GIF", &gif, "GIF", "GIF87")}, Options{Formats: formats, Bus: bus})
	formats.SetModules(table)

	assert.NilError(t, table.RegisterAll())
	assert.Assert(t, table.UnregisterOne("GIF"))
	assert.Assert(t, !table.UnregisterOne("GIF"))
	assert.Assert(t, !table.UnregisterOne("NOPE"))
	table.UnregisterAll()
	assert.Equal(t, gif.unregisters, int32(1))
	assert.Check(t, is.Len(formats.Owned("GIF"), 0))

	assert.Equal(t, (<-sub).Topic, TopicRegistered)
	assert.Equal(t, (<-sub).Topic, TopicUnregistered)
}

func TestLoadFallsBackToLoader(t *testing.T) {
	var opens int32
	var heif counted
	loader := NewLoader(nil, nil)
	loader.open = func(paths []string, name string) (Entry, error) {
		atomic.AddInt32(&opens, 1)
		if !strings.EqualFold(name, "HEIC") {
			return Entry{}, exception.New(exception.Error, exception.UnableToLoadModule, name)
		}
		time.Sleep(10 * time.Millisecond)
		return entry("HEIC", &heif, "HEIC"), nil
	}
	formats := format.NewRegistry(format.Options{})
	table := NewTable(nil, Options{Formats: formats, Loader: loader})
	formats.SetModules(table)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Check(t, formats.Lookup("heic") != nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, heif.registers, int32(1))
	assert.Assert(t, atomic.LoadInt32(&opens) >= 1)

	assert.Assert(t, formats.Lookup("AVIF") == nil)

	list := table.List()
	assert.Assert(t, is.Len(list, 1))
	assert.Assert(t, list[0].Dynamic)
	assert.DeepEqual(t, list[0].Formats, []string{"HEIC"})
}

func TestLoaderStub(t *testing.T) {
	l := NewLoader(nil, nil)
	_, err := l.Open("PNG")
	assert.Assert(t, err != nil)
	if !Supported() {
		assert.Assert(t, exception.Is(err, exception.DynamicLoadingUnsupported))
	} else {
		assert.Assert(t, exception.Is(err, exception.UnableToLoadModule))
	}
}

func TestListTo(t *testing.T) {
	var png, gif counted
	table, _ := newTable(t, nil, entry("PNG", &png, "PNG", "PNG8"), entry("GIF", &gif, "GIF"))
	ok, err := table.RegisterOne("PNG")
	assert.NilError(t, err)
	assert.Assert(t, ok)

	var buf bytes.Buffer
	assert.NilError(t, table.ListTo(&buf))
	assert.Check(t, is.Contains(buf.String(), "PNG        yes        PNG PNG8\n"))
	assert.Check(t, is.Contains(buf.String(), "GIF        no         \n"))
}

func TestRegisterNil(t *testing.T) {
	table, _ := newTable(t, nil, Entry{Name: "EMPTY"})
	err := table.RegisterAll()
	assert.Assert(t, exception.Is(err, exception.UnableToLoadModule))
	assert.Assert(t, !table.IsRegistered("EMPTY"))
}
