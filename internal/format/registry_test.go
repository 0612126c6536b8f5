package format

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/pkg/eventbus"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type fakeModules struct {
	reg   *Registry
	mu    sync.Mutex
	done  map[string]bool
	calls map[string]*int32
	mods  map[string][]string
	lazy  map[string][]string
}

func newFakeModules(reg *Registry, mods map[string][]string) *fakeModules {
	m := &fakeModules{reg: reg, done: map[string]bool{}, calls: map[string]*int32{}, mods: mods, lazy: map[string][]string{}}
	for name := range mods {
		m.calls[name] = new(int32)
	}
	reg.SetModules(m)
	return m
}

func (m *fakeModules) RegisterAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range []string{"GIF", "PNG", "BMP"} {
		formats, ok := m.mods[name]
		if !ok || m.done[name] {
			continue
		}
		atomic.AddInt32(m.calls[name], 1)
		for _, f := range formats {
			m.reg.Populator().Register(AcquireInfo(name, f, f+" image"))
		}
		m.done[name] = true
	}
	return nil
}

func (m *fakeModules) Load(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	formats, ok := m.lazy[strings.ToUpper(name)]
	if !ok {
		return false
	}
	for _, f := range formats {
		m.reg.Populator().Register(AcquireInfo(name, f, ""))
	}
	return true
}

func TestAcquireInfoDefaults(t *testing.T) {
	info := AcquireInfo("PNG", "PNG", "Portable Network Graphics")
	assert.Assert(t, info.Has(Adjoin))
	assert.Assert(t, info.Has(BlobSupport))
	assert.Assert(t, info.Has(DecoderThreadSupport|EncoderThreadSupport))
	assert.Assert(t, info.Has(UseExtension))
	assert.Assert(t, !info.IsStealth())
	assert.Assert(t, !info.Has(Raw))

	info.Set(Adjoin, false).Set(Raw, true)
	assert.Assert(t, !info.Has(Adjoin))
	assert.Assert(t, info.Has(Raw))
}

func TestInstantiateAddsSentinels(t *testing.T) {
	reg := NewRegistry(Options{})
	assert.Assert(t, reg.Lookup("EPHEMERAL") != nil)
	assert.Assert(t, reg.Lookup("clipmask").IsStealth())
	assert.Check(t, is.Len(reg.List("*"), 0))
	assert.NilError(t, reg.Err())
}

func TestLastWriterWins(t *testing.T) {
	reg := NewRegistry(Options{})
	first := AcquireInfo("A", "FOO", "first")
	first.Note = "only on first"
	reg.Register(first)
	second := AcquireInfo("B", "foo", "second")
	reg.Register(second)

	got := reg.Lookup("Foo")
	assert.Equal(t, got, second)
	assert.Equal(t, got.Description, "second")
	assert.Equal(t, got.Note, "")
	assert.Check(t, is.Len(reg.List("FOO"), 1))
}

func TestEnumerateLookupRoundTrip(t *testing.T) {
	reg := NewRegistry(Options{})
	newFakeModules(reg, map[string][]string{
		"PNG": {"PNG", "PNG8", "PNG32"},
		"GIF": {"GIF", "GIF87"},
		"BMP": {"BMP"},
	})
	hidden := AcquireInfo("X", "HIDDEN", "")
	hidden.Flags |= Stealth
	reg.Register(hidden)

	names := reg.Names("*")
	assert.DeepEqual(t, names, []string{"BMP", "GIF", "GIF87", "PNG", "PNG32", "PNG8"})
	for _, name := range names {
		assert.Assert(t, reg.Lookup(name) != nil, name)
	}
	assert.Assert(t, reg.Lookup("HIDDEN") != nil)
	assert.Assert(t, !contains(names, "HIDDEN"))

	assert.DeepEqual(t, reg.Names("png*"), []string{"PNG", "PNG32", "PNG8"})
	assert.DeepEqual(t, reg.Names("GIF?*"), []string{"GIF87"})
	assert.Check(t, is.Len(reg.Names("[bad"), 0))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestLookupFallsBackToModules(t *testing.T) {
	reg := NewRegistry(Options{})
	m := newFakeModules(reg, nil)
	m.lazy["JXL"] = []string{"JXL"}

	assert.Assert(t, reg.Lookup("nothing") == nil)
	info := reg.Lookup("jxl")
	assert.Assert(t, info != nil)
	assert.Equal(t, info.Name, "JXL")
}

func TestLookupStarReturnsFirstRegistered(t *testing.T) {
	reg := NewRegistry(Options{})
	assert.Equal(t, reg.Lookup("*").Name, "ephemeral")
	assert.Equal(t, reg.Lookup("").Name, "ephemeral")
}

func TestUnregister(t *testing.T) {
	bus := eventbus.New()
	sub := make(eventbus.Subscriber, 4)
	bus.Subscribe(sub, TopicRegistered, TopicUnregistered)

	reg := NewRegistry(Options{Bus: bus})
	reg.Register(AcquireInfo("M", "ONE", ""))
	assert.Assert(t, reg.Unregister("one"))
	assert.Assert(t, !reg.Unregister("one"))
	assert.Assert(t, reg.Lookup("ONE") == nil)

	assert.Equal(t, (<-sub).Topic, TopicRegistered)
	assert.Equal(t, (<-sub).Topic, TopicUnregistered)
}

func TestSniffUsesRegistrationOrder(t *testing.T) {
	reg := NewRegistry(Options{})
	prefix := func(p string) Sniffer {
		return SnifferFunc(func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) })
	}
	z := AcquireInfo("Z", "ZZZ", "")
	z.Sniffer = prefix("GIF8")
	reg.Register(z)
	a := AcquireInfo("A", "AAA", "")
	a.Sniffer = prefix("GIF")
	reg.Register(a)

	assert.Equal(t, reg.Sniff([]byte("GIF89a")), "ZZZ")
	assert.Equal(t, reg.Sniff([]byte("GIFxx")), "AAA")
	assert.Equal(t, reg.Sniff([]byte("nope")), "")

	// a replacement keeps its slot
	z2 := AcquireInfo("Z", "ZZZ", "")
	z2.Sniffer = prefix("GIF")
	reg.Register(z2)
	assert.Equal(t, reg.Sniff([]byte("GIFxx")), "ZZZ")
}

func TestDestroyAndReinstantiate(t *testing.T) {
	reg := NewRegistry(Options{})
	m := newFakeModules(reg, map[string][]string{"GIF": {"GIF"}})
	assert.Assert(t, reg.Lookup("GIF") != nil)

	reg.Destroy()
	assert.Equal(t, reg.Len(), 0)
	m.mu.Lock()
	m.done = map[string]bool{}
	m.mu.Unlock()

	assert.Assert(t, reg.Lookup("GIF") != nil)
	assert.Assert(t, reg.Lookup("ephemeral") != nil)
	assert.Equal(t, atomic.LoadInt32(m.calls["GIF"]), int32(2))
}

type failingModules struct{}

func (failingModules) RegisterAll() error { return errors.New("policy said no") }
func (failingModules) Load(name string) bool { return false }

func TestErrIsRecorded(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.SetModules(failingModules{})
	assert.Assert(t, reg.Lookup("ephemeral") != nil)
	assert.ErrorContains(t, reg.Err(), "policy said no")
}

func TestRegisterBeforeFirstLookupSurvivesPopulation(t *testing.T) {
	reg := NewRegistry(Options{})
	m := newFakeModules(reg, map[string][]string{"PNG": {"PNG", "PNG8"}})

	custom := AcquireInfo("CUSTOM", "png", "custom png")
	reg.Register(custom)
	assert.Equal(t, atomic.LoadInt32(m.calls["PNG"]), int32(1))

	got := reg.Lookup("PNG")
	assert.Equal(t, got, custom)
	assert.Equal(t, got.Module, "CUSTOM")
	assert.Equal(t, reg.Lookup("PNG8").Module, "PNG")
	assert.Assert(t, reg.Lookup("ephemeral") != nil)
}

func TestUnregisterOwned(t *testing.T) {
	reg := NewRegistry(Options{})
	p := reg.Populator()
	p.Register(AcquireInfo("A", "SHARED", ""))
	p.Register(AcquireInfo("B", "SHARED", ""))

	assert.Assert(t, !p.UnregisterOwned("A", "shared"))
	assert.Equal(t, reg.Lookup("SHARED").Module, "B")
	assert.Assert(t, p.UnregisterOwned("b", "shared"))
	assert.Assert(t, reg.Lookup("SHARED") == nil)
}

type flakyModules struct {
	calls int32
}

func (f *flakyModules) RegisterAll() error {
	if atomic.AddInt32(&f.calls, 1) > 1 {
		return errors.New("module went missing")
	}
	return nil
}

func (f *flakyModules) Load(name string) bool { return false }

func TestLookupStarRecordsLaterFailures(t *testing.T) {
	reg := NewRegistry(Options{})
	reg.SetModules(&flakyModules{})
	assert.Assert(t, reg.Lookup("ephemeral") != nil)
	assert.NilError(t, reg.Err())

	assert.Equal(t, reg.Lookup("*").Name, "ephemeral")
	assert.ErrorContains(t, reg.Err(), "module went missing")
}

func TestConcurrentRegisterAllAndLookup(t *testing.T) {
	reg := NewRegistry(Options{})
	m := newFakeModules(reg, map[string][]string{
		"PNG": {"PNG", "PNG8", "PNG24", "PNG32"},
		"GIF": {"GIF", "GIF87"},
		"BMP": {"BMP", "BMP2", "BMP3"},
	})

	var wg sync.WaitGroup
	names := []string{"PNG", "gif", "BMP3", "missing", "*", "png24"}
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.Check(t, m.RegisterAll())
		}()
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				name := names[(i+j)%len(names)]
				if info := reg.Lookup(name); info != nil {
					// a visible entry is always complete
					if info.Name == "" {
						t.Errorf("half-populated entry for %s", name)
					}
				} else if name != "missing" {
					t.Errorf("lookup %s failed", name)
				}
			}
		}(i)
	}
	wg.Wait()

	for name, calls := range m.calls {
		assert.Equal(t, atomic.LoadInt32(calls), int32(1), name)
	}
	assert.Equal(t, len(reg.Names("*")), 9)
}

func TestDecodeEncodeDispatch(t *testing.T) {
	info := AcquireInfo("T", "T", "")
	_, err := info.Decode(strings.NewReader(""))
	assert.Assert(t, exception.Is(err, exception.NoDecodeDelegate))
	assert.Assert(t, exception.Is(info.Encode(io.Discard, nil), exception.NoEncodeDelegate))

	info.Decoder = DecoderFunc(func(r io.Reader) (*imagex.Image, error) {
		return imagex.New(""), nil
	})
	info.Set(DecoderThreadSupport, false)
	reg := NewRegistry(Options{})
	reg.Register(info)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := reg.Lookup("t").Decode(strings.NewReader(""))
			assert.Check(t, err)
			assert.Check(t, is.Equal(img.Magick, "T"))
		}()
	}
	wg.Wait()
}

func TestListTo(t *testing.T) {
	reg := NewRegistry(Options{})
	png := AcquireInfo("PNG", "PNG", "Portable Network Graphics")
	png.Version = "libpng 1.6"
	png.Note = "See http://www.libpng.org/\nfor details"
	png.Decoder = DecoderFunc(func(io.Reader) (*imagex.Image, error) { return nil, nil })
	png.Encoder = EncoderFunc(func(io.Writer, *imagex.Image) error { return nil })
	png.Set(Adjoin, false)
	reg.Register(png)

	gif := AcquireInfo("GIF", "GIF", "CompuServe graphics interchange format")
	gif.Decoder = png.Decoder
	gif.Encoder = png.Encoder
	gif.Set(BlobSupport, false)
	reg.Register(gif)

	var buf bytes.Buffer
	assert.NilError(t, reg.ListTo(&buf))
	want := strings.Join([]string{
		"   Format  Module    Mode  Description",
		strings.Repeat("-", 79),
		"      GIF  GIF       rw+   CompuServe graphics interchange format",
		"      PNG* PNG       rw-   Portable Network Graphics (libpng 1.6)",
		"           See http://www.libpng.org/",
		"           for details",
		"",
		"* native blob support",
		"r read support",
		"w write support",
		"+ support for multiple images",
		"",
	}, "\n")
	assert.Equal(t, buf.String(), want)
}

func ExampleRegistry_Names() {
	reg := NewRegistry(Options{})
	reg.Register(AcquireInfo("GIF", "GIF", ""))
	reg.Register(AcquireInfo("BMP", "BMP", ""))
	fmt.Println(reg.Names("*"))
	// Output: [BMP GIF]
}
