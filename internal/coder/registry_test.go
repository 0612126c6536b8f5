package coder

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mocukie/imagecore/internal/config"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestLookupBuiltin(t *testing.T) {
	r := NewRegistry(Options{})
	info := r.Lookup("jpg")
	assert.Assert(t, info != nil)
	assert.Equal(t, info.Name, "JPEG")
	assert.Equal(t, info.Path, BuiltinPath)
	assert.Assert(t, info.Exempt)

	assert.Equal(t, r.Resolve("PNG32"), "PNG")
	assert.Equal(t, r.Resolve("TIF"), "TIFF")
	assert.Equal(t, r.Resolve("GIF"), "GIF")
	assert.Assert(t, r.Lookup("NOPE") == nil)
	assert.Assert(t, r.Lookup("*") != nil)
}

func TestOverlay(t *testing.T) {
	r := NewRegistry(Options{Files: []config.CoderFile{{
		Path: "/etc/imagecore/coder.yaml",
		Coders: []config.CoderEntry{
			{Magick: "JPG", Name: "JPEGXL"},
			{Magick: "HIDDEN", Name: "PNG", Stealth: true},
			{Magick: "", Name: "BROKEN"},
		},
	}}})
	info := r.Lookup("JPG")
	assert.Equal(t, info.Name, "JPEGXL")
	assert.Assert(t, !info.Exempt)
	assert.Equal(t, r.Resolve("hidden"), "PNG")
	assert.Assert(t, !contains(r.Names("*"), "HIDDEN"))

	// "/etc/..." sorts before "[built-in]"
	list := r.List("*")
	assert.Equal(t, list[0].Path, "/etc/imagecore/coder.yaml")
	assert.Equal(t, list[0].Magick, "JPG")
	assert.Equal(t, list[len(list)-1].Path, BuiltinPath)
	for i := 1; i < len(list); i++ {
		assert.Assert(t, list[i-1].Path <= list[i].Path, "%s after %s", list[i].Path, list[i-1].Path)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestListSortedByPathThenName(t *testing.T) {
	r := NewRegistry(Options{})
	list := r.List("PNG*")
	assert.Assert(t, len(list) >= 6)
	for _, info := range list {
		assert.Equal(t, info.Name, "PNG")
	}
	assert.DeepEqual(t, r.Names("PNG*"), []string{"PNG00", "PNG24", "PNG32", "PNG48", "PNG64", "PNG8"})

	all := r.List("")
	for i := 1; i < len(all); i++ {
		assert.Assert(t, strings.ToUpper(all[i-1].Name) <= strings.ToUpper(all[i].Name))
	}
	assert.Check(t, is.Len(r.List("[bad"), 0))
}

func TestListTo(t *testing.T) {
	r := NewRegistry(Options{})
	var buf bytes.Buffer
	assert.NilError(t, r.ListTo(&buf))
	out := buf.String()
	assert.Assert(t, strings.HasPrefix(out, "\nPath: [built-in]\n\nMagick      Coder\n"+strings.Repeat("-", 79)+"\n"))
	assert.Check(t, is.Contains(out, "\nJPG         JPEG\n"))
	assert.Check(t, is.Contains(out, "\nTIF         TIFF\n"))
}

func TestDestroy(t *testing.T) {
	r := NewRegistry(Options{})
	assert.Assert(t, r.Lookup("JPG") != nil)
	r.Destroy()
	assert.Assert(t, r.Lookup("JPG") != nil)
}
