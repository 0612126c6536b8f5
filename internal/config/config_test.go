package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mocukie/imagecore/internal/exception"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSearchPaths(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	t.Setenv(EnvConfigurePath, a+string(os.PathListSeparator)+b+string(os.PathListSeparator)+a)

	paths := SearchPaths(filepath.Join(b, "imagecore"))
	assert.DeepEqual(t, paths, []string{a, b})

	t.Setenv(EnvConfigurePath, "")
	assert.Check(t, is.Len(SearchPaths(""), 0))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CoderFilename, `
coders:
  - magick: JPE
    name: JPEG
  - magick: SECRET
    name: PNG
    stealth: true
`)
	writeFile(t, dir, MagicFilename, `
magic:
  - name: FOO
    offset: 4
    target: 'FOO\x00\x89'
    skip_spaces: true
`)
	writeFile(t, dir, PolicyFilename, `
policies:
  - domain: coder
    rights: none
    pattern: "P[SD]*"
`)

	cfg, err := Load([]string{dir, t.TempDir()})
	assert.NilError(t, err)
	assert.Assert(t, is.Len(cfg.Coders, 1))
	assert.Equal(t, cfg.Coders[0].Path, filepath.Join(dir, CoderFilename))
	assert.DeepEqual(t, cfg.Coders[0].Coders, []CoderEntry{
		{Magick: "JPE", Name: "JPEG"},
		{Magick: "SECRET", Name: "PNG", Stealth: true},
	})

	assert.Assert(t, is.Len(cfg.Magic, 1))
	m := cfg.Magic[0].Magic[0]
	assert.Equal(t, m.Offset, int64(4))
	assert.Assert(t, m.SkipSpaces)
	target, err := m.Bytes()
	assert.NilError(t, err)
	assert.DeepEqual(t, target, []byte("FOO\x00\x89"))

	assert.Assert(t, is.Len(cfg.Policies, 1))
	assert.Equal(t, cfg.Policies[0].Policies[0].Rights, "none")
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CoderFilename, "coders: [ {magick: ")

	_, err := Load([]string{dir})
	assert.Assert(t, exception.Is(err, exception.InvalidConfiguration))
}

func TestMagicEntryBadTarget(t *testing.T) {
	_, err := MagicEntry{Name: "X", Target: `\xZZ`}.Bytes()
	assert.ErrorContains(t, err, "bad target")
}
