package iox

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/fs"
)

func TestSplitNested(t *testing.T) {
	archive, entry, ok := SplitNested("a/b.zip|c/d.png")
	assert.Check(t, ok)
	assert.Check(t, is.Equal(archive, "a/b.zip"))
	assert.Check(t, is.Equal(entry, "c/d.png"))

	_, _, ok = SplitNested("plain.png")
	assert.Check(t, !ok)
	_, ok = NewInput("plain.png").(*FileInput)
	assert.Check(t, ok)
	_, ok = NewInput("x.zip|y.png").(*ZipInput)
	assert.Check(t, ok)
}

func TestFileRoundTripKeepsModTime(t *testing.T) {
	dir := fs.NewDir(t, "iox", fs.WithFile("in.txt", "payload"))
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.NilError(t, os.Chtimes(dir.Join("in.txt"), mtime, mtime))

	in := NewFileInput(dir.Join("in.txt"), nil)
	assert.NilError(t, in.Open())
	info, err := in.Info()
	assert.NilError(t, err)

	out := NewFileOutput(dir.Join("out.txt"))
	assert.NilError(t, out.Open(info))
	_, err = io.Copy(out, in)
	assert.NilError(t, err)
	assert.NilError(t, in.Close())
	assert.NilError(t, out.Close())

	st, err := os.Stat(dir.Join("out.txt"))
	assert.NilError(t, err)
	assert.Check(t, st.ModTime().Equal(mtime))
	data, err := os.ReadFile(dir.Join("out.txt"))
	assert.NilError(t, err)
	assert.Equal(t, string(data), "payload")
}

func TestZipOutputsShareWriter(t *testing.T) {
	dir := fs.NewDir(t, "iox")
	archive := filepath.Join(dir.Path(), "out.zip")
	f, err := os.Create(archive)
	assert.NilError(t, err)
	zw := NewZipWriter(f, 2)

	for _, name := range []string{"a.txt", "sub/b.txt"} {
		out, err := NewZipOutput(archive + NestSeparator + name)
		assert.NilError(t, err)
		out.SetZipWriter(zw)
		assert.NilError(t, out.Open(nil))
		_, err = out.Write([]byte("data:" + name))
		assert.NilError(t, err)
		assert.NilError(t, out.Close())
	}

	in, err := NewZipInput(archive + NestSeparator + "sub/b.txt")
	assert.NilError(t, err)
	assert.NilError(t, in.Open())
	data, err := io.ReadAll(in)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "data:sub/b.txt")
	info, err := in.Info()
	assert.NilError(t, err)
	assert.Equal(t, info.Name(), "b.txt")
	assert.NilError(t, in.Close())

	missing, _ := NewZipInput(archive + NestSeparator + "nope")
	assert.ErrorContains(t, missing.Open(), "not found")
	assert.NilError(t, missing.Close())

	r, err := zip.OpenReader(archive)
	assert.NilError(t, err)
	defer r.Close()
	assert.Equal(t, len(r.File), 2)
}

func TestZipOutputWithoutWriter(t *testing.T) {
	out, err := NewZipOutput("x.zip|y")
	assert.NilError(t, err)
	assert.ErrorContains(t, out.Close(), "not set")
	_, err = NewZipOutput("no-separator")
	assert.ErrorContains(t, err, "invalid zip path")
}
