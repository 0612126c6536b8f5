package zipx

import (
	"archive/zip"
	"testing"

	"gotest.tools/v3/assert"
)

func TestDetectZipUTF8Path(t *testing.T) {
	stored := "\x82\xa0.png"
	fh := &zip.FileHeader{Name: stored, NonUTF8: true, Extra: UnicodePathExtra(stored, "あ.png")}
	name, nonUTF8 := DetectZipUTF8Path(fh)
	assert.Equal(t, name, "あ.png")
	assert.Equal(t, nonUTF8, false)
}

func TestDetectZipUTF8PathStaleCRC(t *testing.T) {
	fh := &zip.FileHeader{Name: "renamed.png", NonUTF8: true, Extra: UnicodePathExtra("old.png", "old.png")}
	name, nonUTF8 := DetectZipUTF8Path(fh)
	assert.Equal(t, name, "renamed.png")
	assert.Equal(t, nonUTF8, true)
}

func TestDetectZipUTF8PathTruncatedExtra(t *testing.T) {
	extra := UnicodePathExtra("a", "b")
	fh := &zip.FileHeader{Name: "a", NonUTF8: true, Extra: extra[:6]}
	name, nonUTF8 := DetectZipUTF8Path(fh)
	assert.Equal(t, name, "a")
	assert.Equal(t, nonUTF8, true)
}

func TestDetectZipUTF8PathAlreadyUTF8(t *testing.T) {
	name, nonUTF8 := DetectZipUTF8Path(&zip.FileHeader{Name: "plain.png"})
	assert.Equal(t, name, "plain.png")
	assert.Equal(t, nonUTF8, false)
}
