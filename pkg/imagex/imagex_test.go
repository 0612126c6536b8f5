package imagex

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestIsImageEqual(t *testing.T) {
	red := solid(4, 4, color.NRGBA{255, 0, 0, 255})
	assert.Assert(t, IsImageEqual(red, solid(4, 4, color.NRGBA{255, 0, 0, 255})))
	assert.Assert(t, !IsImageEqual(red, solid(4, 4, color.NRGBA{0, 0, 255, 255})))
	assert.Assert(t, !IsImageEqual(red, solid(5, 4, color.NRGBA{255, 0, 0, 255})))

	rgba := image.NewRGBA(red.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			rgba.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	assert.Assert(t, IsImageEqual(red, rgba))
}

func TestHandle(t *testing.T) {
	var empty *Image
	assert.Equal(t, empty.Len(), 0)

	img := New("GIF", solid(2, 2, color.White), solid(2, 2, color.Black))
	assert.Equal(t, img.Len(), 2)
	assert.Equal(t, img.Bounds(), image.Rect(0, 0, 2, 2))
	img.SetProp("comment", "hi")
	assert.Equal(t, img.Props["comment"], "hi")
}

func TestMapIsAllOrNothing(t *testing.T) {
	a, b := solid(1, 1, color.White), solid(1, 1, color.Black)
	img := New("PNG", a, b)
	calls := 0
	err := img.Map(func(m image.Image) (image.Image, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("boom")
		}
		return solid(3, 3, color.White), nil
	})
	assert.ErrorContains(t, err, "frame 1")
	assert.Equal(t, img.Frames[0].Image, image.Image(a))

	assert.NilError(t, img.Map(func(m image.Image) (image.Image, error) { return m, nil }))
	assert.Assert(t, Equal(img, New("PNG", a, b)))
}

func TestMatchMagic(t *testing.T) {
	assert.Assert(t, MatchMagic([]byte("RIFF\x01\x02\x03\x04WEBPVP8 "), "RIFF????WEBP"))
	assert.Assert(t, !MatchMagic([]byte("RIFF\x01\x02\x03\x04WAVE"), "RIFF????WEBP"))
	assert.Assert(t, !MatchMagic([]byte("RIFF"), "RIFF????WEBP"))
}

func TestAsPeeker(t *testing.T) {
	p := AsPeeker(strings.NewReader("GIF89a"))
	head, err := p.Peek(3)
	assert.NilError(t, err)
	assert.Equal(t, string(head), "GIF")
	assert.Equal(t, AsPeeker(p), p)
}
