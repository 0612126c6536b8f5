package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/mocukie/imagecore/pkg/imagex"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func TestParse(t *testing.T) {
	for _, expr := range []string{"resize=10x0", "fit=4x4", "crop=2x2", "flip=v", "rotate=90", "rotate=45",
		"blur=1.5", "sharpen=0.5", "gamma=1.2", "contrast=10", "brightness=-5", "edge=1",
		"grayscale", "invert", "sepia", "emboss", "sobel", "thumbnail=3x3", "GRAYSCALE"} {
		_, err := Parse(expr)
		assert.NilError(t, err, expr)
	}

	for _, expr := range []string{"explode", "resize=abc", "resize=0x0", "blur=", "flip=sideways", "invert=3", "rotate=x"} {
		_, err := Parse(expr)
		assert.Assert(t, err != nil, expr)
	}
	assert.Check(t, is.Contains(Names(), "resize"))
}

func TestApply(t *testing.T) {
	img := imagex.New("PNG", gradient(8, 4), gradient(8, 4))
	ops, err := ParseAll([]string{"resize=4x0", "rotate=90", "grayscale"})
	assert.NilError(t, err)
	assert.NilError(t, Apply(img, ops...))

	for _, f := range img.Frames {
		assert.Equal(t, f.Bounds().Dx(), 2)
		assert.Equal(t, f.Bounds().Dy(), 4)
		r, g, b, _ := f.At(0, 0).RGBA()
		assert.Assert(t, r == g && g == b)
	}
}

func TestInvertTwiceIsIdentity(t *testing.T) {
	src := gradient(5, 5)
	img := imagex.New("PNG", src)
	inv, err := Parse("invert")
	assert.NilError(t, err)
	assert.NilError(t, Apply(img, inv, inv))
	assert.Assert(t, imagex.IsImageEqual(src, img.First()))
}

func TestParseAllStopsAtFirstError(t *testing.T) {
	_, err := ParseAll([]string{"invert", "bogus=1"})
	assert.ErrorContains(t, err, "bogus")
}
