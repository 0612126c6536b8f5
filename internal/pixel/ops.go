// Package pixel applies image operations. The registries treat images as
// opaque; this is the only package that changes pixels.
package pixel

import (
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
)

type Op interface {
	Name() string
	Apply(img image.Image) (image.Image, error)
}

type op struct {
	name string
	fn   func(image.Image) (image.Image, error)
}

func (o *op) Name() string { return o.name }

func (o *op) Apply(img image.Image) (image.Image, error) { return o.fn(img) }

type builder func(arg string) (func(image.Image) (image.Image, error), error)

var builders = map[string]builder{
	"resize":     sizeOp(func(img image.Image, w, h int) image.Image { return imaging.Resize(img, w, h, imaging.Lanczos) }),
	"fit":        sizeOp(func(img image.Image, w, h int) image.Image { return imaging.Fit(img, w, h, imaging.Lanczos) }),
	"thumbnail":  sizeOp(func(img image.Image, w, h int) image.Image { return imaging.Thumbnail(img, w, h, imaging.Lanczos) }),
	"crop":       sizeOp(func(img image.Image, w, h int) image.Image { return imaging.CropCenter(img, w, h) }),
	"flip":       flipOp,
	"rotate":     rotateOp,
	"blur":       floatOp(func(img image.Image, v float64) image.Image { return imaging.Blur(img, v) }),
	"sharpen":    floatOp(func(img image.Image, v float64) image.Image { return imaging.Sharpen(img, v) }),
	"gamma":      floatOp(func(img image.Image, v float64) image.Image { return imaging.AdjustGamma(img, v) }),
	"contrast":   floatOp(func(img image.Image, v float64) image.Image { return imaging.AdjustContrast(img, v) }),
	"brightness": floatOp(func(img image.Image, v float64) image.Image { return imaging.AdjustBrightness(img, v) }),
	"edge":       floatOp(func(img image.Image, v float64) image.Image { return effect.EdgeDetection(img, v) }),
	"grayscale":  plainOp(func(img image.Image) image.Image { return effect.Grayscale(img) }),
	"invert":     plainOp(func(img image.Image) image.Image { return effect.Invert(img) }),
	"sepia":      plainOp(func(img image.Image) image.Image { return effect.Sepia(img) }),
	"emboss":     plainOp(func(img image.Image) image.Image { return effect.Emboss(img) }),
	"sobel":      plainOp(func(img image.Image) image.Image { return effect.Sobel(img) }),
}

// Names lists the operations Parse understands.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse builds an operation from "name" or "name=arg", for example
// "resize=320x0", "rotate=90" or "grayscale".
func Parse(expr string) (Op, error) {
	name, arg := expr, ""
	if i := strings.IndexByte(expr, '='); i >= 0 {
		name, arg = expr[:i], expr[i+1:]
	}
	name = strings.ToLower(strings.TrimSpace(name))
	b, ok := builders[name]
	if !ok {
		return nil, errors.Errorf("unknown operation %q", name)
	}
	fn, err := b(strings.TrimSpace(arg))
	if err != nil {
		return nil, errors.WithMessagef(err, "operation %s", name)
	}
	return &op{name: name, fn: fn}, nil
}

func ParseAll(specs []string) ([]Op, error) {
	ops := make([]Op, 0, len(specs))
	for _, s := range specs {
		o, err := Parse(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, nil
}

// Apply runs ops in order on every frame of img.
func Apply(img *imagex.Image, ops ...Op) error {
	for _, o := range ops {
		if err := img.Map(o.Apply); err != nil {
			return errors.WithMessagef(err, "apply %s", o.Name())
		}
	}
	return nil
}

func plainOp(fn func(image.Image) image.Image) builder {
	return func(arg string) (func(image.Image) (image.Image, error), error) {
		if arg != "" {
			return nil, errors.Errorf("takes no argument, got %q", arg)
		}
		return func(img image.Image) (image.Image, error) { return fn(img), nil }, nil
	}
}

func floatOp(fn func(image.Image, float64) image.Image) builder {
	return func(arg string) (func(image.Image) (image.Image, error), error) {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Errorf("bad number %q", arg)
		}
		return func(img image.Image) (image.Image, error) { return fn(img, v), nil }, nil
	}
}

// sizeOp parses WxH. Either side may be 0 to keep the aspect ratio.
func sizeOp(fn func(image.Image, int, int) image.Image) builder {
	return func(arg string) (func(image.Image) (image.Image, error), error) {
		w, h, err := parseSize(arg)
		if err != nil {
			return nil, err
		}
		return func(img image.Image) (image.Image, error) { return fn(img, w, h), nil }, nil
	}
}

func parseSize(arg string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(arg), "x", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("bad size %q, want WxH", arg)
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w < 0 || h < 0 || w+h == 0 {
		return 0, 0, errors.Errorf("bad size %q, want WxH", arg)
	}
	return w, h, nil
}

func flipOp(arg string) (func(image.Image) (image.Image, error), error) {
	switch strings.ToLower(arg) {
	case "h", "horizontal", "":
		return func(img image.Image) (image.Image, error) { return imaging.FlipH(img), nil }, nil
	case "v", "vertical":
		return func(img image.Image) (image.Image, error) { return imaging.FlipV(img), nil }, nil
	}
	return nil, errors.Errorf("bad direction %q", arg)
}

func rotateOp(arg string) (func(image.Image) (image.Image, error), error) {
	deg, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, errors.Errorf("bad angle %q", arg)
	}
	switch deg {
	case 90:
		return func(img image.Image) (image.Image, error) { return imaging.Rotate90(img), nil }, nil
	case 180:
		return func(img image.Image) (image.Image, error) { return imaging.Rotate180(img), nil }, nil
	case 270:
		return func(img image.Image) (image.Image, error) { return imaging.Rotate270(img), nil }, nil
	}
	return func(img image.Image) (image.Image, error) {
		return imaging.Rotate(img, deg, color.Transparent), nil
	}, nil
}
