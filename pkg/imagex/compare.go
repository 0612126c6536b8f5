package imagex

import (
	"image"
	"image/color"
)

func IsImageEqual(img1, img2 image.Image) bool {
	if img1.Bounds() != img2.Bounds() {
		return false
	}
	n1, ok1 := img1.(*image.NRGBA)
	n2, ok2 := img2.(*image.NRGBA)
	if ok1 && ok2 && n1.Stride == n2.Stride {
		for i := range n1.Pix {
			if n1.Pix[i] != n2.Pix[i] {
				return false
			}
		}
		return true
	}

	r := img1.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c1 := color.NRGBAModel.Convert(img1.At(x, y)).(color.NRGBA)
			c2 := color.NRGBAModel.Convert(img2.At(x, y)).(color.NRGBA)
			if c1 != c2 {
				return false
			}
		}
	}
	return true
}

// Equal compares two handles frame by frame.
func Equal(a, b *Image) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Frames {
		if !IsImageEqual(a.Frames[i].Image, b.Frames[i].Image) {
			return false
		}
	}
	return true
}
