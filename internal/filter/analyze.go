package filter

import (
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/pkg/errors"
)

func init() {
	add(Entry{
		Name:        "analyze",
		Description: "brightness and saturation statistics as image properties",
		Func:        analyze,
	})
}

// moments accumulates sums of x^0..x^4.
type moments [5]float64

func (m *moments) add(x float64) {
	p := 1.0
	for i := range m {
		m[i] += p
		p *= x
	}
}

func (m *moments) setProps(img *imagex.Image, prefix string) {
	area := m[0]
	mean := m[1] / area
	std := math.Sqrt(math.Max(0, m[2]/area-mean*mean))
	var kurtosis, skewness float64
	if std >= 1e-6 {
		kurtosis = (m[4]/area-4*mean*m[3]/area+6*mean*mean*m[2]/area-3*mean*mean*mean*mean)/(std*std*std*std) - 3
		skewness = (m[3]/area - 3*mean*m[2]/area + 2*mean*mean*mean) / (std * std * std)
	}
	img.SetProp(prefix+":mean", fmtFloat(mean))
	img.SetProp(prefix+":standard-deviation", fmtFloat(std))
	img.SetProp(prefix+":kurtosis", fmtFloat(kurtosis))
	img.SetProp(prefix+":skewness", fmtFloat(skewness))
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// analyze stores HSV value and saturation statistics of the first frame as
// filter:brightness:* and filter:saturation:* properties.
func analyze(img *imagex.Image, _ []string) (uint32, error) {
	m := img.First()
	if m == nil {
		return 0, errors.New("image has no frames")
	}
	var brightness, saturation moments
	b := m.Bounds()
	if b.Empty() {
		return 0, errors.New("empty image")
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// fully transparent pixels count as black
			c, _ := colorful.MakeColor(m.At(x, y))
			_, s, v := c.Hsv()
			brightness.add(v)
			saturation.add(s)
		}
	}
	brightness.setProps(img, "filter:brightness")
	saturation.setProps(img, "filter:saturation")
	return Signature, nil
}
