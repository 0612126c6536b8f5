//go:build tesseract && cgo

package filter

import (
	"bytes"
	"image/png"
	"strconv"

	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
)

func init() {
	add(Entry{
		Name:        "ocr",
		Description: "recognized text of the first frame as filter:ocr:* properties",
		Func:        ocr,
	})
}

// ocr takes an optional tesseract language list, "eng" by default.
func ocr(img *imagex.Image, args []string) (uint32, error) {
	m := img.First()
	if m == nil {
		return 0, errors.New("image has no frames")
	}
	lang := "eng"
	if len(args) > 0 && args[0] != "" {
		lang = args[0]
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return 0, errors.Wrap(err, "encode frame for ocr")
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return 0, errors.Wrap(err, "failed to set image")
	}
	if err := client.SetLanguage(lang); err != nil {
		return 0, errors.Wrap(err, "failed to set language")
	}
	text, err := client.Text()
	if err != nil {
		return 0, errors.Wrap(err, "OCR failed")
	}

	words := 0
	confidence := 0.0
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil {
		for _, box := range boxes {
			words++
			confidence += box.Confidence
		}
	}
	if words > 0 {
		confidence /= float64(words) * 100
	}

	img.SetProp("filter:ocr:text", text)
	img.SetProp("filter:ocr:words", strconv.Itoa(words))
	img.SetProp("filter:ocr:confidence", fmtFloat(confidence))
	return Signature, nil
}
