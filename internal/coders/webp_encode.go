//go:build webp && cgo && !exclude_coder_webp

package coders

import (
	"bytes"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/format"
	"github.com/mocukie/imagecore/pkg/imagex"
	"github.com/mocukie/webp-go/webp"
	"github.com/pkg/errors"
)

var webpDecodeOpts = webp.NewDecOptions()

func init() {
	webpDecodeOpts.ImageType = webp.TypeNRGBA
	webpEncoder = format.EncoderFunc(encodeWebP)
}

func webpOptions(img *imagex.Image) (*webp.EncodeOptions, error) {
	lossless := strings.EqualFold(img.Props[LosslessProp], "true")
	q := float32(quality(img, int(webp.LossyDefaultQuality)))
	if lossless {
		q = webp.LosslessDefaultQuality
	}
	opts, err := webp.NewEncOptionsByPreset(webp.PresetDefault, q)
	if err != nil {
		return nil, err
	}
	opts.Lossless = lossless
	return opts, opts.Validate()
}

// encodeWebP writes the first frame. Lossless output is decoded again and
// compared; a mismatch or a profile that cannot be attached is returned as
// a warning after the data is written.
func encodeWebP(w io.Writer, img *imagex.Image) error {
	m, err := first(img)
	if err != nil {
		return err
	}
	opts, err := webpOptions(img)
	if err != nil {
		return errors.Wrap(err, "[WebP] bad encode options")
	}

	data, err := webp.EncodeSlice(m, opts)
	if err != nil {
		return errors.Wrap(err, "[WebP] encode failed")
	}

	var warnings *multierror.Error
	if opts.Lossless {
		back, e := webp.DecodeSlice(data, webpDecodeOpts)
		if e != nil {
			warnings = multierror.Append(warnings, errors.Wrap(e, "[WebP] decode failed when compare lossless image"))
		} else if !imagex.IsImageEqual(m, back) {
			warnings = multierror.Append(warnings, errors.New("[WebP] lossless options on, but image not equal"))
		}
	}

	for _, cc := range [...]webp.FourCC{webp.ICCP, webp.EXIF, webp.XMP} {
		chunk := img.Meta.Get(strings.TrimRight(string(cc[:]), " "))
		if chunk == nil {
			continue
		}
		tmp, e := webp.SetMetadata(data, cc, chunk)
		if e != nil {
			warnings = multierror.Append(warnings, errors.Wrapf(e, "[WebP] set %s failed", cc))
			continue
		}
		data = tmp
	}

	if _, err = io.Copy(w, bytes.NewReader(data)); err != nil {
		return errors.Wrap(err, "[WebP] write to output failed")
	}
	if warnings.ErrorOrNil() != nil {
		return exception.Newf(exception.Warning, exception.CoderWarning, "WEBP", "%v", warnings)
	}
	return nil
}
