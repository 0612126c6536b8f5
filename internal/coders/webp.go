//go:build !exclude_coder_webp

package coders

import (
	"github.com/mocukie/imagecore/internal/format"
	"golang.org/x/image/webp"
)

// LosslessProp set to "true" asks the WEBP encoder for lossless output.
const LosslessProp = "webp:lossless"

// webpEncoder is nil unless the libwebp encoder is compiled in.
var webpEncoder format.Encoder

func init() {
	add(entry("WEBP", webpFamily))
}

func webpFamily() family {
	info := format.AcquireInfo("WEBP", "WEBP", "WebP Image Format")
	info.Decoder = single(webp.Decode)
	info.Encoder = webpEncoder
	info.Sniffer = sniffer("RIFF????WEBP")
	info.MimeType = "image/webp"
	info.Set(format.Adjoin, false)
	if webpEncoder != nil {
		info.Version = "libwebp"
	}
	return family{info}
}
