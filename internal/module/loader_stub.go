//go:build !((linux || darwin || freebsd) && cgo)

package module

import (
	"github.com/mocukie/imagecore/internal/exception"
)

const dynamicLoading = false

func openPlugin(paths []string, name string) (Entry, error) {
	return Entry{}, exception.New(exception.Error, exception.DynamicLoadingUnsupported, name)
}
