//go:build (linux || darwin || freebsd) && cgo

package module

import (
	"os"
	"path/filepath"
	"plugin"
	"strings"

	"github.com/mocukie/imagecore/internal/exception"
	"github.com/mocukie/imagecore/internal/format"
)

const dynamicLoading = true

// openPlugin looks for <name>.so exporting Register and Unregister.
func openPlugin(paths []string, name string) (Entry, error) {
	file := strings.ToLower(name) + ".so"
	for _, dir := range paths {
		p := filepath.Join(dir, file)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		plug, err := plugin.Open(p)
		if err != nil {
			return Entry{}, exception.Newf(exception.Error, exception.UnableToLoadModule, name, "%v", err)
		}
		reg, err := plug.Lookup("Register")
		if err != nil {
			return Entry{}, exception.Newf(exception.Error, exception.UnableToLoadModule, name, "%v", err)
		}
		regFn, ok := reg.(func(*format.Populator) uint32)
		if !ok {
			return Entry{}, exception.Newf(exception.Error, exception.ModuleSignatureMismatch, name,
				"Register has type %T", reg)
		}
		e := Entry{Name: name, Register: regFn}
		if unreg, err := plug.Lookup("Unregister"); err == nil {
			if fn, ok := unreg.(func(*format.Populator)); ok {
				e.Unregister = fn
			}
		}
		return e, nil
	}
	return Entry{}, exception.Newf(exception.Error, exception.UnableToLoadModule, name, "%s not found", file)
}
