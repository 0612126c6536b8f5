// Package module registers format modules with a format registry.
//
// Modules are compiled in (a Table built from Entry values) or, where the
// platform supports it, opened from shared objects found on the module path.
package module

import (
	"github.com/mocukie/imagecore/internal/format"
)

// Signature must be returned by every RegisterFunc.
const Signature uint32 = 0xabacadab

// RegisterFunc adds a module's formats to reg and returns Signature.
type RegisterFunc func(reg *format.Populator) uint32

type UnregisterFunc func(reg *format.Populator)

type Entry struct {
	Name       string
	Register   RegisterFunc
	Unregister UnregisterFunc
}

// Status describes one table entry for listings.
type Status struct {
	Name       string
	Registered bool
	Dynamic    bool
	Formats    []string
}
