// Package exception carries the severity and reason of failures reported by
// the registries. Not-found conditions are never exceptions.
package exception

import (
	"fmt"

	"github.com/pkg/errors"
)

type Severity int

const (
	Warning Severity = iota + 1
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

const (
	NotAuthorized                = "NotAuthorized"
	UnableToLoadModule           = "UnableToLoadModule"
	ModuleSignatureMismatch      = "ModuleSignatureMismatch"
	ImageFilterSignatureMismatch = "ImageFilterSignatureMismatch"
	NoDecodeDelegate             = "NoDecodeDelegateForThisImageFormat"
	NoEncodeDelegate             = "NoEncodeDelegateForThisImageFormat"
	UnrecognizedImageFormat      = "UnrecognizedImageFormat"
	InvalidConfiguration         = "InvalidConfiguration"
	DynamicLoadingUnsupported    = "DynamicLoadingUnsupported"
	CoderWarning                 = "CoderWarning"
)

type Exception struct {
	Severity Severity
	Reason   string
	Subject  string
	Detail   string
}

func (e *Exception) Error() string {
	msg := fmt.Sprintf("%s: %s `%s'", e.Severity, e.Reason, e.Subject)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// New returns an exception with a stack attached.
func New(severity Severity, reason, subject string) error {
	return errors.WithStack(&Exception{Severity: severity, Reason: reason, Subject: subject})
}

func Newf(severity Severity, reason, subject, format string, args ...interface{}) error {
	return errors.WithStack(&Exception{
		Severity: severity,
		Reason:   reason,
		Subject:  subject,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// As unwraps err down to its *Exception, if any.
func As(err error) (*Exception, bool) {
	var e *Exception
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func ReasonOf(err error) string {
	if e, ok := As(err); ok {
		return e.Reason
	}
	return ""
}

func Is(err error, reason string) bool {
	return err != nil && ReasonOf(err) == reason
}

func IsNotAuthorized(err error) bool {
	return Is(err, NotAuthorized)
}

// IsWarning reports whether err carries an exception of Warning severity.
// The operation that returned it completed.
func IsWarning(err error) bool {
	e, ok := As(err)
	return ok && e.Severity == Warning
}
