// Package policy decides whether a coder, module, filter or path may be used.
// Without rules everything is authorized.
package policy

import (
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/mocukie/imagecore/internal/config"
	"github.com/mocukie/imagecore/internal/exception"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Domain string

const (
	Coder  Domain = "coder"
	Module Domain = "module"
	Filter Domain = "filter"
	Path   Domain = "path"
)

type Rights uint8

const (
	None    Rights = 0
	Read    Rights = 1 << 0
	Write   Rights = 1 << 1
	Execute Rights = 1 << 2
	All            = Read | Write | Execute
)

func (r Rights) String() string {
	if r == None {
		return "none"
	}
	var parts []string
	for _, p := range []struct {
		bit  Rights
		name string
	}{{Read, "read"}, {Write, "write"}, {Execute, "execute"}} {
		if r&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, " | ")
}

// ParseRights accepts names separated by '|', ',' or spaces: "read | write".
func ParseRights(s string) (Rights, error) {
	var r Rights
	fields := strings.FieldsFunc(strings.ToLower(s), func(c rune) bool {
		return c == '|' || c == ',' || c == ' ' || c == '\t'
	})
	for _, f := range fields {
		switch f {
		case "none":
		case "read":
			r |= Read
		case "write":
			r |= Write
		case "execute":
			r |= Execute
		case "all":
			r |= All
		default:
			return None, errors.Errorf("unknown policy right %q", f)
		}
	}
	return r, nil
}

type Rule struct {
	Domain  Domain
	Rights  Rights
	Pattern string
	Source  string
}

func (r Rule) match(domain Domain, name string) bool {
	if r.Domain != domain {
		return false
	}
	ok, err := path.Match(strings.ToUpper(r.Pattern), strings.ToUpper(name))
	return err == nil && ok
}

type Set struct {
	mu    sync.RWMutex
	rules []Rule
}

func New(rules ...Rule) *Set {
	return &Set{rules: rules}
}

// FromConfig builds a set from every loaded policy.yaml, in search order.
func FromConfig(files []config.PolicyFile) (*Set, error) {
	s := New()
	for _, f := range files {
		for _, e := range f.Policies {
			rights, err := ParseRights(e.Rights)
			if err != nil {
				return nil, exception.Newf(exception.Error, exception.InvalidConfiguration, f.Path, "%v", err)
			}
			if _, err = path.Match(e.Pattern, ""); err != nil {
				return nil, exception.Newf(exception.Error, exception.InvalidConfiguration, f.Path,
					"pattern %q: %v", e.Pattern, err)
			}
			s.Add(Rule{Domain: Domain(strings.ToLower(e.Domain)), Rights: rights, Pattern: e.Pattern, Source: f.Path})
		}
	}
	return s, nil
}

func (s *Set) Add(r Rule) {
	s.mu.Lock()
	s.rules = append(s.rules, r)
	s.mu.Unlock()
}

// IsAuthorized reports whether name may be used with every requested right.
// For each requested right the last matching rule decides. A nil set
// authorizes everything.
func (s *Set) IsAuthorized(domain Domain, rights Rights, name string) bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	granted := rights
	for _, r := range s.rules {
		if !r.match(domain, name) {
			continue
		}
		for _, bit := range []Rights{Read, Write, Execute} {
			if rights&bit == 0 {
				continue
			}
			if r.Rights&bit != 0 {
				granted |= bit
			} else {
				granted &^= bit
			}
		}
	}
	return granted == rights
}

// Authorize is IsAuthorized reported as a NotAuthorized exception.
func (s *Set) Authorize(domain Domain, rights Rights, name string) error {
	if s.IsAuthorized(domain, rights, name) {
		return nil
	}
	return exception.Newf(exception.Error, exception.NotAuthorized, name, "%s %s", domain, rights)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

func (s *Set) ListTo(w io.Writer) error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	source := "\x00"
	for _, r := range s.rules {
		if r.Source != source {
			source = r.Source
			p := source
			if p == "" {
				p = "[built-in]"
			}
			if _, err := fmt.Fprintf(w, "\nPath: %s\n", p); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  Policy: %s\n    rights: %s\n    pattern: %s\n",
			cases.Title(language.Und).String(string(r.Domain)), r.Rights, r.Pattern); err != nil {
			return err
		}
	}
	return nil
}
