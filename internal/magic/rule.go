package magic

import (
	"bytes"
)

// Rule identifies the format Name when Target appears at Offset.
type Rule struct {
	Name   string
	Offset int64
	Target []byte
	// SkipSpaces skips leading white space at Offset before comparing.
	SkipSpaces bool
	Stealth    bool
	Path       string
}

func (r *Rule) Len() int { return len(r.Target) }

// compare orders rules for matching: longer targets first, then by offset
// with rules in the first 10 bytes tried from the larger offset down.
// Rules it cannot tell apart compare equal.
func compare(a, b *Rule) int {
	if len(a.Target) != len(b.Target) {
		if len(a.Target) > len(b.Target) {
			return -1
		}
		return 1
	}
	if a.Offset != b.Offset {
		if a.Offset <= 10 && b.Offset <= 10 {
			if a.Offset > b.Offset {
				return -1
			}
			return 1
		}
		if a.Offset < b.Offset {
			return -1
		}
		return 1
	}
	return 0
}

// insertSorted puts r before the first element that sorts after it, so
// equal rules keep insertion order.
func insertSorted(list []*Rule, r *Rule) []*Rule {
	i := len(list)
	for j, e := range list {
		if compare(r, e) < 0 {
			i = j
			break
		}
	}
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = r
	return list
}

const spaces = " \t\n\v\f\r"

// CompareSignature reports whether b satisfies r. Short buffers and
// offsets past the end never match.
func CompareSignature(b []byte, r *Rule) bool {
	if r == nil || len(r.Target) == 0 || r.Offset < 0 || r.Offset >= int64(len(b)) {
		return false
	}
	p := b[r.Offset:]
	if r.SkipSpaces {
		p = bytes.TrimLeft(p, spaces)
	}
	if len(p) < len(r.Target) {
		return false
	}
	return bytes.Equal(p[:len(r.Target)], r.Target)
}
