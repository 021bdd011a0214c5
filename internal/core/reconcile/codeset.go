package reconcile

import (
	"sort"
	"strings"
)

// CodeSet is a set of association codes (payment type or currency codes).
type CodeSet map[string]struct{}

// NewCodeSet builds a set from codes, trimming whitespace and dropping empties.
func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		s[c] = struct{}{}
	}
	return s
}

func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

func (s CodeSet) Len() int { return len(s) }

// Difference returns s − other.
func (s CodeSet) Difference(other CodeSet) CodeSet {
	out := make(CodeSet)
	for c := range s {
		if !other.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Sorted returns the codes in lexical order.
func (s CodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
