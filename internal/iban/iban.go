// Package iban finds IBAN-shaped tokens in loosely formatted text and reduces
// them to a canonical whitespace-free form.
//
// Recognition runs in two passes. ScanPattern is deliberately loose: after the
// country code and check digits it accepts a window of up to 30 letters,
// digits and whitespace, which absorbs the line wraps and stray spaces PDF
// text extraction leaves inside account numbers. Every coarse match is then
// re-read with StrictPattern, which requires 1-4 character groups separated by
// at most one whitespace character and bounds the token length. Blacklist
// entries go through the same strict pass so both sides compare equal.
package iban

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// ScanPattern finds candidate tokens in free text.
	ScanPattern = `\b([A-Z]{2}\s?[0-9]{2}\s?[A-Z0-9\s]{1,30})\b`

	// StrictPattern validates and bounds a single token.
	StrictPattern = `\b([A-Z]{2}\s?[0-9]{2}\s?(?:[A-Z0-9]{1,4}\s?){1,6}[A-Z0-9]{1,4})\b`
)

var (
	scanRE       = regexp.MustCompile(ScanPattern)
	strictRE     = regexp.MustCompile(StrictPattern)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Candidate is a coarse match before normalization.
type Candidate struct {
	Raw    string
	Offset int
}

// Normalize returns the canonical form of the first IBAN-shaped token in raw,
// or "" when raw holds none. Only the first token is used; anything after it
// is dropped.
func Normalize(raw string) string {
	m := strictRE.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return whitespaceRE.ReplaceAllString(m[1], "")
}

// Candidates returns every non-overlapping coarse match in text, in order.
func Candidates(text string) []Candidate {
	locs := scanRE.FindAllStringSubmatchIndex(text, -1)
	out := make([]Candidate, 0, len(locs))
	for _, loc := range locs {
		out = append(out, Candidate{Raw: text[loc[2]:loc[3]], Offset: loc[2]})
	}
	return out
}

// Extract returns the set of normalized IBANs found in text.
func Extract(text string) Set {
	set := make(Set)
	for _, c := range Candidates(text) {
		set.Add(Normalize(c.Raw))
	}
	return set
}

// Set is an unordered collection of normalized IBANs.
type Set map[string]struct{}

// NewSet builds a set from values, skipping empty strings.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v unless it is empty.
func (s Set) Add(v string) {
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order. A nil or empty set yields an
// empty, non-nil slice.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// String renders the set sorted and comma separated, for logs.
func (s Set) String() string {
	return strings.Join(s.Sorted(), ",")
}
