// Package substitute implements {{PARAMETER}} placeholder replacement in
// template content.
//
// A valid token is exactly two opening braces, one or more ASCII uppercase
// letters or underscores, and exactly two closing braces. Anything else
// (single braces, extra braces, lowercase names, embedded spaces) is left
// verbatim. Substitution is a single linear pass over the content; it never
// rescans replaced output.
package substitute

import (
	"sort"
	"strings"
)

// Substitutor replaces parameter tokens in template content and records
// which parameter names were actually used.
type Substitutor struct {
	params map[string]string
	used   map[string]struct{}
}

// New creates a Substitutor for the given parameter mapping. A nil map is
// treated as empty. Empty values substitute as the empty string.
func New(params map[string]string) *Substitutor {
	if params == nil {
		params = map[string]string{}
	}
	return &Substitutor{
		params: params,
		used:   make(map[string]struct{}),
	}
}

// Substitute returns content with every valid token whose name is a key in
// the mapping replaced by that key's value. Tokens with unknown names are
// left untouched. The operation is pure apart from recording used names.
func (s *Substitutor) Substitute(content string) string {
	// Fast path: no brace, no token.
	if !strings.Contains(content, "{{") {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))

	i := 0
	for i < len(content) {
		c := content[i]
		if c != '{' {
			// Copy the run up to the next candidate.
			next := strings.IndexByte(content[i:], '{')
			if next < 0 {
				b.WriteString(content[i:])
				break
			}
			b.WriteString(content[i : i+next])
			i += next
			continue
		}

		open := runLen(content, i, '{')
		nameStart := i + open
		nameEnd := nameStart
		for nameEnd < len(content) && isNameByte(content[nameEnd]) {
			nameEnd++
		}
		name := content[nameStart:nameEnd]

		if open != 2 || name == "" || nameEnd >= len(content) || content[nameEnd] != '}' {
			// Not a token: emit the braces and name verbatim, then keep
			// scanning from whatever broke the match.
			b.WriteString(content[i:nameEnd])
			i = nameEnd
			continue
		}

		closing := runLen(content, nameEnd, '}')
		if closing != 2 {
			// Extra or missing closing braces: the whole run is not a token.
			b.WriteString(content[i : nameEnd+closing])
			i = nameEnd + closing
			continue
		}

		if value, ok := s.params[name]; ok {
			b.WriteString(value)
			s.used[name] = struct{}{}
		} else {
			b.WriteString(content[i : nameEnd+closing])
		}
		i = nameEnd + closing
	}

	return b.String()
}

// SubstitutedParameters returns the sorted set of parameter names that were
// actually replaced so far. Repeated occurrences count once.
func (s *Substitutor) SubstitutedParameters() []string {
	names := make([]string, 0, len(s.used))
	for name := range s.used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runLen returns the length of the run of byte c starting at i.
func runLen(content string, i int, c byte) int {
	n := 0
	for i+n < len(content) && content[i+n] == c {
		n++
	}
	return n
}

// isNameByte reports whether b may appear in a parameter name.
func isNameByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || b == '_'
}
