// Package pathglob compiles the restricted glob dialect used by
// spade's file tools into regular expressions over forward-slash
// paths.
//
// The dialect is deliberately small: ? matches one non-separator
// character, * matches within a path segment, **/ matches zero or more
// whole segments, and a bare ** crosses separators freely. There are
// no character classes, no brace expansion, and no negation.
package pathglob

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Compile translates pattern into an anchored regular expression.
// Matching is always against /-separated paths relative to the search
// root; callers normalize separators before testing.
func Compile(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '?':
			b.WriteString("[^/]")
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// **/ matches zero or more whole segments,
					// trailing slash included, so **/foo matches both
					// foo and a/b/foo.
					b.WriteString(`(?:.*/)?`)
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
			} else {
				b.WriteString("[^/]*")
			}
		case '.', '(', ')', '[', ']', '{', '}', '+', '^', '$', '|', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Validate reports whether pattern is well formed glob syntax. It is
// stricter than Compile, which happily compiles anything; tool inputs
// are validated up front so the model gets a useful error instead of
// an empty result set.
func Validate(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}

// MatchSegment matches a single path segment against a single-segment
// glob pattern. A lone * matches any segment; patterns without glob
// characters compare literally; mixed patterns such as env-* go
// through Compile. Used by the gitignore resolver, which re-anchors
// rules one segment at a time.
func MatchSegment(pattern, segment string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return pattern == segment
	}
	re, err := Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(segment)
}
