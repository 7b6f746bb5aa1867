// Package shellquote turns arbitrary strings into tokens that survive
// a POSIX shell unscathed.
//
// The tools in spadetool compose find/grep pipelines as single command
// strings and hand them to an execution environment's sh -c. Every
// user-influenced value that ends up in such a string goes through
// this package first.
package shellquote

import "strings"

// Arg quotes s so that, placed unquoted on a POSIX sh command line, it
// is received as exactly one argument with the original bytes.
//
// The empty string becomes ''. Everything else is wrapped in single
// quotes, with embedded single quotes spelled '\'' (close the quoted
// region, emit a literal quote, reopen). There is deliberately no
// "looks safe, skip quoting" fast path: whitespace-only strings and
// strings with pre-balanced quotes get the same treatment.
func Arg(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Command quotes an entire composed command so it can be passed as the
// single argument of a remotely executed sh -c "...". Used by
// executors that themselves build one host-side command line, such as
// docker exec <container> sh -c "<command>".
//
// Backslashes are escaped before double quotes; the other order would
// double-escape the backslashes introduced for the quotes.
func Command(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
