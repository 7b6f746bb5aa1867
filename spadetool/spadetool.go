// Package spadetool implements the file-discovery tools spade offers
// to a code agent: glob, grep, and project file structure.
//
// The tools do not touch the filesystem directly. They compose
// find/grep command strings, run them through an execenv.Env, and do
// the filtering and parsing client-side. That keeps one code path for
// local shells, docker containers, and the simulated shell.
package spadetool

import (
	"strings"

	"spade.dev/shellquote"
)

// findCommand builds the find invocation listing files under root,
// excluding the given resolved ignore patterns. Output is piped
// through sort so repeated calls against an unchanged tree return
// identical results.
//
// Patterns with a trailing slash are directory rules and exclude the
// whole subtree; the rest exclude both a file of that name and any
// directory of that name.
func findCommand(root string, ignoreRules []string) string {
	parts := []string{"find", shellquote.Arg(root), "-type", "f"}
	for _, rule := range ignoreRules {
		if strings.HasSuffix(rule, "/") {
			parts = append(parts, "-not", "-path", shellquote.Arg("*/"+rule+"*"))
		} else {
			parts = append(parts,
				"-not", "-name", shellquote.Arg(rule),
				"-not", "-path", shellquote.Arg("*/"+rule+"/*"))
		}
	}
	parts = append(parts, "|", "sort")
	return strings.Join(parts, " ")
}

// parseFindOutput splits find output into paths, dropping blank lines
// and the leading ./ that find prints for the default root.
func parseFindOutput(stdout string) []string {
	var paths []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimPrefix(line, "./")
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}
