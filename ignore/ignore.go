// Package ignore resolves .gitignore rules through an execution
// environment so that find-based file discovery can exclude ignored
// paths, even when the search root is a subdirectory of the repository
// root.
//
// Resolution is best effort: a missing or unreadable .gitignore
// yields no patterns and no error. Nothing is cached between calls;
// the environment's filesystem can change under us, so every call
// re-reads whatever .gitignore exists at that moment.
package ignore

import (
	"context"
	"path"
	"strings"

	"spade.dev/execenv"
	"spade.dev/pathglob"
	"spade.dev/shellquote"
)

// Everything is the sentinel pattern meaning the whole search root is
// ignored. Consumers seeing it should produce an empty file set.
const Everything = "."

// locateScript walks upward from the working directory to the nearest
// directory containing a .gitignore and prints it. Prints nothing if
// the walk reaches / without finding one.
const locateScript = `dir=$(pwd); while [ "$dir" != "/" ] && [ ! -f "$dir/.gitignore" ]; do dir=$(dirname "$dir"); done; if [ -f "$dir/.gitignore" ]; then printf '%s\n' "$dir"; fi`

// Patterns returns the .gitignore rules that apply under the
// environment's working directory, re-anchored so they can be used
// directly as find exclusions from that directory. Soft failures
// (no .gitignore anywhere, unreadable file) return an empty slice and
// no error; only execution-port failures are reported as errors.
func Patterns(ctx context.Context, env execenv.Env) ([]string, error) {
	pwdRes, err := env.RunCommand(ctx, "pwd")
	if err != nil {
		return nil, err
	}
	if pwdRes.ExitCode != 0 {
		return nil, nil
	}
	cwd := strings.TrimSpace(pwdRes.Stdout)

	locRes, err := env.RunCommand(ctx, locateScript)
	if err != nil {
		return nil, err
	}
	dir := strings.TrimSpace(locRes.Stdout)
	if locRes.ExitCode != 0 || dir == "" {
		return nil, nil
	}

	catRes, err := env.RunCommand(ctx, "cat "+shellquote.Arg(path.Join(dir, ".gitignore")))
	if err != nil {
		return nil, err
	}
	if catRes.ExitCode != 0 {
		return nil, nil
	}

	relPath := relativeTo(cwd, dir)

	var patterns []string
	seen := make(map[string]bool)
	for _, rule := range parseRules(catRes.Stdout) {
		p, ok := reanchor(rule, relPath)
		if !ok || p == "" {
			continue
		}
		if !seen[p] {
			seen[p] = true
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

// parseRules extracts the raw rules from .gitignore content: one per
// non-empty, non-comment line, trimmed.
func parseRules(content string) []string {
	var rules []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	return rules
}

// relativeTo returns cwd relative to ancestor dir, with / separators
// and no leading slash. Empty when they are the same directory.
func relativeTo(cwd, dir string) string {
	if cwd == dir {
		return ""
	}
	rel := strings.TrimPrefix(cwd, dir)
	return strings.TrimPrefix(rel, "/")
}

// reanchor adjusts a single rule for a working directory relPath below
// the .gitignore's own directory. It returns the effective pattern and
// whether the rule applies at all under that subtree.
//
// Unanchored rules (no directory component, or an explicit **/ prefix)
// apply at every depth and pass through unchanged. Anchored rules are
// matched segment-by-segment against relPath: a full match of the
// rule's segments means the rule covers the whole working directory
// (Everything); a partial match leaves a re-anchored suffix; a
// mismatch drops the rule. Rules with ** in the middle of an anchored
// pattern are not given any special treatment.
func reanchor(rule, relPath string) (string, bool) {
	if relPath == "" {
		return strings.TrimPrefix(rule, "/"), true
	}
	if after, found := strings.CutPrefix(rule, "**/"); found {
		return after, true
	}
	dirOnly := strings.HasSuffix(rule, "/")
	body := strings.TrimSuffix(rule, "/")
	if !strings.HasPrefix(rule, "/") && !strings.Contains(body, "/") {
		return rule, true
	}

	segs := strings.Split(strings.TrimPrefix(body, "/"), "/")
	rel := strings.Split(relPath, "/")
	n := min(len(segs), len(rel))
	for i := 0; i < n; i++ {
		if !pathglob.MatchSegment(segs[i], rel[i]) {
			return "", false
		}
	}
	if len(rel) >= len(segs) {
		// The rule excludes an ancestor of the working directory, so
		// everything below it is ignored.
		return Everything, true
	}
	suffix := strings.Join(segs[len(rel):], "/")
	if dirOnly && !strings.HasSuffix(suffix, "/") {
		suffix += "/"
	}
	return suffix, true
}
