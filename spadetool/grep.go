package spadetool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"spade.dev/execenv"
	"spade.dev/shellquote"
	"spade.dev/tool"
)

// grepBatchSize caps the number of file arguments per grep invocation,
// to stay clear of command-line length limits. Known limitation: the
// path:line:content parsing below assumes filenames do not themselves
// look like "name:123:" prefixes.
const grepBatchSize = 50

// GrepTool searches file contents with grep -E, delegating file
// discovery to GlobTool and batching the discovered files across
// multiple grep invocations.
type GrepTool struct {
	Env execenv.Env
}

// NewGrepTool wraps a GrepTool for use by an agent loop.
func NewGrepTool(env execenv.Env) *tool.Tool {
	g := &GrepTool{Env: env}
	return &tool.Tool{
		Name:        grepName,
		Description: strings.TrimSpace(grepDescription),
		InputSchema: tool.MustSchema(grepInputSchema),
		Run:         g.run,
	}
}

const (
	grepName        = "grep"
	grepDescription = `
Searches file contents for an extended regular expression and returns matching lines with 1-based line numbers.

Restrict the searched files with search_pattern (a glob, defaults to **/*) and search_path. Set context_lines to include that many lines before and after each match.
`
	grepInputSchema = `
{
  "type": "object",
  "required": ["regexp_pattern"],
  "properties": {
    "regexp_pattern": {
      "type": "string",
      "description": "Extended (ERE) regular expression to search for"
    },
    "search_pattern": {
      "type": "string",
      "description": "Glob restricting which files are searched; defaults to **/*"
    },
    "search_path": {
      "type": "string",
      "description": "Directory to search under, relative to the working directory"
    },
    "context_lines": {
      "type": "integer",
      "description": "Number of context lines to include before and after each match"
    }
  }
}
`
)

type GrepInput struct {
	RegexpPattern string `json:"regexp_pattern"`
	SearchPattern string `json:"search_pattern,omitempty"`
	SearchPath    string `json:"search_path,omitempty"`
	ContextLines  int    `json:"context_lines,omitempty"`
}

// GrepMatch is one matching line. Before and After are populated only
// when context lines were requested and the file could be read.
type GrepMatch struct {
	Path       string   `json:"path"`
	LineNumber int      `json:"line_number"`
	Line       string   `json:"line"`
	Before     []string `json:"before,omitempty"`
	After      []string `json:"after,omitempty"`
}

type GrepResult struct {
	RegexpPattern string      `json:"regexp_pattern"`
	SearchPattern string      `json:"search_pattern,omitempty"`
	SearchPath    string      `json:"search_path,omitempty"`
	ContextLines  int         `json:"context_lines,omitempty"`
	Matches       []GrepMatch `json:"matches"`

	// Diagnostics collects soft failures that did not abort the
	// search: grep output lines that could not be parsed and files
	// whose content could not be read for context. Callers may log or
	// ignore them.
	Diagnostics []string `json:"-"`
}

func (g *GrepTool) run(ctx context.Context, m json.RawMessage) (string, error) {
	var in GrepInput
	if err := json.Unmarshal(m, &in); err != nil {
		return "", fmt.Errorf("failed to unmarshal grep input: %w", err)
	}
	res, err := g.Execute(ctx, in)
	if err != nil {
		return "", err
	}
	for _, d := range res.Diagnostics {
		slog.DebugContext(ctx, "grep diagnostic", "detail", d)
	}
	if len(res.Matches) == 0 {
		return "no matches", nil
	}
	return formatGrepMatches(res.Matches), nil
}

// Execute runs the search. grep exiting 1 means a batch had no
// matches and is not an error; any higher exit status aborts the call
// with the failing command in the error.
func (g *GrepTool) Execute(ctx context.Context, in GrepInput) (*GrepResult, error) {
	if in.RegexpPattern == "" {
		return nil, fmt.Errorf("regexp pattern must not be empty")
	}
	if _, err := regexp.Compile(in.RegexpPattern); err != nil {
		return nil, fmt.Errorf("invalid regexp pattern %q: %w", in.RegexpPattern, err)
	}

	searchPattern := in.SearchPattern
	if searchPattern == "" {
		searchPattern = "**/*"
	}
	discovery, err := (&GlobTool{Env: g.Env}).Execute(ctx, GlobInput{
		SearchPattern: searchPattern,
		SearchPath:    in.SearchPath,
	})
	if err != nil {
		return nil, err
	}

	result := &GrepResult{
		RegexpPattern: in.RegexpPattern,
		SearchPattern: in.SearchPattern,
		SearchPath:    in.SearchPath,
		ContextLines:  in.ContextLines,
		Matches:       []GrepMatch{},
	}
	files := discovery.MatchingPaths
	if len(files) == 0 {
		return result, nil
	}

	for start := 0; start < len(files); start += grepBatchSize {
		batch := files[start:min(start+grepBatchSize, len(files))]
		res, err := g.Env.RunCommand(ctx, grepCommand(in.RegexpPattern, batch))
		if err != nil {
			return nil, err
		}
		if res.ExitCode > 1 {
			return nil, fmt.Errorf("%s failed with exit code %d: %s",
				res.Command, res.ExitCode, strings.TrimSpace(res.Stderr))
		}
		for _, line := range strings.Split(res.Stdout, "\n") {
			if line == "" {
				continue
			}
			m, ok := parseGrepLine(line)
			if !ok {
				result.Diagnostics = append(result.Diagnostics, "unparseable grep output line: "+line)
				continue
			}
			result.Matches = append(result.Matches, m)
		}
	}

	if in.ContextLines > 0 {
		g.addContext(ctx, result, in.ContextLines)
	}
	return result, nil
}

func grepCommand(pattern string, files []string) string {
	parts := []string{"grep", "-n", "-H", "-I", "-E", shellquote.Arg(pattern)}
	for _, f := range files {
		parts = append(parts, shellquote.Arg(f))
	}
	return strings.Join(parts, " ")
}

// parseGrepLine splits one line of grep -n -H output. Only the first
// two colons delimit; the content may contain any number of colons.
// Lines whose middle field is not a positive integer are rejected.
func parseGrepLine(line string) (GrepMatch, bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return GrepMatch{}, false
	}
	rest := line[i+1:]
	j := strings.Index(rest, ":")
	if j < 0 {
		return GrepMatch{}, false
	}
	n, err := strconv.Atoi(rest[:j])
	if err != nil || n <= 0 {
		return GrepMatch{}, false
	}
	return GrepMatch{Path: line[:i], LineNumber: n, Line: rest[j+1:]}, true
}

// addContext reads each matched file once and attaches the requested
// context lines to its matches. A file that cannot be read loses its
// context but keeps its matches.
func (g *GrepTool) addContext(ctx context.Context, result *GrepResult, contextLines int) {
	byPath := make(map[string][]int)
	var order []string
	for i, m := range result.Matches {
		if _, seen := byPath[m.Path]; !seen {
			order = append(order, m.Path)
		}
		byPath[m.Path] = append(byPath[m.Path], i)
	}

	for _, path := range order {
		content, err := g.Env.ReadFile(ctx, path)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics,
				fmt.Sprintf("no context for %s: %v", path, err))
			continue
		}
		lines := splitLines(content)
		for _, i := range byPath[path] {
			m := &result.Matches[i]
			idx := m.LineNumber - 1
			if idx < 0 || idx >= len(lines) {
				continue
			}
			m.Before = lines[max(0, idx-contextLines):idx]
			m.After = lines[idx+1 : min(len(lines), idx+1+contextLines)]
		}
	}
}

// splitLines splits file content into lines without producing a
// phantom empty line after a trailing newline.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func formatGrepMatches(matches []GrepMatch) string {
	var b strings.Builder
	for _, m := range matches {
		for i, line := range m.Before {
			fmt.Fprintf(&b, "%s-%d- %s\n", m.Path, m.LineNumber-len(m.Before)+i, line)
		}
		fmt.Fprintf(&b, "%s:%d: %s\n", m.Path, m.LineNumber, m.Line)
		for i, line := range m.After {
			fmt.Fprintf(&b, "%s-%d- %s\n", m.Path, m.LineNumber+1+i, line)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
