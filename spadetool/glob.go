package spadetool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"spade.dev/execenv"
	"spade.dev/ignore"
	"spade.dev/pathglob"
	"spade.dev/safepath"
	"spade.dev/tool"
)

// GlobTool finds files matching a glob pattern by running find through
// the execution environment and filtering the output client-side.
type GlobTool struct {
	Env execenv.Env
}

// NewGlobTool wraps a GlobTool for use by an agent loop.
func NewGlobTool(env execenv.Env) *tool.Tool {
	g := &GlobTool{Env: env}
	return &tool.Tool{
		Name:        globName,
		Description: strings.TrimSpace(globDescription),
		InputSchema: tool.MustSchema(globInputSchema),
		Run:         g.run,
	}
}

const (
	globName        = "glob"
	globDescription = `
Finds files whose path matches a glob pattern, relative to the working directory.

Supports * (within one path segment), ** (across segments), **/ (zero or more whole segments), and ? (one character). Character classes and brace expansion are not supported.

Files ignored by the repository's .gitignore are excluded unless exclude_git_ignored is false.
`
	globInputSchema = `
{
  "type": "object",
  "required": ["search_pattern"],
  "properties": {
    "search_pattern": {
      "type": "string",
      "description": "Glob pattern to match file paths against, e.g. **/*.go"
    },
    "search_path": {
      "type": "string",
      "description": "Directory to search under, relative to the working directory; defaults to ."
    },
    "exclude_git_ignored": {
      "type": "boolean",
      "description": "Exclude paths matched by the nearest .gitignore; defaults to true"
    }
  }
}
`
)

type GlobInput struct {
	SearchPattern     string `json:"search_pattern"`
	SearchPath        string `json:"search_path,omitempty"`
	ExcludeGitIgnored *bool  `json:"exclude_git_ignored,omitempty"`
}

func (in *GlobInput) excludeGitIgnored() bool {
	return in.ExcludeGitIgnored == nil || *in.ExcludeGitIgnored
}

type GlobResult struct {
	SearchPattern     string   `json:"search_pattern"`
	SearchPath        string   `json:"search_path,omitempty"`
	ExcludeGitIgnored bool     `json:"exclude_git_ignored"`
	MatchingPaths     []string `json:"matching_paths"`
}

func (g *GlobTool) run(ctx context.Context, m json.RawMessage) (string, error) {
	var in GlobInput
	if err := json.Unmarshal(m, &in); err != nil {
		return "", fmt.Errorf("failed to unmarshal glob input: %w", err)
	}
	res, err := g.Execute(ctx, in)
	if err != nil {
		return "", err
	}
	if len(res.MatchingPaths) == 0 {
		return "no files matched", nil
	}
	return strings.Join(res.MatchingPaths, "\n"), nil
}

// Execute runs the glob search. The pattern must be relative; the
// optional search path must stay inside the working directory.
func (g *GlobTool) Execute(ctx context.Context, in GlobInput) (*GlobResult, error) {
	if strings.HasPrefix(in.SearchPattern, "/") {
		return nil, fmt.Errorf("search pattern %q must be relative, not absolute", in.SearchPattern)
	}
	if in.SearchPattern != "" && !pathglob.Validate(in.SearchPattern) {
		return nil, fmt.Errorf("malformed glob pattern %q", in.SearchPattern)
	}
	root := "."
	if in.SearchPath != "" {
		if err := safepath.CheckRelative(in.SearchPath); err != nil {
			return nil, err
		}
		root = in.SearchPath
	}

	result := &GlobResult{
		SearchPattern:     in.SearchPattern,
		SearchPath:        in.SearchPath,
		ExcludeGitIgnored: in.excludeGitIgnored(),
		MatchingPaths:     []string{},
	}

	var rules []string
	if in.excludeGitIgnored() {
		var err error
		rules, err = ignore.Patterns(ctx, g.Env)
		if err != nil {
			return nil, err
		}
		if slices.Contains(rules, ignore.Everything) {
			// The whole search root is gitignored.
			return result, nil
		}
	}

	res, err := g.Env.RunCommand(ctx, findCommand(root, rules))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%s failed with exit code %d: %s",
			res.Command, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	paths := parseFindOutput(res.Stdout)
	if in.SearchPattern != "" && in.SearchPattern != "**" {
		full := in.SearchPattern
		if root != "." {
			full = root + "/" + in.SearchPattern
		}
		re, err := pathglob.Compile(full)
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", in.SearchPattern, err)
		}
		paths = slices.DeleteFunc(paths, func(p string) bool {
			return !re.MatchString(p)
		})
	}
	result.MatchingPaths = append(result.MatchingPaths, paths...)
	slog.DebugContext(ctx, "glob", "pattern", in.SearchPattern, "path", root, "matches", len(paths))
	return result, nil
}
