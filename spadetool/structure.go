package spadetool

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"spade.dev/execenv"
	"spade.dev/ignore"
	"spade.dev/safepath"
	"spade.dev/tool"
)

// StructureTool lists every file under a directory. It is the glob
// tool minus the pattern filter, with the output rendered as a tree
// for the model.
type StructureTool struct {
	Env execenv.Env
}

// NewStructureTool wraps a StructureTool for use by an agent loop.
func NewStructureTool(env execenv.Env) *tool.Tool {
	s := &StructureTool{Env: env}
	return &tool.Tool{
		Name:        structureName,
		Description: strings.TrimSpace(structureDescription),
		InputSchema: tool.MustSchema(structureInputSchema),
		Run:         s.run,
	}
}

const (
	structureName        = "get_project_file_structure"
	structureDescription = `
Returns the project's file structure as an indented tree. Use this to orient yourself in an unfamiliar repository before reaching for glob or grep.

Files ignored by the repository's .gitignore are excluded unless exclude_git_ignored is false.
`
	structureInputSchema = `
{
  "type": "object",
  "properties": {
    "path": {
      "type": "string",
      "description": "Directory to list, relative to the working directory; defaults to ."
    },
    "exclude_git_ignored": {
      "type": "boolean",
      "description": "Exclude paths matched by the nearest .gitignore; defaults to true"
    }
  }
}
`
)

type StructureInput struct {
	Path              string `json:"path,omitempty"`
	ExcludeGitIgnored *bool  `json:"exclude_git_ignored,omitempty"`
}

func (in *StructureInput) excludeGitIgnored() bool {
	return in.ExcludeGitIgnored == nil || *in.ExcludeGitIgnored
}

type StructureResult struct {
	Path              string   `json:"path"`
	ExcludeGitIgnored bool     `json:"exclude_git_ignored"`
	Files             []string `json:"files"`
}

func (s *StructureTool) run(ctx context.Context, m json.RawMessage) (string, error) {
	var in StructureInput
	if err := json.Unmarshal(m, &in); err != nil {
		return "", fmt.Errorf("failed to unmarshal file structure input: %w", err)
	}
	res, err := s.Execute(ctx, in)
	if err != nil {
		return "", err
	}
	if len(res.Files) == 0 {
		return "no files found", nil
	}
	return BuildTreeFromFiles(res.Files), nil
}

// Execute lists the files. Failures of find are fatal and carry the
// exact command and its stderr.
func (s *StructureTool) Execute(ctx context.Context, in StructureInput) (*StructureResult, error) {
	root := "."
	if in.Path != "" && in.Path != "." {
		if err := safepath.CheckRelative(in.Path); err != nil {
			return nil, err
		}
		root = in.Path
	}

	result := &StructureResult{
		Path:              root,
		ExcludeGitIgnored: in.excludeGitIgnored(),
		Files:             []string{},
	}

	var rules []string
	if in.excludeGitIgnored() {
		var err error
		rules, err = ignore.Patterns(ctx, s.Env)
		if err != nil {
			return nil, err
		}
		if slices.Contains(rules, ignore.Everything) {
			return result, nil
		}
	}

	res, err := s.Env.RunCommand(ctx, findCommand(root, rules))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%s failed with exit code %d: %s",
			res.Command, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	result.Files = append(result.Files, parseFindOutput(res.Stdout)...)
	return result, nil
}
