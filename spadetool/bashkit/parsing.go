package bashkit

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ExternalCommands parses a shell command and returns the external
// command names it invokes, deduplicated, in order of appearance.
//
// Shell builtins, variable assignments, and path-qualified executables
// (./script.sh, /usr/bin/tool) are filtered out: the interesting
// remainder is the set of binaries the execution environment must
// provide for the command to work.
func ExternalCommands(command string) ([]string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}

	var commands []string
	seen := make(map[string]bool)

	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok {
			return true
		}
		name := commandName(call)
		if name == "" {
			return true
		}
		if strings.Contains(name, "=") {
			// variable assignment
			return true
		}
		if strings.Contains(name, "/") {
			return true
		}
		if interp.IsBuiltin(name) {
			return true
		}
		if !seen[name] {
			seen[name] = true
			commands = append(commands, name)
		}
		return true
	})

	return commands, nil
}
