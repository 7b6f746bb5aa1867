package execenv

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"spade.dev/safepath"
)

// Shell is an in-process POSIX shell backed by mvdan.cc/sh's
// interpreter. Builtins, pipelines, and substitutions run without
// forking a real shell, which makes it usable on hosts without /bin/sh
// and keeps tests hermetic. External commands in a pipeline (find,
// grep) still exec normally.
type Shell struct {
	// Dir is the working directory; empty means the process working
	// directory.
	Dir string
	// Vars are extra KEY=VALUE pairs layered over the process
	// environment.
	Vars []string
}

var _ Env = (*Shell)(nil)

func (s *Shell) RunCommand(ctx context.Context, command string) (*Result, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		// Mirror sh: syntax errors are exit status 2 with the message
		// on stderr, not a Go-level failure.
		return &Result{Command: command, ExitCode: 2, Stderr: err.Error()}, nil
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.StdIO(nil, &stdout, &stderr),
		interp.Dir(s.Dir),
	}
	if len(s.Vars) > 0 {
		opts = append(opts, interp.Env(expand.ListEnviron(append(os.Environ(), s.Vars...)...)))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("shell setup: %w", err)
	}

	exitCode := 0
	if err := runner.Run(ctx, file); err != nil {
		status, ok := interp.IsExitStatus(err)
		if !ok {
			return nil, fmt.Errorf("run %q: %w", command, err)
		}
		exitCode = int(status)
	}
	slog.DebugContext(ctx, "shell command", "command", command, "exit", exitCode)
	return &Result{
		Command:  command,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

func (s *Shell) ReadFile(ctx context.Context, path string) (string, error) {
	if err := safepath.CheckRelative(path); err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
