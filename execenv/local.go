package execenv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"spade.dev/safepath"
)

// Local runs commands as child processes of this one, via sh -c.
type Local struct {
	// Dir is the working directory for commands and the root for
	// ReadFile. Empty means the process working directory.
	Dir string
}

var _ Env = (*Local)(nil)

func (l *Local) RunCommand(ctx context.Context, command string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = l.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %q: %w", command, err)
		}
		exitCode = exitErr.ExitCode()
	}
	slog.DebugContext(ctx, "local command", "command", command, "exit", exitCode)
	return &Result{
		Command:  command,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

func (l *Local) ReadFile(ctx context.Context, path string) (string, error) {
	if err := safepath.CheckRelative(path); err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
