package execenv

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a scripted Env for tests. Commands and file contents are
// registered up front; RunCommand looks commands up verbatim and
// records every call so tests can assert on what was executed.
type Mock struct {
	mu    sync.Mutex
	cmds  map[string]Result
	files map[string]string
	calls []string

	// Fallback, if set, handles commands that were not scripted.
	Fallback func(command string) (*Result, error)
}

var _ Env = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{
		cmds:  make(map[string]Result),
		files: make(map[string]string),
	}
}

// Handle registers the result returned for an exact command string.
func (m *Mock) Handle(command string, res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmds[command] = res
}

// HandleOutput registers a successful command producing stdout.
func (m *Mock) HandleOutput(command, stdout string) {
	m.Handle(command, Result{Stdout: stdout})
}

// AddFile registers content served by ReadFile.
func (m *Mock) AddFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// Calls returns a copy of the commands executed so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) RunCommand(_ context.Context, command string) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, command)
	res, ok := m.cmds[command]
	m.mu.Unlock()
	if !ok {
		if m.Fallback != nil {
			return m.Fallback(command)
		}
		// Unscripted commands behave like a missing binary rather
		// than failing the test outright: soft-failure paths (ignore
		// resolution) are exercised this way.
		return &Result{Command: command, ExitCode: 127, Stderr: "mock: command not scripted: " + command}, nil
	}
	res.Command = command
	return &res, nil
}

func (m *Mock) ReadFile(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	content, ok := m.files[path]
	m.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("read %s: file not found", path)
	}
	return content, nil
}
