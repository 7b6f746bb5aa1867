// Package execenv defines the command-execution port that spade's
// tools run against, together with the standard adapters: a local
// process shell, docker exec into a running container, an in-process
// simulated shell, and an in-memory mock for tests.
//
// Tools only ever see the Env interface. Everything they do (locating
// a .gitignore, listing files with find, searching with grep) is a
// shell command string handed to RunCommand, plus the occasional
// ReadFile for context lines. Cancellation, timeouts, and retries are
// the adapter's business, not the caller's.
package execenv

import "context"

// Result is the outcome of one command execution. It is never mutated
// after RunCommand returns it.
type Result struct {
	// Command is the exact command string that was executed.
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Env is the capability the tools depend on.
//
// RunCommand must give the command sh -c semantics: pipes,
// redirection, && and ||, and command substitution all work, because
// the composed pipelines use them. A non-zero exit status is reported
// in Result, not as an error; the error return is for failures to run
// the command at all.
//
// ReadFile returns the contents of a /-separated path relative to the
// environment's working directory, and fails if the file does not
// exist.
type Env interface {
	RunCommand(ctx context.Context, command string) (*Result, error)
	ReadFile(ctx context.Context, path string) (string, error)
}
