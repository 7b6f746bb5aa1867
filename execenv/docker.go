package execenv

import (
	"context"
	"fmt"
	"strings"

	"spade.dev/safepath"
	"spade.dev/shellquote"
)

// Docker runs commands inside an already-running container by
// composing a docker exec command line and handing it to a host
// environment. Container lifecycle is someone else's problem; if the
// container is gone, commands fail with docker's own exit code and
// stderr.
type Docker struct {
	// Container is the name or ID of the target container.
	Container string
	// Dir, if set, is the working directory inside the container.
	Dir string
	// Host executes the composed docker command. Defaults to Local.
	// Tests substitute a Mock here to inspect the composition.
	Host Env
}

var _ Env = (*Docker)(nil)

func (d *Docker) host() Env {
	if d.Host != nil {
		return d.Host
	}
	return &Local{}
}

// hostCommand builds the single host-side shell line that runs command
// remotely. The remote side receives the command as the one argument
// of sh -c "...", so it is double-quote escaped, not single-quote
// escaped; the docker arguments themselves are ordinary tokens.
func (d *Docker) hostCommand(command string) string {
	var b strings.Builder
	b.WriteString("docker exec")
	if d.Dir != "" {
		b.WriteString(" -w " + shellquote.Arg(d.Dir))
	}
	b.WriteString(" " + shellquote.Arg(d.Container))
	b.WriteString(" sh -c " + shellquote.Command(command))
	return b.String()
}

func (d *Docker) RunCommand(ctx context.Context, command string) (*Result, error) {
	res, err := d.host().RunCommand(ctx, d.hostCommand(command))
	if err != nil {
		return nil, err
	}
	// Report the logical command, not the docker wrapping; error
	// messages built from Result.Command should name what the tool
	// asked for.
	return &Result{
		Command:  command,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}, nil
}

func (d *Docker) ReadFile(ctx context.Context, path string) (string, error) {
	if err := safepath.CheckRelative(path); err != nil {
		return "", err
	}
	res, err := d.RunCommand(ctx, "cat "+shellquote.Arg(path))
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("read %s: %s", path, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}
