// Command spade exposes the file-discovery tools from the command
// line: glob and grep over any execution environment, the project
// file structure, and a checked run of an arbitrary shell command.
//
// The same tool implementations back an agent loop; this binary is
// the way to poke at them (and at a container or the simulated shell)
// without a model in the loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/richardlehane/crock32"
	"golang.org/x/term"

	"spade.dev/execenv"
	"spade.dev/scribe"
	"spade.dev/spadetool"
	"spade.dev/spadetool/bashkit"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: %s <glob|grep|structure|run> [options]", os.Args[0])
	}
	switch os.Args[1] {
	case "glob":
		return runGlob(os.Args[2:])
	case "grep":
		return runGrep(os.Args[2:])
	case "structure":
		return runStructure(os.Args[2:])
	case "run":
		return runRun(os.Args[2:])
	default:
		return fmt.Errorf("unknown command %q. Available commands: glob, grep, structure, run", os.Args[1])
	}
}

// envFlags are the flags shared by every subcommand: which execution
// environment to target and where.
type envFlags struct {
	dir       *string
	envName   *string
	container *string
	verbose   *bool
}

func addEnvFlags(fs *flag.FlagSet) *envFlags {
	return &envFlags{
		dir:       fs.String("C", "", "working directory for the environment"),
		envName:   fs.String("env", "local", "execution environment: local, docker, or shell (in-process simulated shell)"),
		container: fs.String("container", "", "container name or ID (docker env only)"),
		verbose:   fs.Bool("v", false, "log debug output to stderr"),
	}
}

func (f *envFlags) setup() (context.Context, execenv.Env, error) {
	// Every run gets a session_id attr on all its logs.
	ctx := scribe.ContextWithAttr(context.Background(), slog.String("session_id", newSessionID()))

	var handler slog.Handler
	if *f.verbose {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		// Keep debug logs around without cluttering the terminal.
		logFile, err := os.CreateTemp("", "spade-cli-log-*")
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create log file: %v", err)
		}
		handler = slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(scribe.AttrsWrap(handler)))

	var env execenv.Env
	switch *f.envName {
	case "local":
		env = &execenv.Local{Dir: *f.dir}
	case "docker":
		if *f.container == "" {
			return nil, nil, fmt.Errorf("-container is required with -env docker")
		}
		env = &execenv.Docker{Container: *f.container, Dir: *f.dir}
	case "shell":
		env = &execenv.Shell{Dir: *f.dir}
	default:
		return nil, nil, fmt.Errorf("unknown env %q: want local, docker, or shell", *f.envName)
	}
	return ctx, env, nil
}

func runGlob(args []string) error {
	fs := flag.NewFlagSet("glob", flag.ExitOnError)
	ef := addEnvFlags(fs)
	searchPath := fs.String("path", "", "directory to search under")
	includeIgnored := fs.Bool("include-ignored", false, "include gitignored files")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s glob [options] <pattern>\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("glob needs exactly one pattern")
	}

	ctx, env, err := ef.setup()
	if err != nil {
		return err
	}
	start := time.Now()
	exclude := !*includeIgnored
	res, err := (&spadetool.GlobTool{Env: env}).Execute(ctx, spadetool.GlobInput{
		SearchPattern:     fs.Arg(0),
		SearchPath:        *searchPath,
		ExcludeGitIgnored: &exclude,
	})
	if err != nil {
		return err
	}
	pathColor := color.New(color.FgCyan)
	for _, p := range res.MatchingPaths {
		pathColor.Println(p)
	}
	fmt.Fprintf(os.Stderr, "%s files in %s\n",
		humanize.Comma(int64(len(res.MatchingPaths))), time.Since(start).Round(time.Millisecond))
	return nil
}

func runGrep(args []string) error {
	fs := flag.NewFlagSet("grep", flag.ExitOnError)
	ef := addEnvFlags(fs)
	searchPattern := fs.String("glob", "", "glob restricting which files are searched")
	searchPath := fs.String("path", "", "directory to search under")
	contextLines := fs.Int("context", 0, "context lines to show around each match")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s grep [options] <regexp>\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("grep needs exactly one pattern")
	}

	ctx, env, err := ef.setup()
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := (&spadetool.GrepTool{Env: env}).Execute(ctx, spadetool.GrepInput{
		RegexpPattern: fs.Arg(0),
		SearchPattern: *searchPattern,
		SearchPath:    *searchPath,
		ContextLines:  *contextLines,
	})
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		slog.DebugContext(ctx, "grep diagnostic", "detail", d)
	}

	pathColor := color.New(color.FgCyan)
	numColor := color.New(color.FgYellow)
	dim := color.New(color.Faint)
	width := terminalWidth()
	for _, m := range res.Matches {
		for i, line := range m.Before {
			dim.Println(truncate(fmt.Sprintf("%s-%d- %s", m.Path, m.LineNumber-len(m.Before)+i, line), width))
		}
		fmt.Printf("%s:%s: %s\n", pathColor.Sprint(m.Path), numColor.Sprint(m.LineNumber), truncate(m.Line, width))
		for i, line := range m.After {
			dim.Println(truncate(fmt.Sprintf("%s-%d- %s", m.Path, m.LineNumber+1+i, line), width))
		}
	}
	fmt.Fprintf(os.Stderr, "%s matches in %s\n",
		humanize.Comma(int64(len(res.Matches))), time.Since(start).Round(time.Millisecond))
	return nil
}

func runStructure(args []string) error {
	fs := flag.NewFlagSet("structure", flag.ExitOnError)
	ef := addEnvFlags(fs)
	path := fs.String("path", "", "directory to list")
	includeIgnored := fs.Bool("include-ignored", false, "include gitignored files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, env, err := ef.setup()
	if err != nil {
		return err
	}
	exclude := !*includeIgnored
	res, err := (&spadetool.StructureTool{Env: env}).Execute(ctx, spadetool.StructureInput{
		Path:              *path,
		ExcludeGitIgnored: &exclude,
	})
	if err != nil {
		return err
	}
	if len(res.Files) > 0 {
		fmt.Println(spadetool.BuildTreeFromFiles(res.Files))
	}
	fmt.Fprintf(os.Stderr, "%s files\n", humanize.Comma(int64(len(res.Files))))
	return nil
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	ef := addEnvFlags(fs)
	force := fs.Bool("f", false, "run the command even if it looks like it will misbehave")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s run [options] <command>\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("run needs a command")
	}
	command := strings.Join(fs.Args(), " ")

	ctx, env, err := ef.setup()
	if err != nil {
		return err
	}
	if err := bashkit.Check(command); err != nil && !*force {
		return fmt.Errorf("%w (use -f to run anyway)", err)
	}
	if external, err := bashkit.ExternalCommands(command); err == nil && len(external) > 0 {
		slog.DebugContext(ctx, "external commands", "commands", external)
	}

	res, err := env.RunCommand(ctx, command)
	if err != nil {
		return err
	}
	os.Stdout.WriteString(res.Stdout)
	os.Stderr.WriteString(res.Stderr)
	if res.ExitCode != 0 {
		os.Exit(res.ExitCode)
	}
	return nil
}

// newSessionID generates a new 10-byte random session ID.
func newSessionID() string {
	u1, u2 := rand.Uint64(), rand.Uint64N(1<<16)
	s := crock32.Encode(u1) + crock32.Encode(uint64(u2))
	if len(s) < 16 {
		s += strings.Repeat("0", 16-len(s))
	}
	return s
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// truncate cuts s to fit a terminal of the given width; 0 means
// unconstrained.
func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
