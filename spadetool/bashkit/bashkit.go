// Package bashkit inspects shell commands before they go through an
// execution environment.
//
// Every RunCommand is a fresh non-interactive shell: there is no tty,
// no prompt, and no state carried to the next command. Check catches
// the common ways a command quietly assumes otherwise. It DOES NOT
// PROVIDE SECURITY against malicious input; it exists to catch
// straightforward mistakes.
package bashkit

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var checks = []func(*syntax.CallExpr) error{
	noSudo,
	noInteractiveCommands,
}

// interactiveCommands want a tty and will hang a non-interactive
// shell waiting for input that never comes.
var interactiveCommands = map[string]string{
	"vi":    "an editor",
	"vim":   "an editor",
	"nano":  "an editor",
	"less":  "a pager",
	"more":  "a pager",
	"man":   "a pager",
	"top":   "a full-screen program",
	"htop":  "a full-screen program",
	"watch": "a full-screen program",
}

// Check inspects script and returns an error if it ought not be
// executed through an execution environment.
func Check(script string) error {
	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(script), "")
	if err != nil {
		// Execution will fail anyway, and the shell's own error
		// message beats anything we could synthesize here.
		return nil
	}

	if err := loneCd(file); err != nil {
		return err
	}

	var checkErr error
	syntax.Walk(file, func(node syntax.Node) bool {
		if checkErr != nil {
			return false
		}
		call, ok := node.(*syntax.CallExpr)
		if !ok {
			return true
		}
		for _, check := range checks {
			if err := check(call); err != nil {
				checkErr = err
				return false
			}
		}
		return true
	})
	return checkErr
}

func commandName(call *syntax.CallExpr) string {
	if len(call.Args) == 0 {
		return ""
	}
	return call.Args[0].Lit()
}

func noSudo(call *syntax.CallExpr) error {
	if commandName(call) == "sudo" {
		return fmt.Errorf("sudo will prompt for a password, and there is no terminal to answer it; run the command without sudo or use an environment that is already root")
	}
	return nil
}

func noInteractiveCommands(call *syntax.CallExpr) error {
	name := commandName(call)
	if kind, ok := interactiveCommands[name]; ok {
		return fmt.Errorf("%s is %s and will hang without a terminal; use a non-interactive alternative", name, kind)
	}
	return nil
}

// loneCd flags a script that is nothing but a cd: the working
// directory does not persist to the next command, so the cd is a
// no-op. Prefixing the real command with it works fine.
func loneCd(file *syntax.File) error {
	if len(file.Stmts) != 1 {
		return nil
	}
	call, ok := file.Stmts[0].Cmd.(*syntax.CallExpr)
	if !ok {
		return nil
	}
	if commandName(call) == "cd" {
		return fmt.Errorf("cd on its own does nothing: the working directory resets between commands; run \"cd dir && command\" instead")
	}
	return nil
}
