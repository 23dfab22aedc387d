package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"

	"webup/asfctl/domain"
)

// Editor lets the operator edit a file before it is used.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

var preferredEditors = []string{"nano", "vim", "vi"}

// TerminalEditor opens the first available interactive editor on a file.
type TerminalEditor struct {
	Runner   domain.Runner
	Out      io.Writer
	LookPath func(string) (string, error)
	Getenv   func(string) string
	// Wait blocks until the operator is done editing by other means.
	// It is used when no editor is found.
	Wait func(message string)
}

func NewTerminalEditor(runner domain.Runner, wait func(string)) *TerminalEditor {
	return &TerminalEditor{
		Runner:   runner,
		Out:      os.Stdout,
		LookPath: exec.LookPath,
		Getenv:   os.Getenv,
		Wait:     wait,
	}
}

// Command returns the editor invocation for path, or false when none is installed.
func (e *TerminalEditor) Command(path string) (domain.Command, bool) {
	candidates := [][]string{}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(e.Getenv(env)); len(fields) > 0 {
			candidates = append(candidates, fields)
		}
	}
	for _, name := range preferredEditors {
		candidates = append(candidates, []string{name})
	}

	for _, candidate := range candidates {
		if _, err := e.LookPath(candidate[0]); err == nil {
			return domain.NewCommand(append(candidate, path)), true
		}
	}
	return domain.Command{}, false
}

func (e *TerminalEditor) Edit(ctx context.Context, path string) error {
	fmt.Fprintf(e.Out, "\n ▶ Edit the configuration: %s\n\n", path)

	cmd, ok := e.Command(path)
	if !ok {
		fmt.Fprintf(e.Out, "No editor found (tried $VISUAL, $EDITOR, %s).\n", strings.Join(preferredEditors, ", "))
		if e.Wait != nil {
			e.Wait(fmt.Sprintf("Edit %s in another terminal, then press Enter", path))
		}
		return nil
	}

	return e.Runner.Run(ctx, cmd)
}

// Interactive reports whether stdin is a terminal an editor can use.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
