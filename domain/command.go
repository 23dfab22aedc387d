package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", c.Name, strings.Join(c.Args, " ")))
}

func NewCommand(list []string) Command {
	var name string
	var args []string

	if len(list) > 1 {
		name = list[0]
		args = list[1:]
	} else {
		name = list[0]
		args = []string{}
	}

	return Command{Name: name, Args: args}
}

// NewComposeCommand builds a 'docker compose' call bound to the given manifest.
func NewComposeCommand(composeFile string, list []string) Command {
	args := []string{"compose", "-f", composeFile}
	args = append(args, list...)

	return Command{Name: "docker", Args: args}
}

// Runner executes external commands.
type Runner interface {
	// Run executes the command attached to the operator's terminal.
	Run(ctx context.Context, c Command) error
	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, c Command) (string, error)
	// Stream starts the command and returns its stdout. Closing the reader
	// stops the command.
	Stream(ctx context.Context, c Command) (io.ReadCloser, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Stdin = r.Stdin

	return exitError(c, cmd.Run())
}

func (r *ExecRunner) Output(ctx context.Context, c Command) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return "", exitError(c, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (r *ExecRunner) Stream(ctx context.Context, c Command) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stderr = r.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, exitError(c, err)
	}

	return &commandStream{ReadCloser: stdout, cmd: cmd, cancel: cancel}, nil
}

type commandStream struct {
	io.ReadCloser
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

func (s *commandStream) Close() error {
	s.cancel()
	s.ReadCloser.Close()
	// the command is killed by the cancellation, its exit status is irrelevant
	s.cmd.Wait()
	return nil
}

func exitError(c Command, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: c, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	return nil
}
