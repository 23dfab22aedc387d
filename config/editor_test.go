package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webup/asfctl/domain"
)

type recordingRunner struct {
	commands []domain.Command
}

func (r *recordingRunner) Run(_ context.Context, c domain.Command) error {
	r.commands = append(r.commands, c)
	return nil
}

func (r *recordingRunner) Output(_ context.Context, c domain.Command) (string, error) {
	r.commands = append(r.commands, c)
	return "", nil
}

func (r *recordingRunner) Stream(_ context.Context, c domain.Command) (io.ReadCloser, error) {
	r.commands = append(r.commands, c)
	return io.NopCloser(&bytes.Buffer{}), nil
}

func newTestEditor(installed map[string]bool, env map[string]string) (*TerminalEditor, *recordingRunner, *[]string) {
	runner := &recordingRunner{}
	waited := []string{}
	editor := &TerminalEditor{
		Runner: runner,
		Out:    io.Discard,
		LookPath: func(name string) (string, error) {
			if installed[name] {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
		Getenv: func(key string) string { return env[key] },
		Wait:   func(msg string) { waited = append(waited, msg) },
	}
	return editor, runner, &waited
}

func TestTerminalEditor_PrefersEnvironment(t *testing.T) {
	editor, runner, _ := newTestEditor(
		map[string]bool{"code": true, "nano": true},
		map[string]string{"EDITOR": "code --wait"},
	)

	require.NoError(t, editor.Edit(context.Background(), "/opt/asf/.env"))
	require.Len(t, runner.commands, 1)
	assert.Equal(t, "code --wait /opt/asf/.env", runner.commands[0].String())
}

func TestTerminalEditor_FallsBackInOrder(t *testing.T) {
	editor, runner, _ := newTestEditor(map[string]bool{"vim": true, "vi": true}, nil)

	require.NoError(t, editor.Edit(context.Background(), ".env"))
	require.Len(t, runner.commands, 1)
	assert.Equal(t, "vim", runner.commands[0].Name)
}

func TestTerminalEditor_MissingEnvEditorIsSkipped(t *testing.T) {
	editor, _, _ := newTestEditor(map[string]bool{"nano": true}, map[string]string{"VISUAL": "subl"})

	cmd, ok := editor.Command(".env")
	require.True(t, ok)
	assert.Equal(t, "nano", cmd.Name)
}

func TestTerminalEditor_NoEditorWaits(t *testing.T) {
	editor, runner, waited := newTestEditor(nil, nil)

	require.NoError(t, editor.Edit(context.Background(), "/opt/asf/.env"))
	assert.Empty(t, runner.commands)
	require.Len(t, *waited, 1)
	assert.Contains(t, (*waited)[0], "/opt/asf/.env")
}
