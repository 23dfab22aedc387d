package tasks

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
	commands []string
	failOn   string
}

func (r *recordingRunner) Run(_ context.Context, c domain.Command) error {
	r.commands = append(r.commands, c.String())
	if r.failOn != "" && c.String() == r.failOn {
		return &domain.ExitError{Command: c, Code: 100}
	}
	return nil
}

func (r *recordingRunner) Output(_ context.Context, c domain.Command) (string, error) {
	return "", r.Run(context.Background(), c)
}

func (r *recordingRunner) Stream(_ context.Context, c domain.Command) (io.ReadCloser, error) {
	return io.NopCloser(&bytes.Buffer{}), r.Run(context.Background(), c)
}

func lookPath(found bool) func(string) (string, error) {
	return func(name string) (string, error) {
		if found {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

func TestCreateTaskWithName(t *testing.T) {
	for _, name := range AllTaskNames() {
		task, err := CreateTaskWithName(name)
		require.NoError(t, err)
		assert.Equal(t, string(name), task.Name)
		assert.NotEmpty(t, task.Commands)
		assert.NotNil(t, task.ExecutionCheck)
	}

	_, err := CreateTaskWithName("caddy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caddy")
}

func TestBinaryMissingCheck(t *testing.T) {
	assert.True(t, BinaryMissingCheck{Binary: "docker", LookPath: lookPath(false)}.CanExecute())
	assert.False(t, BinaryMissingCheck{Binary: "docker", LookPath: lookPath(true)}.CanExecute())
}

func TestDockerTask_Commands(t *testing.T) {
	task := DockerTask()
	task.ExecutionCheck = BinaryMissingCheck{Binary: "docker", LookPath: lookPath(false)}
	runner := &recordingRunner{}

	executed, err := task.Execute(context.Background(), runner)
	require.NoError(t, err)
	assert.True(t, executed)
	assert.Equal(t, []string{
		"apt-get update",
		"apt-get install -y docker.io docker-compose-v2",
		"systemctl enable --now docker",
	}, runner.commands)
}

func TestApacheTask_EnablesModules(t *testing.T) {
	task := ApacheTask()
	task.ExecutionCheck = nil
	runner := &recordingRunner{}

	_, err := task.Execute(context.Background(), runner)
	require.NoError(t, err)
	assert.Equal(t, "a2enmod ssl proxy proxy_http proxy_wstunnel rewrite headers", runner.commands[len(runner.commands)-1])
}

func TestNginxTask_Commands(t *testing.T) {
	task := NginxTask()
	task.ExecutionCheck = nil
	runner := &recordingRunner{}

	_, err := task.Execute(context.Background(), runner)
	require.NoError(t, err)
	assert.Equal(t, []string{"apt-get update", "apt-get install -y nginx"}, runner.commands)
}

func TestTask_SkippedWhenInstalled(t *testing.T) {
	task := NginxTask()
	task.ExecutionCheck = BinaryMissingCheck{Binary: "nginx", LookPath: lookPath(true)}
	runner := &recordingRunner{}

	executed, err := task.Execute(context.Background(), runner)
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Empty(t, runner.commands)
}

func TestTask_StopsAtFirstFailure(t *testing.T) {
	task := DockerTask()
	task.ExecutionCheck = nil
	runner := &recordingRunner{failOn: "apt-get install -y docker.io docker-compose-v2"}

	executed, err := task.Execute(context.Background(), runner)
	assert.True(t, executed)

	var exitErr *domain.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 100, exitErr.Code)
	assert.Len(t, runner.commands, 2)
}
