package gateway

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webup/asfctl/domain"
)

type fakeRunner struct {
	commands []string
	outputs  map[string]string
	failures map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, failures: map[string]error{}}
}

func (r *fakeRunner) Run(_ context.Context, c domain.Command) error {
	r.commands = append(r.commands, c.String())
	return r.failures[c.String()]
}

func (r *fakeRunner) Output(_ context.Context, c domain.Command) (string, error) {
	r.commands = append(r.commands, c.String())
	return r.outputs[c.String()], r.failures[c.String()]
}

func (r *fakeRunner) Stream(_ context.Context, c domain.Command) (io.ReadCloser, error) {
	r.commands = append(r.commands, c.String())
	if err := r.failures[c.String()]; err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(r.outputs[c.String()])), nil
}

const composeFile = "/opt/asf/docker-compose.yml"

func newSystem(runner *fakeRunner) *System {
	return NewSystem(zerolog.Nop(), runner, composeFile)
}

func TestSystem_ContainerCommands(t *testing.T) {
	runner := newFakeRunner()
	system := newSystem(runner)
	ctx := context.Background()

	require.NoError(t, system.Start(ctx, domain.ServiceContainer))
	require.NoError(t, system.Stop(ctx, domain.ServiceContainer))

	assert.Equal(t, []string{
		"docker compose -f /opt/asf/docker-compose.yml up -d",
		"docker compose -f /opt/asf/docker-compose.yml down",
	}, runner.commands)
}

func TestSystem_ProxyCommands(t *testing.T) {
	runner := newFakeRunner()
	system := newSystem(runner)
	ctx := context.Background()

	require.NoError(t, system.Stop(ctx, domain.ServiceNginx))
	require.NoError(t, system.Start(ctx, domain.ServiceNginx))
	require.NoError(t, system.Disable(ctx, domain.ServiceApache))

	assert.Equal(t, []string{
		"systemctl stop nginx",
		"systemctl enable --now nginx",
		"systemctl disable --now apache2",
	}, runner.commands)
}

func TestSystem_StartFailureIsApplyError(t *testing.T) {
	runner := newFakeRunner()
	runner.failures["systemctl enable --now apache2"] = &domain.ExitError{Code: 1}
	system := newSystem(runner)

	err := system.Start(context.Background(), domain.ServiceApache)

	var applyErr *domain.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "apache2", applyErr.Service)
	assert.Equal(t, "start", applyErr.Op)
}

func TestSystem_ContainerStatus(t *testing.T) {
	runner := newFakeRunner()
	system := newSystem(runner)
	ctx := context.Background()

	running, err := system.Status(ctx, domain.ServiceContainer)
	require.NoError(t, err)
	assert.False(t, running)

	runner.outputs["docker compose -f /opt/asf/docker-compose.yml ps -q asf"] = "4f2a9c\n"
	running, err = system.Status(ctx, domain.ServiceContainer)
	require.NoError(t, err)
	assert.True(t, running)
}

func TestSystem_ProxyStatus(t *testing.T) {
	runner := newFakeRunner()
	system := newSystem(runner)
	ctx := context.Background()

	running, err := system.Status(ctx, domain.ServiceNginx)
	require.NoError(t, err)
	assert.True(t, running)

	runner.failures["systemctl is-active --quiet nginx"] = &domain.ExitError{Code: 3}
	running, err = system.Status(ctx, domain.ServiceNginx)
	require.NoError(t, err)
	assert.False(t, running)

	runner.failures["systemctl is-active --quiet nginx"] = errors.New("systemctl: not found")
	_, err = system.Status(ctx, domain.ServiceNginx)
	var applyErr *domain.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "status", applyErr.Op)
}

func TestSystem_Follow(t *testing.T) {
	runner := newFakeRunner()
	cmd := "docker compose -f /opt/asf/docker-compose.yml logs -f --no-log-prefix --tail 50 asf"
	runner.outputs[cmd] = "line one\nline two\n"
	system := newSystem(runner)

	stream, err := system.Follow(context.Background(), domain.ServiceContainer)
	require.NoError(t, err)
	defer stream.Close()

	content, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(content))

	_, err = system.Follow(context.Background(), domain.ServiceNginx)
	assert.Error(t, err)
}

func TestSystem_EnsureInstalled(t *testing.T) {
	runner := newFakeRunner()
	system := newSystem(runner)
	system.CreateTask = func(r domain.Runtime) (domain.Task, error) {
		return domain.Task{Name: string(r), Commands: []domain.Command{domain.NewCommand([]string{"apt-get", "install", "-y", string(r)})}}, nil
	}

	require.NoError(t, system.EnsureInstalled(context.Background(), domain.RuntimeNginx))
	assert.Equal(t, []string{"apt-get install -y nginx"}, runner.commands)

	runner.failures["apt-get install -y docker"] = &domain.ExitError{Code: 100}
	err := system.EnsureInstalled(context.Background(), domain.RuntimeDocker)
	var applyErr *domain.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "install", applyErr.Op)
	assert.Equal(t, "docker", applyErr.Service)
}

func TestSystem_EnsureInstalledUnknownRuntime(t *testing.T) {
	system := newSystem(newFakeRunner())

	err := system.EnsureInstalled(context.Background(), "caddy")
	var applyErr *domain.ApplyError
	assert.ErrorAs(t, err, &applyErr)
}
