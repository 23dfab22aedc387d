package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"webup/asfctl/domain"
	"webup/asfctl/tasks"
	"webup/asfctl/utils"
)

// Gateway starts, stops and checks the external services of an installation.
type Gateway interface {
	EnsureInstalled(ctx context.Context, runtime domain.Runtime) error
	Stop(ctx context.Context, service domain.Service) error
	Start(ctx context.Context, service domain.Service) error
	// Disable stops the service and keeps it from starting at boot.
	Disable(ctx context.Context, service domain.Service) error
	Status(ctx context.Context, service domain.Service) (bool, error)
	Follow(ctx context.Context, service domain.Service) (io.ReadCloser, error)
}

// System drives the container with docker compose and the proxies with systemctl.
type System struct {
	logger      zerolog.Logger
	runner      domain.Runner
	composeFile string
	// CreateTask resolves the provisioning task of a runtime.
	CreateTask func(domain.Runtime) (domain.Task, error)
}

func NewSystem(logger zerolog.Logger, runner domain.Runner, composeFile string) *System {
	return &System{
		logger:      logger.With().Str("component", "gateway").Logger(),
		runner:      runner,
		composeFile: composeFile,
		CreateTask:  tasks.CreateTaskWithName,
	}
}

func (s *System) EnsureInstalled(ctx context.Context, runtime domain.Runtime) error {
	task, err := s.CreateTask(runtime)
	if err != nil {
		return &domain.ApplyError{Service: string(runtime), Op: "install", Err: err}
	}

	executed, err := task.Execute(ctx, s.runner)
	if err != nil {
		return &domain.ApplyError{Service: string(runtime), Op: "install", Err: err}
	}
	if executed {
		s.logger.Info().Str("runtime", string(runtime)).Msg("installed")
	} else {
		s.logger.Debug().Str("runtime", string(runtime)).Msg("already installed")
	}
	return nil
}

func (s *System) Start(ctx context.Context, service domain.Service) error {
	var cmd domain.Command
	if service == domain.ServiceContainer {
		cmd = s.compose("up", "-d")
	} else {
		cmd = systemctl("enable", "--now", string(service))
	}
	return s.run(ctx, service, "start", cmd)
}

func (s *System) Stop(ctx context.Context, service domain.Service) error {
	var cmd domain.Command
	if service == domain.ServiceContainer {
		cmd = s.compose("down")
	} else {
		cmd = systemctl("stop", string(service))
	}
	return s.run(ctx, service, "stop", cmd)
}

func (s *System) Disable(ctx context.Context, service domain.Service) error {
	var cmd domain.Command
	if service == domain.ServiceContainer {
		cmd = s.compose("down")
	} else {
		cmd = systemctl("disable", "--now", string(service))
	}
	return s.run(ctx, service, "disable", cmd)
}

// Status reports whether the service is running.
func (s *System) Status(ctx context.Context, service domain.Service) (bool, error) {
	if service == domain.ServiceContainer {
		ids, err := utils.GetContainerIDs(ctx, s.runner, s.composeFile, service)
		if err != nil {
			return false, &domain.ApplyError{Service: string(service), Op: "status", Err: err}
		}
		return len(ids) > 0, nil
	}

	err := s.runner.Run(ctx, systemctl("is-active", "--quiet", string(service)))
	var exitErr *domain.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	if err != nil {
		return false, &domain.ApplyError{Service: string(service), Op: "status", Err: err}
	}
	return true, nil
}

// Follow streams the container output, starting with its last lines.
func (s *System) Follow(ctx context.Context, service domain.Service) (io.ReadCloser, error) {
	if service != domain.ServiceContainer {
		return nil, fmt.Errorf("unable to follow %s: only the container output can be followed", service)
	}

	stream, err := s.runner.Stream(ctx, s.compose("logs", "-f", "--no-log-prefix", "--tail", "50", string(service)))
	if err != nil {
		return nil, &domain.ApplyError{Service: string(service), Op: "follow", Err: err}
	}
	return stream, nil
}

func (s *System) run(ctx context.Context, service domain.Service, op string, cmd domain.Command) error {
	s.logger.Debug().Str("service", string(service)).Str("command", cmd.String()).Msg(op)

	if err := s.runner.Run(ctx, cmd); err != nil {
		return &domain.ApplyError{Service: string(service), Op: op, Err: err}
	}
	return nil
}

func (s *System) compose(args ...string) domain.Command {
	return domain.NewComposeCommand(s.composeFile, args)
}

func systemctl(args ...string) domain.Command {
	return domain.NewCommand(append([]string{"systemctl"}, args...))
}
