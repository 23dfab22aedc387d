package domain

import "context"

// Runtime is a piece of host software asfctl can provision.
type Runtime string

const (
	RuntimeDocker Runtime = "docker"
	RuntimeApache Runtime = "apache2"
	RuntimeNginx  Runtime = "nginx"
)

// Service is something the gateway can start and stop.
type Service string

const (
	ServiceContainer Service = "asf"
	ServiceApache    Service = "apache2"
	ServiceNginx     Service = "nginx"
)

type Task struct {
	Name           string
	Description    string
	ExecutionCheck TaskExecutionCheck
	Commands       []Command
}

type TaskExecutionCheck interface {
	CanExecute() bool
}

// Execute runs the task commands in order, stopping at the first failure.
// It reports false when the execution check skipped the task.
func (t Task) Execute(ctx context.Context, runner Runner) (bool, error) {
	if t.ExecutionCheck != nil && !t.ExecutionCheck.CanExecute() {
		return false, nil
	}

	for _, command := range t.Commands {
		if err := runner.Run(ctx, command); err != nil {
			return true, err
		}
	}

	return true, nil
}
