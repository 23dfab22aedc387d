package tasks

import (
	"fmt"

	"webup/asfctl/domain"
)

// AllTaskNames lists the runtimes 'asfctl run' accepts.
func AllTaskNames() []domain.Runtime {
	return []domain.Runtime{domain.RuntimeDocker, domain.RuntimeApache, domain.RuntimeNginx}
}

func CreateTaskWithName(name domain.Runtime) (domain.Task, error) {
	switch name {
	case domain.RuntimeDocker:
		return DockerTask(), nil
	case domain.RuntimeApache:
		return ApacheTask(), nil
	case domain.RuntimeNginx:
		return NginxTask(), nil
	}

	return domain.Task{}, fmt.Errorf("unable to find the task '%s'", name)
}
