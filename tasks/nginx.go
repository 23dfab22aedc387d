package tasks

import "webup/asfctl/domain"

// Create a task installing nginx
func NginxTask() domain.Task {
	task := domain.Task{Name: string(domain.RuntimeNginx), Description: "Install nginx"}

	task.ExecutionCheck = NewBinaryMissingCheck("nginx")
	task.Commands = []domain.Command{
		aptUpdate(),
		aptInstall("nginx"),
	}

	return task
}
