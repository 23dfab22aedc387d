package tasks

import "webup/asfctl/domain"

// modules the reverse proxy virtual host relies on
var apacheModules = []string{"ssl", "proxy", "proxy_http", "proxy_wstunnel", "rewrite", "headers"}

// Create a task installing apache2 with the proxy modules enabled
func ApacheTask() domain.Task {
	task := domain.Task{Name: string(domain.RuntimeApache), Description: "Install apache2 and enable the proxy modules"}

	task.ExecutionCheck = NewBinaryMissingCheck("apache2")
	task.Commands = []domain.Command{
		aptUpdate(),
		aptInstall("apache2"),
		domain.NewCommand(append([]string{"a2enmod"}, apacheModules...)),
	}

	return task
}
