package tasks

import "webup/asfctl/domain"

// Create a task installing the docker engine and the compose plugin
func DockerTask() domain.Task {
	task := domain.Task{Name: string(domain.RuntimeDocker), Description: "Install the Docker engine and the compose plugin"}

	task.ExecutionCheck = NewBinaryMissingCheck("docker")
	task.Commands = []domain.Command{
		aptUpdate(),
		aptInstall("docker.io", "docker-compose-v2"),
		domain.NewCommand([]string{"systemctl", "enable", "--now", "docker"}),
	}

	return task
}

func aptUpdate() domain.Command {
	return domain.NewCommand([]string{"apt-get", "update"})
}

func aptInstall(packages ...string) domain.Command {
	return domain.NewCommand(append([]string{"apt-get", "install", "-y"}, packages...))
}
