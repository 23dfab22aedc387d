package utils

import (
	"context"
	"strings"

	"webup/asfctl/domain"
)

// GetContainerIDs returns the ids of the running containers of a compose service.
func GetContainerIDs(ctx context.Context, runner domain.Runner, composeFile string, service domain.Service) ([]string, error) {
	cmd := domain.NewComposeCommand(composeFile, []string{"ps", "-q", string(service)})
	output, err := runner.Output(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return ParseContainerIDs(output), nil
}

// ParseContainerIDs splits the output of 'docker compose ps -q'.
func ParseContainerIDs(output string) []string {
	ids := []string{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, line)
		}
	}

	return ids
}
