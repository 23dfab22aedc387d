package render

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"webup/asfctl/domain"
)

const deploymentHeader = "# Managed by asfctl, records what the last 'asfctl install' deployed.\n"

// DeploymentRecord renders the record of the vhost and web server cfg deploys.
func DeploymentRecord(cfg domain.Config, layout domain.Layout) ([]byte, error) {
	record := domain.Deployment{
		WebServer: cfg.WebServer,
		FQDN:      cfg.FQDN(),
		VHost:     layout.VHost(cfg.WebServer),
	}

	var buf bytes.Buffer
	buf.WriteString(deploymentHeader)
	if err := yaml.NewEncoder(&buf).Encode(record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
