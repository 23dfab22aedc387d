package render

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"webup/asfctl/domain"
)

const composeHeader = "# Managed by asfctl, changes are overwritten by 'asfctl install'.\n"

// ComposeManifest renders the docker compose file running ASF.
func ComposeManifest(cfg domain.Config) ([]byte, error) {
	manifest := domain.ComposeFile{
		Services: map[string]domain.ComposeService{
			string(domain.ServiceContainer): {
				Image:         Image,
				ContainerName: string(domain.ServiceContainer),
				NetworkMode:   "host",
				Restart:       cfg.RestartPolicy,
				Command:       []string{"--ignore-unsupported-environment"},
				Environment: map[string]string{
					"ASF_CRYPTKEY": cfg.CryptKey,
					"TZ":           cfg.TZ,
				},
				Volumes: []string{
					"./config:/app/config",
					"./plugins:/app/plugins",
				},
			},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(composeHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(manifest); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
