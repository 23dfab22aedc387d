package render

import (
	"fmt"
	"os"

	"webup/asfctl/domain"
)

const (
	Image    = "justarchi/archisteamfarm:released"
	CertFile = "/etc/ssl/certs/asf-origin.pem"
	KeyFile  = "/etc/ssl/private/asf-origin.key"
)

var rootOwner = &domain.Owner{UID: 0, GID: 0}

// Render produces every document of an installation from cfg. It has no side
// effects and returns identical content for identical input. Nothing is
// returned when any document fails.
func Render(cfg domain.Config, layout domain.Layout) ([]domain.Artifact, error) {
	if !cfg.WebServer.Known() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedWebServer, cfg.WebServer)
	}

	daemon, err := DaemonConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("render daemon config: %w", err)
	}
	compose, err := ComposeManifest(cfg)
	if err != nil {
		return nil, fmt.Errorf("render compose manifest: %w", err)
	}
	vhost, err := VHost(cfg)
	if err != nil {
		return nil, fmt.Errorf("render %s virtual host: %w", cfg.WebServer, err)
	}
	watch, err := WatchScript(cfg)
	if err != nil {
		return nil, fmt.Errorf("render watch script: %w", err)
	}
	importer, err := ImportScript(cfg)
	if err != nil {
		return nil, fmt.Errorf("render import script: %w", err)
	}
	record, err := DeploymentRecord(cfg, layout)
	if err != nil {
		return nil, fmt.Errorf("render deployment record: %w", err)
	}

	return []domain.Artifact{
		{Name: "daemon-config", Path: layout.DaemonConfig(), Content: daemon, Mode: 0640},
		{Name: "compose-manifest", Path: layout.ComposeFile(), Content: compose, Mode: 0644},
		{Name: string(cfg.WebServer) + "-vhost", Path: layout.VHost(cfg.WebServer), Content: vhost, Mode: 0644, Owner: rootOwner},
		{Name: "watch-script", Path: layout.WatchScript(), Content: watch, Mode: os.FileMode(0755), Owner: rootOwner},
		{Name: "import-script", Path: layout.ImportScript(), Content: importer, Mode: os.FileMode(0755), Owner: rootOwner},
		{Name: "deployment-record", Path: layout.DeploymentRecord(), Content: record, Mode: 0644},
	}, nil
}
