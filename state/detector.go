package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"webup/asfctl/domain"
)

// Detector classifies the installation found on disk.
type Detector struct {
	logger zerolog.Logger
}

func NewDetector(logger zerolog.Logger) *Detector {
	return &Detector{logger: logger.With().Str("component", "state").Logger()}
}

// Detect inspects the filesystem. An installation is present when the root
// directory exists and holds the compose manifest, anything else is absent.
func (d *Detector) Detect(layout domain.Layout) (domain.InstallationState, error) {
	state := domain.InstallationState{Presence: domain.Absent, Root: layout.Root}

	rootInfo, err := os.Stat(layout.Root)
	if err != nil || !rootInfo.IsDir() {
		d.logger.Debug().Str("root", layout.Root).Msg("installation root not found")
		return state, nil
	}
	manifestInfo, err := os.Stat(layout.ComposeFile())
	if err != nil || !manifestInfo.Mode().IsRegular() {
		d.logger.Debug().Str("manifest", layout.ComposeFile()).Msg("compose manifest not found")
		return state, nil
	}

	state.Presence = domain.Present
	state.Manifest = layout.ComposeFile()

	if isFile(layout.DaemonConfig()) {
		state.DaemonConfig = layout.DaemonConfig()
	}
	for _, ws := range domain.WebServers {
		if vhost := layout.VHost(ws); layout.FQDN != "" && isFile(vhost) {
			state.VHosts = append(state.VHosts, vhost)
			state.Proxies = append(state.Proxies, ws)
		}
	}
	d.detectDeployment(layout, &state)

	credentials, err := credentialFiles(layout.ConfigDir())
	if err != nil {
		return state, fmt.Errorf("unable to list %s: %w", layout.ConfigDir(), err)
	}
	state.Credentials = credentials

	d.logger.Debug().
		Str("root", layout.Root).
		Int("vhosts", len(state.VHosts)).
		Int("credentials", len(state.Credentials)).
		Msg("installation present")

	return state, nil
}

// detectDeployment adds what the last run deployed, which may belong to a
// previous host name or web server.
func (d *Detector) detectDeployment(layout domain.Layout, state *domain.InstallationState) {
	data, err := os.ReadFile(layout.DeploymentRecord())
	if err != nil {
		return
	}
	state.Deployment = layout.DeploymentRecord()

	var record domain.Deployment
	if err := yaml.Unmarshal(data, &record); err != nil {
		d.logger.Warn().Err(err).Str("path", layout.DeploymentRecord()).Msg("ignoring unreadable deployment record")
		return
	}

	if record.VHost != "" && isFile(record.VHost) && !contains(state.VHosts, record.VHost) {
		state.VHosts = append(state.VHosts, record.VHost)
	}
	if record.WebServer.Known() && !contains(state.Proxies, record.WebServer) {
		state.Proxies = append(state.Proxies, record.WebServer)
	}
}

func contains[T comparable](list []T, value T) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// credentialFiles lists the regular files of the config directory other than
// the daemon config, sorted by name.
func credentialFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == domain.DaemonConfigFilename {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
