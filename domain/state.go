package domain

import "path/filepath"

const (
	ComposeFilename      = "docker-compose.yml"
	DaemonConfigFilename = "ASF.json"
	WatchScriptFilename  = "asf-2fa-watch.sh"
	ImportScriptFilename = "asf-import-mafile.sh"
	BackupManifestName   = "backup.yaml"
	DeploymentFilename   = ".asfctl.yaml"
)

// Layout locates every file asfctl manages for one installation.
type Layout struct {
	Root      string
	ApacheDir string
	NginxDir  string
	FQDN      string
}

func (l Layout) ComposeFile() string {
	return filepath.Join(l.Root, ComposeFilename)
}

func (l Layout) ConfigDir() string {
	return filepath.Join(l.Root, "config")
}

func (l Layout) PluginsDir() string {
	return filepath.Join(l.Root, "plugins")
}

func (l Layout) BackupsDir() string {
	return filepath.Join(l.Root, "backups")
}

func (l Layout) DaemonConfig() string {
	return filepath.Join(l.ConfigDir(), DaemonConfigFilename)
}

func (l Layout) WatchScript() string {
	return filepath.Join(l.Root, WatchScriptFilename)
}

func (l Layout) ImportScript() string {
	return filepath.Join(l.Root, ImportScriptFilename)
}

// DeploymentRecord remembers what the last run deployed.
func (l Layout) DeploymentRecord() string {
	return filepath.Join(l.Root, DeploymentFilename)
}

// VHost returns the virtual host path of the given web server.
func (l Layout) VHost(ws WebServer) string {
	switch ws {
	case WebServerApache:
		return filepath.Join(l.ApacheDir, "sites-enabled", l.FQDN+".conf")
	case WebServerNginx:
		return filepath.Join(l.NginxDir, "conf.d", l.FQDN+".conf")
	}
	return ""
}

// Presence classifies an installation.
type Presence int

const (
	Absent Presence = iota
	Present
)

func (p Presence) String() string {
	if p == Present {
		return "present"
	}
	return "absent"
}

// InstallationState is computed on every run and never persisted.
type InstallationState struct {
	Presence     Presence
	Root         string
	Manifest     string
	DaemonConfig string
	VHosts       []string
	// web servers the found vhosts belong to
	Proxies []WebServer
	// the deployment record of the last run, if any
	Deployment string
	// files of the config directory other than the daemon config
	// (bot configs, .maFile authenticators, bot databases)
	Credentials []string
}

func (s InstallationState) IsPresent() bool {
	return s.Presence == Present
}

// Deployment is what a run deployed. The next run uses it to find and retire
// the vhost of a previous host name or web server.
type Deployment struct {
	WebServer WebServer `yaml:"web_server"`
	FQDN      string    `yaml:"fqdn"`
	VHost     string    `yaml:"vhost"`
}
