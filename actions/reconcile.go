package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"webup/asfctl/config"
	"webup/asfctl/domain"
	"webup/asfctl/gateway"
	"webup/asfctl/render"
	"webup/asfctl/utils"
)

// ConfigLoader loads the configuration of a run, creating it when needed.
type ConfigLoader interface {
	LoadOrInit(ctx context.Context, path string) (domain.Config, bool, error)
	// EnsureSecrets generates and persists the secrets cfg lacks.
	EnsureSecrets(path string, cfg domain.Config) (domain.Config, error)
}

// StateDetector classifies the installation found on disk.
type StateDetector interface {
	Detect(layout domain.Layout) (domain.InstallationState, error)
}

// Paths locates the installation root and the web server configurations.
type Paths struct {
	Root      string
	ApacheDir string
	NginxDir  string
}

// Layout returns the file layout of the installation served on fqdn.
func (p Paths) Layout(fqdn string) domain.Layout {
	return domain.Layout{Root: p.Root, ApacheDir: p.ApacheDir, NginxDir: p.NginxDir, FQDN: fqdn}
}

type ReconcileOptions struct {
	EnvPath string
	// DryRun stops once every document is rendered, nothing is written.
	DryRun bool
}

// Result describes what a run found and produced.
type Result struct {
	Config    domain.Config
	Created   bool
	State     domain.InstallationState
	Backup    *domain.BackupSet
	Artifacts []domain.Artifact
}

// Reconciler converges an installation to its configuration.
// Concurrent runs against the same root are not serialized.
type Reconciler struct {
	logger   zerolog.Logger
	out      io.Writer
	store    ConfigLoader
	detector StateDetector
	gateway  gateway.Gateway
	backups  *Backups
	paths    Paths

	// Choose picks the web server when WEB_SERVER is empty and the host
	// has none or both installed.
	Choose func([]domain.WebServer) domain.WebServer
	// Installed lists the web servers found on the host.
	Installed func() []domain.WebServer
	Geteuid   func() int
	Chown     func(path string, uid, gid int) error

	phase   Phase
	history []Transition
}

func NewReconciler(logger zerolog.Logger, out io.Writer, store ConfigLoader, detector StateDetector, gw gateway.Gateway, backups *Backups, paths Paths) *Reconciler {
	return &Reconciler{
		logger:    logger.With().Str("component", "reconciler").Logger(),
		out:       out,
		store:     store,
		detector:  detector,
		gateway:   gw,
		backups:   backups,
		paths:     paths,
		Installed: InstalledWebServers,
		Geteuid:   os.Geteuid,
		Chown:     os.Chown,
		phase:     PhaseInit,
	}
}

// Phase returns where the last run stopped.
func (r *Reconciler) Phase() Phase {
	return r.phase
}

// History returns the transitions of the last run.
func (r *Reconciler) History() []Transition {
	return append([]Transition(nil), r.history...)
}

func (r *Reconciler) advance(to Phase, err error) error {
	if checkErr := checkTransition(r.phase, to); checkErr != nil {
		return checkErr
	}

	r.history = append(r.history, Transition{From: r.phase, To: to, At: time.Now(), Err: err})
	event := r.logger.Debug()
	if err != nil {
		event = r.logger.Error().Err(err)
	}
	event.Str("from", string(r.phase)).Str("to", string(to)).Msg("transition")

	r.phase = to
	return nil
}

// Reconcile runs every phase in order and halts at the first failure,
// leaving the reconciler in PhaseFailed.
func (r *Reconciler) Reconcile(ctx context.Context, opts ReconcileOptions) (res Result, err error) {
	r.phase, r.history = PhaseInit, nil
	defer func() {
		if err != nil {
			r.advance(PhaseFailed, err)
		}
	}()

	res.Config, res.Created, err = r.loadConfig(ctx, opts.EnvPath)
	if err != nil {
		return res, err
	}
	if err = r.advance(PhaseConfigLoaded, nil); err != nil {
		return res, err
	}

	layout := r.paths.Layout(res.Config.FQDN())
	res.State, err = r.detector.Detect(layout)
	if err != nil {
		return res, fmt.Errorf("unable to detect the installation: %w", err)
	}
	if err = r.advance(PhaseStateDetected, nil); err != nil {
		return res, err
	}
	r.logger.Info().Str("root", layout.Root).Str("state", res.State.Presence.String()).Msg("installation detected")

	if res.State.IsPresent() && !opts.DryRun {
		printStep(r.out, "Back up the current installation...")
		set, err := r.backups.Take(layout, res.State)
		if err != nil {
			return res, err
		}
		res.Backup = &set
		printItem(r.out, "%d files saved in %s", len(set.Files), set.Dir)
		if err = r.advance(PhaseBackupComplete, nil); err != nil {
			return res, err
		}
	}

	res.Artifacts, err = render.Render(res.Config, layout)
	if err != nil {
		return res, err
	}
	if err = r.advance(PhaseRendered, nil); err != nil {
		return res, err
	}

	if opts.DryRun {
		printStep(r.out, "Dry run, these files would be written:")
		for _, artifact := range res.Artifacts {
			printItem(r.out, "%s (%s)", artifact.Path, artifact.Mode)
		}
		return res, nil
	}

	if err = r.apply(ctx, res, layout); err != nil {
		return res, err
	}
	if err = r.advance(PhaseApplied, nil); err != nil {
		return res, err
	}

	r.summary(res, opts.EnvPath)
	return res, r.advance(PhaseDone, nil)
}

func (r *Reconciler) loadConfig(ctx context.Context, path string) (domain.Config, bool, error) {
	cfg, created, err := r.store.LoadOrInit(ctx, path)
	if err != nil {
		return cfg, created, err
	}

	if err := config.Validate(cfg); err != nil {
		var ce *domain.ConfigError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return cfg, created, err
	}

	ws, err := r.webServer(cfg)
	if err != nil {
		return cfg, created, &domain.ConfigError{Key: config.KeyWebServer, Path: path, Err: err}
	}

	// the file is only modified once it is known to be valid
	cfg, err = r.store.EnsureSecrets(path, cfg)
	if err != nil {
		return cfg, created, err
	}
	if ws != cfg.WebServer {
		cfg.WebServer = ws
		if err := config.Set(path, map[string]string{config.KeyWebServer: string(ws)}); err != nil {
			return cfg, created, err
		}
		r.logger.Info().Str("web_server", string(ws)).Msg("web server saved in the configuration")
	}

	return cfg, created, nil
}

func (r *Reconciler) webServer(cfg domain.Config) (domain.WebServer, error) {
	var installed []domain.WebServer
	if cfg.WebServer == "" && r.Installed != nil {
		installed = r.Installed()
	}
	return render.ChooseWebServer(cfg.WebServer, installed, r.Choose)
}

func (r *Reconciler) apply(ctx context.Context, res Result, layout domain.Layout) error {
	cfg := res.Config

	printStep(r.out, "Install the runtimes...")
	for _, runtime := range []domain.Runtime{domain.RuntimeDocker, cfg.WebServer.Runtime()} {
		if err := r.gateway.EnsureInstalled(ctx, runtime); err != nil {
			return err
		}
		printItem(r.out, "%s OK.", runtime)
	}

	if res.State.IsPresent() {
		if err := r.gateway.Stop(ctx, domain.ServiceContainer); err != nil {
			return err
		}
	}
	// a previous web server would hold the ports of the new one
	for _, ws := range res.State.Proxies {
		if ws == cfg.WebServer {
			continue
		}
		if err := r.gateway.Disable(ctx, ws.Service()); err != nil {
			return err
		}
		printItem(r.out, "%s disabled", ws)
	}

	printStep(r.out, "Write the configuration files...")
	for _, artifact := range res.Artifacts {
		if err := r.write(artifact); err != nil {
			return err
		}
		printItem(r.out, "%s", artifact.Path)
	}
	if err := r.removeStaleVHosts(res.State, layout.VHost(cfg.WebServer)); err != nil {
		return err
	}
	if err := os.MkdirAll(layout.PluginsDir(), 0755); err != nil {
		return fmt.Errorf("unable to create %s: %w", layout.PluginsDir(), err)
	}
	if res.Backup != nil {
		if err := r.recoverCredentials(layout, *res.Backup); err != nil {
			return err
		}
	}

	printStep(r.out, "Start the services...")
	if err := r.gateway.Start(ctx, domain.ServiceContainer); err != nil {
		return err
	}
	proxy := cfg.WebServer.Service()
	if err := r.gateway.Stop(ctx, proxy); err != nil {
		return err
	}
	return r.gateway.Start(ctx, proxy)
}

func (r *Reconciler) write(artifact domain.Artifact) error {
	if err := utils.WriteFileAtomic(artifact.Path, artifact.Content, artifact.Mode); err != nil {
		return fmt.Errorf("unable to write %s: %w", artifact.Name, err)
	}

	// only root can give files away
	if artifact.Owner != nil && r.Geteuid() == 0 {
		if err := r.Chown(artifact.Path, artifact.Owner.UID, artifact.Owner.GID); err != nil {
			return fmt.Errorf("unable to chown %s: %w", artifact.Path, err)
		}
	}

	r.logger.Debug().Str("artifact", artifact.Name).Str("path", artifact.Path).Msg("written")
	return nil
}

// removeStaleVHosts deletes the vhosts of a previous host name or web server.
// They are part of the backup set taken before.
func (r *Reconciler) removeStaleVHosts(state domain.InstallationState, current string) error {
	for _, vhost := range state.VHosts {
		if vhost == current {
			continue
		}
		if err := os.Remove(vhost); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unable to remove %s: %w", vhost, err)
		}
		r.logger.Info().Str("path", vhost).Msg("stale virtual host removed")
		printItem(r.out, "%s removed", vhost)
	}
	return nil
}

// recoverCredentials copies back the bot files of set missing from config/.
func (r *Reconciler) recoverCredentials(layout domain.Layout, set domain.BackupSet) error {
	configDir := layout.ConfigDir() + string(filepath.Separator)

	for _, entry := range set.Files {
		if !strings.HasPrefix(entry.Source, configDir) || entry.Source == layout.DaemonConfig() {
			continue
		}
		if utils.FileExists(entry.Source) {
			continue
		}
		if err := restoreEntry(set, entry); err != nil {
			return err
		}
		r.logger.Warn().Str("path", entry.Source).Msg("credential file recovered from the backup")
	}
	return nil
}

func (r *Reconciler) summary(res Result, envPath string) {
	printDone(r.out, "ArchiSteamFarm is available at %s", res.Config.URL())
	printItem(r.out, "IPC password: %s", res.Config.IPCPassword)
	printItem(r.out, "Configuration: %s", envPath)
	if res.Backup != nil {
		printItem(r.out, "Backup: %s", res.Backup.Dir)
	}
	fmt.Fprintln(r.out)
}

// InstalledWebServers lists the supported web servers found on the PATH.
func InstalledWebServers() []domain.WebServer {
	installed := []domain.WebServer{}
	for _, ws := range domain.WebServers {
		if _, err := exec.LookPath(string(ws)); err == nil {
			installed = append(installed, ws)
		}
	}
	return installed
}
