package actions

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"webup/asfctl/domain"
	"webup/asfctl/gateway"
	"webup/asfctl/utils"
)

// Operator runs the day to day commands against an installation.
type Operator struct {
	Logger    zerolog.Logger
	Out       io.Writer
	Gateway   gateway.Gateway
	Asker     Asker
	Backups   *Backups
	Detector  StateDetector
	Layout    domain.Layout
	WebServer domain.WebServer
	Geteuid   func() int
}

func NewOperator(logger zerolog.Logger, gw gateway.Gateway, asker Asker, backups *Backups, detector StateDetector, layout domain.Layout, ws domain.WebServer) *Operator {
	return &Operator{
		Logger:    logger.With().Str("component", "operator").Logger(),
		Out:       os.Stdout,
		Gateway:   gw,
		Asker:     asker,
		Backups:   backups,
		Detector:  detector,
		Layout:    layout,
		WebServer: ws,
		Geteuid:   os.Geteuid,
	}
}

// Start starts the container and makes sure the proxy runs.
func (o *Operator) Start(ctx context.Context) error {
	if err := o.requireInstallation(); err != nil {
		return err
	}
	if err := o.Gateway.Start(ctx, domain.ServiceContainer); err != nil {
		return err
	}
	if o.WebServer.Known() {
		if err := o.Gateway.Start(ctx, o.WebServer.Service()); err != nil {
			return err
		}
	}

	printDone(o.Out, "Started")
	return nil
}

// Stop stops the container. The proxy may serve other sites and keeps running.
func (o *Operator) Stop(ctx context.Context) error {
	if err := o.requireInstallation(); err != nil {
		return err
	}
	if err := o.Gateway.Stop(ctx, domain.ServiceContainer); err != nil {
		return err
	}

	printDone(o.Out, "Stopped")
	return nil
}

func (o *Operator) Restart(ctx context.Context) error {
	if err := o.requireInstallation(); err != nil {
		return err
	}
	if err := o.restartContainer(ctx); err != nil {
		return err
	}

	printDone(o.Out, "Restarted")
	return nil
}

func (o *Operator) restartContainer(ctx context.Context) error {
	if err := o.Gateway.Stop(ctx, domain.ServiceContainer); err != nil {
		return err
	}
	return o.Gateway.Start(ctx, domain.ServiceContainer)
}

func (o *Operator) restartProxy(ctx context.Context) error {
	if !o.WebServer.Known() {
		return nil
	}
	if err := o.Gateway.Stop(ctx, o.WebServer.Service()); err != nil {
		return err
	}
	return o.Gateway.Start(ctx, o.WebServer.Service())
}

// Logs copies the container output until ctx is done.
func (o *Operator) Logs(ctx context.Context) error {
	if err := o.requireInstallation(); err != nil {
		return err
	}

	stream, err := o.Gateway.Follow(ctx, domain.ServiceContainer)
	if err != nil {
		return err
	}
	defer closeOnDone(ctx, stream)()

	if _, err := io.Copy(o.Out, stream); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Status prints the installation state and whether its services run.
func (o *Operator) Status(ctx context.Context) error {
	state, err := o.Detector.Detect(o.Layout)
	if err != nil {
		return err
	}

	printStep(o.Out, "Installation in %s: %s", o.Layout.Root, state.Presence)
	if !state.IsPresent() {
		return nil
	}

	services := []domain.Service{domain.ServiceContainer}
	if o.WebServer.Known() {
		services = append(services, o.WebServer.Service())
	}
	for _, service := range services {
		running, err := o.Gateway.Status(ctx, service)
		if err != nil {
			return err
		}
		status := "stopped"
		if running {
			status = "running"
		}
		printItem(o.Out, "%s: %s", service, status)
	}
	printItem(o.Out, "bot files: %d", len(state.Credentials))
	return nil
}

// Backup takes a backup set of the current installation.
func (o *Operator) Backup() (domain.BackupSet, error) {
	state, err := o.Detector.Detect(o.Layout)
	if err != nil {
		return domain.BackupSet{}, err
	}
	if !state.IsPresent() {
		return domain.BackupSet{}, fmt.Errorf("no installation found in %s", o.Layout.Root)
	}

	set, err := o.Backups.Take(o.Layout, state)
	if err != nil {
		return set, err
	}

	printDone(o.Out, "%d files saved in %s", len(set.Files), set.Dir)
	return set, nil
}

// Restore puts the files of a backup set back, the latest one when stamp is
// empty, and restarts the services.
func (o *Operator) Restore(ctx context.Context, stamp string) error {
	set, err := o.Backups.Find(o.Layout, stamp)
	if err != nil {
		return err
	}

	printStep(o.Out, "Restore the backup %s...", set.Stamp)

	if err := o.Gateway.Stop(ctx, domain.ServiceContainer); err != nil {
		return err
	}
	restored, err := o.Backups.Restore(set)
	for _, path := range restored {
		printItem(o.Out, "Restoring %s", path)
	}
	if err != nil {
		return err
	}
	if err := o.Gateway.Start(ctx, domain.ServiceContainer); err != nil {
		return err
	}
	if err := o.restartProxy(ctx); err != nil {
		return err
	}

	printDone(o.Out, "Done")
	return nil
}

// RunTask executes a provisioning task, whether it is needed or not.
func (o *Operator) RunTask(ctx context.Context, runner domain.Runner, task domain.Task) error {
	// disable the execution check for standalone execution
	task.ExecutionCheck = nil

	if _, err := task.Execute(ctx, runner); err != nil {
		return &domain.ApplyError{Service: task.Name, Op: "install", Err: err}
	}

	fmt.Fprintf(o.Out, "Task '%s' executed.\n", task.Name)
	return nil
}

func (o *Operator) requireInstallation() error {
	if !utils.FileExists(o.Layout.ComposeFile()) {
		return fmt.Errorf("no installation found in %s, run 'asfctl install' first", o.Layout.Root)
	}
	return nil
}

// closeOnDone closes stream when ctx is done, unblocking its reader. The
// returned func closes stream and stops waiting.
func closeOnDone(ctx context.Context, stream io.Closer) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			stream.Close()
		case <-done:
		}
	}()

	return func() {
		close(done)
		stream.Close()
	}
}
