package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jawher/mow.cli"
	"github.com/rs/zerolog"

	"webup/asfctl/actions"
	"webup/asfctl/config"
	"webup/asfctl/domain"
	"webup/asfctl/gateway"
	"webup/asfctl/logging"
	"webup/asfctl/state"
	"webup/asfctl/tasks"
)

const (
	defaultRoot = "/opt/asf"
	apacheDir   = "/etc/apache2"
	nginxDir    = "/etc/nginx"
)

type environment struct {
	ctx     context.Context
	logger  zerolog.Logger
	runID   string
	runner  *domain.ExecRunner
	paths   actions.Paths
	envPath string
	asker   actions.Asker
}

func main() {

	app := cli.App("asfctl", "Install and operate ArchiSteamFarm behind an Apache or Nginx reverse proxy")

	app.Version("v version", "asfctl 1.0.0")

	envPath := app.String(cli.StringOpt{
		Name:   "env",
		Value:  "",
		Desc:   "Path of the configuration file (defaults to <root>/.env)",
		EnvVar: "ASFCTL_ENV",
	})
	root := app.String(cli.StringOpt{
		Name:   "root",
		Value:  defaultRoot,
		Desc:   "Installation directory",
		EnvVar: "ASFCTL_ROOT",
	})
	logLevel := app.String(cli.StringOpt{
		Name:   "log-level",
		Value:  "info",
		Desc:   "Log level (debug, info, warn, error)",
		EnvVar: "ASFCTL_LOG_LEVEL",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &environment{ctx: ctx, runner: domain.NewExecRunner(), asker: actions.TerminalAsker{}}

	app.Before = func() {
		env.runID = logging.NewRunID()
		env.logger = logging.NewLogger(*logLevel, env.runID)
		env.paths = actions.Paths{Root: *root, ApacheDir: apacheDir, NginxDir: nginxDir}
		env.envPath = *envPath
		if env.envPath == "" {
			env.envPath = filepath.Join(*root, config.DefaultFilename)
		}
	}

	app.Command("install", "Install (or update) ArchiSteamFarm, its reverse proxy and the helper scripts", func(cmd *cli.Cmd) {

		noEdit := cmd.BoolOpt("no-edit", false, "Do not open an editor on a new configuration file")
		dryRun := cmd.BoolOpt("dry-run", false, "Render the files and list them without writing anything")
		skipRootCheck := cmd.BoolOpt("skip-root-check", false, "Run even when not root")

		cmd.Action = func() {
			if !*skipRootCheck && !*dryRun && os.Geteuid() != 0 {
				exitOnError(actions.ErrNotRoot)
			}

			var editor config.Editor
			if !*noEdit && config.Interactive() {
				editor = config.NewTerminalEditor(env.runner, func(message string) {
					env.asker.Prompt(message, "")
				})
			}

			store := config.NewStore(env.logger, editor)
			gw := gateway.NewSystem(env.logger, env.runner, env.paths.Layout("").ComposeFile())
			reconciler := actions.NewReconciler(env.logger, os.Stdout, store, state.NewDetector(env.logger), gw, actions.NewBackups(env.logger, env.runID), env.paths)
			reconciler.Choose = env.chooseWebServer

			_, err := reconciler.Reconcile(env.ctx, actions.ReconcileOptions{EnvPath: env.envPath, DryRun: *dryRun})
			exitOnError(err)
		}
	})

	app.Command("status", "Display the state of the installation and its services", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			exitOnError(env.operator().Status(env.ctx))
		}
	})

	app.Command("start", "Start ArchiSteamFarm and the reverse proxy", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			exitOnError(env.operator().Start(env.ctx))
		}
	})

	app.Command("stop", "Stop ArchiSteamFarm", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			exitOnError(env.operator().Stop(env.ctx))
		}
	})

	app.Command("restart", "Restart ArchiSteamFarm", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			exitOnError(env.operator().Restart(env.ctx))
		}
	})

	app.Command("logs", "Follow the ArchiSteamFarm output", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			exitOnError(env.operator().Logs(env.ctx))
		}
	})

	app.Command("backup", "Save the configuration and the bot files in a new backup set", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			_, err := env.operator().Backup()
			exitOnError(err)
		}
	})

	app.Command("restore", "Restore a backup set (the latest one by default) and restart the services", func(cmd *cli.Cmd) {

		cmd.Spec = "[STAMP]"
		stamp := cmd.StringArg("STAMP", "", "The backup set to restore, e.g. 20260314-092653")

		cmd.Action = func() {
			operator := env.operator()
			if !env.asker.YN("The current files are going to be replaced. Are you sure you want to continue?", false) {
				return
			}
			exitOnError(operator.Restore(env.ctx, *stamp))
		}
	})

	app.Command("export", "Archive the installation, optionally encrypted", func(cmd *cli.Cmd) {

		output := cmd.StringOpt("o output", "", "Path of the archive")
		encrypt := cmd.BoolOpt("e encrypt", false, "Encrypt the archive with a passphrase")

		cmd.Action = func() {
			var passphrase []byte
			if *encrypt {
				passphrase = env.passphrase(true)
			}
			_, err := env.operator().Export(*output, passphrase)
			exitOnError(err)
		}
	})

	app.Command("decrypt", "Decrypt an encrypted export", func(cmd *cli.Cmd) {

		cmd.Spec = "FILE [-o]"
		file := cmd.StringArg("FILE", "", "The encrypted archive")
		output := cmd.StringOpt("o output", "", "Path of the decrypted archive")

		cmd.Action = func() {
			_, err := env.operator().Decrypt(*file, *output, env.passphrase(false))
			exitOnError(err)
		}
	})

	app.Command("tasks", "List the runtimes that can be installed", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			fmt.Println("Available tasks:")
			for _, name := range tasks.AllTaskNames() {
				fmt.Printf("   %s\n", name)
			}
		}
	})

	app.Command("run", "Install a runtime", func(cmd *cli.Cmd) {

		cmd.Spec = "RUNTIME"
		name := cmd.StringArg("RUNTIME", "", "The runtime to install. Run 'asfctl tasks' to get the list")

		cmd.Action = func() {
			task, err := tasks.CreateTaskWithName(domain.Runtime(*name))
			exitOnError(err)
			exitOnError(env.operator().RunTask(env.ctx, env.runner, task))
		}
	})

	app.Command("auth-watch", "Watch the ArchiSteamFarm output for Steam authentication prompts", func(cmd *cli.Cmd) {

		file := cmd.StringOpt("f file", "", "Follow a log file instead of the container output")

		cmd.Action = func() {
			exitOnError(env.operator().AuthWatch(env.ctx, *file))
		}
	})

	app.Command("import-2fa", "Import a mobile authenticator (.maFile) for a bot", func(cmd *cli.Cmd) {

		maFile := cmd.StringOpt("mafile", "", "Path of the .maFile (asked when empty)")
		bot := cmd.StringOpt("bot", "", "Name of the bot (asked when empty)")
		skipRootCheck := cmd.BoolOpt("skip-root-check", false, "Run even when not root")

		cmd.Action = func() {
			err := env.operator().ImportAuthenticator(env.ctx, actions.ImportOptions{
				MaFile:        *maFile,
				Bot:           *bot,
				SkipRootCheck: *skipRootCheck,
			})
			exitOnError(err)
		}
	})

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// operator builds the operator of the installation. The configuration gives
// the host name and the web server, it is optional for most commands.
func (e *environment) operator() *actions.Operator {
	layout := e.paths.Layout("")
	var ws domain.WebServer

	if cfg, err := config.Load(e.envPath); err == nil {
		layout = e.paths.Layout(cfg.FQDN())
		ws = cfg.WebServer
	} else {
		e.logger.Debug().Err(err).Str("path", e.envPath).Msg("configuration not loaded")
	}

	gw := gateway.NewSystem(e.logger, e.runner, layout.ComposeFile())
	return actions.NewOperator(e.logger, gw, e.asker, actions.NewBackups(e.logger, e.runID), state.NewDetector(e.logger), layout, ws)
}

func (e *environment) chooseWebServer(candidates []domain.WebServer) domain.WebServer {
	names := make([]string, len(candidates))
	for i, ws := range candidates {
		names[i] = string(ws)
	}
	return domain.WebServer(e.asker.Choose("Which web server should serve ASF?", names, names[len(names)-1]))
}

func (e *environment) passphrase(confirm bool) []byte {
	for {
		passphrase := e.asker.Password("Passphrase")
		if passphrase == "" {
			continue
		}
		if !confirm || e.asker.Password("Confirm the passphrase") == passphrase {
			return []byte(passphrase)
		}
		fmt.Println("The passphrases do not match.")
	}
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	actions.PrintFailure(os.Stderr, err)
	cli.Exit(1)
}
