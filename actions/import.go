package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"webup/asfctl/utils"
)

const maFileExtension = ".maFile"

var (
	ErrNotRoot        = errors.New("this command must be run as root")
	ErrMissingMaFile  = errors.New("the .maFile path is required")
	ErrMissingBotName = errors.New("the bot name is required")
)

type ImportOptions struct {
	MaFile        string
	Bot           string
	SkipRootCheck bool
}

type botConfig struct {
	Enabled       bool
	SteamLogin    string
	SteamPassword string
}

// ImportAuthenticator copies a mobile authenticator file next to the bot
// configs, so that ASF generates the 2FA codes itself.
func (o *Operator) ImportAuthenticator(ctx context.Context, opts ImportOptions) error {
	if !opts.SkipRootCheck && o.Geteuid() != 0 {
		return ErrNotRoot
	}
	if err := o.requireInstallation(); err != nil {
		return err
	}

	source := strings.TrimSpace(opts.MaFile)
	if source == "" {
		source = strings.TrimSpace(o.Asker.Prompt("Path of the .maFile", ""))
	}
	if source == "" {
		return ErrMissingMaFile
	}
	if !utils.FileExists(source) {
		return fmt.Errorf("unable to read the .maFile: %s is not a file", source)
	}
	content, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("unable to read the .maFile: %w", err)
	}
	if !json.Valid(content) {
		return fmt.Errorf("%s is not a valid .maFile (expected JSON)", source)
	}

	bot := strings.TrimSpace(opts.Bot)
	if bot == "" {
		bot = strings.TrimSpace(o.Asker.Prompt("Bot name", ""))
	}
	if bot == "" {
		return ErrMissingBotName
	}
	if filepath.Base(bot) != bot || strings.HasPrefix(bot, ".") {
		return fmt.Errorf("invalid bot name %q", bot)
	}

	target := filepath.Join(o.Layout.ConfigDir(), bot+maFileExtension)
	if err := utils.WriteFileAtomic(target, content, 0600); err != nil {
		return err
	}
	printItem(o.Out, "%s imported", target)

	botFile := filepath.Join(o.Layout.ConfigDir(), bot+".json")
	if !utils.FileExists(botFile) && o.Asker.YN(fmt.Sprintf("Create the bot configuration %s?", bot+".json"), true) {
		if err := o.writeBotConfig(botFile, bot); err != nil {
			return err
		}
		printItem(o.Out, "%s created", botFile)
	}

	if o.Asker.YN("Restart ASF now?", true) {
		if err := o.restartContainer(ctx); err != nil {
			return err
		}
	}

	printDone(o.Out, "Authenticator of %s imported", bot)
	return nil
}

func (o *Operator) writeBotConfig(path, bot string) error {
	cfg := botConfig{
		Enabled:       true,
		SteamLogin:    strings.TrimSpace(o.Asker.Prompt("Steam login", bot)),
		SteamPassword: o.Asker.Password("Steam password"),
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, append(data, '\n'), 0600)
}
