package render

import (
	"bytes"
	"strings"
	"text/template"

	"webup/asfctl/domain"
)

const watchScriptTemplate = `#!/usr/bin/env bash
# Managed by asfctl, changes are overwritten by 'asfctl install'.
# Follows the ArchiSteamFarm output and explains the login prompts it shows.
set -euo pipefail

cd "$(dirname "$0")"

echo "Watching ASF output, press Ctrl+C to stop."
echo "Web UI: https://{{ .FQDN }}"

docker compose logs -f --no-log-prefix --tail 50 {{ .Service }} | while IFS= read -r line; do
    printf '%s\n' "$line"
    case "$line" in
{{- range .Prompts }}
        *"{{ .Marker }}"*)
            printf '\n>>> %s\n>>> Web UI: https://{{ $.FQDN }}\n\n' {{ quote .Guidance }}
            ;;
{{- end }}
    esac
done
`

const importScriptTemplate = `#!/usr/bin/env bash
# Managed by asfctl, changes are overwritten by 'asfctl install'.
# Copies a Steam Desktop Authenticator .maFile into the ASF config directory
# and creates the bot configuration when it is missing.
set -euo pipefail

cd "$(dirname "$0")"

if [ "$(id -u)" -ne 0 ]; then
    echo "Please run as root." >&2
    exit 1
fi

read -r -p "Path of the .maFile: " mafile
if [ -z "$mafile" ] || [ ! -f "$mafile" ]; then
    echo "File not found: $mafile" >&2
    exit 1
fi

read -r -p "Bot name: " bot
if [ -z "$bot" ]; then
    echo "The bot name is required." >&2
    exit 1
fi

install -m 600 "$mafile" "config/$bot.maFile"
echo "Imported config/$bot.maFile"

json_string() {
    local s=${1//\\/\\\\}
    s=${s//\"/\\\"}
    printf '"%s"' "$s"
}

if [ ! -f "config/$bot.json" ]; then
    read -r -p "Create the bot configuration config/$bot.json? [Y/n] " create
    case "$create" in
        [nN]*) ;;
        *)
            read -r -p "Steam login [$bot]: " login
            read -r -s -p "Steam password: " password
            echo
            (
                umask 077
                printf '{\n  "Enabled": true,\n  "SteamLogin": %s,\n  "SteamPassword": %s\n}\n' \
                    "$(json_string "${login:-$bot}")" "$(json_string "$password")" > "config/$bot.json"
            )
            echo "Created config/$bot.json"
            ;;
    esac
fi

read -r -p "Restart ASF now? [y/N] " restart
case "$restart" in
    [yY]*) docker compose restart {{ .Service }} ;;
esac

echo "Check the bot at https://{{ .FQDN }}"
`

var scriptFuncs = template.FuncMap{"quote": shellQuote}

var (
	watchScriptTmpl  = template.Must(template.New("watch").Funcs(scriptFuncs).Parse(watchScriptTemplate))
	importScriptTmpl = template.Must(template.New("import").Funcs(scriptFuncs).Parse(importScriptTemplate))
)

type scriptData struct {
	FQDN    string
	Service string
	Prompts []domain.AuthPrompt
}

// WatchScript renders the shell version of 'asfctl auth-watch'.
func WatchScript(cfg domain.Config) ([]byte, error) {
	return executeScript(watchScriptTmpl, cfg)
}

// ImportScript renders the shell version of 'asfctl import-2fa'.
func ImportScript(cfg domain.Config) ([]byte, error) {
	return executeScript(importScriptTmpl, cfg)
}

func executeScript(tmpl *template.Template, cfg domain.Config) ([]byte, error) {
	data := scriptData{
		FQDN:    cfg.FQDN(),
		Service: string(domain.ServiceContainer),
		Prompts: domain.AuthPrompts,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
