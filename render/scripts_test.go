package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webup/asfctl/domain"
)

func TestWatchScript(t *testing.T) {
	data, err := WatchScript(testConfig())
	require.NoError(t, err)
	script := string(data)

	assert.Contains(t, script, "#!/usr/bin/env bash")
	assert.Contains(t, script, "docker compose logs -f --no-log-prefix --tail 50 asf")
	assert.Contains(t, script, "Web UI: https://bot.foo.com")
	for _, prompt := range domain.AuthPrompts {
		assert.Contains(t, script, `*"`+prompt.Marker+`"*)`)
		assert.Contains(t, script, shellQuote(prompt.Guidance))
	}
}

func TestImportScript(t *testing.T) {
	data, err := ImportScript(testConfig())
	require.NoError(t, err)
	script := string(data)

	assert.Contains(t, script, `install -m 600 "$mafile" "config/$bot.maFile"`)
	assert.Contains(t, script, "docker compose restart asf")
	assert.Contains(t, script, "https://bot.foo.com")
	assert.Contains(t, script, `if [ "$(id -u)" -ne 0 ]; then`)

	// the bot configuration is only offered when missing
	assert.Contains(t, script, `if [ ! -f "config/$bot.json" ]; then`)
	assert.Contains(t, script, "Create the bot configuration config/$bot.json? [Y/n]")
	assert.Contains(t, script, `"SteamLogin": %s`)
	assert.Contains(t, script, `"${login:-$bot}"`)
	assert.Contains(t, script, "umask 077")
	assert.Less(t, strings.Index(script, "config/$bot.maFile\""), strings.Index(script, "config/$bot.json"))
}

func TestScripts_OnlyDomainChangesOutput(t *testing.T) {
	a := testConfig()
	b := testConfig()
	b.Port = 9999
	b.IPCPassword = "other"
	b.TZ = "Europe/Paris"

	scriptA, err := WatchScript(a)
	require.NoError(t, err)
	scriptB, err := WatchScript(b)
	require.NoError(t, err)
	assert.Equal(t, scriptA, scriptB)

	b.Subdomain = "other"
	scriptC, err := WatchScript(b)
	require.NoError(t, err)
	assert.NotEqual(t, scriptA, scriptC)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'plain'", shellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
