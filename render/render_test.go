package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"webup/asfctl/domain"
)

func testConfig() domain.Config {
	return domain.Config{
		MainDomain:    "foo.com",
		Subdomain:     "bot",
		IPCPassword:   "Pa55<word>&",
		CryptKey:      "c2VjcmV0K2tleS9iYXNlNjQ9PT0=",
		WebServer:     domain.WebServerNginx,
		RestartPolicy: "unless-stopped",
		Port:          1242,
		TZ:            "Etc/UTC",
	}
}

func testLayout() domain.Layout {
	return domain.Layout{
		Root:      "/opt/asf",
		ApacheDir: "/etc/apache2",
		NginxDir:  "/etc/nginx",
		FQDN:      "bot.foo.com",
	}
}

func artifactByName(t *testing.T, artifacts []domain.Artifact, name string) domain.Artifact {
	t.Helper()
	for _, a := range artifacts {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("artifact %q not rendered", name)
	return domain.Artifact{}
}

func TestRender_Nginx(t *testing.T) {
	artifacts, err := Render(testConfig(), testLayout())
	require.NoError(t, err)
	require.Len(t, artifacts, 6)

	vhost := artifactByName(t, artifacts, "nginx-vhost")
	assert.Equal(t, "/etc/nginx/conf.d/bot.foo.com.conf", vhost.Path)
	assert.Contains(t, string(vhost.Content), "server_name bot.foo.com;")

	daemon := artifactByName(t, artifacts, "daemon-config")
	assert.Equal(t, "/opt/asf/config/ASF.json", daemon.Path)
	assert.Equal(t, 0640, int(daemon.Mode))

	compose := artifactByName(t, artifacts, "compose-manifest")
	assert.Equal(t, "/opt/asf/docker-compose.yml", compose.Path)

	watch := artifactByName(t, artifacts, "watch-script")
	assert.Equal(t, "/opt/asf/asf-2fa-watch.sh", watch.Path)
	assert.Equal(t, 0755, int(watch.Mode))
	assert.Equal(t, "/opt/asf/asf-import-mafile.sh", artifactByName(t, artifacts, "import-script").Path)
	assert.Equal(t, "/opt/asf/.asfctl.yaml", artifactByName(t, artifacts, "deployment-record").Path)
}

func TestDeploymentRecord(t *testing.T) {
	cfg := testConfig()
	cfg.WebServer = domain.WebServerApache

	data, err := DeploymentRecord(cfg, testLayout())
	require.NoError(t, err)

	var record domain.Deployment
	require.NoError(t, yaml.Unmarshal(data, &record))
	assert.Equal(t, domain.Deployment{
		WebServer: domain.WebServerApache,
		FQDN:      "bot.foo.com",
		VHost:     "/etc/apache2/sites-enabled/bot.foo.com.conf",
	}, record)
}

func TestRender_Apache(t *testing.T) {
	cfg := testConfig()
	cfg.WebServer = domain.WebServerApache

	artifacts, err := Render(cfg, testLayout())
	require.NoError(t, err)

	vhost := artifactByName(t, artifacts, "apache2-vhost")
	assert.Equal(t, "/etc/apache2/sites-enabled/bot.foo.com.conf", vhost.Path)
	for _, a := range artifacts {
		assert.NotEqual(t, "nginx-vhost", a.Name, "only one proxy document is rendered")
	}
}

func TestRender_IsPure(t *testing.T) {
	first, err := Render(testConfig(), testLayout())
	require.NoError(t, err)
	second, err := Render(testConfig(), testLayout())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_UnsupportedWebServer(t *testing.T) {
	cfg := testConfig()
	cfg.WebServer = "caddy"

	artifacts, err := Render(cfg, testLayout())
	require.ErrorIs(t, err, domain.ErrUnsupportedWebServer)
	assert.Contains(t, err.Error(), "caddy")
	assert.Empty(t, artifacts)
}

func TestDaemonConfig_Fields(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 1300

	data, err := DaemonConfig(cfg)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, false, doc["Headless"])
	assert.Equal(t, true, doc["IPC"])
	assert.Equal(t, "*", doc["IPCHost"])
	assert.Equal(t, float64(1300), doc["IPCPort"])
	assert.Equal(t, "Pa55<word>&", doc["IPCPassword"])
	assert.Equal(t, float64(7), doc["SteamProtocols"])
	assert.Equal(t, "en-US", doc["CurrentCulture"])
	assert.Equal(t, []interface{}{}, doc["Blacklist"])
	assert.Equal(t, float64(0), doc["SteamOwnerID"])
	assert.Equal(t, false, doc["SteamTokenDumperPluginEnabled"])

	// secrets are written verbatim, not HTML escaped
	assert.Contains(t, string(data), `"IPCPassword": "Pa55<word>&"`)
}

func TestComposeManifest(t *testing.T) {
	data, err := ComposeManifest(testConfig())
	require.NoError(t, err)

	var manifest domain.ComposeFile
	require.NoError(t, yaml.Unmarshal(data, &manifest))
	require.Len(t, manifest.Services, 1)

	svc := manifest.Services["asf"]
	assert.Equal(t, Image, svc.Image)
	assert.Equal(t, "host", svc.NetworkMode)
	assert.Equal(t, "unless-stopped", svc.Restart)
	assert.Equal(t, []string{"--ignore-unsupported-environment"}, svc.Command)
	assert.Equal(t, []string{"./config:/app/config", "./plugins:/app/plugins"}, svc.Volumes)
	assert.Equal(t, map[string]string{
		"ASF_CRYPTKEY": "c2VjcmV0K2tleS9iYXNlNjQ9PT0=",
		"TZ":           "Etc/UTC",
	}, svc.Environment)
}

func TestComposeManifest_RestartPolicyPassedThrough(t *testing.T) {
	cfg := testConfig()
	cfg.RestartPolicy = "on-failure:5"

	data, err := ComposeManifest(cfg)
	require.NoError(t, err)

	var manifest domain.ComposeFile
	require.NoError(t, yaml.Unmarshal(data, &manifest))
	assert.Equal(t, "on-failure:5", manifest.Services["asf"].Restart)
}
