package config

import (
	"strconv"
	"strings"

	"webup/asfctl/domain"
)

const (
	KeyMainDomain    = "MAIN_DOMAIN"
	KeySubdomain     = "ASF_SUBDOMAIN"
	KeyIPCPassword   = "ASF_IPC_PASSWORD"
	KeyCryptKey      = "ASF_CRYPT_KEY"
	KeyWebServer     = "WEB_SERVER"
	KeyRestartPolicy = "ASF_RESTART_POLICY"
	KeyPort          = "ASF_PORT"
	KeyTZ            = "TZ"
)

// KeySpec describes one managed key of the .env file.
type KeySpec struct {
	Name    string
	Comment string
	get     func(domain.Config) string
	set     func(*domain.Config, string) error
}

// Keys are written to the .env file in this order.
var Keys = []KeySpec{
	{
		Name:    KeyMainDomain,
		Comment: "Domain you own, the web UI is served on ASF_SUBDOMAIN.MAIN_DOMAIN",
		get:     func(c domain.Config) string { return c.MainDomain },
		set:     func(c *domain.Config, v string) error { c.MainDomain = v; return nil },
	},
	{
		Name:    KeySubdomain,
		Comment: "Subdomain of the web UI",
		get:     func(c domain.Config) string { return c.Subdomain },
		set:     func(c *domain.Config, v string) error { c.Subdomain = v; return nil },
	},
	{
		Name:    KeyIPCPassword,
		Comment: "Password of the ASF web UI (generated)",
		get:     func(c domain.Config) string { return c.IPCPassword },
		set:     func(c *domain.Config, v string) error { c.IPCPassword = v; return nil },
	},
	{
		Name:    KeyCryptKey,
		Comment: "Key ASF encrypts stored credentials with (generated, keep it safe)",
		get:     func(c domain.Config) string { return c.CryptKey },
		set:     func(c *domain.Config, v string) error { c.CryptKey = v; return nil },
	},
	{
		Name:    KeyWebServer,
		Comment: "Reverse proxy: apache2 or nginx",
		get:     func(c domain.Config) string { return string(c.WebServer) },
		set: func(c *domain.Config, v string) error {
			c.WebServer = domain.WebServer(strings.ToLower(v))
			return nil
		},
	},
	{
		Name:    KeyRestartPolicy,
		Comment: "Docker restart policy of the container",
		get:     func(c domain.Config) string { return c.RestartPolicy },
		set:     func(c *domain.Config, v string) error { c.RestartPolicy = v; return nil },
	},
	{
		Name:    KeyPort,
		Comment: "Local port of the ASF web UI",
		get:     func(c domain.Config) string { return strconv.Itoa(c.Port) },
		set: func(c *domain.Config, v string) error {
			port, err := strconv.Atoi(v)
			if err != nil {
				return domain.ErrInvalidPort
			}
			c.Port = port
			return nil
		},
	},
	{
		Name:    KeyTZ,
		Comment: "Time zone of the container",
		get:     func(c domain.Config) string { return c.TZ },
		set:     func(c *domain.Config, v string) error { c.TZ = v; return nil },
	},
}

func lookupKey(name string) (KeySpec, bool) {
	for _, k := range Keys {
		if k.Name == name {
			return k, true
		}
	}
	return KeySpec{}, false
}
