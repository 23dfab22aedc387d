package domain

// WebServer is the reverse proxy fronting the ASF web UI.
type WebServer string

const (
	WebServerApache WebServer = "apache2"
	WebServerNginx  WebServer = "nginx"
)

// WebServers lists the supported proxies in display order.
var WebServers = []WebServer{WebServerApache, WebServerNginx}

// Known reports whether w is one of the supported proxies.
func (w WebServer) Known() bool {
	return w == WebServerApache || w == WebServerNginx
}

// Runtime returns the provisioning runtime installing this web server.
func (w WebServer) Runtime() Runtime {
	return Runtime(w)
}

// Service returns the system service name of this web server.
func (w WebServer) Service() Service {
	return Service(w)
}

// Config is the installer configuration persisted in the .env file.
// It is passed by value through every stage of a run.
type Config struct {
	MainDomain    string `validate:"required,ne=example.com"`
	Subdomain     string `validate:"required"`
	IPCPassword   string
	CryptKey      string
	WebServer     WebServer
	RestartPolicy string
	Port          int `validate:"min=1,max=65535"`
	TZ            string

	// keys found in the file that asfctl does not manage, kept on rewrite
	Extra map[string]string
}

// FQDN is the public host name of the ASF web UI.
func (c Config) FQDN() string {
	return c.Subdomain + "." + c.MainDomain
}

// URL is the public HTTPS address of the ASF web UI.
func (c Config) URL() string {
	return "https://" + c.FQDN()
}
