package render

import (
	"bytes"
	"fmt"
	"text/template"

	"webup/asfctl/domain"
)

const nginxTemplate = `# Managed by asfctl, changes are overwritten by 'asfctl install'.
server {
    listen 80;
    listen [::]:80;
    server_name {{ .FQDN }};

    return 301 https://$host$request_uri;
}

server {
    listen 443 ssl http2;
    listen [::]:443 ssl http2;
    server_name {{ .FQDN }};

    ssl_certificate     {{ .CertFile }};
    ssl_certificate_key {{ .KeyFile }};

    access_log /var/log/nginx/{{ .FQDN }}.access.log;
    error_log  /var/log/nginx/{{ .FQDN }}.error.log;

    location / {
        proxy_pass http://localhost:{{ .Port }};
        proxy_http_version 1.1;

        proxy_set_header Host $host;
        proxy_set_header X-Forwarded-Host $host:$server_port;
        proxy_set_header X-Forwarded-Proto $scheme;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Real-IP $remote_addr;

        # the web UI console uses websockets
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";
    }
}
`

const apacheTemplate = `# Managed by asfctl, changes are overwritten by 'asfctl install'.
<VirtualHost *:80>
    ServerName {{ .FQDN }}
    Redirect permanent / https://{{ .FQDN }}/

    ErrorLog ${APACHE_LOG_DIR}/{{ .FQDN }}-error.log
    CustomLog ${APACHE_LOG_DIR}/{{ .FQDN }}-access.log combined
</VirtualHost>

<IfModule mod_ssl.c>
<VirtualHost *:443>
    ServerName {{ .FQDN }}

    SSLEngine on
    SSLCertificateFile {{ .CertFile }}
    SSLCertificateKeyFile {{ .KeyFile }}

    ProxyRequests Off
    ProxyPreserveHost On

    # the web UI console uses websockets
    RewriteEngine On
    RewriteCond %{HTTP:Upgrade} =websocket [NC]
    RewriteRule /(.*) ws://localhost:{{ .Port }}/$1 [P,L]

    ProxyPass / http://localhost:{{ .Port }}/
    ProxyPassReverse / http://localhost:{{ .Port }}/

    ErrorLog ${APACHE_LOG_DIR}/{{ .FQDN }}-ssl-error.log
    CustomLog ${APACHE_LOG_DIR}/{{ .FQDN }}-ssl-access.log combined
</VirtualHost>
</IfModule>
`

var (
	nginxTmpl  = template.Must(template.New("nginx").Parse(nginxTemplate))
	apacheTmpl = template.Must(template.New("apache2").Parse(apacheTemplate))
)

type vhostData struct {
	FQDN     string
	Port     int
	CertFile string
	KeyFile  string
}

// VHost renders the virtual host of the configured web server.
func VHost(cfg domain.Config) ([]byte, error) {
	var tmpl *template.Template
	switch cfg.WebServer {
	case domain.WebServerNginx:
		tmpl = nginxTmpl
	case domain.WebServerApache:
		tmpl = apacheTmpl
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedWebServer, cfg.WebServer)
	}

	data := vhostData{
		FQDN:     cfg.FQDN(),
		Port:     cfg.Port,
		CertFile: CertFile,
		KeyFile:  KeyFile,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
