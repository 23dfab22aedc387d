package render

import (
	"bytes"
	"encoding/json"

	"webup/asfctl/domain"
)

// daemonConfig is the global ASF.json. Field order is the output order.
type daemonConfig struct {
	Headless          bool     `json:"Headless"`
	IPC               bool     `json:"IPC"`
	IPCHost           string   `json:"IPCHost"`
	IPCPort           int      `json:"IPCPort"`
	IPCPassword       string   `json:"IPCPassword"`
	SteamProtocols    int      `json:"SteamProtocols"`
	ConnectionTimeout int      `json:"ConnectionTimeout"`
	WebLimiterDelay   int      `json:"WebLimiterDelay"`
	CurrentCulture    string   `json:"CurrentCulture"`
	Blacklist         []uint32 `json:"Blacklist"`
	SteamOwnerID      uint64   `json:"SteamOwnerID"`

	// the token dumper plugin reports to a third party, it stays off
	SteamTokenDumperPluginEnabled bool `json:"SteamTokenDumperPluginEnabled"`
}

// DaemonConfig renders the global ASF configuration.
func DaemonConfig(cfg domain.Config) ([]byte, error) {
	doc := daemonConfig{
		Headless:          false,
		IPC:               true,
		IPCHost:           "*",
		IPCPort:           cfg.Port,
		IPCPassword:       cfg.IPCPassword,
		SteamProtocols:    7,
		ConnectionTimeout: 90,
		WebLimiterDelay:   300,
		CurrentCulture:    "en-US",
		Blacklist:         []uint32{},
		SteamOwnerID:      0,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
