package render

import (
	"fmt"

	"webup/asfctl/domain"
)

// ChooseWebServer decides which proxy to configure. A configured value must
// be a known one. Without a configured value the only installed server is
// taken, otherwise choose is asked among the candidates.
func ChooseWebServer(configured domain.WebServer, installed []domain.WebServer, choose func([]domain.WebServer) domain.WebServer) (domain.WebServer, error) {
	if configured != "" {
		if !configured.Known() {
			return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedWebServer, configured)
		}
		return configured, nil
	}

	candidates := []domain.WebServer{}
	for _, ws := range installed {
		if ws.Known() {
			candidates = append(candidates, ws)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	if len(candidates) == 0 {
		candidates = domain.WebServers
	}

	if choose == nil {
		return "", fmt.Errorf("%w: WEB_SERVER is empty and %d servers are possible", domain.ErrUnsupportedWebServer, len(candidates))
	}

	chosen := choose(candidates)
	if !chosen.Known() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedWebServer, chosen)
	}
	return chosen, nil
}
