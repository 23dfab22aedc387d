package actions

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"webup/asfctl/config"
	"webup/asfctl/domain"
	"webup/asfctl/state"
)

type fakeGateway struct {
	calls   []string
	running map[domain.Service]bool
	failOn  string
	output  string
}

func (g *fakeGateway) record(op string, target string) error {
	call := op + " " + target
	g.calls = append(g.calls, call)
	if call == g.failOn {
		return &domain.ApplyError{Service: target, Op: op, Err: &domain.ExitError{Code: 1}}
	}
	return nil
}

func (g *fakeGateway) EnsureInstalled(_ context.Context, runtime domain.Runtime) error {
	return g.record("install", string(runtime))
}

func (g *fakeGateway) Stop(_ context.Context, service domain.Service) error {
	return g.record("stop", string(service))
}

func (g *fakeGateway) Start(_ context.Context, service domain.Service) error {
	return g.record("start", string(service))
}

func (g *fakeGateway) Disable(_ context.Context, service domain.Service) error {
	return g.record("disable", string(service))
}

func (g *fakeGateway) Status(_ context.Context, service domain.Service) (bool, error) {
	return g.running[service], g.record("status", string(service))
}

func (g *fakeGateway) Follow(_ context.Context, service domain.Service) (io.ReadCloser, error) {
	if err := g.record("follow", string(service)); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(g.output)), nil
}

type fakeAsker struct {
	answers  map[string]string
	yn       map[string]bool
	password string
	asked    []string
}

func newFakeAsker() *fakeAsker {
	return &fakeAsker{answers: map[string]string{}, yn: map[string]bool{}}
}

func (a *fakeAsker) Prompt(message, defaultAnswer string) string {
	a.asked = append(a.asked, message)
	if answer, ok := a.answers[message]; ok {
		return answer
	}
	return defaultAnswer
}

func (a *fakeAsker) YN(message string, defaultToYes bool) bool {
	a.asked = append(a.asked, message)
	if answer, ok := a.yn[message]; ok {
		return answer
	}
	return defaultToYes
}

func (a *fakeAsker) Password(message string) string {
	a.asked = append(a.asked, message)
	return a.password
}

func (a *fakeAsker) Choose(message string, choices []string, defaultChoice string) string {
	a.asked = append(a.asked, message)
	if answer, ok := a.answers[message]; ok {
		return answer
	}
	return defaultChoice
}

type fixture struct {
	dir     string
	paths   Paths
	envPath string
	gateway *fakeGateway
	out     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	return &fixture{
		dir: dir,
		paths: Paths{
			Root:      filepath.Join(dir, "asf"),
			ApacheDir: filepath.Join(dir, "apache2"),
			NginxDir:  filepath.Join(dir, "nginx"),
		},
		envPath: filepath.Join(dir, "asf.env"),
		gateway: &fakeGateway{running: map[domain.Service]bool{}},
		out:     &bytes.Buffer{},
	}
}

func (f *fixture) writeEnv(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.envPath, []byte(content), 0600))
}

func (f *fixture) reconciler() *Reconciler {
	logger := zerolog.Nop()
	r := NewReconciler(logger, f.out, config.NewStore(logger, nil), state.NewDetector(logger), f.gateway, NewBackups(logger, "run-test"), f.paths)
	r.Geteuid = func() int { return 1000 }
	r.Installed = func() []domain.WebServer { return nil }
	return r
}

func (f *fixture) layout() domain.Layout {
	return f.paths.Layout("bot.foo.com")
}

func (f *fixture) operator() *Operator {
	logger := zerolog.Nop()
	o := NewOperator(logger, f.gateway, newFakeAsker(), NewBackups(logger, "run-test"), state.NewDetector(logger), f.layout(), domain.WebServerNginx)
	o.Out = f.out
	o.Geteuid = func() int { return 0 }
	return o
}

// install runs a complete reconcile of bot.foo.com served by nginx.
func (f *fixture) install(t *testing.T) Result {
	t.Helper()
	if _, err := os.Stat(f.envPath); os.IsNotExist(err) {
		f.writeEnv(t, "MAIN_DOMAIN=foo.com\nASF_SUBDOMAIN=bot\n")
	}
	res, err := f.reconciler().Reconcile(context.Background(), ReconcileOptions{EnvPath: f.envPath})
	require.NoError(t, err)
	f.gateway.calls = nil
	return res
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}
