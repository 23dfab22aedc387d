package config

import (
	"bufio"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"webup/asfctl/domain"
	"webup/asfctl/utils"
)

const (
	DefaultFilename   = ".env"
	PlaceholderDomain = "example.com"
)

const fileHeader = "# ArchiSteamFarm installer configuration.\n" +
	"# Edit the values below, then run 'asfctl install' again to apply them.\n"

// Defaults returns the configuration of a fresh installation, without secrets.
func Defaults() domain.Config {
	return domain.Config{
		MainDomain:    PlaceholderDomain,
		Subdomain:     "asf",
		WebServer:     domain.WebServerNginx,
		RestartPolicy: "unless-stopped",
		Port:          1242,
		TZ:            "Etc/UTC",
	}
}

// Store loads and persists the .env configuration.
type Store struct {
	logger zerolog.Logger
	editor Editor
	random io.Reader
}

// NewStore creates a Store. A nil editor skips the manual edit of a new file.
func NewStore(logger zerolog.Logger, editor Editor) *Store {
	return &Store{
		logger: logger.With().Str("component", "config").Logger(),
		editor: editor,
		random: rand.Reader,
	}
}

// LoadOrInit loads the configuration at path. When the file does not exist
// it is created from the defaults with fresh secrets and handed to the editor.
// An existing file is only read, see EnsureSecrets.
// created reports whether the file was created by this call.
func (s *Store) LoadOrInit(ctx context.Context, path string) (cfg domain.Config, created bool, err error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = Defaults()
		if err := s.fillSecrets(&cfg); err != nil {
			return cfg, false, err
		}
		if err := Write(path, cfg); err != nil {
			return cfg, false, err
		}
		created = true

		s.logger.Info().Str("path", path).Msg("created configuration file")

		if s.editor != nil {
			if err := s.editor.Edit(ctx, path); err != nil {
				s.logger.Warn().Err(err).Str("path", path).Msg("editor failed, using the file as it is")
			}
		}
	} else if err != nil {
		return cfg, false, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg, err = Load(path)
	return cfg, created, err
}

// EnsureSecrets generates the secrets cfg lacks and saves them in the file at
// path, leaving its other lines as they are. A secret with a value is kept.
func (s *Store) EnsureSecrets(path string, cfg domain.Config) (domain.Config, error) {
	if cfg.IPCPassword != "" && cfg.CryptKey != "" {
		return cfg, nil
	}

	if err := s.fillSecrets(&cfg); err != nil {
		return cfg, err
	}
	err := Set(path, map[string]string{
		KeyIPCPassword: cfg.IPCPassword,
		KeyCryptKey:    cfg.CryptKey,
	})
	if err != nil {
		return cfg, err
	}
	s.logger.Info().Str("path", path).Msg("generated missing secrets")

	return cfg, nil
}

func (s *Store) fillSecrets(cfg *domain.Config) error {
	if cfg.IPCPassword == "" {
		password, err := GeneratePassword(s.random, PasswordLength)
		if err != nil {
			return fmt.Errorf("generate IPC password: %w", err)
		}
		cfg.IPCPassword = password
	}
	if cfg.CryptKey == "" {
		key, err := GenerateKey(s.random)
		if err != nil {
			return fmt.Errorf("generate crypt key: %w", err)
		}
		cfg.CryptKey = key
	}
	return nil
}

// Load reads the configuration at path over the defaults.
func Load(path string) (domain.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("unable to read the configuration: %w", err)
	}
	defer f.Close()

	values, err := Parse(f)
	if err != nil {
		return domain.Config{}, fmt.Errorf("unable to parse %s: %w", path, err)
	}

	cfg, err := FromValues(values)
	if ce, ok := err.(*domain.ConfigError); ok {
		ce.Path = path
	}
	return cfg, err
}

// FromValues applies key/value pairs over the defaults.
func FromValues(values map[string]string) (domain.Config, error) {
	cfg := Defaults()
	for name, value := range values {
		key, ok := lookupKey(name)
		if !ok {
			if cfg.Extra == nil {
				cfg.Extra = map[string]string{}
			}
			cfg.Extra[name] = value
			continue
		}
		if err := key.set(&cfg, value); err != nil {
			return cfg, &domain.ConfigError{Key: name, Err: err}
		}
	}
	return cfg, nil
}

// Values returns every key of cfg, managed and extra.
func Values(cfg domain.Config) map[string]string {
	values := map[string]string{}
	for k, v := range cfg.Extra {
		values[k] = v
	}
	for _, key := range Keys {
		values[key.Name] = key.get(cfg)
	}
	return values
}

// Parse reads KEY=value lines. Blank lines and comments are skipped,
// an 'export ' prefix and surrounding quotes are removed.
func Parse(r io.Reader) (map[string]string, error) {
	values := map[string]string{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected KEY=value", lineNumber)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNumber)
		}
		values[key] = unquote(strings.TrimSpace(value))
	}

	return values, scanner.Err()
}

// Write persists cfg at path, readable by its owner only.
func Write(path string, cfg domain.Config) error {
	var b strings.Builder
	b.WriteString(fileHeader)

	for _, key := range Keys {
		b.WriteString("\n# " + key.Comment + "\n")
		b.WriteString(key.Name + "=" + quote(key.get(cfg)) + "\n")
	}

	if len(cfg.Extra) > 0 {
		names := make([]string, 0, len(cfg.Extra))
		for name := range cfg.Extra {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("\n# Other settings\n")
		for _, name := range names {
			b.WriteString(name + "=" + quote(cfg.Extra[name]) + "\n")
		}
	}

	if err := utils.WriteFileAtomic(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("unable to write the configuration: %w", err)
	}
	return nil
}

// Set changes the given keys of the file at path in place. Comments, order
// and other keys are kept, keys the file lacks are appended.
func Set(path string, values map[string]string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("unable to read the configuration: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read the configuration: %w", err)
	}

	lines := []string{}
	if content := strings.TrimSuffix(string(data), "\n"); content != "" {
		lines = strings.Split(content, "\n")
	}

	found := map[string]bool{}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		name, _, ok := strings.Cut(strings.TrimPrefix(trimmed, "export "), "=")
		name = strings.TrimSpace(name)
		value, managed := values[name]
		if !ok || !managed {
			continue
		}
		lines[i] = name + "=" + quote(value)
		found[name] = true
	}

	missing := []string{}
	for name := range values {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		lines = append(lines, name+"="+quote(values[name]))
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := utils.WriteFileAtomic(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("unable to write the configuration: %w", err)
	}
	return nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

func quote(v string) string {
	if !strings.ContainsAny(v, " \t#\"'") {
		return v
	}
	if strings.Contains(v, "\"") {
		return "'" + v + "'"
	}
	return "\"" + v + "\""
}
