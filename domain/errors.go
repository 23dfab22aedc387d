package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDomain        = errors.New("the main domain is empty or still set to the example.com placeholder")
	ErrMissingSubdomain     = errors.New("the ASF subdomain is empty")
	ErrInvalidPort          = errors.New("the ASF port must be an integer between 1 and 65535")
	ErrUnsupportedWebServer = errors.New("unsupported web server (expected apache2 or nginx)")
)

// ConfigError reports a configuration key that blocks a run.
type ConfigError struct {
	Key  string
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("%s in %s: %v", e.Key, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// BackupError reports a file that could not be copied into a backup set.
// Nothing has been overwritten when it is returned.
type BackupError struct {
	Path string
	Err  error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("unable to back up %s: %v", e.Path, e.Err)
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

// ApplyError reports an external service call that did not succeed.
type ApplyError struct {
	Service string
	Op      string
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("unable to %s %s: %v", e.Op, e.Service, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// ExitError is returned by a Runner when a command exits with a non-zero code.
type ExitError struct {
	Command Command
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("'%s' exited with code %d", e.Command, e.Code)
}
