package logging

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger creates the logger of one asfctl invocation. Logs go to stderr so
// that they never mix with the operator output, every entry carries run_id.
func NewLogger(level string, runID string) zerolog.Logger {
	return newLogger(os.Stderr, level, runID)
}

func newLogger(out io.Writer, level string, runID string) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: !isTerminal(out)}
	logger := zerolog.New(writer).With().Timestamp().Str("run_id", runID).Logger()

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}

	return logger.Level(parsed)
}

// NewRunID identifies an invocation in the logs and in backup manifests.
func NewRunID() string {
	return uuid.NewString()
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
