package actions

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"webup/asfctl/domain"
	"webup/asfctl/utils"
)

// MatchAuthPrompt returns the first known prompt found in line.
func MatchAuthPrompt(line string) (domain.AuthPrompt, bool) {
	for _, prompt := range domain.AuthPrompts {
		if strings.Contains(line, prompt.Marker) {
			return prompt, true
		}
	}
	return domain.AuthPrompt{}, false
}

// ScanAuthPrompts reads r line by line and calls found for every line
// holding a known prompt. It returns when r is exhausted.
func ScanAuthPrompts(r io.Reader, found func(line string, prompt domain.AuthPrompt)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if prompt, ok := MatchAuthPrompt(line); ok {
			found(line, prompt)
		}
	}
	return scanner.Err()
}

// AuthWatch prints guidance for every authentication prompt ASF writes,
// reading the container output or, when file is set, following a log file.
// It runs until ctx is done.
func (o *Operator) AuthWatch(ctx context.Context, file string) error {
	var (
		stream io.ReadCloser
		err    error
	)
	if file != "" {
		stream, err = utils.Follow(ctx, file)
	} else {
		if err := o.requireInstallation(); err != nil {
			return err
		}
		stream, err = o.Gateway.Follow(ctx, domain.ServiceContainer)
	}
	if err != nil {
		return err
	}
	defer closeOnDone(ctx, stream)()

	source := file
	if source == "" {
		source = "the ASF container"
	}
	printStep(o.Out, "Watching %s for authentication prompts (Ctrl+C to stop)...", source)

	err = ScanAuthPrompts(stream, func(line string, prompt domain.AuthPrompt) {
		o.Logger.Info().Str("kind", prompt.Kind).Msg("authentication prompt")
		fmt.Fprintf(o.Out, " %s %s\n", color.YellowString("▶"), strings.TrimSpace(line))
		printItem(o.Out, "%s", prompt.Guidance)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
