package actions

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

func printStep(out io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(out, "\n %s %s\n\n", color.YellowString("▶"), fmt.Sprintf(format, args...))
}

func printItem(out io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(out, "  → %s\n", fmt.Sprintf(format, args...))
}

func printDone(out io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(out, "\n %s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// PrintFailure reports err the way the commands report success.
func PrintFailure(out io.Writer, err error) {
	fmt.Fprintf(out, "\n %s %s\n", color.RedString("✗"), err)
}
