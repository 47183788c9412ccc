// Package printer writes the colored CLI output of the maintenance commands.
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Out and ErrOut are where messages go. Tests swap them.
var (
	Out    io.Writer = os.Stdout
	ErrOut io.Writer = os.Stderr
)

// Success prints a green line prefixed with a check mark.
func Success(format string, a ...interface{}) {
	green.Fprintf(Out, "✓ "+format+"\n", a...)
}

// Warning prints a yellow line.
func Warning(format string, a ...interface{}) {
	yellow.Fprintf(Out, "! "+format+"\n", a...)
}

// Info prints an uncolored line.
func Info(format string, a ...interface{}) {
	fmt.Fprintf(Out, format+"\n", a...)
}

// Field prints a cyan label followed by its value.
func Field(label string, value interface{}) {
	cyan.Fprintf(Out, "  %-16s", label+":")
	fmt.Fprintf(Out, " %v\n", value)
}

// Error prints title in red and explanation below it to ErrOut, and returns
// an error carrying the title for cobra.
func Error(title, explanation string) error {
	red.Fprintf(ErrOut, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(ErrOut, "%s\n", explanation)
	}
	return fmt.Errorf("%s", title)
}
