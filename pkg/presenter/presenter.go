// Package presenter provides consistent CLI output for user-facing messages:
// success, error, warning and informational lines with color support and a
// quiet mode for scripting.
package presenter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Presenter is the interface for user-facing CLI output.
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Separator()
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter implements Presenter for terminal output.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

// New creates a TerminalPresenter writing to stdout/stderr, honouring
// NO_COLOR and SKILLSMITH_COLOR.
func New() *TerminalPresenter {
	configureColor()
	return &TerminalPresenter{output: os.Stdout, errorOutput: os.Stderr}
}

// NewWithWriters creates a TerminalPresenter with custom writers, used by
// tests.
func NewWithWriters(output, errorOutput io.Writer) *TerminalPresenter {
	return &TerminalPresenter{output: output, errorOutput: errorOutput}
}

func configureColor() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
		return
	}
	switch os.Getenv("SKILLSMITH_COLOR") {
	case "always", "force":
		color.NoColor = false
	case "never", "off":
		color.NoColor = true
	}
}

// Error prints an error with optional context to the error stream. Errors are
// shown even in quiet mode.
func (p *TerminalPresenter) Error(err error, context string) {
	if context != "" {
		fmt.Fprintf(p.errorOutput, "%s %s: %v\n", color.RedString("Error:"), context, err)
		return
	}
	fmt.Fprintf(p.errorOutput, "%s %v\n", color.RedString("Error:"), err)
}

// Success prints a success message.
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s %s\n", color.GreenString("✓"), message)
}

// Warning prints a warning message.
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s %s\n", color.YellowString("!"), message)
}

// Info prints an informational message.
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, message)
}

// Section prints a highlighted section title.
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "\n%s\n", color.CyanString(title))
}

// Separator prints a horizontal rule.
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, "----------------------------------------")
}

// SetQuiet toggles quiet mode; only errors are shown when quiet.
func (p *TerminalPresenter) SetQuiet(quiet bool) { p.quiet = quiet }

// IsQuiet reports whether quiet mode is on.
func (p *TerminalPresenter) IsQuiet() bool { return p.quiet }

// Default is the shared presenter used by the CLI.
var Default Presenter = New()

// Error prints an error via the default presenter.
func Error(err error, context string) { Default.Error(err, context) }

// Success prints a success message via the default presenter.
func Success(message string) { Default.Success(message) }

// Warning prints a warning via the default presenter.
func Warning(message string) { Default.Warning(message) }

// Info prints an informational message via the default presenter.
func Info(message string) { Default.Info(message) }

// Section prints a section title via the default presenter.
func Section(title string) { Default.Section(title) }

// Separator prints a horizontal rule via the default presenter.
func Separator() { Default.Separator() }

// SetQuiet toggles quiet mode on the default presenter.
func SetQuiet(quiet bool) { Default.SetQuiet(quiet) }
