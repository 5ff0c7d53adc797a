package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	ColorPrimary = lipgloss.Color("205")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorError   = lipgloss.Color("203")
	ColorMuted   = lipgloss.Color("245")

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// newLogger builds the process logger with level badges in the CLI palette
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix: "llm-prompts",
		Level:  level,
	})

	styles := log.DefaultStyles()
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(ColorWarning)
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(ColorError)
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(ColorMuted)
	logger.SetStyles(styles)

	return logger
}
