package errors

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

var (
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// CLIErrorHandler writes terminal diagnostics for failed runs
type CLIErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(out io.Writer, verbose bool) *CLIErrorHandler {
	return &CLIErrorHandler{
		Verbose: verbose,
		Out:     out,
	}
}

// HandleError prints the formatted error and returns it unchanged
func (h *CLIErrorHandler) HandleError(err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintln(h.Out, h.FormatError(err))
	return err
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	var line string
	switch appErr.Severity {
	case SeverityCritical:
		line = criticalStyle.Render("CRITICAL:") + " " + appErr.Message
	case SeverityError:
		line = errorStyle.Render("ERROR:") + " " + appErr.Message
	case SeverityWarning:
		line = warningStyle.Render("WARNING:") + " " + appErr.Message
	case SeverityInfo:
		line = infoStyle.Render("INFO:") + " " + appErr.Message
	default:
		line = appErr.Message
	}

	if appErr.Details != "" {
		line += " (" + appErr.Details + ")"
	}
	if appErr.Cause != nil {
		line += "\n  " + detailStyle.Render("cause: "+appErr.Cause.Error())
	}

	if h.Verbose {
		line += "\n  " + detailStyle.Render(fmt.Sprintf("code=%s category=%s", appErr.Code, appErr.Category))
		keys := make([]string, 0, len(appErr.Context))
		for k := range appErr.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += "\n  " + detailStyle.Render(fmt.Sprintf("%s=%v", k, appErr.Context[k]))
		}
	}

	return line
}
