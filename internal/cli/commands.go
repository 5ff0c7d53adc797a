package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/dpshade/llm-prompts/internal/errors"
	"github.com/dpshade/llm-prompts/internal/models"
	"github.com/dpshade/llm-prompts/internal/validation"
)

func (c *CLI) newListCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the prompts a deploy would package",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts, err := c.service.ListPrompts()
			if err != nil {
				return err
			}
			return c.printTable(prompts, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown instead of styled output")
	return cmd
}

func (c *CLI) newSearchCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search prompts by trigger, label or file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompts, err := c.service.SearchPrompts(args[0])
			if err != nil {
				return err
			}
			if len(prompts) == 0 {
				fmt.Fprintf(c.stdout, "No prompts match %q\n", args[0])
				return nil
			}
			return c.printTable(prompts, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown instead of styled output")
	return cmd
}

func (c *CLI) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that every prompt defines a trigger and a replacement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.service.CheckPrompts()
			if err != nil {
				return err
			}
			c.printReport(report)
			if appErr := report.ToAppError(); appErr != nil {
				return appErr
			}
			return nil
		},
	}
}

func (c *CLI) printTable(prompts models.PromptSet, plain bool) error {
	md := PromptTable(prompts)
	if plain {
		fmt.Fprint(c.stdout, md)
		return nil
	}

	out, err := c.renderMarkdown(md)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to render prompt table")
	}
	fmt.Fprint(c.stdout, out)
	return nil
}

func renderGlamour(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}

func (c *CLI) printReport(report *validation.Report) {
	for _, issue := range report.Issues {
		badge := ErrorStyle.Render("✗ error")
		if issue.Severity == validation.SeverityWarning {
			badge = WarningStyle.Render("! warn ")
		}
		fmt.Fprintf(c.stdout, "%s %s %s\n", badge, MutedStyle.Render(issue.Filename+":"), issue.Message)
	}

	summary := fmt.Sprintf("Checked %d prompts: %d errors, %d warnings", report.Checked, report.Errors(), report.Warnings())
	if report.Valid() {
		fmt.Fprintln(c.stdout, SuccessStyle.Render(summary))
	} else {
		fmt.Fprintln(c.stdout, ErrorStyle.Render(summary))
	}
}

// PromptTable renders prompts as a markdown table in load order
func PromptTable(prompts models.PromptSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Prompts (%d)\n\n", len(prompts))
	b.WriteString("| Trigger | Title | File | Description |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, p := range prompts {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
			escapeCell(p.Trigger()),
			escapeCell(p.Title()),
			escapeCell(p.Filename()),
			escapeCell(p.Description()),
		)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
