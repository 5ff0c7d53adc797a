package deploy

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/dpshade/llm-prompts/internal/models"
	"github.com/dpshade/llm-prompts/internal/renderer"
	"github.com/dpshade/llm-prompts/internal/storage"
)

// TextExpanderOptions locates the CSV template and its fixed destination
type TextExpanderOptions struct {
	Template   string
	OutputPath string
}

// DeployTextExpander renders the CSV import file and overwrites OutputPath.
// The path carries no version.
func DeployTextExpander(fsys afero.Fs, opts TextExpanderOptions, prompts models.PromptSet, out io.Writer) (string, error) {
	csvOutput, err := renderer.Render(fsys, opts.Template, map[string]interface{}{
		"prompts": prompts,
	})
	if err != nil {
		return "", err
	}

	if err := storage.WriteFile(fsys, opts.OutputPath, []byte(csvOutput)); err != nil {
		return "", err
	}

	fmt.Fprintf(out, "Generated %s successfully!\n", opts.OutputPath)
	return opts.OutputPath, nil
}
