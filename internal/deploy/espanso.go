// Package deploy writes the distribution artifacts for each target.
//
// Deployers are plain functions over an afero.Fs: they take the already
// loaded prompt collection and never re-read the prompts directory, so
// every target in one run reflects the same snapshot.
package deploy

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dpshade/llm-prompts/internal/errors"
	"github.com/dpshade/llm-prompts/internal/models"
	"github.com/dpshade/llm-prompts/internal/renderer"
	"github.com/dpshade/llm-prompts/internal/storage"
)

// Hub package file names
const (
	PackageFile  = "package.yml"
	ManifestFile = "_manifest.yml"
	ReadmeFile   = "README.md"
)

// EspansoOptions locates the inputs and output of the hub package
type EspansoOptions struct {
	PackageName      string
	PackageTemplate  string
	ManifestTemplate string
	Readme           string
	// Versioned output directory, see config.Config.PackageDir
	OutputDir string

	Logger *log.Logger
}

// DeployEspanso renders package.yml and _manifest.yml into OutputDir and
// copies the README next to them. It returns the package.yml path.
func DeployEspanso(fsys afero.Fs, opts EspansoOptions, prompts models.PromptSet, version string, out io.Writer) (string, error) {
	if err := fsys.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", errors.FilesystemError("create directory "+opts.OutputDir, err)
	}

	r := renderer.NewRenderer(fsys)

	packageOutput, err := r.Render(opts.PackageTemplate, map[string]interface{}{
		"prompts": prompts,
	})
	if err != nil {
		return "", err
	}
	packagePath := filepath.Join(opts.OutputDir, PackageFile)
	if err := storage.WriteFile(fsys, packagePath, []byte(packageOutput)); err != nil {
		return "", err
	}

	manifestOutput, err := r.Render(opts.ManifestTemplate, map[string]interface{}{
		"version": version,
		"name":    opts.PackageName,
	})
	if err != nil {
		return "", err
	}
	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	if err := storage.WriteFile(fsys, manifestPath, []byte(manifestOutput)); err != nil {
		return "", err
	}

	readmePath := filepath.Join(opts.OutputDir, ReadmeFile)
	if err := storage.CopyFile(fsys, opts.Readme, readmePath); err != nil {
		return "", err
	}
	if opts.Logger != nil {
		opts.Logger.Info("Copied", "from", opts.Readme, "to", readmePath)
	}

	fmt.Fprintf(out, "Generated %s successfully!\n", packagePath)
	return packagePath, nil
}
