package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/llm-prompts/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "prompts", cfg.PromptsDir)
	assert.Equal(t, "VERSION", cfg.VersionFile)
	assert.Equal(t, "deploy", cfg.DeployDir)
	assert.Equal(t, "llm-prompts", cfg.Espanso.PackageName)
	assert.Equal(t, filepath.Join("src", "espanso-hub", "package.yml.tmpl"), cfg.Espanso.PackageTemplate)
	assert.Equal(t, filepath.Join("src", "espanso-hub", "_manifest.yml.tmpl"), cfg.Espanso.ManifestTemplate)
	assert.Equal(t, filepath.Join("src", "espanso-hub", "README.md"), cfg.Espanso.Readme)
	assert.Equal(t, filepath.Join("src", "textexpander", "llm-prompts.csv.tmpl"), cfg.TextExpander.Template)

	assert.Equal(t, filepath.Join("deploy", "textexpander", "llm-prompts.csv"), cfg.CSVOutputPath())
	assert.Equal(t, filepath.Join("deploy", "espanso-hub", "packages", "llm-prompts", "2.3.0"), cfg.PackageDir("2.3.0"))
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work", 0755))

	cfg, err := Load(fsys, "/work", "")
	require.NoError(t, err)
	assert.Equal(t, Default().PromptsDir, cfg.PromptsDir)
	assert.Empty(t, cfg.Source)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "prompts_dir: snippets\ndeploy_dir: dist\nespanso:\n  package_name: my-prompts\n"
	require.NoError(t, afero.WriteFile(fsys, "/work/custom.yaml", []byte(content), 0644))

	cfg, err := Load(fsys, "/work", "/work/custom.yaml")
	require.NoError(t, err)

	assert.Equal(t, "snippets", cfg.PromptsDir)
	assert.Equal(t, "dist", cfg.DeployDir)
	assert.Equal(t, "my-prompts", cfg.Espanso.PackageName)
	// Untouched keys keep their defaults
	assert.Equal(t, "VERSION", cfg.VersionFile)
	assert.Equal(t, filepath.Join("dist", "espanso-hub", "packages", "my-prompts", "1.0.0"), cfg.PackageDir("1.0.0"))
	assert.Equal(t, "/work/custom.yaml", cfg.Source)
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/work", "/work/nope.yaml")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfig))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LLM_PROMPTS_DEPLOY_DIR", "/tmp/out")
	t.Setenv("LLM_PROMPTS_TEXTEXPANDER_OUTPUT", "/tmp/te.csv")

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work", 0755))

	cfg, err := Load(fsys, "/work", "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.DeployDir)
	assert.Equal(t, "/tmp/te.csv", cfg.CSVOutputPath())
}
