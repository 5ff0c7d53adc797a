package config

import (
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/dpshade/llm-prompts/internal/errors"
)

// Configuration keys
const (
	KeyPromptsDir       = "prompts_dir"
	KeyVersionFile      = "version_file"
	KeyDeployDir        = "deploy_dir"
	KeyPackageName      = "espanso.package_name"
	KeyPackageTemplate  = "espanso.package_template"
	KeyManifestTemplate = "espanso.manifest_template"
	KeyReadme           = "espanso.readme"
	KeyCSVTemplate      = "textexpander.template"
	KeyCSVOutput        = "textexpander.output"
)

// EnvPrefix is prepended to every environment override, e.g. LLM_PROMPTS_DEPLOY_DIR
const EnvPrefix = "LLM_PROMPTS"

// DefaultConfigName is the optional config file looked up in the working directory
const DefaultConfigName = ".llm-prompts"

// Config holds every path the deploy run reads or writes
type Config struct {
	PromptsDir  string `mapstructure:"prompts_dir"`
	VersionFile string `mapstructure:"version_file"`
	DeployDir   string `mapstructure:"deploy_dir"`

	Espanso      EspansoConfig      `mapstructure:"espanso"`
	TextExpander TextExpanderConfig `mapstructure:"textexpander"`

	// File the values were read from, empty when only defaults/env applied
	Source string `mapstructure:"-"`
}

// EspansoConfig locates the hub package inputs
type EspansoConfig struct {
	PackageName      string `mapstructure:"package_name"`
	PackageTemplate  string `mapstructure:"package_template"`
	ManifestTemplate string `mapstructure:"manifest_template"`
	Readme           string `mapstructure:"readme"`
}

// TextExpanderConfig locates the CSV template and output
type TextExpanderConfig struct {
	Template string `mapstructure:"template"`
	// Relative to DeployDir unless absolute
	Output string `mapstructure:"output"`
}

// SetDefaults registers the built-in layout on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPromptsDir, "prompts")
	v.SetDefault(KeyVersionFile, "VERSION")
	v.SetDefault(KeyDeployDir, "deploy")
	v.SetDefault(KeyPackageName, "llm-prompts")
	v.SetDefault(KeyPackageTemplate, filepath.Join("src", "espanso-hub", "package.yml.tmpl"))
	v.SetDefault(KeyManifestTemplate, filepath.Join("src", "espanso-hub", "_manifest.yml.tmpl"))
	v.SetDefault(KeyReadme, filepath.Join("src", "espanso-hub", "README.md"))
	v.SetDefault(KeyCSVTemplate, filepath.Join("src", "textexpander", "llm-prompts.csv.tmpl"))
	v.SetDefault(KeyCSVOutput, filepath.Join("textexpander", "llm-prompts.csv"))
}

// Default returns the built-in layout without consulting files or env
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg := &Config{}
	// Defaults always decode
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load resolves configuration with precedence env > config file > defaults.
// cfgFile may be empty, in which case .llm-prompts.{yaml,yml,json,toml} in
// workDir is used when present.
func Load(fsys afero.Fs, workDir, cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetFs(fsys)
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(workDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.ConfigError("failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ConfigError("failed to decode configuration", err)
	}
	cfg.Source = v.ConfigFileUsed()

	return cfg, nil
}

// CSVOutputPath returns the absolute-or-deploy-relative CSV destination
func (c *Config) CSVOutputPath() string {
	if filepath.IsAbs(c.TextExpander.Output) {
		return c.TextExpander.Output
	}
	return filepath.Join(c.DeployDir, c.TextExpander.Output)
}

// PackageDir returns the versioned hub package directory
func (c *Config) PackageDir(version string) string {
	return filepath.Join(c.DeployDir, "espanso-hub", "packages", c.Espanso.PackageName, version)
}
