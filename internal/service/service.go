package service

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/afero"

	"github.com/dpshade/llm-prompts/internal/config"
	"github.com/dpshade/llm-prompts/internal/deploy"
	"github.com/dpshade/llm-prompts/internal/models"
	"github.com/dpshade/llm-prompts/internal/storage"
	"github.com/dpshade/llm-prompts/internal/validation"
)

// Targets selects which artifacts a deploy run produces
type Targets struct {
	Espanso      bool
	TextExpander bool
}

// AllTargets is the default selection
var AllTargets = Targets{Espanso: true, TextExpander: true}

// Result summarizes one deploy run
type Result struct {
	Version     string
	PromptCount int
	PackagePath string // empty when the espanso target was skipped
	CSVPath     string // empty when the textexpander target was skipped
}

// Service ties the configured paths to the loader and deployers
type Service struct {
	fs     afero.Fs
	config *config.Config
	logger *log.Logger
	out    io.Writer
}

// Option customizes a Service
type Option func(*Service)

// WithLogger sets the logger used for warnings and progress
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithOutput sets where confirmation messages are printed
func WithOutput(out io.Writer) Option {
	return func(s *Service) {
		s.out = out
	}
}

// NewService creates a new service instance
func NewService(fsys afero.Fs, cfg *config.Config, opts ...Option) *Service {
	svc := &Service{
		fs:     fsys,
		config: cfg,
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "llm-prompts"}),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Config returns the resolved configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// Version reads the release version, falling back to storage.DefaultVersion
func (s *Service) Version() (string, error) {
	return storage.ReadVersion(s.fs, s.config.VersionFile, s.logger)
}

// ListPrompts loads every prompt from the configured directory
func (s *Service) ListPrompts() (models.PromptSet, error) {
	prompts, err := storage.LoadPrompts(s.fs, s.config.PromptsDir)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Loaded prompts", "dir", s.config.PromptsDir, "count", len(prompts))
	return prompts, nil
}

// Deploy reads the version and prompts once and runs the selected targets
// against that single snapshot. The first failure aborts the run; files
// written before it are left in place.
func (s *Service) Deploy(targets Targets) (*Result, error) {
	version, err := s.Version()
	if err != nil {
		return nil, err
	}

	prompts, err := s.ListPrompts()
	if err != nil {
		return nil, err
	}

	result := &Result{Version: version, PromptCount: len(prompts)}

	if targets.Espanso {
		s.logger.Debug("Deploying espanso package", "version", version)
		path, err := deploy.DeployEspanso(s.fs, deploy.EspansoOptions{
			PackageName:      s.config.Espanso.PackageName,
			PackageTemplate:  s.config.Espanso.PackageTemplate,
			ManifestTemplate: s.config.Espanso.ManifestTemplate,
			Readme:           s.config.Espanso.Readme,
			OutputDir:        s.config.PackageDir(version),
			Logger:           s.logger,
		}, prompts, version, s.out)
		if err != nil {
			return nil, fmt.Errorf("espanso deploy failed: %w", err)
		}
		result.PackagePath = path
	}

	if targets.TextExpander {
		s.logger.Debug("Deploying textexpander csv")
		path, err := deploy.DeployTextExpander(s.fs, deploy.TextExpanderOptions{
			Template:   s.config.TextExpander.Template,
			OutputPath: s.config.CSVOutputPath(),
		}, prompts, s.out)
		if err != nil {
			return nil, fmt.Errorf("textexpander deploy failed: %w", err)
		}
		result.CSVPath = path
	}

	return result, nil
}

// SearchPrompts returns prompts whose trigger, label or filename fuzzily
// matches query, best match first. An empty query returns everything.
func (s *Service) SearchPrompts(query string) (models.PromptSet, error) {
	prompts, err := s.ListPrompts()
	if err != nil {
		return nil, err
	}
	return FilterPrompts(prompts, query), nil
}

// FilterPrompts applies fuzzy matching to an already loaded collection
func FilterPrompts(prompts models.PromptSet, query string) models.PromptSet {
	if query == "" {
		return prompts
	}

	matches := fuzzy.FindFrom(query, prompts)
	results := make(models.PromptSet, 0, len(matches))
	for _, match := range matches {
		results = append(results, prompts[match.Index])
	}
	return results
}

// CheckPrompts validates every loaded prompt
func (s *Service) CheckPrompts() (*validation.Report, error) {
	prompts, err := s.ListPrompts()
	if err != nil {
		return nil, err
	}
	return validation.NewValidator().Check(prompts), nil
}
