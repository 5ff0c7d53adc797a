package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dpshade/llm-prompts/internal/config"
	"github.com/dpshade/llm-prompts/internal/errors"
	"github.com/dpshade/llm-prompts/internal/service"
)

// CLI holds the state shared by every command of one invocation
type CLI struct {
	fs      afero.Fs
	workDir string
	stdout  io.Writer
	stderr  io.Writer

	cfgFile string
	verbose bool

	logger  *log.Logger
	service *service.Service

	renderMarkdown func(md string) (string, error)
}

// Option customizes a CLI
type Option func(*CLI)

// WithFS replaces the OS filesystem, mainly for tests
func WithFS(fsys afero.Fs) Option {
	return func(c *CLI) {
		c.fs = fsys
	}
}

// WithOutput redirects command output and diagnostics
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *CLI) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// NewCLI creates a CLI bound to the current working directory
func NewCLI(opts ...Option) *CLI {
	c := &CLI{
		fs:      afero.NewOsFs(),
		workDir: ".",
		stdout:  os.Stdout,
		stderr:  os.Stderr,

		renderMarkdown: renderGlamour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs the command line and reports failures through the CLI error
// handler. The returned error is non-nil exactly when the process should
// exit non-zero.
func (c *CLI) Execute(args []string) error {
	root := c.NewRootCommand()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return nil
	}

	if !errors.IsAppError(err) {
		// Commands return AppErrors; anything else is cobra rejecting
		// arguments, flag groups or an unknown subcommand
		err = errors.InvalidCommandError(root.Name(), err)
	}
	return errors.NewCLIErrorHandler(c.stderr, c.verbose).HandleError(err)
}

// NewRootCommand builds the command tree. The root command itself deploys.
func (c *CLI) NewRootCommand() *cobra.Command {
	var espansoOnly, textExpanderOnly bool

	root := &cobra.Command{
		Use:   "llm-prompts",
		Short: "Build the LLM prompt snippet packages",
		Long: TitleStyle.Render("llm-prompts") + MutedStyle.Render(" - package prompt snippets for text expanders") + `

Reads every *.yml prompt in the prompts directory and writes:

  <deploy_dir>/espanso-hub/packages/<espanso.package_name>/<VERSION>/{package.yml,_manifest.yml,README.md}
  <deploy_dir>/<textexpander.output>

With the default configuration that is deploy/espanso-hub/packages/llm-prompts/<VERSION>/
and deploy/textexpander/llm-prompts.csv.

Without a selection flag both targets are built.`,
		Example: `  llm-prompts                 Build both targets
  llm-prompts --espanso       Build only the espanso hub package
  llm-prompts --textexpander  Build only the TextExpander CSV
  llm-prompts check           Validate prompt files`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := service.AllTargets
			if espansoOnly {
				targets.TextExpander = false
			}
			if textExpanderOnly {
				targets.Espanso = false
			}
			return c.runDeploy(targets)
		},
	}

	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.InvalidCommandError(cmd.CommandPath(), err)
	})

	root.Flags().BoolVar(&espansoOnly, "espanso", false, "build only the espanso hub package")
	root.Flags().BoolVar(&textExpanderOnly, "textexpander", false, "build only the TextExpander CSV")
	root.MarkFlagsMutuallyExclusive("espanso", "textexpander")

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./"+config.DefaultConfigName+".yaml when present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(c.newListCommand())
	root.AddCommand(c.newSearchCommand())
	root.AddCommand(c.newCheckCommand())
	root.AddCommand(c.newVersionCommand())

	return root
}

// setup resolves configuration and wires the service; runs before any command
func (c *CLI) setup() error {
	c.logger = newLogger(c.stderr, c.verbose)

	cfg, err := config.Load(c.fs, c.workDir, c.cfgFile)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		c.logger.Debug("Using config file", "path", cfg.Source)
	}

	c.service = service.NewService(c.fs, cfg,
		service.WithLogger(c.logger),
		service.WithOutput(c.stdout),
	)
	return nil
}

func (c *CLI) runDeploy(targets service.Targets) error {
	result, err := c.service.Deploy(targets)
	if err != nil {
		return err
	}
	c.logger.Debug("Deploy finished",
		"version", result.Version,
		"prompts", result.PromptCount,
		"package", result.PackagePath,
		"csv", result.CSVPath,
	)
	return nil
}

func (c *CLI) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version a deploy would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := c.service.Version()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, version)
			return nil
		},
	}
}
