package commands

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/petal-labs/appforge/cli/config"
	"github.com/petal-labs/appforge/cli/keystore"
	"github.com/petal-labs/appforge/core"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// ProviderFactory creates a provider using CLI config context.
type ProviderFactory func(providerID, apiKey string, cfg *config.Config) (core.Provider, error)

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig     ConfigLoader
	createProvider ProviderFactory
	newKeystore    KeystoreFactory
	getenv         func(string) string
	stdin          io.Reader
	stdout         io.Writer
	stderr         io.Writer

	cfgFile    string
	provider   string
	model      string
	jsonOutput bool
	verbose    bool
	cfg        *config.Config
	log        *log.Logger

	build buildFlags
	serve serveFlags
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithProviderFactory injects a provider factory dependency.
func WithProviderFactory(factory ProviderFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.createProvider = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithGetenv injects the environment lookup used for API keys.
func WithGetenv(getenv func(string) string) AppOption {
	return func(a *App) {
		if getenv != nil {
			a.getenv = getenv
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:     config.LoadConfig,
		createProvider: defaultProviderFactory(),
		newKeystore:    keystore.NewKeystore,
		getenv:         os.Getenv,
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.log = &log.Logger{Handler: cli.New(a.stderr), Level: log.InfoLevel}
	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "appforge",
		Short: "Turn mock-ups and descriptions into Streamlit apps",
		Long: `appforge generates the source code of a Streamlit app from a mock-up
image ("show") or a text description ("tell") using a hosted chat model.

Use appforge build for one-off generation, or appforge serve for the browser UI.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.appforge/config.yaml)")
	root.PersistentFlags().StringVar(&a.provider, "provider", "", "provider ID (default openai)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (default gpt-4o)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newBuildCommand())
	root.AddCommand(a.newServeCommand())
	root.AddCommand(a.newExamplesCommand())
	root.AddCommand(a.newPromptCommand())
	root.AddCommand(a.newKeysCommand())
	root.AddCommand(a.newCheckCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// SetArgs overrides the command-line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the root command until it finishes or the process is interrupted.
func (a *App) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return a.ExecuteContext(ctx)
}

// ExecuteContext runs the root command with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	a.root.SetIn(a.stdin)
	a.root.SetOut(a.stdout)
	a.root.SetErr(a.stderr)
	return a.root.ExecuteContext(ctx)
}

func (a *App) initConfig() error {
	if a.verbose {
		a.log.Level = log.DebugLevel
	}

	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	a.cfg = cfg
	a.log.WithField("path", path).Debug("config loaded")

	// Flags win over the config file.
	if a.provider == "" {
		a.provider = cfg.DefaultProvider
	}
	if a.model == "" {
		a.model = cfg.DefaultModel
	}

	return nil
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
