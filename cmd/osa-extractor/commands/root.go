// Package commands implements the osa-extractor command line.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/osallek/osa-extractor/internal/cli"
	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/game"
	"github.com/osallek/osa-extractor/internal/game/dump"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	fs        afero.Fs
	newParser func(afero.Fs) game.Parser
}

// appConfig holds the configuration shared by every command.
type appConfig struct {
	Verbose         int           `mapstructure:"verbose" yaml:"verbose"`
	JSONLogs        bool          `mapstructure:"json-logs" yaml:"json-logs"`
	ServerURL       string        `mapstructure:"server-url" yaml:"server-url"`
	ResponseTimeout time.Duration `mapstructure:"response-timeout" yaml:"response-timeout"`
	SavesDir        string        `mapstructure:"saves-dir" yaml:"saves-dir"`
	SaveExtension   string        `mapstructure:"save-extension" yaml:"save-extension"`
	DataDir         string        `mapstructure:"data-dir" yaml:"data-dir"`
	TempDir         string        `mapstructure:"temp-dir" yaml:"temp-dir"`
	Locale          string        `mapstructure:"locale" yaml:"locale"`
	Workers         int           `mapstructure:"workers" yaml:"workers"`
	MaxImageSize    int           `mapstructure:"max-image-size" yaml:"max-image-size"`
	MetricsFile     string        `mapstructure:"metrics-file" yaml:"metrics-file"`

	Extract extractConfig `mapstructure:"-" yaml:"-"`
	History historyConfig `mapstructure:"-" yaml:"-"`
}

type options struct {
	fs        afero.Fs
	newParser func(afero.Fs) game.Parser
}

// Options represents an optional function to override App default values.
type Options func(*options)

// New registers commands and returns a new App.
func New(args ...Options) (*App, error) {
	opts := options{
		fs: afero.NewOsFs(),
		newParser: func(fsys afero.Fs) game.Parser {
			return dump.New(fsys)
		},
	}
	for _, opt := range args {
		opt(&opts)
	}

	a := App{fs: opts.fs, newParser: opts.newParser}
	a.cmd = &cobra.Command{
		Use:           constants.CmdName,
		Short:         "Extract Europa Universalis IV saves and share them",
		Long:          "Extract Europa Universalis IV saves, project them into snapshots and send them with their pictures to the synchronization server.",
		SilenceErrors: true,
		Version:       constants.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.config.Verbose) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper, constants.GetDefaultConfigPath()); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config, cli.DecodeHook()); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}

			cli.SetSlog(os.Stderr, a.config.Verbose, a.config.JSONLogs)
			slog.Debug("Got app config", "config", a.config)
			return nil
		},
	}
	a.viper = viper.New()
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)
	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	installListCmd(&a)
	installExtractCmd(&a)
	installHistoryCmd(&a)

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.config.Verbose, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "write logs as JSON")
	cmd.PersistentFlags().StringVar(&app.config.ServerURL, "server-url", constants.DefaultServerURL, "base URL of the synchronization server")
	cmd.PersistentFlags().DurationVar(&app.config.ResponseTimeout, "response-timeout", constants.DefaultResponseTimeout, "how long to wait for each server response")
	cmd.PersistentFlags().StringVar(&app.config.SavesDir, "saves-dir", constants.GetDefaultSavesPath(), "directory to look for saves in")
	cmd.PersistentFlags().StringVar(&app.config.SaveExtension, "save-extension", constants.DefaultSaveExtension, "extension of the save files")
	cmd.PersistentFlags().StringVar(&app.config.DataDir, "data-dir", constants.GetDefaultDataPath(), "directory holding the client identity and the submission history")
	cmd.PersistentFlags().StringVar(&app.config.TempDir, "temp-dir", os.TempDir(), "directory to stage extracted files in")
	cmd.PersistentFlags().StringVar(&app.config.Locale, "locale", constants.DefaultLocale, "language of the progress messages")
	cmd.PersistentFlags().IntVar(&app.config.Workers, "workers", constants.DefaultWorkers, "number of pictures and entities processed at the same time")
	cmd.PersistentFlags().IntVar(&app.config.MaxImageSize, "max-image-size", constants.DefaultMaxImageSize, "longest edge in pixels of the sent pictures, 0 to keep their size")
	cmd.PersistentFlags().StringVar(&app.config.MetricsFile, "metrics-file", "", "write the metrics of the run in this file, in the Prometheus text format")

	for _, f := range []string{"saves-dir", "data-dir", "temp-dir"} {
		if err := cmd.MarkPersistentFlagDirname(f); err != nil {
			// This should never happen.
			panic(fmt.Sprintf("failed to mark %s flag as directory: %v", f, err))
		}
	}
	if err := cmd.MarkPersistentFlagFilename("metrics-file"); err != nil {
		// This should never happen.
		panic(fmt.Sprintf("failed to mark metrics-file flag as filename: %v", err))
	}
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}
