package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/obs-streamdeck-ctl/internal/config"
	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/control"
	"github.com/oshokin/obs-streamdeck-ctl/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// envPath to the optional dotenv file with secrets.
	envPath string
	// logLevel is the minimum level written to stderr.
	logLevel string

	// rootCmd represents the base command; every button is a subcommand.
	rootCmd = &cobra.Command{
		Use:   "obs-streamdeck-ctl",
		Short: "Control OBS and Twitch chat safety from a stream deck.",
		Long: `Runs one control surface button per invocation and exits.

Buttons toggle alert overlays in OBS through obs-websocket, start or stop the
stream and converge Twitch chat to the configured safety policy (emote-only,
followers-only or subscribers-only). Secrets can be kept out of the settings
file in a dotenv file or the environment (OBS_WS_PASSWORD, TWITCH_CHANNEL,
TWITCH_OAUTH_TOKEN).`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the obs-streamdeck-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// loadEnv reads the settings and wires the real collaborators.
func loadEnv() (*control.Env, error) {
	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		return nil, err
	}

	return control.NewEnv(cfg), nil
}

// runButton loads the settings and runs fn with a signal-aware context.
func runButton(fn func(ctx context.Context, env *control.Env) error) error {
	ctx, stop := signalContext()
	defer stop()

	env, err := loadEnv()
	if err != nil {
		logger.ErrorKV(ctx, "Loading settings failed", "error", err)

		return err
	}

	if err = fn(ctx, env); err != nil {
		logger.ErrorKV(ctx, "Button failed", "error", err)

		return err
	}

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&envPath, "env-file", "e", config.DefaultEnvFilename, "path to dotenv file with secrets")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn, error")
}
