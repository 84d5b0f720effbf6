package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/obs-streamdeck-ctl/internal/config"
	domlockdown "github.com/oshokin/obs-streamdeck-ctl/internal/domain/lockdown"
)

var (
	// force overwrites an existing settings file.
	force bool

	// errConfigExists is returned when init would overwrite settings.
	errConfigExists = errors.New("settings file already exists, use --force to overwrite")

	// initCmd writes a starter settings file.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a starter settings file.",
		Long: `Writes a settings file with defaults filled in and safety policies disabled.
Put secrets into the dotenv file instead of the settings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s: %w", configPath, errConfigExists)
			}

			cfg := starterConfig()
			if err := config.Save(configPath, cfg); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", configPath)

			return nil
		},
	}
)

// starterConfig returns the settings written by init.
func starterConfig() *config.Config {
	return &config.Config{
		OBS: config.OBS{
			Address:       config.DefaultAddress,
			MicSource:     config.DefaultMicSource,
			DesktopSource: config.DefaultDesktopSource,
			AlertSources:  []string{},
			Timeout:       config.DefaultTimeout,
		},
		StateFile: config.DefaultStateFilename,
		Twitch: config.Twitch{
			ObservationTimeout: config.DefaultObservationTimeout,
		},
		StartStopSafety: &config.SafetyPolicy{
			Method:         domlockdown.MethodFollower,
			FollowDuration: "1d",
		},
		LiveSafety: &config.SafetyPolicy{
			Method:    domlockdown.MethodSubscriber,
			EmoteMode: true,
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")

	rootCmd.AddCommand(initCmd)
}
