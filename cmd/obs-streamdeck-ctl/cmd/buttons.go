package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	domlockdown "github.com/oshokin/obs-streamdeck-ctl/internal/domain/lockdown"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/control"
)

var (
	// only restricts alert toggles to the named sources.
	only []string
	// engage forces the live safety policy on.
	engage bool
	// release forces the live safety policy off.
	release bool

	// errEngageRelease is returned when both direction overrides are given.
	errEngageRelease = errors.New("--engage and --release are mutually exclusive")

	// startStopCmd toggles streaming and applies the start-stop safety policy.
	startStopCmd = &cobra.Command{
		Use:   "start-stop",
		Short: "Start or stop the stream and apply the start-stop chat policy.",
		Long: `Toggles streaming in OBS. When start_stop_safety is configured, chat is
locked down when the stream goes offline and released when it goes live.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runButton(func(ctx context.Context, env *control.Env) error {
				_, err := control.StartStop(ctx, env)

				return err
			})
		},
	}

	// liveSafetyCmd toggles alerts and applies the live safety policy.
	liveSafetyCmd = &cobra.Command{
		Use:   "live-safety",
		Short: "Toggle alert overlays and apply the live safety chat policy.",
		Long: `Swaps every alert overlay between its real URL and a dead one, then
converges chat. Disabling the alerts engages the live safety policy and fires
the configured advert and chat clear; restoring them releases the policy.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			opts := &control.LiveSafetyOptions{Only: only}

			switch {
			case engage && release:
				return errEngageRelease
			case engage:
				direction := domlockdown.Engage
				opts.Direction = &direction
			case release:
				direction := domlockdown.Release
				opts.Direction = &direction
			}

			return runButton(func(ctx context.Context, env *control.Env) error {
				_, err := control.LiveSafety(ctx, env, opts)

				return err
			})
		},
	}

	// panicCmd toggles alerts only.
	panicCmd = &cobra.Command{
		Use:   "panic",
		Short: "Toggle alert overlays without touching chat.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runButton(func(ctx context.Context, env *control.Env) error {
				_, err := control.Panic(ctx, env, &control.PanicOptions{Only: only})

				return err
			})
		},
	}

	// muteCmd flips audio source mutes.
	muteCmd = &cobra.Command{
		Use:       "mute [mic|desk|all]",
		Short:     "Toggle mute of the microphone, desktop audio or both.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(control.MuteMic), string(control.MuteDesktop), string(control.MuteAll)},
		RunE: func(_ *cobra.Command, args []string) error {
			target, err := control.ParseMuteTarget(args[0])
			if err != nil {
				return err
			}

			return runButton(func(ctx context.Context, env *control.Env) error {
				return control.Mute(ctx, env, target)
			})
		},
	}

	// sceneCmd switches scenes by position.
	sceneCmd = &cobra.Command{
		Use:   "scene N",
		Short: "Switch to the N-th scene, counted from the top of the scene list.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("scene position %q: %w", args[0], err)
			}

			return runButton(func(ctx context.Context, env *control.Env) error {
				name, err := control.Scene(ctx, env, position)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)

				return nil
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, c := range []*cobra.Command{liveSafetyCmd, panicCmd} {
		c.Flags().StringSliceVar(&only, "only", nil, "toggle only these alert sources, e.g. the ones that failed")
	}

	liveSafetyCmd.Flags().BoolVar(&engage, "engage", false, "lock chat down regardless of the alert transition")
	liveSafetyCmd.Flags().BoolVar(&release, "release", false, "lift the chat lockdown regardless of the alert transition")

	rootCmd.AddCommand(startStopCmd, liveSafetyCmd, panicCmd, muteCmd, sceneCmd)
}
