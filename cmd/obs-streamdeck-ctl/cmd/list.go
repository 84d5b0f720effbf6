package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oshokin/obs-streamdeck-ctl/internal/service/control"
)

var (
	// sourcesCmd prints every compositor source.
	sourcesCmd = &cobra.Command{
		Use:   "sources",
		Short: "List OBS sources, useful to fill alert_sources.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runButton(func(ctx context.Context, env *control.Env) error {
				sources, err := control.Sources(ctx, env)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, source := range sources {
					_, _ = fmt.Fprintf(w, "%s\t%s\n", source.Name, source.TypeID)
				}

				return w.Flush()
			})
		},
	}

	// scenesCmd prints scenes with the positions the scene button takes.
	scenesCmd = &cobra.Command{
		Use:   "scenes",
		Short: "List OBS scenes with their positions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runButton(func(ctx context.Context, env *control.Env) error {
				list, err := control.Scenes(ctx, env)
				if err != nil {
					return err
				}

				for i, scene := range list.Scenes {
					marker := " "
					if scene.Name == list.CurrentScene {
						marker = "*"
					}

					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d. %s\n", marker, i+1, scene.Name)
				}

				return nil
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(sourcesCmd, scenesCmd)
}
