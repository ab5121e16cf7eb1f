package cmd

import (
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and replay mutations captured while offline",
}

func init() {
	queueCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List pending mutations in replay order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := offlineQueue.List(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(list)
			},
		},
		&cobra.Command{
			Use:   "failed",
			Short: "List mutations the backend rejected during replay",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := offlineQueue.Failed(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(list)
			},
		},
		&cobra.Command{
			Use:   "replay",
			Short: "Send pending mutations to the backend now",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				report, err := replayService.Drain(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(report)
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Drop one pending mutation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return offlineQueue.Remove(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Drop every pending mutation",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return offlineQueue.Clear(cmd.Context())
			},
		},
	)
	rootCmd.AddCommand(queueCmd)
}
