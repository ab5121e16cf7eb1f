package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the stored backend session",
}

func init() {
	setToken := &cobra.Command{
		Use:   "set-token <token>",
		Short: "Store the token sent as the Bearer credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			var raw json.RawMessage
			if user != "" {
				raw = json.RawMessage(user)
			}
			return sessions.Save(cmd.Context(), args[0], raw)
		},
	}
	setToken.Flags().String("user", "", "JSON user profile stored with the token")

	sessionCmd.AddCommand(
		setToken,
		&cobra.Command{
			Use:   "status",
			Short: "Show whether a session is stored and what its token claims",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rec, ok, err := sessions.Load(cmd.Context())
				if err != nil {
					return err
				}
				status := map[string]any{"authenticated": ok}
				if ok {
					status["saved_at"] = rec.SavedAt
					if info, err := sessions.Inspect(rec.Token); err == nil {
						status["token"] = info
					}
				}
				return printJSON(status)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return sessions.Clear(cmd.Context())
			},
		},
	)
	rootCmd.AddCommand(sessionCmd)
}
