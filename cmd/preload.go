package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var preloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Warm the cache with the reference collections before going offline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		results := resources.Preload(cmd.Context())
		if err := printJSON(results); err != nil {
			return err
		}
		for _, r := range results {
			if !r.OK {
				return fmt.Errorf("preload incomplete: %s failed", r.Endpoint)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preloadCmd)
}
