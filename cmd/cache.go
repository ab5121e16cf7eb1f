package cmd

import (
	"fmt"
	"time"

	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	"github.com/AzielCF/az-laundry/usecase"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local response cache",
}

func init() {
	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show entry counts and size",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				stats, err := cacheStore.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(stats)
			},
		},
		&cobra.Command{
			Use:   "get <key|endpoint>",
			Short: "Print a cached value; endpoints starting with / are mapped to their key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key := cacheKeyArg(args[0])
				value, ok := cacheStore.Get(cmd.Context(), key)
				if !ok {
					return pkgError.NotFoundError(fmt.Sprintf("cache entry %s not found", key))
				}
				if age, ok := cacheStore.Age(cmd.Context(), key); ok {
					now := time.Now()
					cmd.PrintErrf("%s stored %s\n", key, humanize.RelTime(now.Add(-age), now, "ago", "from now"))
				}
				return printJSON(value)
			},
		},
		&cobra.Command{
			Use:   "rm <key|endpoint>",
			Short: "Remove one cache entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cacheStore.Remove(cmd.Context(), cacheKeyArg(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cache entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cacheStore.Clear(cmd.Context())
				return nil
			},
		},
	)
	rootCmd.AddCommand(cacheCmd)
}

func cacheKeyArg(arg string) string {
	if len(arg) > 0 && arg[0] == '/' {
		return usecase.CacheKey(arg)
	}
	return arg
}
