package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <endpoint>",
	Short: "Run one request through the cache and offline queue",
	Example: `  azlaundry request /customers
  azlaundry request /orders -X POST --data '{"customer_id":1}'`,
	Args: cobra.ExactArgs(1),
	RunE: runRequest,
}

func init() {
	requestCmd.Flags().StringP("method", "X", http.MethodGet, "HTTP method")
	requestCmd.Flags().String("data", "", "JSON request body")
	requestCmd.Flags().Bool("fresh", false, "skip the cache and wait for the live response")
	requestCmd.Flags().Int("timeout-ms", 0, "timeout for this request in milliseconds")
	requestCmd.Flags().StringToString("header", nil, `extra headers | example: --header X-Station-Id=front`)
	rootCmd.AddCommand(requestCmd)
}

func runRequest(cmd *cobra.Command, args []string) error {
	method, _ := cmd.Flags().GetString("method")
	data, _ := cmd.Flags().GetString("data")
	fresh, _ := cmd.Flags().GetBool("fresh")
	timeoutMs, _ := cmd.Flags().GetInt("timeout-ms")
	headers, _ := cmd.Flags().GetStringToString("header")

	opts := domainAPI.Options{
		Method:  strings.ToUpper(method),
		Fresh:   fresh,
		Headers: headers,
		Timeout: time.Duration(timeoutMs) * time.Millisecond,
	}
	if data != "" {
		opts.Body = json.RawMessage(data)
	}

	res, err := requestService.Request(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	// background refreshes finish before the medium is closed
	requestService.Wait()
	return printJSON(res)
}
