// File: cmd/url.go
package cmd

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/scalpel-e2e/internal/urlutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <raw>",
		Short: "Decompose a URL into protocol, host, port, path and query",
		Example: `  scalpel-e2e url https://catfact.ninja/facts?limit=2
  scalpel-e2e url localhost:8443/health`,
		Args: cobra.ExactArgs(1),
		// Decomposition needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := urlutil.Decompose(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(parts, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode url parts: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
