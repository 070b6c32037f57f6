// File: cmd/api.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/catfacts"
	"github.com/xkilldash9x/scalpel-e2e/internal/network"
	"github.com/xkilldash9x/scalpel-e2e/internal/observability"
	"github.com/xkilldash9x/scalpel-e2e/internal/scenario"
)

func newAPICmd() *cobra.Command {
	var query catfacts.PageQuery

	cmd := &cobra.Command{
		Use:         "api",
		Short:       "Run the cat-facts API checks",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationArtifacts: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			defer observability.Sync(rt.logger)
			return runAPI(cmd, rt, query)
		},
	}

	cmd.Flags().String("api-base", "", "cat-facts base URL (overrides api.base_url)")
	cmd.Flags().IntVar(&query.Page, "page", 1, "facts page to request")
	cmd.Flags().IntVar(&query.Limit, "limit", 5, "facts per page")
	return cmd
}

func runAPI(cmd *cobra.Command, rt *runtime, query catfacts.PageQuery) error {
	if query.Page < 0 || query.Limit < 0 {
		return fmt.Errorf("--page and --limit must not be negative")
	}

	client := network.NewClient(network.ClientConfigFrom(rt.cfg.Network, rt.logger))
	defer client.CloseIdleConnections()

	public, err := catfacts.NewPublicAPI(rt.cfg.API.BaseURL, client, rt.logger)
	if err != nil {
		return err
	}
	for k, val := range rt.cfg.Network.Headers {
		public.Raw().SetHeader(k, val)
	}

	report, err := scenario.NewAPI(public, rt.logger).Run(cmd.Context(), query)
	if err != nil {
		rt.logger.Error("API checks failed.", zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "facts: page %d of %d, %d items (total %d)\n",
		report.Facts.CurrentPage, report.Facts.LastPage, len(report.Facts.Data), report.Facts.Total)
	fmt.Fprintf(out, "breeds: %d items (total %d)\n", len(report.Breeds.Data), report.Breeds.Total)
	fmt.Fprintf(out, "random fact: %s\n", report.RandomFact.Fact)
	return nil
}
