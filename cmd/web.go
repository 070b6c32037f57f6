// File: cmd/web.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/browser"
	"github.com/xkilldash9x/scalpel-e2e/internal/observability"
	"github.com/xkilldash9x/scalpel-e2e/internal/scenario"
)

func newWebCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:         "web",
		Short:       "Search the mobile site and open the first visible streamer",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationArtifacts: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			defer observability.Sync(rt.logger)
			return runWeb(cmd, rt, query)
		},
	}

	cmd.Flags().String("base-url", "", "site base URL (overrides web.base_url)")
	cmd.Flags().String("browser", "", "browser to drive; only chrome is supported")
	cmd.Flags().String("device", "", "device to emulate, e.g. \"Pixel 5\"")
	cmd.Flags().Bool("headless", false, "run the browser headless")
	cmd.Flags().String("window-size", "", "browser window size as W,H")
	cmd.Flags().StringVar(&query, "query", scenario.DefaultQuery, "search term")
	return cmd
}

func runWeb(cmd *cobra.Command, rt *runtime, query string) error {
	session, err := browser.NewSession(cmd.Context(), rt.cfg.Web, rt.store, rt.logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			rt.logger.Warn("Error closing browser session.", zap.Error(cerr))
		}
	}()

	result, err := scenario.NewWeb(session, rt.logger).SearchAndOpenStreamer(cmd.Context(), rt.cfg.Web.BaseURL, query)
	if err != nil {
		rt.logger.Error("Web flow failed.", zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "streamer: %s\n", result.StreamerURL)
	fmt.Fprintf(out, "screenshot: %s\n", result.Screenshot)
	return nil
}
