// Package cli implements the dealradar command-line client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/DealRadar/pkg/client"
)

var serverURL string

// apiClient builds a client for the configured server.
func apiClient() *client.Client {
	return client.New(serverURL)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dealradar",
		Short: "Sales pipeline tracker client",
		Long:  "dealradar queries the pipeline tracker API: upcoming key dates, per-deal dates, communication alerts, and pipeline analytics.",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", envOr("DEALRADAR_SERVER", "http://localhost:8080"),
		"base URL of the API server")

	root.AddCommand(newDatesCmd())
	root.AddCommand(newOpportunitiesCmd())
	root.AddCommand(newAlertsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
