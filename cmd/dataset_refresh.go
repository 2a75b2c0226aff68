package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var datasetRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a dataset re-download",
	Long:  "Downloads and unpacks the GeoNames archive regardless of the cached copy's age.",
	RunE:  runDatasetRefresh,
}

func init() {
	datasetRefreshCmd.Flags().Bool("insecure", false, "Skip TLS certificate verification (broken local trust stores only)")
	datasetCmd.AddCommand(datasetRefreshCmd)
}

func runDatasetRefresh(cmd *cobra.Command, _ []string) error {
	insecure, _ := cmd.Flags().GetBool("insecure")

	mgr, err := newDatasetManager(insecure)
	if err != nil {
		return err
	}

	// maxAgeDays 0 makes any cached copy count as stale.
	path, err := mgr.Ensure(cmd.Context(), 0)
	if err != nil {
		return err
	}

	fmt.Printf("Dataset refreshed: %s\n", path)
	return nil
}
