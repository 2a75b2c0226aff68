package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/ziplookup/internal/dataset"
)

var datasetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dataset cache state",
	Long:  "Prints the cache location, age, freshness, and row count of the local dataset copy.",
	RunE:  runDatasetStatus,
}

func init() { datasetCmd.AddCommand(datasetStatusCmd) }

func runDatasetStatus(cmd *cobra.Command, _ []string) error {
	mgr, err := newDatasetManager(false)
	if err != nil {
		return err
	}

	path := mgr.FlatFilePath()
	fmt.Printf("Cache file: %s\n", path)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Println("State:      missing (will download on next lookup)")
		return nil
	}

	age := time.Since(info.ModTime())
	ageDays := age.Hours() / 24
	state := "fresh"
	if ageDays >= float64(cfg.Dataset.MaxAgeDays) {
		state = "stale (will refresh on next lookup)"
	}
	fmt.Printf("Age:        %.1f days (max %d)\n", ageDays, cfg.Dataset.MaxAgeDays)
	fmt.Printf("State:      %s\n", state)

	points, err := dataset.LoadPoints(path)
	if err != nil {
		fmt.Printf("Rows:       unreadable (%v)\n", err)
		return nil
	}
	fmt.Printf("Rows:       %d\n", len(points))
	return nil
}
