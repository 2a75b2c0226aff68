package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/ziplookup/internal/dataset"
	"github.com/sells-group/ziplookup/internal/fetcher"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage the cached GeoNames dataset",
	Long:  "Inspect and refresh the locally cached GeoNames postal-centroid dataset.",
}

func init() { rootCmd.AddCommand(datasetCmd) }

// newDatasetManager builds a cache Manager from config, resolving the
// platform cache directory when none is configured.
func newDatasetManager(insecure bool) (*dataset.Manager, error) {
	dir := cfg.Dataset.CacheDir
	if dir == "" {
		var err error
		dir, err = dataset.DefaultCacheDir()
		if err != nil {
			return nil, err
		}
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Dataset.UserAgent,
		Timeout:      time.Duration(cfg.Dataset.TimeoutSecs) * time.Second,
		InsecureTLS:  insecure,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	return dataset.NewManager(dataset.CacheConfig{
		Dir:          dir,
		ArchiveURL:   cfg.Dataset.ArchiveURL,
		ArchiveName:  cfg.Dataset.ArchiveName,
		FlatFileName: cfg.Dataset.FlatFileName,
	}, f), nil
}
