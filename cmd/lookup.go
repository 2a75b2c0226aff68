package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/ziplookup/internal/dataset"
	"github.com/sells-group/ziplookup/internal/geomath"
	"github.com/sells-group/ziplookup/internal/resilience"
	"github.com/sells-group/ziplookup/internal/resolver"
	"github.com/sells-group/ziplookup/pkg/geocode"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve the ZIP at a coordinate and list nearby ZIPs",
	Long: "Resolves the ZIP code at the given latitude/longitude (via Nominatim, or the nearest dataset centroid with --offline) " +
		"and prints ZIP codes within the radius, nearest first. Failures degrade to warnings; the exit code is always 0.",
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().Float64("lat", 0, "Query latitude in decimal degrees")
	lookupCmd.Flags().Float64("lon", 0, "Query longitude in decimal degrees")
	lookupCmd.Flags().Float64("radius", 10, "Search radius")
	lookupCmd.Flags().String("unit", "mi", "Distance unit: km or mi")
	lookupCmd.Flags().Int("show", 50, "Maximum nearby ZIPs to display")
	lookupCmd.Flags().Bool("offline", false, "Resolve via nearest dataset centroid instead of Nominatim")
	lookupCmd.Flags().Bool("insecure", false, "Skip TLS certificate verification (broken local trust stores only)")
	_ = lookupCmd.MarkFlagRequired("lat")
	_ = lookupCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	lat, _ := cmd.Flags().GetFloat64("lat")
	lon, _ := cmd.Flags().GetFloat64("lon")
	radius, _ := cmd.Flags().GetFloat64("radius")
	unitFlag, _ := cmd.Flags().GetString("unit")
	show, _ := cmd.Flags().GetInt("show")
	offline, _ := cmd.Flags().GetBool("offline")
	insecure, _ := cmd.Flags().GetBool("insecure")

	unit := resolver.Unit(unitFlag)
	if unit != resolver.UnitKm && unit != resolver.UnitMiles {
		fmt.Fprintf(os.Stderr, "[warn] unknown unit %q, using mi\n", unitFlag)
		unit = resolver.UnitMiles
	}

	points := loadDatasetPoints(ctx, insecure)

	strategy := resolver.StrategyReverseGeocode
	if offline {
		strategy = resolver.StrategyNearestCentroid
	}

	var gc geocode.Client
	if !offline {
		gc = newGeocoder(insecure)
	}

	report, err := resolver.New(points, gc).Lookup(ctx, resolver.Request{
		Lat:      lat,
		Lon:      lon,
		Radius:   radius,
		Unit:     unit,
		Strategy: strategy,
	})
	if err != nil {
		// Degrade to an empty answer; embedding callers should not rely on
		// the exit code.
		fmt.Fprintf(os.Stderr, "[error] lookup failed: %v\n", err)
		fmt.Printf("ZIP at (%.6f, %.6f): <unknown>\n", lat, lon)
		return nil
	}

	printReport(lat, lon, radius, unit, show, report)
	return nil
}

// loadDatasetPoints ensures a fresh dataset copy and parses it. Any failure
// is reported as a warning and an empty collection returned, so the lookup
// can still answer what it can.
func loadDatasetPoints(ctx context.Context, insecure bool) []dataset.PostalPoint {
	mgr, err := newDatasetManager(insecure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warn] dataset cache unavailable: %v\n", err)
		return nil
	}

	path, err := mgr.Ensure(ctx, cfg.Dataset.MaxAgeDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warn] dataset unavailable: %v\n", err)
		return nil
	}

	points, err := dataset.LoadPoints(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warn] dataset unusable: %v\n", err)
		return nil
	}
	return points
}

func newGeocoder(insecure bool) geocode.Client {
	opts := []geocode.Option{
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithRetryConfig(resilience.RetryConfig{
			MaxAttempts: cfg.Geocode.MaxAttempts,
		}),
	}
	if insecure {
		opts = append(opts, geocode.WithHTTPClient(insecureHTTPClient(time.Duration(cfg.Geocode.TimeoutSecs)*time.Second)))
	}
	return geocode.NewClient(opts...)
}

func printReport(lat, lon, radius float64, unit resolver.Unit, show int, report *resolver.Report) {
	switch {
	case report.Nearest != nil:
		fmt.Printf("Nearest ZIP (centroid) at (%.6f, %.6f): %s  —  %.2f km away\n",
			lat, lon, report.Code, report.Nearest.DistanceKm)
	case report.Code != "":
		fmt.Printf("ZIP at (%.6f, %.6f): %s\n", lat, lon, report.Code)
	default:
		fmt.Printf("ZIP at (%.6f, %.6f): <unknown>\n", lat, lon)
	}

	fmt.Println()
	if unit == resolver.UnitMiles {
		fmt.Printf("Nearby ZIPs within %.2f mi (%.2f km):\n", radius, report.RadiusKm)
	} else {
		fmt.Printf("Nearby ZIPs within %.2f km:\n", report.RadiusKm)
	}

	for i, r := range report.Nearby {
		if i >= show {
			break
		}
		d := r.DistanceKm
		if unit == resolver.UnitMiles {
			d = geomath.KmToMiles(d)
		}
		fmt.Printf("%3d) %s  %s, %s  —  %.2f %s\n", i+1, r.Code, r.Place, r.Region, d, unit)
	}
}

func insecureHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		},
	}
}
