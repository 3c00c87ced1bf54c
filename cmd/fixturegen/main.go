package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"geolr/domain/geo"
	"geolr/domain/reference"
	"geolr/internal/testkit"
)

func main() {
	out := flag.String("out", "Report_P1.xlsx", "output file path")
	count := flag.Int("count", 200, "number of fixes")
	format := flag.String("format", "", "output format: xlsx or csv (default inferred from -out)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	lon := flag.Float64("lon", 6.573832039, "center longitude")
	lat := flag.Float64("lat", 46.521592273, "center latitude")
	bearing := flag.Float64("bearing", 2.85, "cluster bearing in radians")
	distance := flag.Float64("distance", 30, "cluster distance in meters")
	spread := flag.Float64("spread", 6, "cluster spread along the ray in meters")
	clusterShare := flag.Float64("cluster-share", 0.6, "share of fixes drawn from the cluster")
	stale := flag.Float64("stale", 0.1, "probability that a fix repeats the previous position")
	flag.Parse()

	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "count must be > 0")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			fmtName = "csv"
		default:
			fmtName = "xlsx"
		}
	}

	cfg := testkit.DefaultFixConfig()
	cfg.Center = geo.NewGeoPoint(*lon, *lat)
	cfg.Count = *count
	cfg.Seed = *seed
	cfg.ClusterBearing = *bearing
	cfg.ClusterDistance = *distance
	cfg.ClusterSpread = *spread
	cfg.ClusterShare = *clusterShare
	cfg.StaleShare = *stale

	records, err := testkit.GenerateFixes(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating fixes:", err)
		os.Exit(1)
	}
	sheet := testkit.ReportSheet(records)

	switch fmtName {
	case "csv":
		err = testkit.WriteCSV(*out, sheet)
	case "xlsx":
		err = testkit.WriteXLSX(*out, sheet)
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", fmtName, err)
		os.Exit(1)
	}

	kept := len(reference.DedupeConsecutive(records))
	fmt.Printf("Reference fixes written: %s\n", *out)
	fmt.Printf("Rows: %d | After consecutive dedupe: %d\n", len(sheet.Rows), kept)
}
