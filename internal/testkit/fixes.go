// Package testkit generates synthetic reference datasets and writes them in
// the location report layout read by the excel adapter.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"geolr/domain/geo"
	"geolr/domain/reference"

	"github.com/xuri/excelize/v2"
)

// ReportHeaders is the header row of a location report export. Latitude and
// longitude sit in columns J and K.
var ReportHeaders = []string{
	"ID", "Name", "Type", "Date", "Time", "Source", "Accuracy", "Cell", "Address", "Latitude", "Longitude",
}

// FixConfig shapes a synthetic set of fixes around a center point
type FixConfig struct {
	Center geo.GeoPoint
	Count  int
	Seed   int64

	// Share of fixes drawn from the cluster, the rest are scattered uniformly
	ClusterShare    float64
	ClusterBearing  float64 // radians
	ClusterDistance float64 // meters
	ClusterSpread   float64 // meters, standard deviation along the ray
	ClusterAngle    float64 // radians, standard deviation across the ray

	BackgroundRadius float64 // meters
	// StaleShare is the probability that a fix repeats the previous position
	StaleShare float64
	NamePrefix string
}

func DefaultFixConfig() FixConfig {
	return FixConfig{
		Center:           geo.NewGeoPoint(6.573832039, 46.521592273),
		Count:            200,
		Seed:             42,
		ClusterShare:     0.6,
		ClusterBearing:   2.85,
		ClusterDistance:  30,
		ClusterSpread:    6,
		ClusterAngle:     0.15,
		BackgroundRadius: 120,
		StaleShare:       0.1,
		NamePrefix:       "fix",
	}
}

// GenerateFixes draws fixes deterministically from cfg.Seed
func GenerateFixes(cfg FixConfig) ([]reference.Record, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("count must be > 0")
	}
	if cfg.ClusterShare < 0 || cfg.ClusterShare > 1 {
		return nil, fmt.Errorf("cluster share must be in [0,1]")
	}
	if !cfg.Center.Valid() {
		return nil, fmt.Errorf("invalid center %s", cfg.Center)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	records := make([]reference.Record, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		var p geo.GeoPoint
		switch {
		case i > 0 && rng.Float64() < cfg.StaleShare:
			p = records[i-1].Point
		case rng.Float64() < cfg.ClusterShare:
			d := math.Abs(cfg.ClusterDistance + rng.NormFloat64()*cfg.ClusterSpread)
			b := cfg.ClusterBearing + rng.NormFloat64()*cfg.ClusterAngle
			p = geo.Destination(cfg.Center, b, d)
		default:
			d := cfg.BackgroundRadius * math.Sqrt(rng.Float64())
			b := (rng.Float64()*2 - 1) * math.Pi
			p = geo.Destination(cfg.Center, b, d)
		}
		records = append(records, reference.Record{
			ID:    strconv.Itoa(i + 1),
			Name:  fmt.Sprintf("%s-%04d", cfg.NamePrefix, i+1),
			Point: p,
			Row:   i + 2,
		})
	}
	return records, nil
}

// Sheet is a header row plus data rows of cell values
type Sheet struct {
	Headers []string
	Rows    [][]interface{}
}

// ReportSheet lays records out in the location report columns
func ReportSheet(records []reference.Record) *Sheet {
	s := &Sheet{Headers: ReportHeaders, Rows: make([][]interface{}, 0, len(records))}
	for _, r := range records {
		s.Rows = append(s.Rows, []interface{}{
			r.ID, r.Name, "GPS", "2024-03-01", "12:00:00", "synthetic", 5, "", "",
			r.Point.Latitude, r.Point.Longitude,
		})
	}
	return s
}

// WriteXLSX writes the sheet to the first worksheet of a new workbook
func WriteXLSX(path string, s *Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range s.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range s.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

// WriteCSV writes the sheet as comma separated values
func WriteCSV(path string, s *Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.Headers); err != nil {
		return err
	}
	for _, row := range s.Rows {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = formatCell(v)
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
