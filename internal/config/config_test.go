package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"geolr/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.InDelta(t, math.Pi/6, cfg.Analysis.HalfWidth, 1e-12)
	assert.True(t, cfg.Analysis.StrictRatio)
	assert.False(t, cfg.Analysis.WrapBearings)
	assert.Equal(t, 2, cfg.Analysis.MinDistinct)

	assert.Equal(t, "P1", cfg.Candidates.First.Label)
	assert.InDelta(t, 6.573832039, cfg.Candidates.First.Point.Longitude, 1e-12)
	assert.InDelta(t, 46.521592273, cfg.Candidates.First.Point.Latitude, 1e-12)
	assert.Equal(t, "Report_P1.xlsx", cfg.Candidates.First.Reference.Path)
	assert.Equal(t, 9, cfg.Candidates.First.Reference.Columns.Latitude)
	assert.Equal(t, 10, cfg.Candidates.First.Reference.Columns.Longitude)

	assert.Equal(t, "P2", cfg.Candidates.Second.Label)
	assert.InDelta(t, 6.575116326, cfg.Candidates.Second.Point.Longitude, 1e-12)
	assert.InDelta(t, 46.5213305555556, cfg.Evidence.Latitude, 1e-12)

	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.yaml")
	content := `
analysis:
  half_width: 0.3
  wrap_bearings: true
evidence:
  lon: 7.1
  lat: 46.9
candidates:
  first:
    label: home
    reference:
      path: home.csv
      skip_rows: 1
  second:
    label: office
    lon: 7.2
    lat: 46.8
    reference:
      path: office.nmea
output:
  dir: out
  reports: [json, html]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Analysis.HalfWidth)
	assert.True(t, cfg.Analysis.WrapBearings)
	assert.True(t, cfg.Analysis.StrictRatio, "unset keys keep their defaults")
	assert.Equal(t, 7.1, cfg.Evidence.Longitude)
	assert.Equal(t, "home", cfg.Candidates.First.Label)
	assert.Equal(t, 1, cfg.Candidates.First.Reference.SkipRows)
	assert.Equal(t, "csv", cfg.Candidates.First.Reference.ResolvedFormat())
	assert.Equal(t, 7.2, cfg.Candidates.Second.Point.Longitude)
	assert.Equal(t, "nmea", cfg.Candidates.Second.Reference.ResolvedFormat())
	assert.Equal(t, []string{"json", "html"}, cfg.Output.Reports)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GEOLR_ANALYSIS_HALF_WIDTH", "0.25")
	t.Setenv("GEOLR_CANDIDATES_SECOND_REFERENCE_PATH", "other.xlsx")

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Analysis.HalfWidth)
	assert.Equal(t, "other.xlsx", cfg.Candidates.Second.Reference.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero half width", func(c *Config) { c.Analysis.HalfWidth = 0 }, "HalfWidth"},
		{"half width above pi", func(c *Config) { c.Analysis.HalfWidth = 4 }, "HalfWidth"},
		{"latitude out of range", func(c *Config) { c.Evidence.Latitude = 91 }, "Latitude"},
		{"longitude out of range", func(c *Config) { c.Candidates.Second.Point.Longitude = -181 }, "Longitude"},
		{"missing reference", func(c *Config) { c.Candidates.First.Reference.Path = "" }, "Path"},
		{"unknown format", func(c *Config) { c.Candidates.First.Reference.Format = "kml" }, "Format"},
		{"negative skip rows", func(c *Config) { c.Candidates.First.Reference.SkipRows = -1 }, "SkipRows"},
		{"unknown report", func(c *Config) { c.Output.Reports = []string{"pdf"} }, "Reports"},
		{"min distinct below two", func(c *Config) { c.Analysis.MinDistinct = 1 }, "MinDistinct"},
		{"duplicate labels", func(c *Config) { c.Candidates.Second.Label = "P1" }, "labels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestResolvedFormat(t *testing.T) {
	assert.Equal(t, "xlsx", ReferenceConfig{Path: "a.xlsx"}.ResolvedFormat())
	assert.Equal(t, "csv", ReferenceConfig{Path: "a.CSV"}.ResolvedFormat())
	assert.Equal(t, "nmea", ReferenceConfig{Path: "track.log"}.ResolvedFormat())
	assert.Equal(t, "csv", ReferenceConfig{Path: "a.xlsx", Format: "csv"}.ResolvedFormat())
}
