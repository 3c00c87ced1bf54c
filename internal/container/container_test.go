package container

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"geolr/adapters/excel"
	"geolr/adapters/nmea"
	"geolr/domain/evidence"
	"geolr/domain/geo"
	"geolr/internal/config"
	"geolr/internal/errors"
	"geolr/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.ReferenceConfig{Path: "a.xlsx"}, false)
	require.NoError(t, err)
	assert.IsType(t, &excel.ReferenceReader{}, src)

	src, err = NewSource(config.ReferenceConfig{Path: "track.nmea"}, true)
	require.NoError(t, err)
	assert.IsType(t, &nmea.LogReader{}, src)
	assert.Equal(t, "track.nmea", src.Name())

	_, err = NewSource(config.ReferenceConfig{Path: "a.kml", Format: "kml"}, false)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestEngineOptions(t *testing.T) {
	opts := EngineOptions(config.AnalysisConfig{HalfWidth: 0.2, WrapBearings: true, MinDistinct: 3})
	assert.Equal(t, 0.2, opts.Wedge.HalfWidth)
	assert.True(t, opts.Wedge.WrapBearings)
	assert.False(t, opts.StrictRatio)
	assert.Equal(t, 3, opts.Fit.MinDistinct)
}

func TestContainer_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Plots = false
	cfg.Output.GeoJSON = true
	cfg.Output.Reports = []string{"json", "markdown"}

	first := testkit.DefaultFixConfig()
	first.Center = Point(cfg.Candidates.First.Point)
	first.ClusterBearing = geo.Transform(first.Center, Point(cfg.Evidence)).Bearing
	first.ClusterDistance = geo.Transform(first.Center, Point(cfg.Evidence)).Distance

	second := testkit.DefaultFixConfig()
	second.Seed = 7
	second.Center = Point(cfg.Candidates.Second.Point)
	second.ClusterBearing = 0.3
	second.ClusterDistance = 80

	for i, fc := range []testkit.FixConfig{first, second} {
		recs, err := testkit.GenerateFixes(fc)
		require.NoError(t, err)
		path := filepath.Join(dir, []string{"p1.xlsx", "p2.csv"}[i])
		if i == 0 {
			require.NoError(t, testkit.WriteXLSX(path, testkit.ReportSheet(recs)))
			cfg.Candidates.First.Reference.Path = path
		} else {
			require.NoError(t, testkit.WriteCSV(path, testkit.ReportSheet(recs)))
			cfg.Candidates.Second.Reference.Path = path
		}
	}
	require.NoError(t, cfg.Validate())

	c, err := New(cfg)
	require.NoError(t, err)
	require.Len(t, c.Renderers, 1)
	require.Len(t, c.Writers, 2)

	report, err := c.LikelihoodService.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "P1", report.Favours)
	assert.Greater(t, report.Ratio.Value, 1.0)
	assert.Contains(t, report.Artifacts, filepath.Join(cfg.Output.Dir, "scene.geojson"))
	assert.Contains(t, report.Artifacts, filepath.Join(cfg.Output.Dir, "report.json"))
	assert.Contains(t, report.Artifacts, filepath.Join(cfg.Output.Dir, "report.md"))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestContainer_LogLevelReachesAdapters(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Plots = false
	cfg.Output.Reports = []string{"json"}

	recs, err := testkit.GenerateFixes(testkit.DefaultFixConfig())
	require.NoError(t, err)
	path := filepath.Join(dir, "p1.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, testkit.ReportSheet(recs)))
	cfg.Candidates.First.Reference.Path = path

	c, err := New(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	_, err = c.Sources[0].Load(context.Background())
	require.NoError(t, err)
	_, err = c.Writers[0].Write(context.Background(), &evidence.Report{RunID: "quiet"})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "[ReferenceReader]")
	assert.NotContains(t, buf.String(), "[Report]")
}
