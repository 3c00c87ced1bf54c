package excel

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"geolr/domain/geo"
	"geolr/domain/reference"
	"geolr/internal"
	"geolr/internal/errors"
	"geolr/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []reference.Record {
	pts := []geo.GeoPoint{
		geo.NewGeoPoint(6.5738, 46.5215),
		geo.NewGeoPoint(6.5738, 46.5215),
		geo.NewGeoPoint(6.5738, 46.5215),
		geo.NewGeoPoint(6.5738, 46.5215),
		geo.NewGeoPoint(6.57391234567, 46.52131234567),
		geo.NewGeoPoint(6.5738, 46.5215),
	}
	out := make([]reference.Record, len(pts))
	for i, p := range pts {
		out[i] = reference.Record{ID: string(rune('1' + i)), Name: "phone", Point: p}
	}
	return out
}

func TestReferenceReader_XLSXDedupesConsecutiveRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Report_P1.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, testkit.ReportSheet(sampleRecords())))

	ds, err := NewReferenceReader(DefaultSourceConfig(path)).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, ds.RawCount)
	require.Equal(t, 3, ds.Len(), "rows 2-4 repeat row 1 and collapse into it")
	assert.Equal(t, "1", ds.Records[0].ID)
	assert.Equal(t, 2, ds.Records[0].Row)
	assert.Equal(t, "5", ds.Records[1].ID)
	assert.Equal(t, geo.NewGeoPoint(6.57391234567, 46.52131234567), ds.Records[1].Point, "full precision survives")
	assert.Equal(t, "6", ds.Records[2].ID)
}

func TestReferenceReader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Report_P2.csv")
	require.NoError(t, testkit.WriteCSV(path, testkit.ReportSheet(sampleRecords())))

	reader := NewReferenceReader(DefaultSourceConfig(path))
	assert.Equal(t, path, reader.Name())
	ds, err := reader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestReferenceReader_BlankRowBreaksRun(t *testing.T) {
	recs := []reference.Record{
		{ID: "1", Point: geo.NewGeoPoint(6.5738, 46.5215)},
		{ID: "2", Point: geo.NewGeoPoint(6.5738, 46.5215)},
		{ID: "3", Point: geo.NewGeoPoint(6.5738, 46.5215)},
		{ID: "4", Point: geo.NewGeoPoint(6.5739, 46.5216)},
	}
	sheet := testkit.ReportSheet(recs)
	// an empty sheet row between fix 2 and fix 3
	sheet.Rows = append(sheet.Rows[:2], append([][]interface{}{{}}, sheet.Rows[2:]...)...)

	path := filepath.Join(t.TempDir(), "gap.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, sheet))

	ds, err := NewReferenceReader(DefaultSourceConfig(path)).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, ds.RawCount)
	require.Equal(t, 3, ds.Len(), "fix 3 follows a blank row, not fix 2")
	assert.Equal(t, "1", ds.Records[0].ID)
	assert.Equal(t, "3", ds.Records[1].ID)
	assert.Equal(t, 5, ds.Records[1].Row)
	assert.Equal(t, "4", ds.Records[2].ID)
}

func TestReferenceReader_SkipRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, testkit.ReportSheet(sampleRecords())))

	cfg := DefaultSourceConfig(path)
	cfg.SkipRows = 1
	ds, err := NewReferenceReader(cfg).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, ds.RawCount)
	assert.Equal(t, "2", ds.Records[0].ID)
}

func TestReferenceReader_ParseError(t *testing.T) {
	sheet := testkit.ReportSheet(sampleRecords())
	sheet.Rows[2][9] = "forty-six"

	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, sheet))

	_, err := NewReferenceReader(DefaultSourceConfig(path)).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.Contains(t, err.Error(), "row 4")
	assert.Contains(t, err.Error(), "latitude")
}

func TestReferenceReader_MissingCoordinateColumn(t *testing.T) {
	sheet := testkit.ReportSheet(sampleRecords())
	sheet.Rows[0] = sheet.Rows[0][:10]

	path := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, testkit.WriteCSV(path, sheet))

	_, err := NewReferenceReader(DefaultSourceConfig(path)).Load(context.Background())
	assert.True(t, errors.IsParseError(err))
}

func TestReferenceReader_NotFound(t *testing.T) {
	_, err := NewReferenceReader(DefaultSourceConfig(filepath.Join(t.TempDir(), "nope.xlsx"))).Load(context.Background())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReferenceReader_CustomColumns(t *testing.T) {
	sheet := &testkit.Sheet{
		Headers: []string{"lon", "lat", "id"},
		Rows: [][]interface{}{
			{6.1, 46.1, "a"},
			{6.2, 46.2, "b"},
		},
	}
	path := filepath.Join(t.TempDir(), "custom.csv")
	require.NoError(t, testkit.WriteCSV(path, sheet))

	cfg := DefaultSourceConfig(path)
	cfg.Columns = ColumnLayout{ID: 2, Name: 5, Latitude: 1, Longitude: 0}
	ds, err := NewReferenceReader(cfg).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, geo.NewGeoPoint(6.2, 46.2), ds.Records[1].Point)
	assert.Equal(t, "", ds.Records[1].Name)
}

func TestReferenceReader_LogLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	path := filepath.Join(t.TempDir(), "quiet.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, testkit.ReportSheet(sampleRecords())))
	reader := NewReferenceReader(DefaultSourceConfig(path))

	reader.SetLogger(internal.NewLogger(internal.LogLevelError))
	_, err := reader.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	reader.SetLogger(internal.NewLogger(internal.LogLevelInfo))
	_, err = reader.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[ReferenceReader]")
}
