package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"geolr/domain/geo"
	"geolr/domain/reference"
	"geolr/internal"
	"geolr/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ReferenceReader loads reference fixes from an xlsx or csv file with a header
// row and fixed column positions
type ReferenceReader struct {
	config   SourceConfig
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewReferenceReader creates a reader; the file type follows the extension
func NewReferenceReader(config SourceConfig) *ReferenceReader {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &ReferenceReader{config: config, fileType: fileType, logger: internal.DefaultLogger}
}

// SetLogger routes progress lines through l; nil keeps internal.DefaultLogger
func (r *ReferenceReader) SetLogger(l *internal.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Name identifies the source
func (r *ReferenceReader) Name() string {
	return r.config.FilePath
}

// Load reads the file and returns the deduplicated dataset
func (r *ReferenceReader) Load(ctx context.Context) (*reference.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Info("[ReferenceReader] Reading %s file: %s", r.fileType, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.config.FilePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}

	runs, err := r.parseRows(rows)
	if err != nil {
		return nil, err
	}
	ds := reference.NewDatasetFromRuns(r.config.FilePath, runs)
	r.logger.Info("[ReferenceReader] %s: %d rows, %d after removing unchanged consecutive fixes",
		filepath.Base(r.config.FilePath), ds.RawCount, ds.Len())
	return ds, nil
}

// readExcelRows returns the raw cell values of the configured sheet
func (r *ReferenceReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()
	r.logger.Info("[ReferenceReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	// Raw values keep full coordinate precision regardless of the cell number format
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	return rows, nil
}

func (r *ReferenceReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

// parseRows skips the header and SkipRows data rows, then converts each row.
// Blank rows are dropped but end the current run, so fixes on either side of
// one never count as consecutive.
func (r *ReferenceReader) parseRows(rows [][]string) ([][]reference.Record, error) {
	if len(rows) == 0 {
		return nil, errors.InsufficientData(fmt.Sprintf("%s: no header row", r.config.FilePath))
	}
	cols := r.config.Columns
	first := 1 + r.config.SkipRows

	var runs [][]reference.Record
	var records []reference.Record
	for i := first; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			if len(records) > 0 {
				runs = append(runs, records)
				records = nil
			}
			continue
		}
		sheetRow := i + 1
		lat, err := parseCoordinate(cell(row, cols.Latitude))
		if err != nil {
			return nil, errors.ParseError(r.config.FilePath, sheetRow, "latitude", err)
		}
		lon, err := parseCoordinate(cell(row, cols.Longitude))
		if err != nil {
			return nil, errors.ParseError(r.config.FilePath, sheetRow, "longitude", err)
		}
		records = append(records, reference.Record{
			ID:    cell(row, cols.ID),
			Name:  cell(row, cols.Name),
			Point: geo.NewGeoPoint(lon, lat),
			Row:   sheetRow,
		})
	}
	if len(records) > 0 {
		runs = append(runs, records)
	}
	return runs, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseCoordinate(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
