// Package nmea reads reference fixes from NMEA-0183 receiver logs.
package nmea

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"geolr/domain/geo"
	"geolr/domain/reference"
	"geolr/internal"
	"geolr/internal/errors"

	"github.com/adrianmo/go-nmea"
)

// LogConfig selects which sentences become fixes
type LogConfig struct {
	FilePath string
	// IncludeRMC also takes positions from valid RMC sentences; GGA is always used
	IncludeRMC bool
	// Strict turns unparseable $-lines into a ParseError instead of skipping them
	Strict bool
}

// LogReader loads fixes from a text log of NMEA sentences
type LogReader struct {
	config LogConfig
	debug  bool
	logger *internal.Logger
}

// NewLogReader creates a reader over path
func NewLogReader(config LogConfig) *LogReader {
	return &LogReader{config: config, logger: internal.DefaultLogger}
}

// SetLogger routes progress lines through l; nil keeps internal.DefaultLogger
func (r *LogReader) SetLogger(l *internal.Logger) {
	if l != nil {
		r.logger = l
	}
}

// SetDebug enables per-sentence logging
func (r *LogReader) SetDebug(debug bool) {
	r.debug = debug
}

// Name identifies the source
func (r *LogReader) Name() string {
	return r.config.FilePath
}

// Load parses the log and returns the deduplicated fixes in log order
func (r *LogReader) Load(ctx context.Context) (*reference.Dataset, error) {
	f, err := os.Open(r.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("NMEA log %s", r.config.FilePath))
		}
		return nil, errors.Wrap(err, "failed to open NMEA log")
	}
	defer f.Close()

	var records []reference.Record
	skipped := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] != '$' {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			if r.config.Strict {
				return nil, errors.ParseError(r.config.FilePath, lineNo, "sentence", err)
			}
			if r.debug {
				r.logger.Debug("[NMEAReader] parse error: %v (line %d)", err, lineNo)
			}
			skipped++
			continue
		}

		switch s := sentence.(type) {
		case nmea.GGA:
			if s.FixQuality == nmea.Invalid {
				continue
			}
			records = append(records, r.record(lineNo, "GGA", s.Time, s.Longitude, s.Latitude))
		case nmea.RMC:
			if !r.config.IncludeRMC || s.Validity != "A" {
				continue
			}
			records = append(records, r.record(lineNo, "RMC", s.Time, s.Longitude, s.Latitude))
		default:
			if r.debug {
				r.logger.Debug("[NMEAReader] ignoring %T (line %d)", s, lineNo)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read NMEA log")
	}

	if skipped > 0 {
		r.logger.Info("[NMEAReader] %s: skipped %d unparseable sentences", filepath.Base(r.config.FilePath), skipped)
	}
	ds := reference.NewDataset(r.config.FilePath, records)
	r.logger.Info("[NMEAReader] %s: %d fixes, %d after removing unchanged consecutive fixes",
		filepath.Base(r.config.FilePath), ds.RawCount, ds.Len())
	return ds, nil
}

func (r *LogReader) record(lineNo int, kind string, t nmea.Time, lon, lat float64) reference.Record {
	name := kind
	if t.Valid {
		name = fmt.Sprintf("%s %s", kind, t.String())
	}
	return reference.Record{
		ID:    fmt.Sprintf("%d", lineNo),
		Name:  name,
		Point: geo.NewGeoPoint(lon, lat),
		Row:   lineNo,
	}
}
