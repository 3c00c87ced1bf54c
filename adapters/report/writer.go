// Package report writes analysis reports to the output directory.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"geolr/domain/evidence"
	"geolr/internal"
	"geolr/internal/errors"
	"geolr/ports"
)

// BaseName is the file name stem of every report
const BaseName = "report"

// encodeFunc renders a report into bytes
type encodeFunc func(*evidence.Report) ([]byte, error)

// FileWriter writes one report format to <dir>/report.<ext>
type FileWriter struct {
	dir    string
	format string
	ext    string
	encode encodeFunc
	logger *internal.Logger
}

// Format returns the format name
func (w *FileWriter) Format() string {
	return w.format
}

// Path returns the destination file
func (w *FileWriter) Path() string {
	return filepath.Join(w.dir, BaseName+"."+w.ext)
}

// SetLogger routes progress lines through l; nil keeps internal.DefaultLogger
func (w *FileWriter) SetLogger(l *internal.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Write encodes the report and writes it, returning the file path
func (w *FileWriter) Write(ctx context.Context, r *evidence.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r == nil {
		return "", errors.InvalidInput("report is nil")
	}
	data, err := w.encode(r)
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode %s report", w.format)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", w.dir)
	}
	path := w.Path()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	w.logger.Info("[Report] Wrote %s report: %s (%d bytes)", w.format, path, len(data))
	return path, nil
}

// New returns the writer for a format name: json, yaml, markdown or html
func New(dir, format string) (*FileWriter, error) {
	switch format {
	case "json":
		return &FileWriter{dir: dir, format: format, ext: "json", encode: encodeJSON, logger: internal.DefaultLogger}, nil
	case "yaml":
		return &FileWriter{dir: dir, format: format, ext: "yaml", encode: encodeYAML, logger: internal.DefaultLogger}, nil
	case "markdown":
		return &FileWriter{dir: dir, format: format, ext: "md", encode: encodeMarkdown, logger: internal.DefaultLogger}, nil
	case "html":
		return &FileWriter{dir: dir, format: format, ext: "html", encode: encodeHTML, logger: internal.DefaultLogger}, nil
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown report format %q", format))
	}
}

// NewWriters builds writers for each format in order
func NewWriters(dir string, formats []string) ([]ports.ReportWriter, error) {
	writers := make([]ports.ReportWriter, 0, len(formats))
	for _, f := range formats {
		w, err := New(dir, f)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	return writers, nil
}
