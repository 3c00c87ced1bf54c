// Package reference holds historical location fixes recorded around a
// candidate origin point.
package reference

import (
	"geolr/domain/geo"
)

// Record is one historical location fix
type Record struct {
	ID    string       `json:"id" yaml:"id"`
	Name  string       `json:"name" yaml:"name"`
	Point geo.GeoPoint `json:"point" yaml:"point"`
	// Row is the 1-based position of the record in its source, 0 when unknown
	Row int `json:"row,omitempty" yaml:"row,omitempty"`
}

// Dataset is an ordered, deduplicated sequence of reference records
type Dataset struct {
	Source  string   `json:"source" yaml:"source"`
	Records []Record `json:"records" yaml:"records"`
	// RawCount is the number of records read before deduplication
	RawCount int `json:"raw_count" yaml:"raw_count"`
}

// NewDataset deduplicates records and wraps them into a Dataset
func NewDataset(source string, records []Record) *Dataset {
	return &Dataset{
		Source:   source,
		Records:  DedupeConsecutive(records),
		RawCount: len(records),
	}
}

// NewDatasetFromRuns deduplicates each run on its own and concatenates them.
// A break between runs keeps equal fixes on either side of it.
func NewDatasetFromRuns(source string, runs [][]Record) *Dataset {
	ds := &Dataset{Source: source}
	for _, run := range runs {
		ds.RawCount += len(run)
		ds.Records = append(ds.Records, DedupeConsecutive(run)...)
	}
	return ds
}

// Len returns the number of deduplicated records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// IsEmpty reports whether the dataset carries no records
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// Points returns the record coordinates in order
func (d *Dataset) Points() []geo.GeoPoint {
	points := make([]geo.GeoPoint, 0, d.Len())
	for _, r := range d.Records {
		points = append(points, r.Point)
	}
	return points
}

// DedupeConsecutive drops every record whose latitude and longitude both equal
// those of the record immediately before it in the input, keeping the first
// of each run. Non-adjacent repeats are kept.
func DedupeConsecutive(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]Record, 0, len(records))
	out = append(out, records[0])
	for i := 1; i < len(records); i++ {
		if records[i].Point.Equal(records[i-1].Point) {
			continue
		}
		out = append(out, records[i])
	}
	return out
}
