// Package geojson exports the analysis scene as a GeoJSON feature collection
// for web mapping tools.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"geolr/domain/evidence"
	"geolr/domain/geo"
	"geolr/internal"
	"geolr/ports"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SceneFilename is the name of the exported file
const SceneFilename = "scene.geojson"

// arcSegments is the number of chords approximating a wedge arc
const arcSegments = 32

// Exporter writes a scene to GeoJSON. It produces nothing per wedge; wedge
// sectors are part of the scene.
type Exporter struct {
	outputDir string
	logger    *internal.Logger
}

var _ ports.Renderer = (*Exporter)(nil)

func NewExporter(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir, logger: internal.DefaultLogger}
}

// SetLogger routes progress lines through l; nil keeps internal.DefaultLogger
func (e *Exporter) SetLogger(l *internal.Logger) {
	if l != nil {
		e.logger = l
	}
}

func (e *Exporter) RenderWedge(ctx context.Context, label string, wedge evidence.Wedge, evidenceDistance float64) ([]string, error) {
	return nil, nil
}

// RenderScene writes reference fixes, candidate points, wedge sectors and the
// evidence point
func (e *Exporter) RenderScene(ctx context.Context, scene ports.Scene) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fc := BuildFeatureCollection(scene)

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.outputDir, SceneFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.logger.Info("[GeoJSONExporter] wrote %s (%d features)", path, len(fc.Features))
	return []string{path}, nil
}

// BuildFeatureCollection converts a scene into features
func BuildFeatureCollection(scene ports.Scene) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	evLabel := scene.EvidenceLabel
	if evLabel == "" {
		evLabel = "E"
	}
	ev := geojson.NewFeature(toPoint(scene.Evidence))
	ev.Properties["name"] = evLabel
	ev.Properties["type"] = "evidence"
	fc.Append(ev)

	for _, c := range scene.Candidates {
		cf := geojson.NewFeature(toPoint(c.Point))
		cf.Properties["name"] = c.Label
		cf.Properties["type"] = "candidate"
		fc.Append(cf)

		if c.Reference != nil && !c.Reference.IsEmpty() {
			mp := make(orb.MultiPoint, 0, c.Reference.Len())
			for _, r := range c.Reference.Records {
				mp = append(mp, toPoint(r.Point))
			}
			rf := geojson.NewFeature(mp)
			rf.Properties["name"] = c.Label + " reference"
			rf.Properties["type"] = "reference"
			rf.Properties["candidate"] = c.Label
			rf.Properties["count"] = c.Reference.Len()
			rf.Properties["source"] = c.Reference.Source
			fc.Append(rf)
		}

		if c.Wedge != nil && !c.Wedge.IsEmpty() {
			radius := 0.0
			for _, d := range c.Wedge.Distances {
				if d > radius {
					radius = d
				}
			}
			wf := geojson.NewFeature(Sector(c.Point, c.Wedge.CenterBearing, c.Wedge.HalfWidth, radius))
			wf.Properties["name"] = c.Label + " wedge"
			wf.Properties["type"] = "wedge"
			wf.Properties["candidate"] = c.Label
			wf.Properties["count"] = c.Wedge.Count
			wf.Properties["total"] = c.Wedge.Total
			wf.Properties["radius_m"] = radius
			fc.Append(wf)
		}
	}
	return fc
}

// Sector approximates the wedge [center-hw, center+hw] out to radius meters as
// a closed polygon with geodesic vertices
func Sector(apex geo.GeoPoint, center, halfWidth, radius float64) orb.Polygon {
	ring := make(orb.Ring, 0, arcSegments+3)
	ring = append(ring, toPoint(apex))
	for i := 0; i <= arcSegments; i++ {
		b := center - halfWidth + 2*halfWidth*float64(i)/arcSegments
		ring = append(ring, toPoint(geo.Destination(apex, b, radius)))
	}
	ring = append(ring, toPoint(apex))
	return orb.Polygon{ring}
}

func toPoint(p geo.GeoPoint) orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}
