package ports

import (
	"context"

	"geolr/domain/evidence"
	"geolr/domain/geo"
	"geolr/domain/reference"
)

// SceneCandidate is one candidate point and its reference fixes, as drawn on a scene
type SceneCandidate struct {
	Label     string
	Point     geo.GeoPoint
	Reference *reference.Dataset
	// Wedge is set once the candidate has been evaluated
	Wedge *evidence.Wedge
}

// Scene is the full spatial picture of an analysis
type Scene struct {
	Evidence      geo.GeoPoint
	EvidenceLabel string
	Candidates    []SceneCandidate
}

// Renderer produces human-inspection artifacts. Implementations return the
// paths they wrote, empty when they produce nothing for the call.
type Renderer interface {
	RenderWedge(ctx context.Context, label string, wedge evidence.Wedge, evidenceDistance float64) ([]string, error)
	RenderScene(ctx context.Context, scene Scene) ([]string, error)
}

// ReportWriter persists a finished report in one format
type ReportWriter interface {
	Write(ctx context.Context, report *evidence.Report) (string, error)
	Format() string
}
