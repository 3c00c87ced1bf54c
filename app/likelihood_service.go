package app

import (
	"context"
	"time"

	"geolr/domain/evidence"
	"geolr/domain/geo"
	"geolr/domain/reference"
	"geolr/internal"
	"geolr/internal/errors"
	"geolr/internal/likelihood"
	"geolr/ports"

	"github.com/google/uuid"
)

// CandidateSource pairs a candidate origin point with the source of its reference fixes
type CandidateSource struct {
	Label  string
	Point  geo.GeoPoint
	Source ports.ReferenceSource
}

// LikelihoodService runs one evaluation of an evidence point against two candidates:
// load both reference sets, compute the ratio, render artifacts, write reports.
type LikelihoodService struct {
	engine    *likelihood.Engine
	evidence  geo.GeoPoint
	first     CandidateSource
	second    CandidateSource
	renderers []ports.Renderer
	writers   []ports.ReportWriter
	logger    *internal.Logger

	now   func() time.Time
	newID func() string
}

// NewLikelihoodService creates the service; renderers and writers may be empty
func NewLikelihoodService(engine *likelihood.Engine, ev geo.GeoPoint, first, second CandidateSource,
	renderers []ports.Renderer, writers []ports.ReportWriter, logger *internal.Logger) *LikelihoodService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LikelihoodService{
		engine:    engine,
		evidence:  ev,
		first:     first,
		second:    second,
		renderers: renderers,
		writers:   writers,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run executes the pipeline once. Any failure aborts the run without a report.
func (s *LikelihoodService) Run(ctx context.Context) (*evidence.Report, error) {
	start := time.Now()

	// Step 1: Load both reference datasets
	sources := []CandidateSource{s.first, s.second}
	datasets := make([]*reference.Dataset, len(sources))
	for i, cs := range sources {
		if cs.Source == nil {
			return nil, errors.InvalidInput("candidate " + cs.Label + " has no reference source")
		}
		ds, err := cs.Source.Load(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load reference data for %s from %s", cs.Label, cs.Source.Name())
		}
		datasets[i] = ds
		s.logger.Info("[LikelihoodService] Size of dataset %s: %d (%d rows before dedupe)", cs.Label, ds.Len(), ds.RawCount)
	}

	// Step 2: Report where the candidates lie as seen from the evidence point
	for _, cs := range sources {
		s.logger.Info("[LikelihoodService] E->%s: %s", cs.Label, geo.Transform(s.evidence, cs.Point))
	}

	// Step 3: Evaluate both candidates and combine
	results, lr, err := s.engine.Compare(
		likelihood.Candidate{Label: s.first.Label, Point: s.first.Point, Reference: datasets[0]},
		likelihood.Candidate{Label: s.second.Label, Point: s.second.Point, Reference: datasets[1]},
		s.evidence,
	)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		s.logger.Info("[LikelihoodService] %s: angular fraction %.6g, conditional density %.6g",
			r.Label, r.Probabilities.AngularFraction, r.Probabilities.ConditionalDensity)
	}
	s.logger.Info("[LikelihoodService] Likelihood ratio %s/%s: %g (log10 %.4f)", s.first.Label, s.second.Label, lr.Value, lr.Log10)

	// Step 4: Render artifacts
	artifacts, err := s.render(ctx, results, datasets)
	if err != nil {
		return nil, err
	}

	// Step 5: Assemble and write the report
	opts := s.engine.Options()
	report := &evidence.Report{
		RunID:        s.newID(),
		GeneratedAt:  s.now(),
		Evidence:     s.evidence,
		HalfWidth:    opts.Wedge.HalfWidth,
		WrapBearings: opts.Wedge.WrapBearings,
		Candidates:   results[:],
		Ratio:        lr,
		Favours:      evidence.Favouring(lr.Value, s.first.Label, s.second.Label),
		Scale:        evidence.ScaleFor(lr.Value),
		Artifacts:    artifacts,
	}

	for _, w := range s.writers {
		path, err := w.Write(ctx, report)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to write %s report", w.Format())
		}
		report.Artifacts = append(report.Artifacts, path)
	}

	s.logger.Info("[LikelihoodService] Run %s completed in %.2fms", report.RunID, float64(time.Since(start).Nanoseconds())/1e6)
	return report, nil
}

func (s *LikelihoodService) render(ctx context.Context, results [2]evidence.CandidateResult, datasets []*reference.Dataset) ([]string, error) {
	if len(s.renderers) == 0 {
		return nil, nil
	}

	scene := ports.Scene{Evidence: s.evidence, EvidenceLabel: "E"}
	for i := range results {
		wedge := results[i].Wedge
		scene.Candidates = append(scene.Candidates, ports.SceneCandidate{
			Label:     results[i].Label,
			Point:     results[i].Point,
			Reference: datasets[i],
			Wedge:     &wedge,
		})
	}

	var artifacts []string
	for _, r := range s.renderers {
		for _, res := range results {
			paths, err := r.RenderWedge(ctx, res.Label, res.Wedge, res.Evidence.Distance)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to render wedge of %s", res.Label)
			}
			artifacts = append(artifacts, paths...)
		}
		paths, err := r.RenderScene(ctx, scene)
		if err != nil {
			return nil, errors.Wrap(err, "failed to render scene")
		}
		artifacts = append(artifacts, paths...)
	}
	return artifacts, nil
}
