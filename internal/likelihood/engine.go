// Package likelihood weighs an evidence point against two candidate origin
// points: wedge selection, Student's-t distance fit and ratio combination.
package likelihood

import (
	"fmt"
	"math"

	"geolr/domain/evidence"
	"geolr/domain/geo"
	"geolr/domain/reference"
	"geolr/internal"
	"geolr/internal/errors"

	"github.com/montanaflynn/stats"
)

// Candidate is one hypothesised origin with its reference fixes
type Candidate struct {
	Label     string
	Point     geo.GeoPoint
	Reference *reference.Dataset
}

// Options configures an Engine
type Options struct {
	Wedge WedgeOptions
	Fit   FitOptions
	// StrictRatio turns a zero denominator into an UNDEFINED_RATIO error
	// instead of an infinite or NaN ratio.
	StrictRatio bool
}

// DefaultOptions uses a π/6 half-width wedge and strict ratios
func DefaultOptions() Options {
	return Options{
		Wedge:       WedgeOptions{HalfWidth: math.Pi / 6},
		Fit:         DefaultFitOptions(),
		StrictRatio: true,
	}
}

// Engine evaluates candidates against an evidence point. It holds no state
// between calls.
type Engine struct {
	opts   Options
	logger *internal.Logger
}

// NewEngine creates an engine; a nil logger uses internal.DefaultLogger
func NewEngine(opts Options, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{opts: opts, logger: logger}
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.opts
}

// Evaluate computes the probability pair of the evidence under one candidate
func (e *Engine) Evaluate(c Candidate, ev geo.GeoPoint) (evidence.CandidateResult, error) {
	result := evidence.CandidateResult{
		Label:        c.Label,
		Point:        c.Point,
		Evidence:     geo.Transform(c.Point, ev),
		FromEvidence: geo.Transform(ev, c.Point),
	}
	if c.Reference != nil {
		result.Source = c.Reference.Source
		result.RawCount = c.Reference.RawCount
		result.ReferenceCount = c.Reference.Len()
	}

	wedge, err := SelectWedge(c.Point, ev, c.Reference, e.opts.Wedge)
	if err != nil {
		return result, errors.Wrapf(err, "candidate %s: wedge selection failed", c.Label)
	}
	result.Wedge = wedge

	e.logger.Info("[Likelihood] %s: %d of %d reference fixes within wedge (evidence %s)",
		c.Label, wedge.Count, wedge.Total, result.Evidence)
	e.logger.Debug("[Likelihood] %s: wedge distances %v", c.Label, wedge.Distances)
	if wedge.Degenerate > 0 {
		e.logger.Warn("[Likelihood] %s: %d reference fixes coincide with the candidate point", c.Label, wedge.Degenerate)
	}

	density, fit, err := ConditionalDensity(wedge, result.Evidence.Distance, e.opts.Fit)
	if err != nil {
		return result, errors.Wrapf(err, "candidate %s: distance fit failed on %d wedge distances", c.Label, wedge.Count)
	}
	result.Fit = fit
	if fit != nil {
		e.logger.Debug("[Likelihood] %s: t fit df=%.4f loc=%.4f scale=%.4f",
			c.Label, fit.DegreesOfFreedom, fit.Location, fit.Scale)
		summary := summarize(wedge.Distances)
		result.Summary = &summary
	} else {
		e.logger.Warn("[Likelihood] %s: empty wedge, conditional density set to 0", c.Label)
	}

	result.Probabilities = evidence.ProbabilityPair{
		AngularFraction:    wedge.AngularFraction(),
		ConditionalDensity: density,
	}
	return result, nil
}

// Compare evaluates both candidates and their likelihood ratio, first over second
func (e *Engine) Compare(first, second Candidate, ev geo.GeoPoint) ([2]evidence.CandidateResult, evidence.LikelihoodRatio, error) {
	var results [2]evidence.CandidateResult
	for i, c := range []Candidate{first, second} {
		r, err := e.Evaluate(c, ev)
		if err != nil {
			return results, evidence.LikelihoodRatio{}, err
		}
		results[i] = r
	}

	lr, err := Ratio(results[0].Probabilities, results[1].Probabilities, e.opts.StrictRatio)
	if err != nil {
		return results, lr, errors.Wrapf(err, "likelihood ratio %s/%s", first.Label, second.Label)
	}
	return results, lr, nil
}

// Ratio divides the joint probability of the first pair by the second. With
// strict set a zero denominator is an error; otherwise the IEEE result (+Inf,
// or NaN for 0/0) is returned.
func Ratio(first, second evidence.ProbabilityPair, strict bool) (evidence.LikelihoodRatio, error) {
	lr := evidence.LikelihoodRatio{
		Numerator:   first.Joint(),
		Denominator: second.Joint(),
	}
	if lr.Denominator == 0 && strict {
		return lr, errors.UndefinedRatio(fmt.Sprintf(
			"denominator is zero (angular fraction %g, conditional density %g)",
			second.AngularFraction, second.ConditionalDensity))
	}
	lr.Value = lr.Numerator / lr.Denominator
	lr.Log10 = math.Log10(lr.Value)
	return lr, nil
}

func summarize(xs []float64) evidence.WedgeSummary {
	var s evidence.WedgeSummary
	s.Mean, _ = stats.Mean(xs)
	s.Median, _ = stats.Median(xs)
	s.StdDev, _ = stats.StandardDeviationSample(xs)
	s.Min, _ = stats.Min(xs)
	s.Max, _ = stats.Max(xs)
	return s
}
