// Package evidence holds the intermediate and final values of a
// likelihood-ratio evaluation between two candidate origin points.
package evidence

import (
	"math"
	"time"

	"geolr/domain/geo"
)

// Wedge is the set of reference distances whose bearing from a candidate lies
// within the angular window around the evidence bearing
type Wedge struct {
	Distances     []float64 `json:"distances_m" yaml:"distances_m"`
	Count         int       `json:"count" yaml:"count"`
	Total         int       `json:"total" yaml:"total"`
	CenterBearing float64   `json:"center_bearing_rad" yaml:"center_bearing_rad"`
	HalfWidth     float64   `json:"half_width_rad" yaml:"half_width_rad"`
	// Degenerate counts reference fixes coinciding with the candidate point
	Degenerate int `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
}

// IsEmpty reports whether no reference distance fell inside the window
func (w Wedge) IsEmpty() bool {
	return w.Count == 0
}

// AngularFraction is Count/Total. Callers guarantee Total > 0.
func (w Wedge) AngularFraction() float64 {
	return float64(w.Count) / float64(w.Total)
}

// FittedDistribution holds Student's-t parameters fitted to a wedge
type FittedDistribution struct {
	DegreesOfFreedom float64 `json:"df" yaml:"df"`
	Location         float64 `json:"loc" yaml:"loc"`
	Scale            float64 `json:"scale" yaml:"scale"`
	LogLikelihood    float64 `json:"log_likelihood" yaml:"log_likelihood"`
	SampleSize       int     `json:"n" yaml:"n"`
	Iterations       int     `json:"iterations" yaml:"iterations"`
}

// ProbabilityPair is the per-candidate evidence weight
type ProbabilityPair struct {
	AngularFraction    float64 `json:"angular_fraction" yaml:"angular_fraction"`
	ConditionalDensity float64 `json:"conditional_density" yaml:"conditional_density"`
}

// Joint returns AngularFraction × ConditionalDensity
func (p ProbabilityPair) Joint() float64 {
	return p.AngularFraction * p.ConditionalDensity
}

// WedgeSummary describes the wedge distances for reporting
type WedgeSummary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

// CandidateResult is everything computed for one candidate origin point
type CandidateResult struct {
	Label          string               `json:"label" yaml:"label"`
	Point          geo.GeoPoint         `json:"point" yaml:"point"`
	Source         string               `json:"source" yaml:"source"`
	RawCount       int                  `json:"raw_count" yaml:"raw_count"`
	ReferenceCount int                  `json:"reference_count" yaml:"reference_count"`
	Evidence       geo.PolarObservation `json:"evidence" yaml:"evidence"`
	// FromEvidence is the candidate seen from the evidence point
	FromEvidence  geo.PolarObservation `json:"from_evidence" yaml:"from_evidence"`
	Wedge         Wedge                `json:"wedge" yaml:"wedge"`
	Summary       *WedgeSummary        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Fit           *FittedDistribution  `json:"fit,omitempty" yaml:"fit,omitempty"`
	Probabilities ProbabilityPair      `json:"probabilities" yaml:"probabilities"`
}

// LikelihoodRatio is the ratio of joint probabilities of two candidates.
// Value is +Inf or NaN only when the ratio was computed without strict checks.
type LikelihoodRatio struct {
	Value       float64 `json:"value" yaml:"value"`
	Log10       float64 `json:"log10" yaml:"log10"`
	Numerator   float64 `json:"numerator" yaml:"numerator"`
	Denominator float64 `json:"denominator" yaml:"denominator"`
}

// Defined reports whether the ratio is a finite number
func (lr LikelihoodRatio) Defined() bool {
	return !math.IsNaN(lr.Value) && !math.IsInf(lr.Value, 0)
}

// Report is the outcome of one analysis run
type Report struct {
	RunID        string            `json:"run_id" yaml:"run_id"`
	GeneratedAt  time.Time         `json:"generated_at" yaml:"generated_at"`
	Evidence     geo.GeoPoint      `json:"evidence" yaml:"evidence"`
	HalfWidth    float64           `json:"half_width_rad" yaml:"half_width_rad"`
	WrapBearings bool              `json:"wrap_bearings" yaml:"wrap_bearings"`
	Candidates   []CandidateResult `json:"candidates" yaml:"candidates"`
	Ratio        LikelihoodRatio   `json:"likelihood_ratio" yaml:"likelihood_ratio"`
	Favours      string            `json:"favours" yaml:"favours"`
	Scale        VerbalScale       `json:"verbal_scale" yaml:"verbal_scale"`
	Artifacts    []string          `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}
