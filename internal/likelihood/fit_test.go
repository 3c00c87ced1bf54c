package likelihood

import (
	"math"
	"testing"

	"geolr/domain/evidence"
	"geolr/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// quantileSample returns n evenly spaced quantiles of dist, a deterministic
// stand-in for a random draw
func quantileSample(dist distuv.StudentsT, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = dist.Quantile((float64(i) + 0.5) / float64(n))
	}
	return xs
}

func TestFitStudentsT_RecoversParameters(t *testing.T) {
	truth := distuv.StudentsT{Mu: 55, Sigma: 3, Nu: 4}
	xs := quantileSample(truth, 400)

	fit, err := FitStudentsT(xs, DefaultFitOptions())
	require.NoError(t, err)

	assert.InDelta(t, 55, fit.Location, 0.05, "symmetric sample centers on the true location")
	assert.InDelta(t, 3, fit.Scale, 0.4)
	assert.Greater(t, fit.DegreesOfFreedom, 2.0)
	assert.Less(t, fit.DegreesOfFreedom, 8.0)
	assert.Equal(t, 400, fit.SampleSize)
	assert.False(t, math.IsNaN(fit.LogLikelihood))
}

func TestFitStudentsT_Deterministic(t *testing.T) {
	xs := []float64{31.2, 29.8, 30.5, 33.1, 28.7, 30.0, 35.4, 29.1}
	a, err := FitStudentsT(xs, DefaultFitOptions())
	require.NoError(t, err)
	b, err := FitStudentsT(xs, DefaultFitOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFitStudentsT_DoesNotMutateInput(t *testing.T) {
	xs := []float64{5, 3, 9, 1, 7}
	orig := append([]float64(nil), xs...)
	_, err := FitStudentsT(xs, DefaultFitOptions())
	require.NoError(t, err)
	assert.Equal(t, orig, xs)
}

func TestFitStudentsT_Preconditions(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
	}{
		{"empty", nil},
		{"single", []float64{12}},
		{"constant", []float64{12, 12, 12, 12}},
		{"non-finite", []float64{1, 2, math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitStudentsT(tt.xs, DefaultFitOptions())
			require.Error(t, err)
			assert.True(t, errors.IsFitError(err), "got %v", err)
		})
	}
}

func TestFitStudentsT_MinDistinct(t *testing.T) {
	opts := DefaultFitOptions()
	opts.MinDistinct = 5
	_, err := FitStudentsT([]float64{1, 2, 3, 4}, opts)
	assert.True(t, errors.IsFitError(err))
}

func TestDensity_PeaksAtLocation(t *testing.T) {
	fit := evidence.FittedDistribution{DegreesOfFreedom: 3, Location: 40, Scale: 0.2}
	peak := Density(fit, 40)
	assert.Greater(t, peak, 1.0, "a density is not a probability and may exceed one")
	assert.Greater(t, peak, Density(fit, 41))
	assert.InDelta(t, Density(fit, 39), Density(fit, 41), 1e-12)
}

func TestConditionalDensity_EmptyWedge(t *testing.T) {
	d, fit, err := ConditionalDensity(evidence.Wedge{Total: 7}, 12, DefaultFitOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
	assert.Nil(t, fit)
}

func TestConditionalDensity_TighterWedgeScoresHigher(t *testing.T) {
	tight := evidence.Wedge{Distances: []float64{54, 55, 55.5, 56, 54.5, 55.2}, Count: 6, Total: 10}
	loose := evidence.Wedge{Distances: []float64{30, 45, 60, 75, 90, 52}, Count: 6, Total: 10}

	dTight, _, err := ConditionalDensity(tight, 55, DefaultFitOptions())
	require.NoError(t, err)
	dLoose, _, err := ConditionalDensity(loose, 55, DefaultFitOptions())
	require.NoError(t, err)
	assert.Greater(t, dTight, dLoose)
}
