package likelihood

import (
	"fmt"
	"math"

	"geolr/domain/evidence"
	"geolr/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// minDegreesOfFreedom keeps the likelihood bounded when a few fixes coincide
	minDegreesOfFreedom = 1.0
	maxDegreesOfFreedom = 1e7
	madToSigma          = 1.4826
	minRelativeScale    = 1e-6
)

// FitOptions tunes the Student's-t maximum-likelihood fit
type FitOptions struct {
	// MinDistinct is the fewest distinct distances accepted for a fit
	MinDistinct    int
	MaxEvaluations int
	// StartDegreesOfFreedom seeds one Nelder-Mead run each; the best optimum wins
	StartDegreesOfFreedom []float64
}

// DefaultFitOptions returns the settings used by the analysis
func DefaultFitOptions() FitOptions {
	return FitOptions{
		MinDistinct:           2,
		MaxEvaluations:        20000,
		StartDegreesOfFreedom: []float64{1.5, 5, 30},
	}
}

// FitStudentsT fits a location-scale Student's-t distribution to xs by maximum
// likelihood. The search runs on standardized data with parameters
// (log(ν-1), μ, log σ) so every iterate is a valid distribution. The result is
// deterministic for a given input.
func FitStudentsT(xs []float64, opts FitOptions) (evidence.FittedDistribution, error) {
	if opts.MinDistinct < 2 {
		opts.MinDistinct = 2
	}
	if opts.MaxEvaluations <= 0 {
		opts.MaxEvaluations = DefaultFitOptions().MaxEvaluations
	}
	if len(opts.StartDegreesOfFreedom) == 0 {
		opts.StartDegreesOfFreedom = DefaultFitOptions().StartDegreesOfFreedom
	}

	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return evidence.FittedDistribution{}, errors.FitError("sample contains non-finite values")
		}
	}
	if d := distinctCount(xs); d < opts.MinDistinct {
		return evidence.FittedDistribution{}, errors.FitError(
			fmt.Sprintf("need at least %d distinct distances to fit, got %d of %d", opts.MinDistinct, d, len(xs)))
	}

	center, spread, err := startingValues(xs)
	if err != nil {
		return evidence.FittedDistribution{}, errors.WithCode(errors.CodeFitError, err)
	}

	z := make([]float64, len(xs))
	for i, x := range xs {
		z[i] = (x - center) / spread
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			nu, mu, sigma := unpack(p)
			if sigma == 0 || math.IsInf(sigma, 0) {
				return math.Inf(1)
			}
			dist := distuv.StudentsT{Mu: mu, Sigma: sigma, Nu: nu}
			nll := 0.0
			for _, v := range z {
				nll -= dist.LogProb(v)
			}
			if math.IsNaN(nll) {
				return math.Inf(1)
			}
			return nll
		},
	}

	var best *optimize.Result
	iterations := 0
	for _, nu0 := range opts.StartDegreesOfFreedom {
		settings := &optimize.Settings{
			FuncEvaluations: opts.MaxEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-12,
				Relative:   1e-12,
				Iterations: 200,
			},
		}
		init := []float64{math.Log(math.Max(nu0-minDegreesOfFreedom, 1e-3)), 0, 0}
		res, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{SimplexSize: 0.5})
		if err != nil {
			continue
		}
		iterations += res.Stats.MajorIterations
		if math.IsNaN(res.F) || math.IsInf(res.F, 0) {
			continue
		}
		if best == nil || res.F < best.F {
			best = res
		}
	}
	if best == nil {
		return evidence.FittedDistribution{}, errors.FitError("likelihood optimization did not converge")
	}

	nu, muZ, sigmaZ := unpack(best.X)
	if sigmaZ < minRelativeScale {
		return evidence.FittedDistribution{}, errors.FitError(
			fmt.Sprintf("degenerate fit: scale collapsed to %g of the sample spread", sigmaZ))
	}

	n := float64(len(xs))
	return evidence.FittedDistribution{
		DegreesOfFreedom: nu,
		Location:         center + spread*muZ,
		Scale:            spread * sigmaZ,
		LogLikelihood:    -best.F - n*math.Log(spread),
		SampleSize:       len(xs),
		Iterations:       iterations,
	}, nil
}

// Density evaluates the fitted probability density at x. The value is a
// relative likelihood and can exceed one.
func Density(fit evidence.FittedDistribution, x float64) float64 {
	return distuv.StudentsT{Mu: fit.Location, Sigma: fit.Scale, Nu: fit.DegreesOfFreedom}.Prob(x)
}

// ConditionalDensity fits the wedge distances and evaluates the density at the
// evidence distance. An empty wedge yields zero with no fit.
func ConditionalDensity(w evidence.Wedge, evidenceDistance float64, opts FitOptions) (float64, *evidence.FittedDistribution, error) {
	if w.IsEmpty() {
		return 0, nil, nil
	}
	fit, err := FitStudentsT(w.Distances, opts)
	if err != nil {
		return 0, nil, err
	}
	return Density(fit, evidenceDistance), &fit, nil
}

func unpack(p []float64) (nu, mu, sigma float64) {
	nu = minDegreesOfFreedom + math.Exp(p[0])
	if nu > maxDegreesOfFreedom || math.IsNaN(nu) {
		nu = maxDegreesOfFreedom
	}
	return nu, p[1], math.Exp(p[2])
}

// startingValues returns a robust center and spread for standardizing the sample
func startingValues(xs []float64) (float64, float64, error) {
	center, err := stats.Median(xs)
	if err != nil {
		return 0, 0, err
	}
	mad, err := stats.MedianAbsoluteDeviationPopulation(xs)
	if err != nil {
		return 0, 0, err
	}
	spread := mad * madToSigma
	if spread == 0 {
		spread, err = stats.StandardDeviationSample(xs)
		if err != nil {
			return 0, 0, err
		}
	}
	if spread == 0 || math.IsNaN(spread) {
		return 0, 0, fmt.Errorf("sample has no spread")
	}
	return center, spread, nil
}

func distinctCount(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
