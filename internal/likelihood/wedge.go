package likelihood

import (
	"math"

	"geolr/domain/evidence"
	"geolr/domain/geo"
	"geolr/domain/reference"
	"geolr/internal/errors"
)

// WedgeOptions controls the angular window
type WedgeOptions struct {
	HalfWidth float64
	// WrapBearings measures the window modulo 2π. When false the closed interval
	// [center-hw, center+hw] is compared against raw bearings, so fixes just
	// across the ±π seam are left out of a window that straddles it.
	WrapBearings bool
}

// InWindow reports whether bearing lies in the closed window around center
func InWindow(bearing, center float64, opts WedgeOptions) bool {
	if math.IsNaN(bearing) {
		return false
	}
	if opts.WrapBearings {
		return math.Abs(geo.AngularDifference(bearing, center)) <= opts.HalfWidth
	}
	return bearing >= center-opts.HalfWidth && bearing <= center+opts.HalfWidth
}

// SelectWedge transforms the evidence and every reference fix relative to the
// candidate point and keeps the distances of the fixes inside the window
// centered on the evidence bearing.
func SelectWedge(candidate, ev geo.GeoPoint, ds *reference.Dataset, opts WedgeOptions) (evidence.Wedge, error) {
	if ds.IsEmpty() {
		return evidence.Wedge{}, errors.InsufficientData("reference dataset is empty")
	}
	evObs := geo.Transform(candidate, ev)
	refObs := geo.TransformAll(candidate, ds.Points())
	return SelectWedgeFromObservations(evObs, refObs, opts)
}

// SelectWedgeFromObservations applies the window to observations already
// expressed relative to the candidate. Reference fixes coinciding with the
// candidate have no bearing; they count toward the total but never toward the
// wedge.
func SelectWedgeFromObservations(evObs geo.PolarObservation, refObs []geo.PolarObservation, opts WedgeOptions) (evidence.Wedge, error) {
	if len(refObs) == 0 {
		return evidence.Wedge{}, errors.InsufficientData("reference dataset is empty")
	}
	if !(opts.HalfWidth > 0) || opts.HalfWidth > math.Pi {
		return evidence.Wedge{}, errors.Newf(errors.CodeInvalidInput, "half-width %v outside (0, π]", opts.HalfWidth)
	}
	if evObs.Degenerate() {
		return evidence.Wedge{}, errors.InvalidInput("evidence coincides with candidate point, bearing undefined")
	}

	w := evidence.Wedge{
		Distances:     make([]float64, 0),
		Total:         len(refObs),
		CenterBearing: evObs.Bearing,
		HalfWidth:     opts.HalfWidth,
	}
	for _, o := range refObs {
		if o.Degenerate() {
			w.Degenerate++
			continue
		}
		if InWindow(o.Bearing, evObs.Bearing, opts) {
			w.Distances = append(w.Distances, o.Distance)
		}
	}
	w.Count = len(w.Distances)
	return w, nil
}
