package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_IdenticalPointsHaveZeroDistance(t *testing.T) {
	points := []GeoPoint{
		NewGeoPoint(0, 0),
		NewGeoPoint(6.573832039, 46.521592273),
		NewGeoPoint(-122.4194, 37.7749),
	}
	for _, p := range points {
		obs := Transform(p, p)
		assert.Equal(t, 0.0, obs.Distance, "point %s", p)
		assert.True(t, obs.Degenerate())
	}
}

func TestTransform_Cardinal(t *testing.T) {
	tests := []struct {
		name    string
		target  GeoPoint
		bearing float64
	}{
		{"north", NewGeoPoint(0, 0.01), 0},
		{"east", NewGeoPoint(0.01, 0), math.Pi / 2},
		{"south", NewGeoPoint(0, -0.01), math.Pi},
		{"west", NewGeoPoint(-0.01, 0), -math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := Transform(NewGeoPoint(0, 0), tt.target)
			assert.InDelta(t, tt.bearing, obs.Bearing, 1e-9)
			assert.Greater(t, obs.Distance, 0.0)
		})
	}
}

func TestTransform_EllipsoidalDistance(t *testing.T) {
	// One hundredth of a degree of latitude at the equator on WGS84 is ~1105.7 m,
	// noticeably shorter than the ~1111.9 m a mean-radius sphere gives.
	obs := Transform(NewGeoPoint(0, 0), NewGeoPoint(0, 0.01))
	assert.InDelta(t, 1105.74, obs.Distance, 0.05)

	// Equator arc: a * Δλ
	obs = Transform(NewGeoPoint(0, 0), NewGeoPoint(0.01, 0))
	assert.InDelta(t, 6378137.0*0.01*math.Pi/180, obs.Distance, 1e-3)
}

func TestTransform_CandidateSite(t *testing.T) {
	p1 := NewGeoPoint(6.573832039, 46.521592273)
	e := NewGeoPoint(6.57394444444444, 46.5213305555556)

	fwd := Transform(p1, e)
	back := Transform(e, p1)

	require.False(t, fwd.Degenerate())
	assert.InDelta(t, fwd.Distance, back.Distance, 1e-6)
	assert.Greater(t, fwd.Distance, 25.0)
	assert.Less(t, fwd.Distance, 35.0)
	// E lies south-south-east of P1
	assert.Greater(t, fwd.Bearing, math.Pi/2)
	assert.Less(t, fwd.Bearing, math.Pi)
	assert.InDelta(t, math.Pi, math.Abs(AngularDifference(fwd.Bearing, back.Bearing)), 1e-3)
}

func TestNormalizeBearing(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeBearing(tt.in), 1e-12, "input %v", tt.in)
	}
}

func TestGeoPointValid(t *testing.T) {
	assert.True(t, NewGeoPoint(180, -90).Valid())
	assert.False(t, NewGeoPoint(181, 0).Valid())
	assert.False(t, NewGeoPoint(0, 90.5).Valid())
	assert.False(t, NewGeoPoint(math.NaN(), 0).Valid())
}

func TestDestination_RoundTrip(t *testing.T) {
	origin := NewGeoPoint(6.573832039, 46.521592273)
	for _, b := range []float64{0, 0.7, math.Pi / 2, 2.8, -1.2} {
		p := Destination(origin, b, 123.4)
		obs := Transform(origin, p)
		assert.InDelta(t, 123.4, obs.Distance, 1e-6)
		assert.InDelta(t, 0, AngularDifference(obs.Bearing, b), 1e-9)
	}
}
