// Package geo converts WGS84 coordinates into distance/bearing observations
// relative to a reference point.
package geo

import (
	"fmt"
	"math"

	"github.com/tidwall/geodesic"
)

// GeoPoint is a WGS84 position in decimal degrees, ordered [longitude, latitude]
type GeoPoint struct {
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
}

// NewGeoPoint builds a point from [lon, lat] order
func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Longitude: lon, Latitude: lat}
}

// Valid reports whether the point lies within the WGS84 coordinate ranges
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Longitude) && !math.IsNaN(p.Latitude) &&
		p.Longitude >= -180 && p.Longitude <= 180 &&
		p.Latitude >= -90 && p.Latitude <= 90
}

// Equal compares both coordinates exactly
func (p GeoPoint) Equal(o GeoPoint) bool {
	return p.Longitude == o.Longitude && p.Latitude == o.Latitude
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("[%.9f, %.9f]", p.Longitude, p.Latitude)
}

// PolarObservation is a target expressed relative to a reference point:
// geodesic distance in meters and forward azimuth in radians, (-π, π].
type PolarObservation struct {
	Distance float64 `json:"distance_m" yaml:"distance_m"`
	Bearing  float64 `json:"bearing_rad" yaml:"bearing_rad"`
}

// Degenerate reports whether target and reference coincide. The bearing of a
// degenerate observation carries no direction.
func (o PolarObservation) Degenerate() bool {
	return o.Distance == 0
}

// BearingDegrees returns the bearing in degrees
func (o PolarObservation) BearingDegrees() float64 {
	return o.Bearing * 180 / math.Pi
}

func (o PolarObservation) String() string {
	return fmt.Sprintf("[%.3f m, %.6f rad]", o.Distance, o.Bearing)
}

// Transform solves the inverse geodesic problem on the WGS84 ellipsoid from
// ref to target.
func Transform(ref, target GeoPoint) PolarObservation {
	var dist, azi1 float64
	geodesic.WGS84.Inverse(ref.Latitude, ref.Longitude, target.Latitude, target.Longitude, &dist, &azi1, nil)
	return PolarObservation{
		Distance: dist,
		Bearing:  NormalizeBearing(azi1 * math.Pi / 180),
	}
}

// TransformAll maps every target relative to ref, preserving order
func TransformAll(ref GeoPoint, targets []GeoPoint) []PolarObservation {
	out := make([]PolarObservation, len(targets))
	for i, t := range targets {
		out[i] = Transform(ref, t)
	}
	return out
}

// NormalizeBearing folds an angle in radians into (-π, π]
func NormalizeBearing(rad float64) float64 {
	if math.IsNaN(rad) || math.IsInf(rad, 0) {
		return rad
	}
	r := math.Mod(rad+math.Pi, 2*math.Pi)
	if r <= 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

// AngularDifference returns a-b folded into (-π, π]
func AngularDifference(a, b float64) float64 {
	return NormalizeBearing(a - b)
}

// Destination solves the direct geodesic problem: the point reached from
// origin after distance meters along the forward azimuth bearing (radians).
func Destination(origin GeoPoint, bearing, distance float64) GeoPoint {
	var lat, lon float64
	geodesic.WGS84.Direct(origin.Latitude, origin.Longitude, bearing*180/math.Pi, distance, &lat, &lon, nil)
	return GeoPoint{Longitude: lon, Latitude: lat}
}
