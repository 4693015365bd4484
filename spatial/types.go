// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// EarthRadiusMiles is the mean earth radius used for every distance we report.
	EarthRadiusMiles = 3958.8

	// KilometersPerMile converts the reported miles for metric locales.
	KilometersPerMile = 1.60934
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lon"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// LatLon renders the point the way map deep links expect it: "lat,lon".
func (p Point) LatLon() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// Valid reports whether the point lies inside the WGS84 coordinate ranges.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lng >= -180 && p.Lng <= 180
}

// HaversineMiles calculates the distance between two points on Earth in miles.
func (p Point) HaversineMiles(other Point) float64 {
	return HaversineMiles(p.Lat, p.Lng, other.Lat, other.Lng)
}

// HaversineMiles is the great-circle distance in miles between (lat1, lon1)
// and (lat2, lon2), all in decimal degrees. The haversine term is clamped to
// [0, 1] so rounding near antipodal or coincident points never yields NaN.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// MilesToKilometers converts a distance in miles.
func MilesToKilometers(miles float64) float64 {
	return miles * KilometersPerMile
}
