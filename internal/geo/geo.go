// Package geo holds the planar and spherical helpers used for zone matching.
// Coordinates are [lat, lng] pairs in degrees.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Haversine
const EarthRadiusKm = 6371.0

// Point is a [lat, lng] pair
type Point [2]float64

// Lat returns the latitude
func (p Point) Lat() float64 { return p[0] }

// Lng returns the longitude
func (p Point) Lng() float64 { return p[1] }

var (
	ErrTooFewVertices      = errors.New("polygon requires at least 3 vertices")
	ErrLatitudeOutOfRange  = errors.New("latitude out of range")
	ErrLongitudeOutOfRange = errors.New("longitude out of range")
)

// closeRing returns vertices with the first vertex appended when the ring is open.
func closeRing(vertices []Point) []Point {
	if vertices[0] == vertices[len(vertices)-1] {
		return vertices
	}
	closed := make([]Point, len(vertices), len(vertices)+1)
	copy(closed, vertices)
	return append(closed, vertices[0])
}

// PointInPolygon reports whether (lat, lng) lies inside the ring using ray casting.
// The ray runs along latitude. An edge only enters the intercept division when its
// endpoints straddle lng, so lng_j - lng_i is never zero there.
func PointInPolygon(lat, lng float64, vertices []Point) bool {
	if len(vertices) < 3 {
		return false
	}

	ring := closeRing(vertices)
	inside := false
	j := len(ring) - 2
	for i := 0; i < len(ring)-1; i++ {
		latI, lngI := ring[i][0], ring[i][1]
		latJ, lngJ := ring[j][0], ring[j][1]

		if (lngI > lng) != (lngJ > lng) {
			intercept := (latJ-latI)*(lng-lngI)/(lngJ-lngI) + latI
			if lat < intercept {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Centroid returns the arithmetic mean of the ring's distinct vertices.
// It returns (0, 0) for fewer than 3 vertices.
func Centroid(vertices []Point) (float64, float64) {
	if len(vertices) < 3 {
		return 0, 0
	}

	pts := vertices
	if pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	var sumLat, sumLng float64
	for _, p := range pts {
		sumLat += p[0]
		sumLng += p[1]
	}
	n := float64(len(pts))
	return sumLat / n, sumLng / n
}

// HaversineKm returns the great-circle distance in kilometres.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// ValidateVertices checks vertex count and coordinate ranges.
func ValidateVertices(vertices []Point) error {
	if len(vertices) < 3 {
		return ErrTooFewVertices
	}
	for i, p := range vertices {
		if p[0] < -90 || p[0] > 90 {
			return fmt.Errorf("vertex %d: %w: %v", i, ErrLatitudeOutOfRange, p[0])
		}
		if p[1] < -180 || p[1] > 180 {
			return fmt.Errorf("vertex %d: %w: %v", i, ErrLongitudeOutOfRange, p[1])
		}
	}
	return nil
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
