package geo

import (
	"errors"
	"math"
	"testing"
)

var square = []Point{{0, 0}, {0, 10}, {10, 10}, {10, 0}}

func TestPointInPolygon(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		vertices []Point
		want     bool
	}{
		{"center of square", 5, 5, square, true},
		{"outside square", 15, 15, square, false},
		{"on vertex (0,0)", 0, 0, square, true},
		{"outside on the left", 5, -1, square, false},
		{"degenerate two vertices", 0.5, 0.5, []Point{{0, 0}, {1, 1}}, false},
		{"empty", 0, 0, nil, false},
		{"triangle inside", 1, 1, []Point{{0, 0}, {0, 4}, {4, 0}}, true},
		{"triangle outside hypotenuse", 3, 3, []Point{{0, 0}, {0, 4}, {4, 0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.lat, tt.lng, tt.vertices); got != tt.want {
				t.Errorf("PointInPolygon(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestPointInPolygon_ClosingIsIdempotent(t *testing.T) {
	closed := append(append([]Point{}, square...), square[0])
	probes := [][2]float64{{5, 5}, {15, 15}, {0, 0}, {10, 10}, {9.999, 0.001}, {-1, 5}, {5, 10}}

	for _, p := range probes {
		open := PointInPolygon(p[0], p[1], square)
		shut := PointInPolygon(p[0], p[1], closed)
		if open != shut {
			t.Errorf("point %v: open ring = %v, closed ring = %v", p, open, shut)
		}
	}
}

func TestPointInPolygon_EqualLongitudeEdges(t *testing.T) {
	// Every edge of this rectangle shares a longitude with one neighbour.
	rect := []Point{{4.60, -74.10}, {4.70, -74.10}, {4.70, -74.00}, {4.60, -74.00}}
	if !PointInPolygon(4.65, -74.05, rect) {
		t.Error("expected point inside rectangle")
	}
	if PointInPolygon(4.75, -74.05, rect) {
		t.Error("expected point north of rectangle to be outside")
	}
}

func TestCentroid(t *testing.T) {
	lat, lng := Centroid(square)
	if lat != 5 || lng != 5 {
		t.Errorf("Centroid(square) = (%v, %v), want (5, 5)", lat, lng)
	}

	closed := append(append([]Point{}, square...), square[0])
	lat, lng = Centroid(closed)
	if lat != 5 || lng != 5 {
		t.Errorf("Centroid(closed square) = (%v, %v), want (5, 5)", lat, lng)
	}

	lat, lng = Centroid([]Point{{1, 1}, {2, 2}})
	if lat != 0 || lng != 0 {
		t.Errorf("Centroid(two points) = (%v, %v), want (0, 0)", lat, lng)
	}
}

func TestHaversineKm(t *testing.T) {
	a := Point{4.65, -74.05}
	b := Point{40.4168, -3.7038}

	if d := HaversineKm(a[0], a[1], a[0], a[1]); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}

	ab := HaversineKm(a[0], a[1], b[0], b[1])
	ba := HaversineKm(b[0], b[1], a[0], a[1])
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}

	// One degree of latitude is about 111.19 km on a 6371 km sphere.
	if d := HaversineKm(0, 0, 1, 0); math.Abs(d-111.195) > 0.01 {
		t.Errorf("one degree of latitude = %v km, want ~111.195", d)
	}
}

func TestValidateVertices(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Point
		wantErr  error
	}{
		{"valid", square, nil},
		{"too few", []Point{{0, 0}, {1, 1}}, ErrTooFewVertices},
		{"bad latitude", []Point{{0, 0}, {91, 0}, {0, 1}}, ErrLatitudeOutOfRange},
		{"bad longitude", []Point{{0, 0}, {0, 181}, {1, 0}}, ErrLongitudeOutOfRange},
		{"edges of range", []Point{{-90, -180}, {90, 180}, {0, 0}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVertices(tt.vertices)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateVertices() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRound(t *testing.T) {
	if got := Round(12.3456, 2); got != 12.35 {
		t.Errorf("Round = %v, want 12.35", got)
	}
	if got := Round(5000, 2); got != 5000 {
		t.Errorf("Round = %v, want 5000", got)
	}
}
