package geo

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{
			name: "same point",
			a:    Point{Lng: 116.4, Lat: 39.9},
			b:    Point{Lng: 116.4, Lat: 39.9},
			want: 0,
			tol:  0.001,
		},
		{
			name: "one degree of latitude",
			a:    Point{Lng: 0, Lat: 0},
			b:    Point{Lng: 0, Lat: 1},
			want: 111195,
			tol:  100,
		},
		{
			name: "short urban distance",
			a:    Point{Lng: 116.4000, Lat: 39.9000},
			b:    Point{Lng: 116.4001, Lat: 39.9000},
			want: 8.5,
			tol:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("HaversineDistance() = %v, want %v (±%v)", got, tt.want, tt.tol)
			}
		})
	}
}
