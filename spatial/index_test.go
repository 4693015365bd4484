// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"math/rand"
	"slices"
	"testing"
)

func randomPoints(r *rand.Rand, center Point, spread float64, n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{
			Lat: center.Lat + (r.Float64()*2-1)*spread,
			Lng: center.Lng + (r.Float64()*2-1)*spread,
		}
	}

	return points
}

func TestIndexCandidatesAreSuperset(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	centers := []Point{
		{Lat: 40.7128, Lng: -74.0060},
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 179.9},
		{Lat: 64.1466, Lng: -21.9426},
	}

	for _, center := range centers {
		points := randomPoints(r, center, 1.5, 400)
		ix := NewIndex(points)

		for _, radius := range []float64{1, 10, 25, 50} {
			got := ix.Candidates(center, radius)
			if !slices.IsSorted(got) {
				t.Fatalf("candidates for %s not sorted", center)
			}

			for i, p := range points {
				if center.HaversineMiles(p) > radius {
					continue
				}

				if _, found := slices.BinarySearch(got, i); !found {
					t.Errorf("point %d (%s) at %.2f mi from %s missing for radius %.0f",
						i, p, center.HaversineMiles(p), center, radius)
				}
			}
		}
	}
}

func TestIndexPrunes(t *testing.T) {
	near := Point{Lat: 40.7128, Lng: -74.0060}
	far := Point{Lat: 34.0522, Lng: -118.2437}
	ix := NewIndex([]Point{near, far})

	got := ix.Candidates(near, 25)
	if !slices.Equal(got, []int{0}) {
		t.Errorf("Candidates() = %v, want [0]", got)
	}
}

func TestIndexFallsBackToFullScan(t *testing.T) {
	points := []Point{
		{Lat: 1, Lng: 1},
		{Lat: math.NaN(), Lng: 0},
		{Lat: -45, Lng: 100},
	}
	ix := NewIndex(points)

	if got := ix.Candidates(Point{Lat: 1, Lng: 1}, 5000); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("huge radius: Candidates() = %v", got)
	}

	if got := ix.Candidates(Point{Lat: 100, Lng: 1}, 5); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("invalid origin: Candidates() = %v", got)
	}

	// unindexable positions are always offered to the exact check
	if got := ix.Candidates(Point{Lat: 1, Lng: 1}, 5); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("Candidates() = %v, want [0 1]", got)
	}
}
