// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"errors"
	"math"
	"slices"

	"github.com/uber/h3-go/v4"
)

const (
	indexResolution = 5

	// average hexagon edge at indexResolution, in miles (9.854 km).
	indexEdgeMiles = 6.123

	// past this many rings a full scan is cheaper than the disk.
	maxIndexRings = 60
)

var errInvalidPoint = errors.New("spatial: point out of range")

// Index buckets positions into H3 cells so radius queries only have to look at
// cells that can hold a match. It answers with a superset: callers still apply
// the exact distance check.
type Index struct {
	cells     map[h3.Cell][]int
	unindexed []int
	size      int
}

// NewIndex indexes points by their position in the slice.
func NewIndex(points []Point) *Index {
	ix := &Index{
		cells: make(map[h3.Cell][]int),
		size:  len(points),
	}

	for i, p := range points {
		cell, err := cellOf(p)
		if err != nil {
			ix.unindexed = append(ix.unindexed, i)

			continue
		}

		ix.cells[cell] = append(ix.cells[cell], i)
	}

	return ix
}

func cellOf(p Point) (h3.Cell, error) {
	if !p.Valid() {
		return 0, errInvalidPoint
	}

	return h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), indexResolution)
}

// Len returns the number of indexed positions.
func (ix *Index) Len() int {
	return ix.size
}

// Candidates returns, in ascending order, the positions that may lie within
// radiusMiles of origin.
func (ix *Index) Candidates(origin Point, radiusMiles float64) []int {
	rings := int(math.Ceil((radiusMiles + 2*indexEdgeMiles) / (indexEdgeMiles / 2)))
	if radiusMiles < 0 || rings > maxIndexRings {
		return ix.all()
	}

	center, err := cellOf(origin)
	if err != nil {
		return ix.all()
	}

	disk, err := h3.GridDisk(center, rings)
	if err != nil {
		return ix.all()
	}

	out := make([]int, 0, len(ix.unindexed))
	out = append(out, ix.unindexed...)

	for _, cell := range disk {
		out = append(out, ix.cells[cell]...)
	}

	slices.Sort(out)

	return out
}

func (ix *Index) all() []int {
	out := make([]int, ix.size)
	for i := range out {
		out[i] = i
	}

	return out
}
