// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package kiosk

import (
	"log"
	"time"

	"github.com/jcodagnone/stationfinder/spatial"
)

// Dataset is one fetched snapshot after the freshness filter. It is immutable
// once built and safe to share between searches.
type Dataset struct {
	// Kiosks are the kiosks that reported within FreshnessWindow, in feed order.
	Kiosks []Kiosk

	// Reference is the snapshot's "now".
	Reference time.Time

	// ReferenceFromClock is set when no kiosk had a usable timestamp.
	ReferenceFromClock bool

	// Total is the number of kiosks in the feed before filtering.
	Total int

	index *spatial.Index
}

// NewDataset computes the reference time of raw, applies the freshness filter
// and indexes what is left.
func NewDataset(raw []Kiosk, clock Clock) *Dataset {
	ref, fromClock := ReferenceTime(raw, clock)
	if fromClock {
		log.Println("⚠️  No valid timestamps found in kiosk data, falling back to the local clock")
	}

	fresh := FilterFresh(raw, ref)

	points := make([]spatial.Point, len(fresh))
	for i := range fresh {
		points[i] = fresh[i].Point()
	}

	return &Dataset{
		Kiosks:             fresh,
		Reference:          ref,
		ReferenceFromClock: fromClock,
		Total:              len(raw),
		index:              spatial.NewIndex(points),
	}
}

// Nearby is RankByProximity over the dataset, using the spatial index to skip
// kiosks that cannot be in range.
func (d *Dataset) Nearby(origin spatial.Point, radiusMiles float64) []Annotated {
	if d.index == nil {
		return RankByProximity(d.Kiosks, d.Reference, origin, radiusMiles)
	}

	return rank(d.Kiosks, d.index.Candidates(origin, radiusMiles), d.Reference, origin, radiusMiles)
}

// ByIDs is FilterByIDs over the dataset.
func (d *Dataset) ByIDs(ids []string) []Annotated {
	return FilterByIDs(d.Kiosks, d.Reference, ids)
}

// All returns every fresh kiosk annotated with its staleness.
func (d *Dataset) All() []Annotated {
	return Annotate(d.Kiosks, d.Reference)
}

// StaleCount returns how many fresh kiosks lost connectivity.
func (d *Dataset) StaleCount() int {
	n := 0

	for i := range d.Kiosks {
		if IsStale(&d.Kiosks[i], d.Reference) {
			n++
		}
	}

	return n
}
