// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package kiosk

import (
	"cmp"
	"slices"
	"time"

	"github.com/jcodagnone/stationfinder/spatial"
)

// DefaultRadiusMiles is the search radius of a proximity search.
const DefaultRadiusMiles = 25.0

// Annotated is a kiosk plus what a search derived about it. The embedded
// Kiosk is a copy; the source record is never modified.
type Annotated struct {
	Kiosk

	// DistanceMiles is set only by a proximity search.
	DistanceMiles *float64 `json:"distanceFromQuery,omitempty"`

	ConnectivityStale bool `json:"isConnectivityStale"`
}

// DisplayChargers is the charger count we are willing to show: a kiosk that
// lost connectivity reports 0 chargers. Slots are shown as reported.
func (a *Annotated) DisplayChargers() int {
	if a.ConnectivityStale {
		return 0
	}

	return a.AvailableChargers
}

// RankByProximity returns the kiosks within radiusMiles of origin, closest
// first, annotated with distance and staleness relative to ref. Ties keep the
// input order.
func RankByProximity(kiosks []Kiosk, ref time.Time, origin spatial.Point, radiusMiles float64) []Annotated {
	return rank(kiosks, nil, ref, origin, radiusMiles)
}

// rank works on the positions in candidates, or on every kiosk when
// candidates is nil. candidates must be ascending.
func rank(kiosks []Kiosk, candidates []int, ref time.Time, origin spatial.Point, radiusMiles float64) []Annotated {
	nearby := make([]Annotated, 0)

	visit := func(k *Kiosk) {
		distance := origin.HaversineMiles(k.Point())
		if distance > radiusMiles {
			return
		}

		nearby = append(nearby, Annotated{
			Kiosk:             *k,
			DistanceMiles:     &distance,
			ConnectivityStale: IsStale(k, ref),
		})
	}

	if candidates == nil {
		for i := range kiosks {
			visit(&kiosks[i])
		}
	} else {
		for _, i := range candidates {
			visit(&kiosks[i])
		}
	}

	slices.SortStableFunc(nearby, func(a, b Annotated) int {
		return cmp.Compare(*a.DistanceMiles, *b.DistanceMiles)
	})

	return nearby
}

// FilterByIDs returns the kiosks whose id is in ids, in dataset order,
// annotated with staleness relative to ref.
func FilterByIDs(kiosks []Kiosk, ref time.Time, ids []string) []Annotated {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	matches := make([]Annotated, 0)

	for i := range kiosks {
		if _, ok := wanted[kiosks[i].ID]; !ok {
			continue
		}

		matches = append(matches, Annotated{
			Kiosk:             kiosks[i],
			ConnectivityStale: IsStale(&kiosks[i], ref),
		})
	}

	return matches
}

// Annotate marks every kiosk with its staleness, keeping order.
func Annotate(kiosks []Kiosk, ref time.Time) []Annotated {
	out := make([]Annotated, len(kiosks))
	for i := range kiosks {
		out[i] = Annotated{
			Kiosk:             kiosks[i],
			ConnectivityStale: IsStale(&kiosks[i], ref),
		}
	}

	return out
}
