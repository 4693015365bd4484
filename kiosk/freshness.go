// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package kiosk

import (
	"time"
)

const (
	// FreshnessWindow is how far behind the reference time a kiosk may have
	// last reported and still be listed at all.
	FreshnessWindow = 10 * 24 * time.Hour

	// StaleAfter is how far behind the reference time a kiosk may have last
	// reported before its charger count stops being trusted.
	StaleAfter = 10 * time.Minute
)

// ReferenceTime returns the "now" of a snapshot: the latest parseable
// timestamp among kiosks. When there is none it falls back to clock and
// reports fromClock.
func ReferenceTime(kiosks []Kiosk, clock Clock) (ref time.Time, fromClock bool) {
	found := false

	for i := range kiosks {
		ts, ok := kiosks[i].Timestamp.Time()
		if !ok {
			continue
		}

		if !found || ts.After(ref) {
			ref, found = ts, true
		}
	}

	if !found {
		if clock == nil {
			clock = SystemClock
		}

		return clock.Now(), true
	}

	return ref, false
}

// FilterFresh keeps, in order, the kiosks whose timestamp is strictly after
// ref minus FreshnessWindow. Kiosks without a parseable timestamp are dropped.
func FilterFresh(kiosks []Kiosk, ref time.Time) []Kiosk {
	cutoff := ref.Add(-FreshnessWindow)

	fresh := make([]Kiosk, 0, len(kiosks))

	for _, k := range kiosks {
		ts, ok := k.Timestamp.Time()
		if ok && ts.After(cutoff) {
			fresh = append(fresh, k)
		}
	}

	return fresh
}

// IsStale reports whether k has lost connectivity relative to ref: it has no
// parseable timestamp or reported strictly before ref minus StaleAfter.
func IsStale(k *Kiosk, ref time.Time) bool {
	ts, ok := k.Timestamp.Time()
	if !ok {
		return true
	}

	return ts.Before(ref.Add(-StaleAfter))
}
