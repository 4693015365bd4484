// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/kiosk"
)

// Panel is one kiosk as the user sees it.
type Panel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Place    string `json:"place,omitempty"`
	Address  string `json:"address"`
	Distance string `json:"distance,omitempty"`

	// Chargers is already zeroed for stale kiosks.
	Chargers int  `json:"chargers"`
	Slots    int  `json:"slots"`
	Stale    bool `json:"stale"`

	WalkingURL string `json:"walkingUrl"`
	DrivingURL string `json:"drivingUrl,omitempty"`
}

// NewPanel renders k for the user's locale and platform. DrivingURL is left
// empty when driving directions are hidden.
func NewPanel(k *kiosk.Annotated, b i18n.Bundle, p Platform, driving bool) Panel {
	panel := Panel{
		ID:         k.ID,
		Name:       k.LocationName,
		Place:      k.Place,
		Address:    k.Address + ", " + k.Zip,
		Chargers:   k.DisplayChargers(),
		Slots:      k.AvailableSlots,
		Stale:      k.ConnectivityStale,
		WalkingURL: p.DirectionsURL(k.Point(), Walking),
	}

	if k.DistanceMiles != nil {
		panel.Distance = b.FormatDistance(*k.DistanceMiles)
	}

	if driving {
		panel.DrivingURL = p.DirectionsURL(k.Point(), Driving)
	}

	return panel
}

// Panels renders every kiosk of a result.
func Panels(r *Result, b i18n.Bundle, p Platform, driving bool) []Panel {
	panels := make([]Panel, 0, len(r.Kiosks))
	for i := range r.Kiosks {
		panels = append(panels, NewPanel(&r.Kiosks[i], b, p, driving))
	}

	return panels
}

// EmptyMessage is shown when a result has no kiosks.
func EmptyMessage(r *Result, b i18n.Bundle) string {
	if r.Mode == ModeDirect {
		return b.ErrNoQRKiosksFound
	}

	return b.NoKiosksFound(r.RadiusMiles)
}
