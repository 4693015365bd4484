// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jcodagnone/stationfinder/spatial"
)

// Query is what the page URL asks for.
type Query struct {
	// DirectLink is set when the URL carries a kiosks parameter, even an
	// empty one. The page then shows only those kiosks and no search form.
	DirectLink bool
	KioskIDs   []string

	// Driving reports whether driving directions are shown.
	Driving bool
	// DrivingFixed is set when the URL decided Driving, which hides the
	// toggle.
	DrivingFixed bool
}

// ParseQuery reads the kiosks and driving parameters.
func ParseQuery(values url.Values) Query {
	q := Query{Driving: true}

	if values.Has("kiosks") {
		q.DirectLink = true
		q.KioskIDs = SplitIDs(values.Get("kiosks"))
	}

	if values.Has("driving") {
		q.DrivingFixed = true
		q.Driving = values.Get("driving") != "0"
	}

	return q
}

// ShowDrivingToggle reports whether the user may switch driving directions
// on and off.
func (q Query) ShowDrivingToggle() bool {
	return q.DirectLink && !q.DrivingFixed
}

// SplitIDs splits a comma separated kiosk list, dropping blanks.
func SplitIDs(s string) []string {
	var ids []string

	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return ids
}

var iosPattern = regexp.MustCompile(`iPad|iPhone|iPod`)

// Platform is what we know about the user's device.
type Platform struct {
	IOS bool
}

// PlatformFromUserAgent sniffs the User-Agent header.
func PlatformFromUserAgent(ua string) Platform {
	return Platform{IOS: iosPattern.MatchString(ua)}
}

// TravelMode selects the kind of directions.
type TravelMode int

const (
	Walking TravelMode = iota
	Driving
)

// DirectionsURL is the deep link to the platform's map application.
func (p Platform) DirectionsURL(dest spatial.Point, mode TravelMode) string {
	if p.IOS {
		flag := "w"
		if mode == Driving {
			flag = "d"
		}

		return "http://maps.apple.com/?daddr=" + dest.LatLon() + "&dirflg=" + flag
	}

	travel := "walking"
	if mode == Driving {
		travel = "driving"
	}

	return "https://www.google.com/maps/dir/?api=1&destination=" + dest.LatLon() + "&travelmode=" + travel
}
