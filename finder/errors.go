// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"errors"

	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/locate"
)

// Failure categories. Every error returned by a Session wraps exactly one of
// them.
var (
	ErrDataLoadFailed           = errors.New("kiosk data load failed")
	ErrGeocodeInvalidInput      = errors.New("postal code rejected by the geocoder")
	ErrGeocodeUnavailable       = errors.New("geocoder returned no usable coordinates")
	ErrGeocodeNotConfigured     = errors.New("geocoder is not configured")
	ErrLocationPermissionDenied = errors.New("device location denied or unavailable")
	ErrLocationUnsupported      = errors.New("device location not supported")
	ErrSearchFailed             = errors.New("search failed")

	// ErrSuperseded is returned by a search that finished after a newer one
	// started. Its result must be dropped and no message shown.
	ErrSuperseded = errors.New("search superseded by a newer one")
)

var categories = []error{
	ErrDataLoadFailed,
	ErrGeocodeInvalidInput,
	ErrGeocodeUnavailable,
	ErrGeocodeNotConfigured,
	ErrLocationPermissionDenied,
	ErrLocationUnsupported,
	ErrSuperseded,
	ErrSearchFailed,
}

// Classify returns the failure category of err. Errors that carry none are
// ErrSearchFailed.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}

	switch locate.KindOf(err) {
	case locate.KindInvalidPostalCode:
		return ErrGeocodeInvalidInput
	case locate.KindUnavailable:
		return ErrGeocodeUnavailable
	case locate.KindNotConfigured:
		return ErrGeocodeNotConfigured
	case locate.KindPermissionDenied, locate.KindTimeout:
		return ErrLocationPermissionDenied
	case locate.KindUnsupported:
		return ErrLocationUnsupported
	default:
		return ErrSearchFailed
	}
}

// Message is the text shown to the user for err. A superseded search shows
// nothing.
func Message(err error, b i18n.Bundle) string {
	switch Classify(err) {
	case nil, ErrSuperseded:
		return ""
	case ErrDataLoadFailed:
		return b.ErrLoadFailed
	case ErrGeocodeInvalidInput:
		return b.ErrInvalidPostalCode
	case ErrGeocodeUnavailable:
		return b.ErrPostalCodeNotFound
	case ErrGeocodeNotConfigured:
		return b.ErrMissingAPIKey
	case ErrLocationPermissionDenied:
		return b.ErrGPSPermission
	case ErrLocationUnsupported:
		return b.ErrGeolocationNotSupported
	default:
		return b.ErrSearchFailed
	}
}

var codes = map[error]string{
	ErrDataLoadFailed:           "data_load_failed",
	ErrGeocodeInvalidInput:      "geocode_invalid_input",
	ErrGeocodeUnavailable:       "geocode_unavailable",
	ErrGeocodeNotConfigured:     "geocode_not_configured",
	ErrLocationPermissionDenied: "location_permission_denied",
	ErrLocationUnsupported:      "location_unsupported",
	ErrSuperseded:               "superseded",
	ErrSearchFailed:             "search_failed",
}

// Code is a stable machine-readable name for the category of err.
func Code(err error) string {
	if err == nil {
		return ""
	}

	return codes[Classify(err)]
}
