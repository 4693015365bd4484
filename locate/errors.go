// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a location resolution failure.
type Kind int

const (
	// KindUnknown is any failure not covered below.
	KindUnknown Kind = iota
	// KindInvalidPostalCode means the geocoding service rejected the code.
	KindInvalidPostalCode
	// KindUnavailable means the geocoding service could not be reached or
	// answered without usable coordinates.
	KindUnavailable
	// KindNotConfigured means the geocoder has no credentials.
	KindNotConfigured
	// KindPermissionDenied means the device refused or could not produce a
	// position.
	KindPermissionDenied
	// KindUnsupported means there is no device location capability.
	KindUnsupported
	// KindTimeout means the device did not answer in time.
	KindTimeout
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindInvalidPostalCode: "invalid_postal_code",
	KindUnavailable:       "unavailable",
	KindNotConfigured:     "not_configured",
	KindPermissionDenied:  "permission_denied",
	KindUnsupported:       "unsupported",
	KindTimeout:           "timeout",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the failure returned by every resolver and geocoder.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var locErr *Error
	if errors.As(err, &locErr) {
		return locErr.Kind
	}

	return KindUnknown
}

// IsInvalidPostalCode reports whether the geocoder rejected the postal code.
func IsInvalidPostalCode(err error) bool {
	return KindOf(err) == KindInvalidPostalCode
}

// IsUnavailable reports whether the geocoding service failed.
func IsUnavailable(err error) bool {
	return KindOf(err) == KindUnavailable
}

// IsTimeoutError reports whether a device lookup ran out of time.
func IsTimeoutError(err error) bool {
	if KindOf(err) == KindTimeout {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

// ClassifyHTTPError turns a non-2xx geocoding answer into an Error. Every
// rejection is reported as an invalid postal code; the message keeps the
// detail for the logs.
func ClassifyHTTPError(statusCode int) *Error {
	e := &Error{
		Kind:       KindInvalidPostalCode,
		StatusCode: statusCode,
	}

	switch statusCode {
	case http.StatusNotFound:
		e.Message = "postal code not found"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e.Message = "postal code rejected"
	case http.StatusTooManyRequests:
		e.Message = "geocoding rate limit reached"
	case http.StatusForbidden, http.StatusUnauthorized:
		e.Message = "geocoding access denied"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		e.Message = fmt.Sprintf("geocoding service unavailable (status %d)", statusCode)
	default:
		e.Message = fmt.Sprintf("geocoding returned status %d", statusCode)
	}

	return e
}
