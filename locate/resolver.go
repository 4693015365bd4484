// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package locate turns a user's search request into a coordinate, either from
// the device position or by geocoding a postal code.
package locate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/stationfinder/spatial"
)

// DefaultDeviceTimeout bounds a device position lookup.
const DefaultDeviceTimeout = 10 * time.Second

// Method selects a resolution strategy.
type Method string

const (
	MethodDevice Method = "gps"
	MethodPostal Method = "zip"
)

// ParseMethod accepts the query-string spellings of a Method.
func ParseMethod(s string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gps", "device":
		return MethodDevice, true
	case "zip", "postal":
		return MethodPostal, true
	default:
		return "", false
	}
}

// Request describes one location lookup.
type Request struct {
	Method     Method
	Country    string
	PostalCode string
	// Device answers MethodDevice requests. Nil means the caller has no
	// location capability.
	Device DeviceLocator
}

// Resolver resolves a Request into a point.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (spatial.Point, error)
}

// DeviceLocator produces the current position of the user's device.
type DeviceLocator interface {
	Locate(ctx context.Context) (spatial.Point, error)
}

// LocatorFunc adapts a function to DeviceLocator.
type LocatorFunc func(ctx context.Context) (spatial.Point, error)

func (f LocatorFunc) Locate(ctx context.Context) (spatial.Point, error) {
	return f(ctx)
}

// FixedLocator reports a position captured elsewhere, such as the coordinates
// a browser posted back or --lat/--lon on the command line.
type FixedLocator spatial.Point

func (l FixedLocator) Locate(_ context.Context) (spatial.Point, error) {
	p := spatial.Point(l)
	if !p.Valid() {
		return spatial.Point{}, &Error{Kind: KindPermissionDenied, Message: "device reported an invalid position " + p.LatLon()}
	}

	return p, nil
}

// FailedLocator reports a failure the device already produced.
type FailedLocator struct {
	Err *Error
}

func (l FailedLocator) Locate(_ context.Context) (spatial.Point, error) {
	return spatial.Point{}, l.Err
}

// ParseDeviceFailure maps the error reported by a browser geolocation call,
// either its numeric code or a name, into an Error.
func ParseDeviceFailure(code string) *Error {
	code = strings.ToLower(strings.TrimSpace(code))
	if n, err := strconv.Atoi(code); err == nil {
		switch n {
		case 1:
			code = "denied"
		case 2:
			code = "unavailable"
		case 3:
			code = "timeout"
		}
	}

	switch code {
	case "denied", "permission_denied":
		return &Error{Kind: KindPermissionDenied, Message: "location permission denied"}
	case "unavailable", "position_unavailable":
		return &Error{Kind: KindPermissionDenied, Message: "position unavailable"}
	case "timeout":
		return &Error{Kind: KindTimeout, Message: "device location timed out"}
	case "unsupported":
		return &Error{Kind: KindUnsupported, Message: "geolocation is not supported"}
	default:
		return &Error{Kind: KindPermissionDenied, Message: "device location failed: " + code}
	}
}

// DeviceResolver answers MethodDevice requests with a single bounded lookup.
type DeviceResolver struct {
	Timeout time.Duration
}

func (r *DeviceResolver) Resolve(ctx context.Context, req Request) (spatial.Point, error) {
	if req.Device == nil {
		return spatial.Point{}, &Error{Kind: KindUnsupported, Message: "geolocation is not supported"}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultDeviceTimeout
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type answer struct {
		point spatial.Point
		err   error
	}

	done := make(chan answer, 1)

	go func() {
		p, err := req.Device.Locate(lookupCtx)
		done <- answer{p, err}
	}()

	select {
	case a := <-done:
		if a.err == nil {
			return a.point, nil
		}

		if ctx.Err() != nil {
			return spatial.Point{}, fmt.Errorf("device location: %w", ctx.Err())
		}

		var locErr *Error
		if errors.As(a.err, &locErr) {
			return spatial.Point{}, a.err
		}

		if errors.Is(a.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return spatial.Point{}, &Error{Kind: KindTimeout, Message: "device location timed out", Err: a.err}
		}

		return spatial.Point{}, &Error{Kind: KindPermissionDenied, Message: "device location failed", Err: a.err}
	case <-lookupCtx.Done():
		if ctx.Err() != nil {
			return spatial.Point{}, fmt.Errorf("device location: %w", ctx.Err())
		}

		return spatial.Point{}, &Error{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("device location timed out after %s", timeout),
			Err:     lookupCtx.Err(),
		}
	}
}

// PostalResolver answers MethodPostal requests through a Geocoder.
type PostalResolver struct {
	Geocoder Geocoder
}

func (r *PostalResolver) Resolve(ctx context.Context, req Request) (spatial.Point, error) {
	code := SanitizePostalCode(req.PostalCode)
	if code == "" {
		return spatial.Point{}, &Error{Kind: KindInvalidPostalCode, Message: "empty postal code"}
	}

	country, ok := NormalizeCountry(req.Country)
	if !ok {
		return spatial.Point{}, &Error{Kind: KindInvalidPostalCode, Message: fmt.Sprintf("unknown country %q", req.Country)}
	}

	res, err := r.Geocoder.Geocode(ctx, country, code)
	if err != nil {
		var locErr *Error
		if errors.As(err, &locErr) {
			return spatial.Point{}, err
		}

		return spatial.Point{}, &Error{Kind: KindUnavailable, Message: "geocoding failed", Err: err}
	}

	if !res.Point.Valid() {
		return spatial.Point{}, &Error{Kind: KindUnavailable, Message: "geocoder returned an invalid position " + res.Point.LatLon()}
	}

	return res.Point, nil
}

// Dispatcher routes a Request to the strategy named by its Method.
type Dispatcher struct {
	Device Resolver
	Postal Resolver
}

// NewDispatcher wires the device and postal strategies.
func NewDispatcher(geocoder Geocoder, deviceTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		Device: &DeviceResolver{Timeout: deviceTimeout},
		Postal: &PostalResolver{Geocoder: geocoder},
	}
}

func (d *Dispatcher) Resolve(ctx context.Context, req Request) (spatial.Point, error) {
	switch req.Method {
	case MethodDevice:
		return d.Device.Resolve(ctx, req)
	case MethodPostal:
		return d.Postal.Resolve(ctx, req)
	default:
		return spatial.Point{}, &Error{Kind: KindUnknown, Message: fmt.Sprintf("unknown search method %q", req.Method)}
	}
}
