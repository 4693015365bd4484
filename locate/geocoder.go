// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jcodagnone/stationfinder/spatial"
	"github.com/jcodagnone/stationfinder/utils/httputils"
)

// GeocodePath is the backend endpoint that resolves postal codes.
const GeocodePath = "/api/geocode"

// Result is a resolved postal code.
type Result struct {
	Point       spatial.Point
	Provider    string
	DisplayName string
}

// Geocoder resolves a postal code within a country.
type Geocoder interface {
	Geocode(ctx context.Context, country, postalCode string) (*Result, error)
}

// UpstreamGeocoder asks the station backend to geocode postal codes.
type UpstreamGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewUpstreamGeocoder creates a geocoder for the backend at baseURL. A nil
// client gets the package default.
func NewUpstreamGeocoder(baseURL string, client *http.Client) *UpstreamGeocoder {
	if client == nil {
		client = httputils.NewClient(httputils.ClientOptions{})
	}

	return &UpstreamGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Geocode calls GET /api/geocode?country=&postal= once.
func (g *UpstreamGeocoder) Geocode(ctx context.Context, country, postalCode string) (*Result, error) {
	params := url.Values{}
	params.Set("country", country)
	params.Set("postal", postalCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+GeocodePath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: "geocoding request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: "decoding geocode response", Err: err}
	}

	lat, latOK := body["lat"].(float64)
	lon, lonOK := body["lon"].(float64)

	if !latOK || !lonOK {
		return nil, &Error{Kind: KindUnavailable, Message: "geocode response has no numeric lat/lon"}
	}

	return &Result{
		Point:    spatial.Point{Lat: lat, Lng: lon},
		Provider: "upstream",
	}, nil
}
