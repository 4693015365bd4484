// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geocodeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func TestUpstreamGeocoder(t *testing.T) {
	var gotQuery string

	srv := geocodeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, GeocodePath, r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"lat":40.7506,"lon":-73.9972}`))
	})

	res, err := NewUpstreamGeocoder(srv.URL, nil).Geocode(context.Background(), "us", "10001")
	require.NoError(t, err)

	assert.Equal(t, "country=us&postal=10001", gotQuery)
	assert.InDelta(t, 40.7506, res.Point.Lat, 1e-9)
	assert.InDelta(t, -73.9972, res.Point.Lng, 1e-9)
	assert.Equal(t, "upstream", res.Provider)
}

func TestUpstreamGeocoderFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
	}{
		{"not found", http.StatusNotFound, `{"error":"not found"}`, KindInvalidPostalCode},
		{"server error", http.StatusInternalServerError, ``, KindInvalidPostalCode},
		{"string coordinates", http.StatusOK, `{"lat":"40.7","lon":"-73.9"}`, KindUnavailable},
		{"missing lon", http.StatusOK, `{"lat":40.7}`, KindUnavailable},
		{"null body", http.StatusOK, `null`, KindUnavailable},
		{"not json", http.StatusOK, `<html>`, KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := geocodeServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewUpstreamGeocoder(srv.URL, nil).Geocode(context.Background(), "us", "00000")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err), "error: %v", err)
		})
	}
}

func TestUpstreamGeocoderTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewUpstreamGeocoder(srv.URL, nil).Geocode(context.Background(), "us", "10001")
	assert.True(t, IsUnavailable(err), "error: %v", err)
}

func TestGoogleMapsGeocoder(t *testing.T) {
	var components, key string

	srv := geocodeServer(t, func(w http.ResponseWriter, r *http.Request) {
		components = r.URL.Query().Get("components")
		key = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Paris 75001",` +
			`"geometry":{"location":{"lat":48.8625,"lng":2.3364}}}]}`))
	})

	g := NewGoogleMapsGeocoder("secret", srv.Client())
	g.endpoint = srv.URL

	res, err := g.Geocode(context.Background(), "fr", "75001")
	require.NoError(t, err)

	assert.Equal(t, "country:FR|postal_code:75001", components)
	assert.Equal(t, "secret", key)
	assert.Equal(t, "google_maps", res.Provider)
	assert.Equal(t, "Paris 75001", res.DisplayName)
	assert.InDelta(t, 48.8625, res.Point.Lat, 1e-9)
}

func TestGoogleMapsGeocoderStatuses(t *testing.T) {
	tests := []struct {
		body     string
		wantKind Kind
	}{
		{`{"status":"ZERO_RESULTS","results":[]}`, KindInvalidPostalCode},
		{`{"status":"INVALID_REQUEST"}`, KindInvalidPostalCode},
		{`{"status":"OVER_QUERY_LIMIT"}`, KindUnavailable},
		{`{"status":"REQUEST_DENIED","error_message":"bad key"}`, KindUnavailable},
		{`{"status":"OK","results":[]}`, KindInvalidPostalCode},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			srv := geocodeServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			g := NewGoogleMapsGeocoder("secret", srv.Client())
			g.endpoint = srv.URL

			_, err := g.Geocode(context.Background(), "us", "00000")
			assert.Equal(t, tt.wantKind, KindOf(err), "error: %v", err)
		})
	}
}

func TestGoogleMapsGeocoderWithoutKey(t *testing.T) {
	_, err := NewGoogleMapsGeocoder("", nil).Geocode(context.Background(), "us", "10001")
	assert.Equal(t, KindNotConfigured, KindOf(err))
}

func TestLookupGoogleAPIKeyPrecedence(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "from-env")

	assert.Equal(t, "explicit", LookupGoogleAPIKey(context.Background(), "explicit", DefaultKeyDisplayName))
	assert.Equal(t, "from-env", LookupGoogleAPIKey(context.Background(), "", DefaultKeyDisplayName))
}
