// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package kiosk

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PublicLocationsPath {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestSourceFetch(t *testing.T) {
	srv := feedServer(t, http.StatusOK,
		`[{"id":"K1","lat":45.5,"lon":-73.5,"availableChargers":2,"timestamp":"2024-01-01T12:00:00Z"}]`)

	kiosks, err := NewSource(srv.URL + "/").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, kiosks, 1)

	assert.Equal(t, "K1", kiosks[0].ID)
	assert.Equal(t, 2, kiosks[0].AvailableChargers)

	ts, ok := kiosks[0].Timestamp.Time()
	assert.True(t, ok)
	assert.True(t, ts.Equal(refTime))
}

func TestSourceFetchStringWrapped(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `"[{\"id\":\"K9\",\"lat\":1,\"lon\":2}]"`)

	kiosks, err := NewSource(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, kiosks, 1)
	assert.Equal(t, "K9", kiosks[0].ID)
}

func TestSourceFetchStatusError(t *testing.T) {
	srv := feedServer(t, http.StatusBadGateway, `upstream down`)

	_, err := NewSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestSourceFetchMalformed(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"object", `{"id":"K1"}`, ErrNotAnArray},
		{"null", `null`, ErrNotAnArray},
		{"empty", ``, ErrNotAnArray},
		{"wrapped object", `"{}"`, ErrNotAnArray},
		{"truncated", `[{"id":"K1"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := feedServer(t, http.StatusOK, tt.body)

			_, err := NewSource(srv.URL).Fetch(context.Background())
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSourceFetchCancelled(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(srv.URL).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceFetchWithProgress(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[{"id":"K1"},{"id":"K2"}]`)

	var progress bytes.Buffer

	kiosks, err := NewSource(srv.URL, WithProgress(&progress), WithHTTPClient(srv.Client())).
		Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, kiosks, 2)
}

func TestDecodeEmptyArray(t *testing.T) {
	kiosks, err := Decode([]byte(" [ ] "))
	require.NoError(t, err)
	assert.Empty(t, kiosks)
}
