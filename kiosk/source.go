// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jcodagnone/stationfinder/utils/httputils"
	"github.com/schollz/progressbar/v3"
)

// PublicLocationsPath is where the backend publishes the kiosk feed.
const PublicLocationsPath = "/api/public/locations"

// ErrNotAnArray is returned when the feed decodes to something other than a
// list of kiosks.
var ErrNotAnArray = errors.New("kiosk feed is not a JSON array")

// StatusError is returned when the feed answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("kiosk feed returned status %d", e.StatusCode)
}

// Source fetches the kiosk feed from the station backend.
type Source struct {
	baseURL  string
	client   *http.Client
	progress io.Writer
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithHTTPClient sets the client used to reach the backend.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *Source) {
		s.client = client
	}
}

// WithProgress renders a download spinner on w while the feed is read.
func WithProgress(w io.Writer) SourceOption {
	return func(s *Source) {
		s.progress = w
	}
}

// NewSource creates a Source for the backend at baseURL.
func NewSource(baseURL string, opts ...SourceOption) *Source {
	s := &Source{
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = httputils.NewClient(httputils.ClientOptions{})
	}

	return s
}

// Fetch downloads and decodes the whole feed. It makes a single attempt.
func (s *Source) Fetch(ctx context.Context) ([]Kiosk, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+PublicLocationsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("building kiosk feed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching kiosk feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body

	if s.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("Loading available kiosks"),
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()

		reader := progressbar.NewReader(resp.Body, bar)
		body = &reader
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading kiosk feed: %w", err)
	}

	return Decode(data)
}

// Decode parses a feed body. The backend sometimes double encodes the list
// as a JSON string holding the array; both forms are accepted.
func Decode(data []byte) ([]Kiosk, error) {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("decoding wrapped kiosk feed: %w", err)
		}

		data = bytes.TrimSpace([]byte(inner))
	}

	if len(data) == 0 || data[0] != '[' {
		return nil, ErrNotAnArray
	}

	var kiosks []Kiosk
	if err := json.Unmarshal(data, &kiosks); err != nil {
		return nil, fmt.Errorf("decoding kiosk feed: %w", err)
	}

	return kiosks, nil
}
