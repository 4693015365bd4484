// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package kiosk models the charger/return kiosks published by the station
// backend and implements the freshness and proximity pipeline over them.
package kiosk

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/stationfinder/spatial"
)

// Kiosk is a physical station as reported by /api/public/locations.
type Kiosk struct {
	ID                string    `json:"id"`
	Lat               float64   `json:"lat"`
	Lon               float64   `json:"lon"`
	LocationName      string    `json:"locationName"`
	Place             string    `json:"place,omitempty"`
	Address           string    `json:"address"`
	Zip               string    `json:"zip"`
	AvailableChargers int       `json:"availableChargers"`
	AvailableSlots    int       `json:"availableSlots"`
	Timestamp         Timestamp `json:"timestamp"`
}

// Point returns the kiosk position.
func (k *Kiosk) Point() spatial.Point {
	return spatial.Point{Lat: k.Lat, Lng: k.Lon}
}

// Timestamp is the last-update instant of a kiosk. The backend is loose about
// it: it may be missing, null, an ISO-8601 string or epoch milliseconds. The
// raw value is kept so it can be echoed back; unparseable values decode
// without error and simply report !ok.
type Timestamp struct {
	raw    json.RawMessage
	parsed time.Time
	ok     bool
}

// NewTimestamp returns a parsed timestamp for t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{parsed: t, ok: true}
}

// Time returns the parsed instant and whether there was one.
func (t Timestamp) Time() (time.Time, bool) {
	return t.parsed, t.ok
}

// IsZero reports whether the kiosk carried no timestamp at all.
func (t Timestamp) IsZero() bool {
	return !t.ok && len(t.raw) == 0
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	t.raw = append(json.RawMessage(nil), data...)

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			t.parsed, t.ok = ParseTimestamp(s)
		}
	default:
		if ms, err := strconv.ParseFloat(string(data), 64); err == nil {
			t.parsed, t.ok = time.UnixMilli(int64(ms)).UTC(), true
		}
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if len(t.raw) > 0 {
		return t.raw, nil
	}

	if t.ok {
		return json.Marshal(t.parsed.Format(time.RFC3339Nano))
	}

	return []byte("null"), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses the date formats the backend has been seen to emit.
// Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

// Clock is the source of wall-clock time, injected so datasets without any
// usable timestamp stay testable.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads time.Now.
var SystemClock Clock = ClockFunc(time.Now)
