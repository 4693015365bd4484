// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package kiosk

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{`"2024-01-01T12:00:00Z"`, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), true},
		{`"2024-01-01T12:00:00.250Z"`, time.Date(2024, 1, 1, 12, 0, 0, 250e6, time.UTC), true},
		{`"2024-01-01T07:00:00-05:00"`, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), true},
		{`"2024-01-01T12:00:00"`, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), true},
		{`"2024-01-01 12:00:00"`, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), true},
		{`"2024-01-01"`, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{`1704110400000`, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), true},
		{`"not a date"`, time.Time{}, false},
		{`""`, time.Time{}, false},
		{`null`, time.Time{}, false},
		{`true`, time.Time{}, false},
		{`{"when":"now"}`, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}

			got, ok := ts.Time()
			if ok != tt.wantOK {
				t.Fatalf("Time() ok = %v, want %v", ok, tt.wantOK)
			}

			if ok && !got.Equal(tt.want) {
				t.Errorf("Time() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKioskDecodeMissingTimestamp(t *testing.T) {
	var k Kiosk
	if err := json.Unmarshal([]byte(`{"id":"K1","lat":1.5,"lon":-2.5,"availableChargers":3}`), &k); err != nil {
		t.Fatal(err)
	}

	if !k.Timestamp.IsZero() {
		t.Errorf("timestamp should be absent")
	}

	if _, ok := k.Timestamp.Time(); ok {
		t.Errorf("absent timestamp reported as parseable")
	}
}

func TestTimestampRoundTripKeepsRawValue(t *testing.T) {
	input := `{"id":"K1","lat":0,"lon":0,"locationName":"Gare","address":"1 rue","zip":"75001",` +
		`"availableChargers":2,"availableSlots":4,"timestamp":"garbage"}`

	var k Kiosk
	if err := json.Unmarshal([]byte(input), &k); err != nil {
		t.Fatal(err)
	}

	out, err := json.Marshal(k)
	if err != nil {
		t.Fatal(err)
	}

	var got, want map[string]any
	_ = json.Unmarshal(out, &got)
	_ = json.Unmarshal([]byte(input), &want)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("re-encoded kiosk mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTimestampMarshal(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	out, err := json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}

	if string(out) != `"2024-01-01T12:00:00Z"` {
		t.Errorf("Marshal() = %s", out)
	}

	out, _ = json.Marshal(Timestamp{})
	if string(out) != "null" {
		t.Errorf("Marshal(zero) = %s", out)
	}
}
