// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jcodagnone/stationfinder/finder"
	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/kiosk"
	"github.com/jcodagnone/stationfinder/locate"
	"github.com/jcodagnone/stationfinder/spatial"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *finder.Result {
	near, far := 1.3, 12.0

	return &finder.Result{
		Mode:        finder.ModeNearby,
		RadiusMiles: 25,
		Kiosks: []kiosk.Annotated{
			{
				Kiosk:         kiosk.Kiosk{ID: "K1", LocationName: "Central", AvailableChargers: 4, AvailableSlots: 2},
				DistanceMiles: &near,
			},
			{
				Kiosk:             kiosk.Kiosk{ID: "K22", LocationName: "Harbor", AvailableChargers: 3, AvailableSlots: 5},
				DistanceMiles:     &far,
				ConnectivityStale: true,
			},
		},
	}
}

func TestWriteTable(t *testing.T) {
	r := sampleResult()
	b := i18n.Lookup(i18n.English)

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, r, finder.Panels(r, b, finder.Platform{}, true), b))

	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)

	assert.True(t, strings.HasPrefix(lines[0], "╭"))
	assert.Equal(t, "│ ID  │ Name    │ miles │ Available Chargers │ Empty Slots │", lines[1])
	assert.Equal(t, "│ K1  │ Central │ 1.3   │ 4                  │ 2           │", lines[3])
	assert.Equal(t, "│ K22 │ Harbor  │ 12.0  │ 0 ⚠                │ 5           │", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "╰"))
	assert.Equal(t, "⚠ "+b.WarningConnectivity, lines[6])
}

func TestWriteTableEmpty(t *testing.T) {
	b := i18n.Lookup(i18n.French)

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, &finder.Result{Mode: finder.ModeNearby, RadiusMiles: 25}, nil, b))
	assert.Equal(t, "Aucun kiosque trouvé à moins de 40 km de votre emplacement.\n", buf.String())

	buf.Reset()
	require.NoError(t, writeTable(&buf, &finder.Result{Mode: finder.ModeDirect}, nil, b))
	assert.Equal(t, b.ErrNoQRKiosksFound+"\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	r := sampleResult()
	b := i18n.Lookup(i18n.French)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, r, finder.Panels(r, b, finder.Platform{}, false)))

	var got struct {
		Mode   string `json:"mode"`
		Kiosks []struct {
			ID string `json:"id"`
		} `json:"kiosks"`
		Panels []finder.Panel `json:"panels"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "nearby", got.Mode)
	require.Len(t, got.Kiosks, 2)
	assert.Equal(t, "K22", got.Kiosks[1].ID)
	assert.Equal(t, "2.1 km", got.Panels[0].Distance)
	assert.Equal(t, 0, got.Panels[1].Chargers)
	assert.Empty(t, got.Panels[0].DrivingURL)
}

func newSearchCommand(t *testing.T) *cobra.Command {
	t.Helper()

	c := &cobra.Command{}
	c.Flags().StringVar(&searchOptions.Country, "country", "", "")
	c.Flags().StringVar(&searchOptions.Postal, "postal", "", "")
	c.Flags().Float64Var(&searchOptions.Lat, "lat", 0, "")
	c.Flags().Float64Var(&searchOptions.Lon, "lon", 0, "")
	c.Flags().StringVar(&searchOptions.GPSError, "gps-error", "", "")

	t.Cleanup(func() { searchOptions = searchFlags{} })

	return c
}

func TestSearchRequest(t *testing.T) {
	t.Run("position", func(t *testing.T) {
		c := newSearchCommand(t)
		require.NoError(t, c.Flags().Parse([]string{"--lat", "45.5", "--lon", "-73.6"}))

		req, err := searchRequest(c, "us")
		require.NoError(t, err)
		assert.Equal(t, locate.MethodDevice, req.Method)
		assert.Equal(t, locate.FixedLocator(spatial.Point{Lat: 45.5, Lng: -73.6}), req.Device)
	})

	t.Run("zero position", func(t *testing.T) {
		c := newSearchCommand(t)
		require.NoError(t, c.Flags().Parse([]string{"--lat", "0", "--lon", "0"}))

		req, err := searchRequest(c, "us")
		require.NoError(t, err)
		assert.Equal(t, locate.MethodDevice, req.Method)
	})

	t.Run("latitude only", func(t *testing.T) {
		c := newSearchCommand(t)
		require.NoError(t, c.Flags().Parse([]string{"--lat", "45.5"}))

		_, err := searchRequest(c, "us")
		assert.Error(t, err)
	})

	t.Run("postal code with default country", func(t *testing.T) {
		c := newSearchCommand(t)
		require.NoError(t, c.Flags().Parse([]string{"--postal", "H2X 1Y4"}))

		req, err := searchRequest(c, "ca")
		require.NoError(t, err)
		assert.Equal(t, locate.Request{Method: locate.MethodPostal, Country: "ca", PostalCode: "H2X 1Y4"}, req)
	})

	t.Run("device failure", func(t *testing.T) {
		c := newSearchCommand(t)
		require.NoError(t, c.Flags().Parse([]string{"--gps-error", "denied"}))

		req, err := searchRequest(c, "us")
		require.NoError(t, err)
		assert.Equal(t, locate.FailedLocator{Err: locate.ParseDeviceFailure("denied")}, req.Device)
	})

	t.Run("nothing", func(t *testing.T) {
		_, err := searchRequest(newSearchCommand(t), "us")
		assert.Error(t, err)
	})
}
