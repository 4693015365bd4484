// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package export writes search results as spreadsheets.
package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jcodagnone/stationfinder/finder"
	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/spatial"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the kiosks.
const SheetName = "Kiosks"

// WriteWorkbook writes r as an .xlsx workbook with one row per kiosk. Charger
// counts are the displayed ones, so stale kiosks show 0.
func WriteWorkbook(w io.Writer, r *finder.Result, b i18n.Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetName); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	headers := []any{
		"ID", "Name", "Place", "Address", "Zip", "Lat", "Lon",
		"Distance (" + b.DistanceUnit() + ")",
		b.AvailableChargers, b.AvailableSlots, "Stale", "Timestamp",
	}

	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range r.Kiosks {
		k := &r.Kiosks[i]

		var distance any
		if k.DistanceMiles != nil {
			d := *k.DistanceMiles
			if b.Metric() {
				d = spatial.MilesToKilometers(d)
			}

			distance = math.Round(d*10) / 10
		}

		var timestamp any
		if ts, ok := k.Timestamp.Time(); ok {
			timestamp = ts.UTC().Format(time.RFC3339)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []any{
			k.ID, k.LocationName, k.Place, k.Address, k.Zip, k.Lat, k.Lon,
			distance, k.DisplayChargers(), k.AvailableSlots, k.ConnectivityStale, timestamp,
		}

		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("deleting default sheet: %w", err)
	}

	index, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return fmt.Errorf("locating sheet: %w", err)
	}

	f.SetActiveSheet(index)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
