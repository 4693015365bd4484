// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jcodagnone/stationfinder/export"
	"github.com/jcodagnone/stationfinder/finder"
	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
)

var outputOptions struct {
	Format  string
	Out     string
	Driving bool
}

func addOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&outputOptions.Format, "output", "", "Output format: table, json or xlsx. Defaults to table on a terminal, json otherwise")
	flags.StringVar(&outputOptions.Out, "out", "", "Write the output to this file instead of stdout")
	flags.BoolVar(&outputOptions.Driving, "driving", true, "Include driving directions")
}

// writeResult renders r in the requested format.
func writeResult(r *finder.Result, b i18n.Bundle) error {
	w := io.Writer(os.Stdout)
	toTerminal := outputOptions.Out == "" && isTerminal(os.Stdout)

	format := outputOptions.Format
	if format == "" {
		format = formatJSON
		if toTerminal {
			format = formatTable
		}
	}

	if format == formatXLSX && toTerminal {
		return errors.New("refusing to write a workbook to a terminal, use --out")
	}

	if outputOptions.Out != "" {
		f, err := os.Create(outputOptions.Out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outputOptions.Out, err)
		}
		defer f.Close()

		w = f
	}

	panels := finder.Panels(r, b, finder.Platform{}, outputOptions.Driving)

	switch format {
	case formatTable:
		return writeTable(w, r, panels, b)
	case formatJSON:
		return writeJSON(w, r, panels)
	case formatXLSX:
		return export.WriteWorkbook(w, r, b)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, r *finder.Result, panels []finder.Panel) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		*finder.Result

		Panels []finder.Panel `json:"panels"`
	}{r, panels})
}

// writeTable prints one row per kiosk. Stale kiosks are flagged with a
// warning sign next to the charger count.
func writeTable(w io.Writer, r *finder.Result, panels []finder.Panel, b i18n.Bundle) error {
	if r.Empty() {
		_, err := fmt.Fprintln(w, finder.EmptyMessage(r, b))

		return err
	}

	headers := []string{"ID", "Name", b.DistanceUnit(), b.AvailableChargers, b.AvailableSlots}
	rows := make([][]string, 0, len(panels))

	for _, p := range panels {
		chargers := strconv.Itoa(p.Chargers)
		if p.Stale {
			chargers += " ⚠"
		}

		distance := strings.TrimSuffix(p.Distance, " "+b.DistanceUnit())
		if distance == "" {
			distance = "-"
		}

		rows = append(rows, []string{p.ID, p.Name, distance, chargers, strconv.Itoa(p.Slots)})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	line := func(left, mid, right string) string {
		parts := make([]string, len(widths))
		for i, width := range widths {
			parts[i] = strings.Repeat("─", width+2)
		}

		return left + strings.Join(parts, mid) + right + "\n"
	}

	row := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = " " + cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)) + " "
		}

		return "│" + strings.Join(parts, "│") + "│\n"
	}

	var sb strings.Builder

	sb.WriteString(line("╭", "┬", "╮"))
	sb.WriteString(row(headers))
	sb.WriteString(line("├", "┼", "┤"))

	for _, cells := range rows {
		sb.WriteString(row(cells))
	}

	sb.WriteString(line("╰", "┴", "╯"))

	if countStale(panels) > 0 {
		sb.WriteString("⚠ " + b.WarningConnectivity + "\n")
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func countStale(panels []finder.Panel) int {
	n := 0

	for _, p := range panels {
		if p.Stale {
			n++
		}
	}

	return n
}
