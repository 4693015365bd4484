// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jcodagnone/stationfinder/config"
	"github.com/jcodagnone/stationfinder/finder"
	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/locate"
	"github.com/jcodagnone/stationfinder/spatial"
	"github.com/spf13/cobra"
)

type searchFlags struct {
	Country  string
	Postal   string
	Lat      float64
	Lon      float64
	GPSError string
	Radius   float64
}

var searchOptions searchFlags

var kiosksOptions struct {
	IDs string
}

// newFinderSession builds a session over the configured backend and loads
// the feed.
func newFinderSession(ctx context.Context, cfg *config.Config, radius float64) (*finder.Session, error) {
	client := newHTTPClient(cfg)

	if radius <= 0 {
		radius = cfg.RadiusMiles
	}

	session := finder.NewSession(
		newSource(cfg, client),
		locate.NewDispatcher(newGeocoder(ctx, cfg, client), cfg.DeviceTimeout),
		finder.WithRadius(radius),
	)

	if err := session.Load(ctx); err != nil {
		return nil, err
	}

	return session, nil
}

// searchRequest builds the search from the flags: a position when --lat and
// --lon are given, a postal code otherwise.
func searchRequest(cmd *cobra.Command, fallbackCountry string) (locate.Request, error) {
	flags := cmd.Flags()

	switch {
	case searchOptions.GPSError != "":
		return locate.Request{
			Method: locate.MethodDevice,
			Device: locate.FailedLocator{Err: locate.ParseDeviceFailure(searchOptions.GPSError)},
		}, nil
	case flags.Changed("lat") || flags.Changed("lon"):
		if !flags.Changed("lat") || !flags.Changed("lon") {
			return locate.Request{}, errors.New("--lat and --lon must be given together")
		}

		return locate.Request{
			Method: locate.MethodDevice,
			Device: locate.FixedLocator(spatial.Point{Lat: searchOptions.Lat, Lng: searchOptions.Lon}),
		}, nil
	case searchOptions.Postal != "":
		country := searchOptions.Country
		if country == "" {
			country = fallbackCountry
		}

		return locate.Request{
			Method:     locate.MethodPostal,
			Country:    country,
			PostalCode: searchOptions.Postal,
		}, nil
	default:
		return locate.Request{}, errors.New("either --postal or --lat/--lon is required")
	}
}

// reportFailure logs the message a user of the page would have seen.
func reportFailure(err error, b i18n.Bundle) error {
	if msg := finder.Message(err, b); msg != "" {
		log.Printf("⚠️  %s", msg)
	}

	return err
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find the kiosks near a postal code or a position",
	Long: `Finds the kiosks within the search radius of a postal code or a position,
closest first.

$ stationfinder search --country us --postal 10001
$ stationfinder search --lat 40.75 --lon -73.99 --output json
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b := i18n.Lookup(cfg.DefaultLocale())

		var fallbackCountry string
		if len(cfg.Countries) > 0 {
			fallbackCountry = cfg.Countries[0]
		}

		req, err := searchRequest(cmd, fallbackCountry)
		if err != nil {
			return err
		}

		session, err := newFinderSession(cmd.Context(), cfg, searchOptions.Radius)
		if err != nil {
			return reportFailure(err, b)
		}

		result, err := session.Search(cmd.Context(), req)
		if err != nil {
			return reportFailure(err, b)
		}

		log.Printf("📍 %d kiosks within %s", len(result.Kiosks), b.FormatDistance(result.RadiusMiles))

		return writeResult(result, b)
	},
}

var kiosksCmd = &cobra.Command{
	Use:   "kiosks",
	Short: "List the kiosks that reported recently",
	Long: `Lists every kiosk that reported in the freshness window, or only the ones
named by --ids in feed order.

$ stationfinder kiosks --ids K12,K40
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b := i18n.Lookup(cfg.DefaultLocale())

		session, err := newFinderSession(cmd.Context(), cfg, 0)
		if err != nil {
			return reportFailure(err, b)
		}

		var result *finder.Result
		if cmd.Flags().Changed("ids") {
			result, err = session.Direct(finder.SplitIDs(kiosksOptions.IDs))
		} else {
			result, err = session.All()
		}

		if err != nil {
			return reportFailure(err, b)
		}

		if dataset, err := session.Dataset(); err == nil {
			log.Printf("✅ %d of %d kiosks reported recently, %d without connectivity", len(dataset.Kiosks), dataset.Total, dataset.StaleCount())
		}

		return writeResult(result, b)
	},
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <postal code>",
	Short: "Resolve a postal code to coordinates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		country := searchOptions.Country
		if country == "" && len(cfg.Countries) > 0 {
			country = cfg.Countries[0]
		}

		country, ok := locate.NormalizeCountry(country)
		if !ok {
			return fmt.Errorf("unknown country %q", searchOptions.Country)
		}

		postal := locate.SanitizePostalCode(args[0])
		geocoder := newGeocoder(cmd.Context(), cfg, newHTTPClient(cfg))

		res, err := geocoder.Geocode(cmd.Context(), country, postal)
		if err != nil {
			return reportFailure(err, i18n.Lookup(cfg.DefaultLocale()))
		}

		fmt.Printf("%s\t%s\t%s\n", res.Point.LatLon(), res.Provider, res.DisplayName)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(kiosksCmd)
	rootCmd.AddCommand(geocodeCmd)

	searchCmd.Flags().StringVar(&searchOptions.Country, "country", "", "Country of the postal code (ISO 3166-1 alpha-2)")
	searchCmd.Flags().StringVar(&searchOptions.Postal, "postal", "", "Postal code to search around")
	searchCmd.Flags().Float64Var(&searchOptions.Lat, "lat", 0, "Latitude to search around")
	searchCmd.Flags().Float64Var(&searchOptions.Lon, "lon", 0, "Longitude to search around")
	searchCmd.Flags().StringVar(
		&searchOptions.GPSError,
		"gps-error",
		"",
		"Simulate a device location failure (denied, unavailable, timeout, unsupported)",
	)
	searchCmd.Flags().Float64Var(&searchOptions.Radius, "radius", 0, "Search radius in miles, defaults to the configuration")
	addOutputFlags(searchCmd)

	kiosksCmd.Flags().StringVar(&kiosksOptions.IDs, "ids", "", "Comma separated kiosk ids")
	addOutputFlags(kiosksCmd)

	geocodeCmd.Flags().StringVar(&searchOptions.Country, "country", "", "Country of the postal code (ISO 3166-1 alpha-2)")
}
