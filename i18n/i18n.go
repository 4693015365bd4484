// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package i18n holds the user-facing text of the station finder, one
// immutable bundle per supported locale.
package i18n

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jcodagnone/stationfinder/spatial"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Locale identifies a supported bundle.
type Locale string

const (
	English Locale = "en"
	French  Locale = "fr"

	// DefaultLocale is used when nothing better matches.
	DefaultLocale = English
)

// Locales lists the supported locales in selector order.
var Locales = []Locale{English, French}

var matcher = language.NewMatcher([]language.Tag{language.English, language.French})

// Bundle is the full set of messages for one locale. Values are copied out of
// Lookup, so callers never share mutable state.
type Bundle struct {
	Locale Locale

	Title                  string
	Subtitle               string
	CountryLabel           string
	PostalCodeLabel        string
	SearchButton           string
	OrSeparator            string
	GPSButton              string
	MilesUnit              string
	KmUnit                 string
	WalkingDirections      string
	DrivingDirections      string
	ShowDrivingToggleLabel string
	AvailableChargers      string
	AvailableSlots         string
	LoadingKiosks          string
	FindingLocation        string
	InitialPrompt          string

	WarningConnectivity string

	ErrLoadFailed              string
	ErrNoQRKiosksFound         string
	ErrGPSPermission           string
	ErrGeolocationNotSupported string
	ErrInvalidPostalCode       string
	ErrPostalCodeNotFound      string
	ErrSearchFailed            string
	ErrMissingAPIKey           string

	placeholders       map[string]string
	defaultPlaceholder string
	noKiosksFound      string
	metric             bool
}

var bundles = map[Locale]Bundle{
	English: {
		Locale:                 English,
		Title:                  "Station locator",
		Subtitle:               "Find available chargers or return locations",
		CountryLabel:           "Country",
		PostalCodeLabel:        "Postal Code",
		SearchButton:           "Search",
		OrSeparator:            "or",
		GPSButton:              "Use My Current Location",
		MilesUnit:              "miles",
		KmUnit:                 "km",
		WalkingDirections:      "Walking Directions",
		DrivingDirections:      "Driving Directions",
		ShowDrivingToggleLabel: "Show driving directions",
		AvailableChargers:      "Available Chargers",
		AvailableSlots:         "Empty Slots",
		LoadingKiosks:          "Loading available kiosks...",
		FindingLocation:        "Finding locations near you...",
		InitialPrompt:          "Please select a search method to find nearby kiosks.",
		WarningConnectivity:    "Warning: Limited connectivity. Charger and slot counts might not be accurate.",

		ErrLoadFailed:              "Failed to load kiosk data. Please try again later.",
		ErrNoQRKiosksFound:         "Could not find the specified kiosks.",
		ErrGPSPermission:           "GPS permission denied or location unavailable.",
		ErrGeolocationNotSupported: "Geolocation is not supported by your browser.",
		ErrInvalidPostalCode: "The location service could not find this postal code. " +
			"Please try a different code or use your GPS location.",
		ErrPostalCodeNotFound: "Could not find location data for this postal code.",
		ErrSearchFailed:       "Could not perform search.",
		ErrMissingAPIKey:      "Location service is not configured. Please use GPS search.",

		placeholders: map[string]string{
			"us": "Enter Zip Code (e.g., 90210)",
			"fr": "Enter Postal Code (e.g., 75001)",
			"ca": "Enter Postal Code (e.g., A1A 1A1)",
		},
		defaultPlaceholder: "Enter postal code",
		noKiosksFound:      "No kiosks found within %s miles of your location.",
	},
	French: {
		Locale:                 French,
		Title:                  "Localisateur de Bornes",
		Subtitle:               "Trouvez des batteries ou des points de restitution disponibles",
		CountryLabel:           "Pays",
		PostalCodeLabel:        "Code Postal",
		SearchButton:           "Rechercher",
		OrSeparator:            "ou",
		GPSButton:              "Utiliser ma position actuelle",
		MilesUnit:              "miles",
		KmUnit:                 "km",
		WalkingDirections:      "Itinéraire à pied",
		DrivingDirections:      "Itinéraire en voiture",
		ShowDrivingToggleLabel: "Afficher l’itinéraire en voiture",
		AvailableChargers:      "Chargeurs disponibles",
		AvailableSlots:         "Emplacements vides",
		LoadingKiosks:          "Chargement des kiosques disponibles...",
		FindingLocation:        "Recherche de votre position...",
		InitialPrompt:          "Veuillez sélectionner une méthode de recherche pour trouver les kiosques à proximité.",
		WarningConnectivity: "Avertissement : connectivité limitée. " +
			"Le nombre de chargeurs et d'emplacements peut ne pas être exact.",

		ErrLoadFailed:              "Échec du chargement des données des kiosques. Veuillez réessayer plus tard.",
		ErrNoQRKiosksFound:         "Impossible de trouver les kiosques spécifiés.",
		ErrGPSPermission:           "Permission GPS refusée ou emplacement non disponible.",
		ErrGeolocationNotSupported: "La géolocalisation n'est pas prise en charge par ce navigateur.",
		ErrInvalidPostalCode: "Le service de localisation n'a pas pu trouver ce code postal. " +
			"Veuillez essayer un autre code ou utiliser votre position GPS.",
		ErrPostalCodeNotFound: "Impossible de trouver les données de localisation pour ce code postal.",
		ErrSearchFailed:       "La recherche n'a pas pu être effectuée.",
		ErrMissingAPIKey:      "Le service de localisation n'est pas configuré. Veuillez utiliser la recherche GPS.",

		placeholders: map[string]string{
			"us": "Entrez le code ZIP (ex: 90210)",
			"fr": "Entrez le code postal (ex: 75001)",
			"ca": "Entrez le code postal (ex: A1A 1A1)",
		},
		defaultPlaceholder: "Entrez le code postal",
		noKiosksFound:      "Aucun kiosque trouvé à moins de %s km de votre emplacement.",
		metric:             true,
	},
}

// Lookup returns the bundle for locale, falling back to DefaultLocale.
func Lookup(locale Locale) Bundle {
	if b, ok := bundles[locale]; ok {
		return b
	}

	return bundles[DefaultLocale]
}

// Parse returns the supported locale named by s ("fr", "fr-CA", "EN").
func Parse(s string) (Locale, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}

	base, _ := tag.Base()
	for _, l := range Locales {
		if base.String() == string(l) {
			return l, true
		}
	}

	return "", false
}

// Match picks the best supported locale for an Accept-Language header.
func Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}

	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}

	return Locales[idx]
}

// Tag is the BCP 47 tag of the locale.
func (l Locale) Tag() language.Tag {
	return language.Make(string(l))
}

// CountryName is the name of an ISO 3166-1 country in the bundle's language.
func (b Bundle) CountryName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return strings.ToUpper(code)
	}

	if name := display.Regions(b.Locale.Tag()).Name(region); name != "" {
		return name
	}

	return region.String()
}

// Placeholder is the postal code hint for a country selector value.
func (b Bundle) Placeholder(country string) string {
	if p, ok := b.placeholders[strings.ToLower(country)]; ok {
		return p
	}

	return b.defaultPlaceholder
}

// Metric reports whether the locale shows kilometers.
func (b Bundle) Metric() bool {
	return b.metric
}

// DistanceUnit is the unit label used with FormatDistance.
func (b Bundle) DistanceUnit() string {
	if b.metric {
		return b.KmUnit
	}

	return b.MilesUnit
}

// FormatDistance renders a distance given in miles with one decimal in the
// locale's unit.
func (b Bundle) FormatDistance(miles float64) string {
	value := miles
	if b.metric {
		value = spatial.MilesToKilometers(miles)
	}

	return fmt.Sprintf("%.1f %s", value, b.DistanceUnit())
}

// NoKiosksFound is the empty-result message for a search radius in miles.
// Metric locales show the radius rounded to whole kilometers.
func (b Bundle) NoKiosksFound(radiusMiles float64) string {
	radius := radiusMiles
	if b.metric {
		radius = math.Round(spatial.MilesToKilometers(radiusMiles))
	}

	return fmt.Sprintf(b.noKiosksFound, strconv.FormatFloat(radius, 'f', -1, 64))
}
