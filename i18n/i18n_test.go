// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert.Equal(t, "Station locator", Lookup(English).Title)
	assert.Equal(t, "Localisateur de Bornes", Lookup(French).Title)
	assert.Equal(t, English, Lookup("de").Locale)
}

func TestLookupReturnsIndependentCopies(t *testing.T) {
	b := Lookup(English)
	b.Title = "changed"

	assert.Equal(t, "Station locator", Lookup(English).Title)
}

func TestEveryBundleIsComplete(t *testing.T) {
	for _, l := range Locales {
		b := Lookup(l)

		for name, msg := range map[string]string{
			"Title":                b.Title,
			"WarningConnectivity":  b.WarningConnectivity,
			"ErrInvalidPostalCode": b.ErrInvalidPostalCode,
			"ErrNoQRKiosksFound":   b.ErrNoQRKiosksFound,
			"ErrMissingAPIKey":     b.ErrMissingAPIKey,
			"InitialPrompt":        b.InitialPrompt,
			"Placeholder(us)":      b.Placeholder("us"),
			"NoKiosksFound":        b.NoKiosksFound(25),
		} {
			assert.NotEmpty(t, msg, "%s: %s is empty", l, name)
		}
	}
}

func TestNoKiosksFound(t *testing.T) {
	assert.Equal(t, "No kiosks found within 25 miles of your location.", Lookup(English).NoKiosksFound(25))
	assert.Equal(t, "Aucun kiosque trouvé à moins de 40 km de votre emplacement.", Lookup(French).NoKiosksFound(25))
	assert.Equal(t, "No kiosks found within 2.5 miles of your location.", Lookup(English).NoKiosksFound(2.5))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "3.2 miles", Lookup(English).FormatDistance(3.24))
	assert.Equal(t, "5.2 km", Lookup(French).FormatDistance(3.24))
	assert.Equal(t, "0.0 miles", Lookup(English).FormatDistance(0))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "Enter Postal Code (e.g., A1A 1A1)", Lookup(English).Placeholder("CA"))
	assert.Equal(t, "Entrez le code ZIP (ex: 90210)", Lookup(French).Placeholder("us"))
	assert.Equal(t, "Enter postal code", Lookup(English).Placeholder("de"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Locale
		wantOK bool
	}{
		{"en", English, true},
		{"FR", French, true},
		{"fr-CA", French, true},
		{"en-US", English, true},
		{"de", "", false},
		{"", "", false},
		{"not a tag!", "", false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"fr-CA,fr;q=0.9,en;q=0.8", French},
		{"en-US,en;q=0.9", English},
		{"de-DE,fr;q=0.5", French},
		{"ja", English},
		{"", English},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.header))
		})
	}
}

func TestCountryName(t *testing.T) {
	assert.Equal(t, "United States", Lookup(English).CountryName("us"))
	assert.Equal(t, "Canada", Lookup(French).CountryName("CA"))
	assert.Equal(t, "XYZ", Lookup(English).CountryName("xyz"))
}
