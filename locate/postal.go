// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizePostalCode folds compatibility characters (full-width digits,
// no-break spaces) and drops every whitespace rune.
func SanitizePostalCode(code string) string {
	t := transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.White_Space)))

	out, _, err := transform.String(t, code)
	if err != nil {
		return strings.Join(strings.Fields(code), "")
	}

	return out
}

// NormalizeCountry validates an ISO 3166-1 alpha-2 code and returns it in
// lower case, the form the backend expects.
func NormalizeCountry(country string) (string, bool) {
	country = strings.TrimSpace(country)
	if len(country) != 2 {
		return "", false
	}

	region, err := language.ParseRegion(country)
	if err != nil || !region.IsCountry() {
		return "", false
	}

	return strings.ToLower(region.String()), true
}
