// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/jcodagnone/stationfinder/spatial"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

const (
	googleGeocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

	// DefaultKeyDisplayName is the API key looked up through ADC when no key
	// is configured.
	DefaultKeyDisplayName = "Station Finder Geocoding Key"
)

// GoogleMapsGeocoder uses the Google Maps Geocoding API with component
// filtering on country and postal code.
type GoogleMapsGeocoder struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder. An empty key
// yields a geocoder that always fails with KindNotConfigured.
func NewGoogleMapsGeocoder(apiKey string, client *http.Client) *GoogleMapsGeocoder {
	if client == nil {
		client = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return &GoogleMapsGeocoder{
		apiKey:     apiKey,
		endpoint:   googleGeocodeEndpoint,
		httpClient: client,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, country, postalCode string) (*Result, error) {
	if g.apiKey == "" {
		return nil, &Error{Kind: KindNotConfigured, Message: "google maps api key is not configured"}
	}

	params := url.Values{}
	params.Set("components", fmt.Sprintf("country:%s|postal_code:%s", strings.ToUpper(country), postalCode))
	params.Set("key", g.apiKey)
	params.Set("region", strings.ToLower(country))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: "geocoding request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:       KindUnavailable,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("google maps returned status %d", resp.StatusCode),
		}
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: "decoding google maps response", Err: err}
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS", "INVALID_REQUEST":
		return nil, &Error{Kind: KindInvalidPostalCode, Message: "google maps status: " + gmResp.Status}
	default:
		return nil, &Error{
			Kind:    KindUnavailable,
			Message: fmt.Sprintf("google maps status: %s %s", gmResp.Status, gmResp.ErrorMessage),
		}
	}

	if len(gmResp.Results) == 0 {
		return nil, &Error{Kind: KindInvalidPostalCode, Message: "no results found for postal code " + postalCode}
	}

	result := gmResp.Results[0]

	return &Result{
		Point: spatial.Point{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		},
		Provider:    "google_maps",
		DisplayName: result.FormattedAddress,
	}, nil
}

// LookupGoogleAPIKey returns explicit when set, then GOOGLE_MAPS_API_KEY, then
// the key named displayName in the ADC project. It returns "" when every
// source fails; the geocoder then reports KindNotConfigured.
func LookupGoogleAPIKey(ctx context.Context, explicit, displayName string) string {
	if explicit != "" {
		return explicit
	}

	if apiKey := os.Getenv("GOOGLE_MAPS_API_KEY"); apiKey != "" {
		return apiKey
	}

	log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

	apiKey, err := APIKeyFromADC(ctx, displayName)
	if err != nil {
		log.Printf("⚠️  Failed to retrieve API key via ADC: %v", err)

		return ""
	}

	log.Println("✅ Successfully retrieved Google Maps API Key via ADC")

	return apiKey
}

// APIKeyFromADC finds the API key whose display name is displayName in the
// project of the application default credentials and returns its secret.
func APIKeyFromADC(ctx context.Context, displayName string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	if projectID == "" {
		return "", errors.New("no project id in default credentials and GOOGLE_CLOUD_PROJECT is not set")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the secret.
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' has an empty key string", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, projectID)
}
