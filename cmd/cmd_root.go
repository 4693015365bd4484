// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jcodagnone/stationfinder/config"
	"github.com/jcodagnone/stationfinder/kiosk"
	"github.com/jcodagnone/stationfinder/locate"
	"github.com/jcodagnone/stationfinder/utils/httputils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "stationfinder",
	Short: "find charger rental kiosks near a location",
	Long: `
stationfinder reads the public kiosk feed of the station backend and finds the
kiosks with available chargers or empty slots near a postal code or a
position. It runs the public search page or answers searches from the
command line.
`,
	SilenceUsage: true,
}

var rootOptions struct {
	ConfigPath    string
	Upstream      string
	Lang          string
	TraceHTTP     bool
	TraceHTTPBody bool
}

var Version = "dev"

func Execute(version string) {
	Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.ConfigPath,
		"config",
		config.DefaultConfigPath(),
		"Path to the configuration file",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.Upstream,
		"upstream",
		"",
		"Base URL of the station backend, overrides the configuration",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.Lang,
		"lang",
		"",
		"Language of the messages (en, fr)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.TraceHTTP,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.TraceHTTPBody,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}

// loadConfig reads the configuration file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootOptions.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if rootOptions.Upstream != "" {
		cfg.Upstream = rootOptions.Upstream
	}

	if rootOptions.Lang != "" {
		cfg.Locale = rootOptions.Lang
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func userAgent(cfg *config.Config) string {
	if cfg.UserAgent != "" {
		return cfg.UserAgent
	}

	return fmt.Sprintf("stationfinder/%s (+https://github.com/jcodagnone/stationfinder)", Version)
}

func newHTTPClient(cfg *config.Config) *http.Client {
	options := httputils.ClientOptions{UserAgent: userAgent(cfg)}
	if rootOptions.TraceHTTP || rootOptions.TraceHTTPBody {
		options.Trace = os.Stderr
		options.TraceBody = rootOptions.TraceHTTPBody
	}

	return httputils.NewClient(options)
}

func newGeocoder(ctx context.Context, cfg *config.Config, client *http.Client) locate.Geocoder {
	if cfg.Geocoder.Provider == config.GeocoderGoogle {
		key := locate.LookupGoogleAPIKey(ctx, cfg.Geocoder.GoogleAPIKey, cfg.Geocoder.GoogleKeyName)
		if key == "" {
			log.Println("⚠️  No Google Maps API key found, postal code search is disabled")
		}

		return locate.NewGoogleMapsGeocoder(key, client)
	}

	return locate.NewUpstreamGeocoder(cfg.Upstream, client)
}

func newSource(cfg *config.Config, client *http.Client) *kiosk.Source {
	opts := []kiosk.SourceOption{kiosk.WithHTTPClient(client)}
	if isTerminal(os.Stderr) && !rootOptions.TraceHTTP {
		opts = append(opts, kiosk.WithProgress(os.Stderr))
	}

	return kiosk.NewSource(cfg.Upstream, opts...)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
