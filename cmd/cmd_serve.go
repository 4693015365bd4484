// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/stationfinder/locate"
	"github.com/jcodagnone/stationfinder/server"
	"github.com/spf13/cobra"
)

var serveOptions struct {
	Listen string
	Debug  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the public search page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if serveOptions.Listen != "" {
			cfg.Listen = serveOptions.Listen
		}

		if !serveOptions.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		client := newHTTPClient(cfg)
		geocoder := newGeocoder(cmd.Context(), cfg, client)

		srv := server.New(
			newSource(cfg, client),
			locate.NewDispatcher(geocoder, cfg.DeviceTimeout),
			server.Options{
				BasePath:      cfg.NormalizedBasePath(),
				Countries:     cfg.Countries,
				DefaultLocale: cfg.DefaultLocale(),
				RadiusMiles:   cfg.RadiusMiles,
				DeviceTimeout: cfg.DeviceTimeout,
				SessionSecret: []byte(cfg.SessionSecret),
				SessionIdle:   cfg.SessionIdle,
			},
		)

		return srv.Run(cfg.Listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveOptions.Listen,
		"listen",
		"",
		"Address to listen on, overrides the configuration",
	)
	serveCmd.Flags().BoolVar(
		&serveOptions.Debug,
		"debug",
		false,
		"Run gin in debug mode",
	)
}
