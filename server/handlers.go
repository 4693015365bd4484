// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/stationfinder/finder"
	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/locate"
	"github.com/jcodagnone/stationfinder/spatial"
)

// searchRequest reads a search from the query string: method=zip with
// country and postal, or method=gps with lat/lon or the gps_error the browser
// reported. It returns false when the query asks for no search.
func searchRequest(values url.Values) (locate.Request, bool) {
	method, ok := locate.ParseMethod(values.Get("method"))
	if !ok {
		return locate.Request{}, false
	}

	req := locate.Request{Method: method}

	switch method {
	case locate.MethodPostal:
		req.Country = values.Get("country")
		req.PostalCode = values.Get("postal")
	case locate.MethodDevice:
		if code := values.Get("gps_error"); code != "" {
			req.Device = locate.FailedLocator{Err: locate.ParseDeviceFailure(code)}

			break
		}

		lat, latErr := strconv.ParseFloat(values.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(values.Get("lon"), 64)

		if latErr == nil && lonErr == nil {
			req.Device = locate.FixedLocator(spatial.Point{Lat: lat, Lng: lon})
		}
	}

	return req, true
}

type countryOption struct {
	Code        string
	Name        string
	Placeholder string
	Selected    bool
}

type localeLink struct {
	Label  string
	URL    string
	Active bool
}

type pageView struct {
	T        i18n.Bundle
	Locale   i18n.Locale
	Locales  []localeLink
	BasePath string

	Countries []countryOption
	Postal    string

	DirectLink        bool
	ShowDrivingToggle bool
	DeviceTimeoutMs   int64

	Searched bool
	Panels   []finder.Panel
	Notice   string
	Error    string
}

func (s *Server) countries(b i18n.Bundle, selected string) []countryOption {
	if selected == "" {
		selected = s.opts.Countries[0]
	}

	out := make([]countryOption, 0, len(s.opts.Countries))
	for _, code := range s.opts.Countries {
		out = append(out, countryOption{
			Code:        code,
			Name:        b.CountryName(code),
			Placeholder: b.Placeholder(code),
			Selected:    strings.EqualFold(code, selected),
		})
	}

	return out
}

func (s *Server) localeLinks(current i18n.Locale, values url.Values) []localeLink {
	links := make([]localeLink, 0, len(i18n.Locales))

	for _, l := range i18n.Locales {
		v := url.Values{}
		for k, vs := range values {
			v[k] = vs
		}

		v.Set("lang", string(l))

		links = append(links, localeLink{
			Label:  strings.ToUpper(string(l)),
			URL:    s.opts.BasePath + "/?" + v.Encode(),
			Active: l == current,
		})
	}

	return links
}

// page renders the search page. A plain visit reloads the kiosk snapshot;
// a search reuses the session's snapshot when it has one.
func (s *Server) page(ctx *gin.Context) {
	fs, b := s.session(ctx)
	values := ctx.Request.URL.Query()
	query := finder.ParseQuery(values)
	req, searching := searchRequest(values)
	platform := finder.PlatformFromUserAgent(ctx.Request.UserAgent())

	view := pageView{
		T:                 b,
		Locale:            b.Locale,
		Locales:           s.localeLinks(b.Locale, values),
		BasePath:          s.opts.BasePath,
		Countries:         s.countries(b, values.Get("country")),
		Postal:            values.Get("postal"),
		DirectLink:        query.DirectLink,
		ShowDrivingToggle: query.ShowDrivingToggle(),
		DeviceTimeoutMs:   s.opts.DeviceTimeout.Milliseconds(),
	}

	if query.DirectLink || !searching || !fs.Loaded() {
		if err := fs.Load(ctx.Request.Context()); err != nil {
			s.logError(ctx, "loading kiosks", err)
			view.Error = finder.Message(err, b)
			ctx.HTML(http.StatusOK, "index.html", view)

			return
		}
	}

	var (
		result *finder.Result
		err    error
	)

	switch {
	case query.DirectLink:
		result, err = fs.Direct(query.KioskIDs)
	case searching:
		result, err = fs.Search(ctx.Request.Context(), req)
	default:
		ctx.HTML(http.StatusOK, "index.html", view)

		return
	}

	view.Searched = true

	if err != nil {
		s.logError(ctx, "searching", err)

		if errors.Is(err, finder.ErrSuperseded) {
			ctx.Status(http.StatusConflict)

			return
		}

		view.Error = finder.Message(err, b)
		ctx.HTML(http.StatusOK, "index.html", view)

		return
	}

	view.Panels = finder.Panels(result, b, platform, query.Driving)
	if result.Empty() {
		view.Notice = finder.EmptyMessage(result, b)
	}

	ctx.HTML(http.StatusOK, "index.html", view)
}

type apiResponse struct {
	*finder.Result

	Panels  []finder.Panel `json:"panels"`
	Message string         `json:"message,omitempty"`
}

func (s *Server) apiError(ctx *gin.Context, b i18n.Bundle, err error) {
	s.logError(ctx, ctx.FullPath(), err)
	ctx.JSON(statusFor(err), gin.H{
		"error":   finder.Code(err),
		"message": finder.Message(err, b),
	})
}

func (s *Server) apiRespond(ctx *gin.Context, b i18n.Bundle, result *finder.Result, driving bool) {
	resp := apiResponse{
		Result: result,
		Panels: finder.Panels(result, b, finder.PlatformFromUserAgent(ctx.Request.UserAgent()), driving),
	}

	if result.Empty() {
		resp.Message = finder.EmptyMessage(result, b)
	}

	ctx.JSON(http.StatusOK, resp)
}

// ensureLoaded loads the session snapshot when it has none or refresh=1.
func (s *Server) ensureLoaded(ctx *gin.Context, fs *finder.Session) error {
	if fs.Loaded() && ctx.Query("refresh") != "1" {
		return nil
	}

	return fs.Load(ctx.Request.Context())
}

// apiKiosks returns every fresh kiosk, or only those named by kiosks=.
func (s *Server) apiKiosks(ctx *gin.Context) {
	fs, b := s.session(ctx)
	query := finder.ParseQuery(ctx.Request.URL.Query())

	if err := s.ensureLoaded(ctx, fs); err != nil {
		s.apiError(ctx, b, err)

		return
	}

	var (
		result *finder.Result
		err    error
	)

	if query.DirectLink {
		result, err = fs.Direct(query.KioskIDs)
	} else {
		result, err = fs.All()
	}

	if err != nil {
		s.apiError(ctx, b, err)

		return
	}

	s.apiRespond(ctx, b, result, query.Driving)
}

// apiSearch runs a nearby search.
func (s *Server) apiSearch(ctx *gin.Context) {
	fs, b := s.session(ctx)

	req, ok := searchRequest(ctx.Request.URL.Query())
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_method",
			"message": "method must be zip or gps",
		})

		return
	}

	if err := s.ensureLoaded(ctx, fs); err != nil {
		s.apiError(ctx, b, err)

		return
	}

	result, err := fs.Search(ctx.Request.Context(), req)
	if err != nil {
		s.apiError(ctx, b, err)

		return
	}

	s.apiRespond(ctx, b, result, finder.ParseQuery(ctx.Request.URL.Query()).Driving)
}
