// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server is the public web front end: a server rendered search page
// plus a small JSON API over the same session logic.
package server

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jcodagnone/stationfinder/finder"
	"github.com/jcodagnone/stationfinder/i18n"
	"github.com/jcodagnone/stationfinder/kiosk"
	"github.com/jcodagnone/stationfinder/locate"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	sessionCookie  = "stationfinder"
	sessionIDKey   = "sid"
	sessionLangKey = "lang"

	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Options configures a Server.
type Options struct {
	BasePath      string
	Countries     []string
	DefaultLocale i18n.Locale
	RadiusMiles   float64
	DeviceTimeout time.Duration
	// SessionSecret signs the session cookie. Empty means a random secret,
	// so sessions do not survive a restart.
	SessionSecret []byte
	SessionIdle   time.Duration
	Clock         kiosk.Clock
}

type Server struct {
	loader   finder.Loader
	resolver locate.Resolver
	opts     Options
	sessions *registry
	tmpl     *template.Template
}

// New creates a Server that loads kiosks through loader and resolves
// locations through resolver.
func New(loader finder.Loader, resolver locate.Resolver, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = kiosk.SystemClock
	}

	if opts.RadiusMiles <= 0 {
		opts.RadiusMiles = kiosk.DefaultRadiusMiles
	}

	if opts.DeviceTimeout <= 0 {
		opts.DeviceTimeout = locate.DefaultDeviceTimeout
	}

	if opts.DefaultLocale == "" {
		opts.DefaultLocale = i18n.DefaultLocale
	}

	if len(opts.Countries) == 0 {
		opts.Countries = []string{"us", "ca", "fr"}
	}

	if len(opts.SessionSecret) == 0 {
		log.Println("⚠️  No session secret configured, sessions will not survive a restart")

		opts.SessionSecret = []byte(uuid.NewString() + uuid.NewString())
	}

	opts.BasePath = strings.TrimRight(opts.BasePath, "/")

	s := &Server{
		loader:   loader,
		resolver: resolver,
		opts:     opts,
		tmpl:     template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")),
	}

	s.sessions = newRegistry(opts.SessionIdle, opts.Clock.Now, func() *finder.Session {
		return finder.NewSession(loader, resolver,
			finder.WithClock(opts.Clock),
			finder.WithRadius(opts.RadiusMiles),
		)
	})

	return s
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(requestID())

	store := cookie.NewStore(s.opts.SessionSecret)
	store.Options(sessions.Options{
		Path:     s.opts.BasePath + "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookie, store))

	r.SetHTMLTemplate(s.tmpl)

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group(s.opts.BasePath)
	g.GET("/", s.page)
	g.GET("/api/kiosks", s.apiKiosks)
	g.GET("/api/search", s.apiSearch)

	return r
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("📍 Station finder listening on http://%s%s/", addr, s.opts.BasePath)

	return s.Router().Run(addr)
}

func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		ctx.Set(requestIDKey, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

// session returns the finder session bound to the browser's cookie and the
// locale to render in. A lang query parameter switches and remembers the
// locale.
func (s *Server) session(ctx *gin.Context) (*finder.Session, i18n.Bundle) {
	cs := sessions.Default(ctx)

	id, _ := cs.Get(sessionIDKey).(string)
	if id == "" {
		id = uuid.NewString()
		cs.Set(sessionIDKey, id)
	}

	locale := s.opts.DefaultLocale

	if l, ok := i18n.Parse(ctx.Query("lang")); ok {
		locale = l
		cs.Set(sessionLangKey, string(l))
	} else if saved, ok := cs.Get(sessionLangKey).(string); ok && saved != "" {
		locale = i18n.Locale(saved)
	} else if header := ctx.GetHeader("Accept-Language"); header != "" {
		locale = i18n.Match(header)
	}

	if err := cs.Save(); err != nil {
		log.Printf("[%s] saving session: %v", ctx.GetString(requestIDKey), err)
	}

	return s.sessions.get(id), i18n.Lookup(locale)
}

func (s *Server) logError(ctx *gin.Context, what string, err error) {
	if errors.Is(err, finder.ErrSuperseded) {
		return
	}

	log.Printf("[%s] %s: %v", ctx.GetString(requestIDKey), what, err)
}

func statusFor(err error) int {
	switch finder.Classify(err) {
	case finder.ErrDataLoadFailed, finder.ErrGeocodeUnavailable:
		return http.StatusBadGateway
	case finder.ErrGeocodeInvalidInput:
		return http.StatusUnprocessableEntity
	case finder.ErrGeocodeNotConfigured:
		return http.StatusServiceUnavailable
	case finder.ErrLocationPermissionDenied, finder.ErrLocationUnsupported:
		return http.StatusBadRequest
	case finder.ErrSuperseded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
