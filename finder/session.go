// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package finder runs station searches for one user session: it loads the
// kiosk snapshot once, resolves locations, ranks kiosks and turns failures
// into localized messages.
package finder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jcodagnone/stationfinder/kiosk"
	"github.com/jcodagnone/stationfinder/locate"
	"github.com/jcodagnone/stationfinder/spatial"
)

// Loader fetches the raw kiosk feed. *kiosk.Source implements it.
type Loader interface {
	Fetch(ctx context.Context) ([]kiosk.Kiosk, error)
}

// Mode tells how a Result was produced.
type Mode string

const (
	ModeNearby Mode = "nearby"
	ModeDirect Mode = "direct"
)

// Result is the outcome of one search.
type Result struct {
	Mode Mode `json:"mode"`
	// Origin is the resolved location of a nearby search.
	Origin      *spatial.Point    `json:"origin,omitempty"`
	RadiusMiles float64           `json:"radiusMiles,omitempty"`
	Reference   time.Time         `json:"referenceTime"`
	Kiosks      []kiosk.Annotated `json:"kiosks"`
}

// Empty reports whether nothing matched.
func (r *Result) Empty() bool {
	return len(r.Kiosks) == 0
}

// Session owns one dataset snapshot and the searches run against it.
type Session struct {
	loader   Loader
	resolver locate.Resolver
	clock    kiosk.Clock
	radius   float64

	mu       sync.Mutex
	dataset  *kiosk.Dataset
	loadErr  error
	seq      uint64
	cancel   context.CancelFunc
	lastUsed time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock sets the clock used when the feed has no usable timestamps.
func WithClock(c kiosk.Clock) SessionOption {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRadius sets the search radius in miles.
func WithRadius(miles float64) SessionOption {
	return func(s *Session) {
		s.radius = miles
	}
}

// NewSession creates a session. Nothing is fetched until Load.
func NewSession(loader Loader, resolver locate.Resolver, opts ...SessionOption) *Session {
	s := &Session{
		loader:   loader,
		resolver: resolver,
		clock:    kiosk.SystemClock,
		radius:   kiosk.DefaultRadiusMiles,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.lastUsed = s.clock.Now()

	return s
}

// Radius is the search radius in miles.
func (s *Session) Radius() float64 {
	return s.radius
}

// Load fetches the feed and replaces the snapshot. A failed load leaves the
// session without data until the next successful Load.
func (s *Session) Load(ctx context.Context) error {
	raw, err := s.loader.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = s.clock.Now()

	if err != nil {
		s.dataset = nil
		s.loadErr = fmt.Errorf("%w: %w", ErrDataLoadFailed, err)

		return s.loadErr
	}

	s.dataset = kiosk.NewDataset(raw, s.clock)
	s.loadErr = nil

	return nil
}

// Loaded reports whether a snapshot is available.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dataset != nil
}

// Dataset returns the current snapshot or the load failure.
func (s *Session) Dataset() (*kiosk.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current()
}

func (s *Session) current() (*kiosk.Dataset, error) {
	if s.dataset != nil {
		return s.dataset, nil
	}

	if s.loadErr != nil {
		return nil, s.loadErr
	}

	return nil, fmt.Errorf("%w: no kiosk data loaded", ErrDataLoadFailed)
}

// LastUsed is when the session last loaded or searched.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastUsed
}

// Search resolves req and ranks the snapshot around it. Starting a search
// cancels the one still in flight; the older call returns ErrSuperseded.
func (s *Session) Search(ctx context.Context, req locate.Request) (*Result, error) {
	s.mu.Lock()

	dataset, err := s.current()
	if err != nil {
		s.mu.Unlock()

		return nil, err
	}

	s.seq++
	seq := s.seq

	if s.cancel != nil {
		s.cancel()
	}

	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lastUsed = s.clock.Now()
	s.mu.Unlock()

	origin, err := s.resolver.Resolve(searchCtx, req)

	s.mu.Lock()
	latest := s.seq == seq
	if latest {
		s.cancel = nil
	}
	s.mu.Unlock()
	cancel()

	if !latest {
		return nil, ErrSuperseded
	}

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
		}

		return nil, fmt.Errorf("%w: %w", Classify(err), err)
	}

	return &Result{
		Mode:        ModeNearby,
		Origin:      &origin,
		RadiusMiles: s.radius,
		Reference:   dataset.Reference,
		Kiosks:      dataset.Nearby(origin, s.radius),
	}, nil
}

// Direct returns the listed kiosks that are in the snapshot, in snapshot
// order.
func (s *Session) Direct(ids []string) (*Result, error) {
	s.mu.Lock()
	dataset, err := s.current()
	s.lastUsed = s.clock.Now()
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return &Result{
		Mode:      ModeDirect,
		Reference: dataset.Reference,
		Kiosks:    dataset.ByIDs(ids),
	}, nil
}

// All returns the whole snapshot annotated with staleness.
func (s *Session) All() (*Result, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	return &Result{
		Mode:      ModeDirect,
		Reference: dataset.Reference,
		Kiosks:    dataset.All(),
	}, nil
}
