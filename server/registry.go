// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"sync"
	"time"

	"github.com/jcodagnone/stationfinder/finder"
)

// registry keeps one finder.Session per browser session so a search can
// supersede the one the same user still has in flight.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*finder.Session
	idle     time.Duration
	now      func() time.Time
	create   func() *finder.Session
}

func newRegistry(idle time.Duration, now func() time.Time, create func() *finder.Session) *registry {
	return &registry{
		sessions: make(map[string]*finder.Session),
		idle:     idle,
		now:      now,
		create:   create,
	}
}

// get returns the session for id, creating it when missing. Sessions idle for
// longer than the configured window are dropped on the way.
func (r *registry) get(id string) *finder.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s
	}

	r.sweep()

	s := r.create()
	r.sessions[id] = s

	return s
}

func (r *registry) sweep() {
	if r.idle <= 0 {
		return
	}

	cutoff := r.now().Add(-r.idle)
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
