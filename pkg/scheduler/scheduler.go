// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/munin-mcp/munin/internal/memory"
)

// Persister receives a snapshot of the store after each consolidation pass.
type Persister interface {
	Save(mems []*memory.Memory) error
}

// Scheduler drives periodic consolidation of a memory store, optionally
// persisting a snapshot after every pass.
type Scheduler struct {
	store     *memory.Store
	persister Persister
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
	running   bool
}

// NewScheduler creates a scheduler. persister may be nil when snapshot
// persistence is disabled.
func NewScheduler(store *memory.Store, interval time.Duration, persister Persister) *Scheduler {
	return &Scheduler{
		store:     store,
		persister: persister,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the consolidation loop. A non-positive interval disables the
// scheduler entirely.
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		log.Printf("[SCHEDULER] consolidation disabled (interval %v)", s.interval)
		return
	}
	s.running = true

	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the consolidation loop. Safe to call more than once, and safe
// to call even if Start was never called.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.running = false
}

// Running reports whether the loop was started and not yet stopped.
func (s *Scheduler) Running() bool {
	return s.running
}

// runOnce executes a single consolidation pass and persists the result.
func (s *Scheduler) runOnce() {
	if err := s.store.Consolidate(); err != nil {
		log.Printf("[SCHEDULER] consolidation pass failed: %v", err)
		return
	}
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.store.Dump()); err != nil {
		log.Printf("[SCHEDULER] snapshot save failed: %v", err)
	}
}
