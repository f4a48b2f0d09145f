// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import "time"

// recencyCache is a bounded, time-expiring view over recently touched
// memory ids in one partition. It is a pure fast path: entries may be
// evicted at any time, but an id in the cache must always exist in the
// partition's primary map. Callers hold the store lock; the cache itself
// is not synchronized.
type recencyCache struct {
	capacity int
	ttl      time.Duration
	touched  map[string]time.Time
}

func newRecencyCache(capacity int, ttl time.Duration) *recencyCache {
	return &recencyCache{
		capacity: capacity,
		ttl:      ttl,
		touched:  map[string]time.Time{},
	}
}

// put records an id as recently touched, evicting the stalest entry when
// the cache is full.
func (c *recencyCache) put(id string, now time.Time) {
	if c.capacity <= 0 {
		return
	}
	if _, ok := c.touched[id]; !ok && len(c.touched) >= c.capacity {
		c.evictOldest()
	}
	c.touched[id] = now
}

// remove drops an id from the cache if present.
func (c *recencyCache) remove(id string) {
	delete(c.touched, id)
}

// ids returns the live (non-expired) cached ids, dropping expired entries
// as a side effect. Order is not significant; ranking happens later.
func (c *recencyCache) ids(now time.Time) []string {
	live := make([]string, 0, len(c.touched))
	for id, at := range c.touched {
		if c.ttl > 0 && now.Sub(at) > c.ttl {
			delete(c.touched, id)
			continue
		}
		live = append(live, id)
	}
	return live
}

func (c *recencyCache) evictOldest() {
	var oldestID string
	var oldestAt time.Time
	for id, at := range c.touched {
		if oldestID == "" || at.Before(oldestAt) {
			oldestID = id
			oldestAt = at
		}
	}
	if oldestID != "" {
		delete(c.touched, oldestID)
	}
}
