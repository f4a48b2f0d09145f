// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecencyCache_PutAndIDs(t *testing.T) {
	now := time.Now()
	c := newRecencyCache(4, time.Hour)

	c.put("a", now)
	c.put("b", now)

	assert.ElementsMatch(t, []string{"a", "b"}, c.ids(now))
}

func TestRecencyCache_EvictsOldestWhenFull(t *testing.T) {
	now := time.Now()
	c := newRecencyCache(2, time.Hour)

	c.put("a", now)
	c.put("b", now.Add(time.Second))
	c.put("c", now.Add(2*time.Second))

	assert.ElementsMatch(t, []string{"b", "c"}, c.ids(now.Add(2*time.Second)))
}

func TestRecencyCache_RefreshDoesNotEvict(t *testing.T) {
	now := time.Now()
	c := newRecencyCache(2, time.Hour)

	c.put("a", now)
	c.put("b", now.Add(time.Second))
	// Touching an id already in the cache must not push anything out.
	c.put("a", now.Add(2*time.Second))

	assert.ElementsMatch(t, []string{"a", "b"}, c.ids(now.Add(2*time.Second)))
}

func TestRecencyCache_ExpiresByTTL(t *testing.T) {
	now := time.Now()
	c := newRecencyCache(4, time.Hour)

	c.put("stale", now.Add(-2*time.Hour))
	c.put("fresh", now)

	assert.Equal(t, []string{"fresh"}, c.ids(now))
	// Expired entries are dropped for good, not just filtered.
	assert.Len(t, c.touched, 1)
}

func TestRecencyCache_Remove(t *testing.T) {
	now := time.Now()
	c := newRecencyCache(4, time.Hour)

	c.put("a", now)
	c.remove("a")
	c.remove("never-there")

	assert.Empty(t, c.ids(now))
}
