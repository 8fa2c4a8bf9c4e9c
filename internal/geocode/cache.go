// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/guiabr/guia/internal/geoloc"
)

// coordPrecision is the precision used to quantize coordinates (0.01 degrees ≈ 1.1 km)
const coordPrecision = 1e-2

type cacheKey struct {
	Provider string
	LatQ     int32
	LonQ     int32
}

type cacheEntry struct {
	Result RawResult
	Expiry time.Time
}

// CachedGeocoder wraps a Geocoder with an in-memory TTL cache keyed by
// quantized coordinates. Hits and misses use separate TTLs so unresolvable
// areas are retried sooner.
type CachedGeocoder struct {
	coder   Geocoder
	clock   clockwork.Clock
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
}

// NewCachedGeocoder returns a new CachedGeocoder wrapping the given Geocoder.
func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return NewCachedGeocoderWithClock(coder, ttlHit, ttlMiss, clockwork.NewRealClock())
}

// NewCachedGeocoderWithClock returns a new CachedGeocoder using the given
// clock for TTL expiry.
func NewCachedGeocoderWithClock(coder Geocoder, ttlHit, ttlMiss time.Duration, clock clockwork.Clock) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		clock:   clock,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		cache:   make(map[cacheKey]cacheEntry),
	}
}

// Name returns the name of the CachedGeocoder instance.
func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

// Reverse resolves the given coordinates, serving repeated lookups for nearby
// coordinates from the cache until the entry expires.
func (c *CachedGeocoder) Reverse(ctx context.Context, coords geoloc.Coordinates) (RawResult, error) {
	key := newKey(c.coder.Name(), coords.Latitude, coords.Longitude)

	c.mu.RLock()
	entry, ok := c.cache[key]
	if ok && c.clock.Now().Before(entry.Expiry) {
		result := entry.Result
		c.mu.RUnlock()
		result.CacheHit = true
		return result, nil
	}
	c.mu.RUnlock()

	result, err := c.coder.Reverse(ctx, coords)
	if err != nil {
		return result, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttlHit
	if !result.Found {
		ttl = c.ttlMiss
	}
	c.cache[key] = cacheEntry{
		Result: result,
		Expiry: c.clock.Now().Add(ttl),
	}

	return result, nil
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}

func newKey(provider string, lat, lon float64) cacheKey {
	return cacheKey{
		Provider: provider,
		LatQ:     quantizeCoord(lat),
		LonQ:     quantizeCoord(lon),
	}
}
