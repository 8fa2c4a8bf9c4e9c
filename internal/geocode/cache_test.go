// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/guiabr/guia/internal/geoloc"
)

const (
	testHitTTL  = 6 * time.Hour
	testMissTTL = 15 * time.Minute
)

var testCoords = geoloc.Coordinates{Latitude: -18.4696, Longitude: -43.4953, Accuracy: 10}

var testResult = RawResult{
	Found:       true,
	Latitude:    -18.4696091,
	Longitude:   -43.4953982,
	DisplayName: "Rua Direita, Milho Verde, Serro, Minas Gerais, 39150-000, Brasil",
	Address: RawAddress{
		Street:        "Rua Direita",
		Neighbourhood: "Milho Verde",
		City:          "Serro",
		State:         "Minas Gerais",
		Postcode:      "39150-000",
		Country:       "Brasil",
		CountryCode:   "br",
	},
}

type mockGeocoder struct {
	calls int
}

func (c *mockGeocoder) Name() string { return "mock" }

func (c *mockGeocoder) Reverse(_ context.Context, coords geoloc.Coordinates) (RawResult, error) {
	c.calls++
	if coords.Latitude == 1 && coords.Longitude == -1 {
		return RawResult{}, errors.New("lookup intentionally failed")
	}
	result := testResult
	if coords.Latitude > 0 {
		result = RawResult{Found: false, Latitude: coords.Latitude, Longitude: coords.Longitude}
	}
	return result, nil
}

func TestNewCachedGeocoder(t *testing.T) {
	t.Run("a new geocoder should be returned", func(t *testing.T) {
		coder := NewCachedGeocoder(&mockGeocoder{}, testHitTTL, testMissTTL)
		if coder == nil {
			t.Fatal("expected a non-nil geocoder")
		}
		if coder.Name() != "geocoder cache using mock" {
			t.Errorf("expected geocoder name to be 'geocoder cache using mock', got %q", coder.Name())
		}
	})
}

func TestCachedGeocoder_Reverse(t *testing.T) {
	t.Run("a resolved address should be returned on a cache miss", func(t *testing.T) {
		coder := NewCachedGeocoder(&mockGeocoder{}, testHitTTL, testMissTTL)
		result, err := coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Found {
			t.Fatal("expected address to be found")
		}
		if result.CacheHit {
			t.Fatal("expected cache miss")
		}
		if !strings.EqualFold(result.DisplayName, testResult.DisplayName) {
			t.Errorf("expected address to be %q, got %q", testResult.DisplayName, result.DisplayName)
		}
	})
	t.Run("fetching results twice should hit the cache", func(t *testing.T) {
		mock := &mockGeocoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		if _, err := coder.Reverse(t.Context(), testCoords); err != nil {
			t.Fatal(err)
		}
		result, err := coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !result.CacheHit {
			t.Error("expected cached result")
		}
		if mock.calls != 1 {
			t.Errorf("expected 1 provider call, got %d", mock.calls)
		}
	})
	t.Run("nearby coordinates should share a cache entry", func(t *testing.T) {
		mock := &mockGeocoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		if _, err := coder.Reverse(t.Context(), testCoords); err != nil {
			t.Fatal(err)
		}
		nearby := testCoords
		nearby.Latitude += 0.001
		nearby.Longitude -= 0.001
		result, err := coder.Reverse(t.Context(), nearby)
		if err != nil {
			t.Fatal(err)
		}
		if !result.CacheHit {
			t.Error("expected cached result for nearby coordinates")
		}
		if mock.calls != 1 {
			t.Errorf("expected 1 provider call, got %d", mock.calls)
		}
	})
	t.Run("a cached hit should expire after the hit TTL", func(t *testing.T) {
		mock := &mockGeocoder{}
		clock := clockwork.NewFakeClock()
		coder := NewCachedGeocoderWithClock(mock, testHitTTL, testMissTTL, clock)
		if _, err := coder.Reverse(t.Context(), testCoords); err != nil {
			t.Fatal(err)
		}
		clock.Advance(testHitTTL - time.Second)
		result, err := coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !result.CacheHit {
			t.Error("expected cached result before expiry")
		}
		clock.Advance(2 * time.Second)
		result, err = coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if result.CacheHit {
			t.Error("expected expired entry to be refetched")
		}
		if mock.calls != 2 {
			t.Errorf("expected 2 provider calls, got %d", mock.calls)
		}
	})
	t.Run("an unresolved area should expire after the miss TTL", func(t *testing.T) {
		mock := &mockGeocoder{}
		clock := clockwork.NewFakeClock()
		coder := NewCachedGeocoderWithClock(mock, testHitTTL, testMissTTL, clock)
		unknown := geoloc.Coordinates{Latitude: 48.8588, Longitude: 2.2945}
		result, err := coder.Reverse(t.Context(), unknown)
		if err != nil {
			t.Fatal(err)
		}
		if result.Found {
			t.Fatal("expected address not to be found")
		}
		clock.Advance(testMissTTL + time.Second)
		result, err = coder.Reverse(t.Context(), unknown)
		if err != nil {
			t.Fatal(err)
		}
		if result.CacheHit {
			t.Error("expected miss entry to be refetched after the miss TTL")
		}
		if mock.calls != 2 {
			t.Errorf("expected 2 provider calls, got %d", mock.calls)
		}
	})
	t.Run("provider errors should not be cached", func(t *testing.T) {
		mock := &mockGeocoder{}
		coder := NewCachedGeocoder(mock, testHitTTL, testMissTTL)
		broken := geoloc.Coordinates{Latitude: 1, Longitude: -1}
		if _, err := coder.Reverse(t.Context(), broken); err == nil {
			t.Fatal("expected lookup to fail")
		}
		if _, err := coder.Reverse(t.Context(), broken); err == nil {
			t.Fatal("expected lookup to fail again")
		}
		if mock.calls != 2 {
			t.Errorf("expected 2 provider calls, got %d", mock.calls)
		}
	})
}
