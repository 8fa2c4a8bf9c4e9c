// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package address

import "testing"

func testBairroDetector(cache *Cache) *Detector {
	return NewDetector("bairro", cache,
		func(a Standardized) string { return a.Bairro },
		func(a Standardized) string { return a.BairroCompleto })
}

func TestDetector_HasChanged(t *testing.T) {
	t.Run("an empty cache never reports a change", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		if detector.HasChanged() {
			t.Error("expected no change with an empty cache")
		}
	})
	t.Run("a single entry never reports a change", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro"})
		if detector.HasChanged() {
			t.Error("expected no change with a single entry")
		}
	})
	t.Run("a change is reported exactly once", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro"})
		cache.Insert(Standardized{Bairro: "Bela Vista"})
		if !detector.HasChanged() {
			t.Error("expected first call to report the change")
		}
		if detector.HasChanged() {
			t.Error("expected second call to suppress the notified change")
		}
		if detector.HasChanged() {
			t.Error("expected third call to suppress the notified change")
		}
	})
	t.Run("equal values report no change and keep no signature", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro"})
		cache.Insert(Standardized{Bairro: "Centro"})
		if detector.HasChanged() {
			t.Error("expected no change for equal values")
		}
		if detector.lastNotified != nil {
			t.Error("expected no signature bookkeeping for equal values")
		}
	})
	t.Run("two absent values are equal", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Logradouro: "Rua Direita"})
		cache.Insert(Standardized{Logradouro: "Rua da Praia"})
		if detector.HasChanged() {
			t.Error("expected no change when the field is absent on both sides")
		}
	})
	t.Run("a field emerging from absence is a change", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{})
		cache.Insert(Standardized{Bairro: "Centro"})
		if !detector.HasChanged() {
			t.Error("expected the emergence of the field to be a change")
		}
		if detector.HasChanged() {
			t.Error("expected the emergence to be reported only once")
		}
	})
	t.Run("a new transition after a notified one is reported again", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro"})
		cache.Insert(Standardized{Bairro: "Bela Vista"})
		if !detector.HasChanged() {
			t.Error("expected the first transition to be reported")
		}
		cache.Insert(Standardized{Bairro: "Liberdade"})
		if !detector.HasChanged() {
			t.Error("expected the second transition to be reported")
		}
		if detector.HasChanged() {
			t.Error("expected the second transition to be reported only once")
		}
	})
	t.Run("the callback fires once with the change details", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		var calls []ChangeDetails
		detector.SetCallback(func(details ChangeDetails) {
			calls = append(calls, details)
		})
		cache.Insert(Standardized{Bairro: "Centro", BairroCompleto: "Centro"})
		cache.Insert(Standardized{Bairro: "Bela Vista", BairroCompleto: "Bela Vista, Região Central"})
		detector.HasChanged()
		detector.HasChanged()
		if len(calls) != 1 {
			t.Fatalf("expected 1 callback invocation, got %d", len(calls))
		}
		if !calls[0].HasChanged {
			t.Error("expected callback details to report a change")
		}
		if calls[0].Previous.Value != "Centro" {
			t.Errorf("expected previous value to be %q, got %q", "Centro", calls[0].Previous.Value)
		}
		if calls[0].Current.Value != "Bela Vista" {
			t.Errorf("expected current value to be %q, got %q", "Bela Vista", calls[0].Current.Value)
		}
		if calls[0].Current.Display != "Bela Vista, Região Central" {
			t.Errorf("expected current display to be %q, got %q", "Bela Vista, Região Central", calls[0].Current.Display)
		}
	})
	t.Run("a nil callback disables notification but keeps dedup state", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro"})
		cache.Insert(Standardized{Bairro: "Bela Vista"})
		detector.SetCallback(nil)
		if !detector.HasChanged() {
			t.Error("expected the change to be reported without a callback")
		}
		calls := 0
		detector.SetCallback(func(ChangeDetails) { calls++ })
		if detector.HasChanged() {
			t.Error("expected the notified change to stay suppressed after setting a callback")
		}
		if calls != 0 {
			t.Errorf("expected no callback invocation, got %d", calls)
		}
	})
}

func TestDetector_ChangeDetails(t *testing.T) {
	t.Run("fewer than two entries yield no details", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		if _, ok := detector.ChangeDetails(); ok {
			t.Error("expected no details with an empty cache")
		}
		cache.Insert(Standardized{Bairro: "Centro"})
		if _, ok := detector.ChangeDetails(); ok {
			t.Error("expected no details with a single entry")
		}
	})
	t.Run("details do not consume the change", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro", BairroCompleto: "Centro"})
		cache.Insert(Standardized{Bairro: "Bela Vista", BairroCompleto: "Bela Vista, Região Central"})
		details, ok := detector.ChangeDetails()
		if !ok {
			t.Fatal("expected details to be derivable")
		}
		if !details.HasChanged {
			t.Error("expected details to report a change")
		}
		if details.Previous.Display != "Centro" {
			t.Errorf("expected previous display to be %q, got %q", "Centro", details.Previous.Display)
		}
		if !detector.HasChanged() {
			t.Error("expected the change to still be reportable after reading details")
		}
	})
	t.Run("details keep reporting after the edge is consumed", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro"})
		cache.Insert(Standardized{Bairro: "Bela Vista"})
		detector.HasChanged()
		details, ok := detector.ChangeDetails()
		if !ok {
			t.Fatal("expected details to be derivable")
		}
		if !details.HasChanged {
			t.Error("expected details to keep reporting the difference")
		}
	})
}

func TestDetector_Reset(t *testing.T) {
	t.Run("resetting replays the last change", func(t *testing.T) {
		cache := NewCache()
		detector := testBairroDetector(cache)
		cache.Insert(Standardized{Bairro: "Centro"})
		cache.Insert(Standardized{Bairro: "Bela Vista"})
		if !detector.HasChanged() {
			t.Error("expected the change to be reported")
		}
		detector.Reset()
		if !detector.HasChanged() {
			t.Error("expected the change to be reported again after reset")
		}
	})
}
