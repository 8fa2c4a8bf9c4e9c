// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package address

import (
	"sync"

	"github.com/guiabr/guia/internal/geocode"
	"github.com/guiabr/guia/internal/logger"
)

// Manager is the facade over the standardizer, the address cache and the
// per-field change detectors. It serializes all access, the cache and the
// detectors themselves are unsynchronized. Change callbacks run while the
// manager lock is held and must not call back into the manager.
type Manager struct {
	log *logger.Logger

	mu         sync.Mutex
	cache      *Cache
	bairro     *Detector
	logradouro *Detector
}

// NewManager returns a Manager with an empty cache and fresh detectors for
// the bairro and logradouro fields.
func NewManager(log *logger.Logger) *Manager {
	cache := NewCache()
	return &Manager{
		log:   log,
		cache: cache,
		bairro: NewDetector("bairro", cache,
			func(a Standardized) string { return a.Bairro },
			func(a Standardized) string { return a.BairroCompleto }),
		logradouro: NewDetector("logradouro", cache,
			func(a Standardized) string { return a.Logradouro },
			func(a Standardized) string { return a.Logradouro }),
	}
}

// GetBrazilianStandardAddress standardizes the given raw payload, appends it
// to the cache and evaluates every detector so registered callbacks fire
// synchronously during the insert. A poll of HasBairroChanged or
// HasLogradouroChanged right after the insert returns false, the insert-time
// evaluation already consumed the edge.
func (m *Manager) GetBrazilianStandardAddress(raw geocode.RawAddress) Standardized {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, current := m.cache.Insert(Standardize(raw))
	for _, detector := range []*Detector{m.bairro, m.logradouro} {
		if detector.HasChanged() {
			m.log.Debug("address field changed", "field", detector.Name())
		}
	}
	return current
}

// HasBairroChanged reports a not yet notified bairro change between the last
// two cached addresses. Like Detector.HasChanged it consumes the edge.
func (m *Manager) HasBairroChanged() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bairro.HasChanged()
}

// HasLogradouroChanged reports a not yet notified logradouro change between
// the last two cached addresses. Like Detector.HasChanged it consumes the
// edge.
func (m *Manager) HasLogradouroChanged() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logradouro.HasChanged()
}

// BairroChangeDetails re-derives the bairro comparison of the last two
// cached addresses without consuming the edge.
func (m *Manager) BairroChangeDetails() (ChangeDetails, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bairro.ChangeDetails()
}

// LogradouroChangeDetails re-derives the logradouro comparison of the last
// two cached addresses without consuming the edge.
func (m *Manager) LogradouroChangeDetails() (ChangeDetails, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logradouro.ChangeDetails()
}

// SetBairroChangeCallback registers the callback invoked on a confirmed
// bairro change. A nil callback disables notification.
func (m *Manager) SetBairroChangeCallback(cb ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bairro.SetCallback(cb)
}

// SetLogradouroChangeCallback registers the callback invoked on a confirmed
// logradouro change. A nil callback disables notification.
func (m *Manager) SetLogradouroChangeCallback(cb ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logradouro.SetCallback(cb)
}

// LastAddress returns the most recently cached address. The second return
// value is false when the cache is empty.
func (m *Manager) LastAddress() (Standardized, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, curr := m.cache.LastTwo()
	if curr == nil {
		return Standardized{}, false
	}
	return *curr, true
}

// CacheSize returns the number of cached addresses.
func (m *Manager) CacheSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Size()
}

// ClearCache drops the cached address history. Detector signatures are kept,
// use ResetDetectors for a full restart.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Clear()
}

// ResetDetectors clears the last notified signature of every detector.
func (m *Manager) ResetDetectors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bairro.Reset()
	m.logradouro.Reset()
}
