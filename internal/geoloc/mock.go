// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoloc

import (
	"sync"
	"time"
)

// MockConfig configures a MockProvider.
type MockConfig struct {
	// DefaultPosition is delivered on GetCurrentPosition and on WatchPosition
	// registration when set.
	DefaultPosition *Position
	// DefaultError is delivered instead of DefaultPosition when set.
	DefaultError *PositionError
	// Supported controls whether positioning methods succeed or report an
	// unsupported provider.
	Supported bool
	// PermissionsAPI controls the IsPermissionsAPISupported report.
	PermissionsAPI bool
	// Delay is slept before a default payload is delivered, simulating the
	// latency of a real position acquisition.
	Delay time.Duration
}

type mockWatch struct {
	success SuccessFunc
	failure ErrorFunc
}

// MockProvider is a configurable test double for the Provider capability set.
// Watch callbacks can be driven manually via TriggerWatchUpdate and
// TriggerWatchError to simulate position updates without a real sensor.
type MockProvider struct {
	conf MockConfig

	mu      sync.Mutex
	nextID  int
	watches map[int]mockWatch
}

// NewMockProvider returns a new MockProvider with the given configuration.
func NewMockProvider(conf MockConfig) *MockProvider {
	return &MockProvider{
		conf:    conf,
		watches: make(map[int]mockWatch),
	}
}

// Name returns the name of the MockProvider instance.
func (p *MockProvider) Name() string {
	return "mock"
}

// GetCurrentPosition delivers the configured default payload after the
// configured delay. On an unsupported provider the error callback is invoked
// synchronously with an unsupported error.
func (p *MockProvider) GetCurrentPosition(success SuccessFunc, failure ErrorFunc, _ Options) {
	if !p.conf.Supported {
		if failure != nil {
			failure(Unsupported())
		}
		return
	}
	p.deliverDefault(success, failure)
}

// WatchPosition registers a watch and returns its id. The configured default
// payload is delivered once on registration. The boolean return is false when
// the provider is unsupported and no watch was registered.
func (p *MockProvider) WatchPosition(success SuccessFunc, failure ErrorFunc, _ Options) (int, bool) {
	if !p.conf.Supported {
		if failure != nil {
			failure(Unsupported())
		}
		return 0, false
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.watches[id] = mockWatch{success: success, failure: failure}
	p.mu.Unlock()

	p.deliverDefault(success, failure)
	return id, true
}

// ClearWatch removes the watch with the given id. Unknown ids are ignored.
func (p *MockProvider) ClearWatch(id int) {
	p.mu.Lock()
	delete(p.watches, id)
	p.mu.Unlock()
}

// IsSupported reports whether the provider supports positioning.
func (p *MockProvider) IsSupported() bool {
	return p.conf.Supported
}

// IsPermissionsAPISupported reports whether the provider supports permission queries.
func (p *MockProvider) IsPermissionsAPISupported() bool {
	return p.conf.PermissionsAPI
}

// TriggerWatchUpdate delivers the given position to all registered watches.
func (p *MockProvider) TriggerWatchUpdate(pos Position) {
	for _, w := range p.liveWatches() {
		if w.success != nil {
			w.success(pos)
		}
	}
}

// TriggerWatchError delivers the given error to all registered watches.
func (p *MockProvider) TriggerWatchError(perr PositionError) {
	for _, w := range p.liveWatches() {
		if w.failure != nil {
			w.failure(perr)
		}
	}
}

// WatchCount returns the number of currently registered watches.
func (p *MockProvider) WatchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watches)
}

func (p *MockProvider) liveWatches() []mockWatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	watches := make([]mockWatch, 0, len(p.watches))
	for _, w := range p.watches {
		watches = append(watches, w)
	}
	return watches
}

func (p *MockProvider) deliverDefault(success SuccessFunc, failure ErrorFunc) {
	if p.conf.Delay > 0 {
		time.Sleep(p.conf.Delay)
	}
	switch {
	case p.conf.DefaultError != nil:
		if failure != nil {
			failure(*p.conf.DefaultError)
		}
	case p.conf.DefaultPosition != nil:
		if success != nil {
			success(*p.conf.DefaultPosition)
		}
	}
}
