// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package gpsd implements the geolocation provider capability set on top of a
// local gpsd daemon.
package gpsd

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/guiabr/guia/internal/geoloc"
	"github.com/guiabr/guia/internal/vartype"
)

const (
	name = "gpsd"

	probeTimeout   = time.Second * 2
	defaultTimeout = time.Second * 10
	reconnectDelay = time.Second * 5

	fallbackAccuracy3DFix = 10  // ~10 m typical consumer GPS in open sky
	fallbackAccuracy2DFix = 25  // worse than 3D, but still accurate enough
	fallbackAccuracyNoFix = 1e6 // effectively unusable
)

type watch struct {
	cancel context.CancelFunc
}

// Provider is a gpsd-backed geolocation provider. Support is probed once at
// construction time, mirroring the static support report of the platform
// geolocation APIs.
type Provider struct {
	name      string
	addr      string
	supported bool

	mu      sync.Mutex
	nextID  int
	watches map[int]watch
}

// New returns a new gpsd-backed Provider for the given host and port.
func New(host, port string) *Provider {
	provider := &Provider{
		name:    name,
		addr:    net.JoinHostPort(host, port),
		watches: make(map[int]watch),
	}
	provider.supported = provider.probe()
	return provider
}

// Name returns the name of the Provider instance.
func (p *Provider) Name() string {
	return p.name
}

// IsSupported reports whether a gpsd daemon was reachable at construction time.
func (p *Provider) IsSupported() bool {
	return p.supported
}

// IsPermissionsAPISupported reports false; gpsd has no permission model.
func (p *Provider) IsPermissionsAPISupported() bool {
	return false
}

// GetCurrentPosition polls gpsd once and delivers the first fix with at least
// a 2D mode. On an unsupported provider the error callback is invoked
// synchronously with an unsupported error.
func (p *Provider) GetCurrentPosition(success geoloc.SuccessFunc, failure geoloc.ErrorFunc, opts geoloc.Options) {
	if !p.supported {
		if failure != nil {
			failure(geoloc.Unsupported())
		}
		return
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fix, err := pollFix(ctx, p.addr)
	if err != nil {
		if failure != nil {
			failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
		}
		return
	}
	if !fix.Has2DFix() {
		if failure != nil {
			failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: "no GPS fix available"})
		}
		return
	}
	if success != nil {
		success(fix.Position())
	}
}

// WatchPosition subscribes to the gpsd TPV stream and delivers a position on
// every significant fix change until the watch is cleared. The boolean return
// is false when the provider is unsupported and no watch was registered.
func (p *Provider) WatchPosition(success geoloc.SuccessFunc, failure geoloc.ErrorFunc, _ geoloc.Options) (int, bool) {
	if !p.supported {
		if failure != nil {
			failure(geoloc.Unsupported())
		}
		return 0, false
	}

	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.watches[id] = watch{cancel: cancel}
	p.mu.Unlock()

	go p.watchLoop(ctx, success, failure)
	return id, true
}

// ClearWatch stops the watch with the given id. Unknown ids are ignored.
func (p *Provider) ClearWatch(id int) {
	p.mu.Lock()
	w, ok := p.watches[id]
	if ok {
		delete(p.watches, id)
	}
	p.mu.Unlock()
	if ok {
		w.cancel()
	}
}

// watchLoop connects to gpsd and forwards TPV reports until the context ends,
// reconnecting with a delay when the connection drops.
func (p *Provider) watchLoop(ctx context.Context, success geoloc.SuccessFunc, failure geoloc.ErrorFunc) {
	state := geoloc.State{}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		session, err := gpsd.Dial(p.addr)
		if err != nil {
			if failure != nil {
				failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
				continue
			}
		}

		session.AddFilter("TPV", func(r interface{}) {
			tpv, ok := r.(*gpsd.TPVReport)
			if !ok {
				return
			}
			if tpv.Mode < gpsd.Mode2D {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}

			coords := coordsFromTPV(tpv)
			if !state.HasChanged(coords) {
				return
			}
			state.Update(coords)

			if success != nil {
				success(geoloc.Position{Coords: coords, Timestamp: time.Now()})
			}
		})

		// Watch() returns a channel that closes when the watch ends, e.g. on
		// a lost connection.
		done := session.Watch()

		select {
		case <-ctx.Done():
			return
		case <-done:
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// probe checks whether a gpsd daemon is listening on the configured address.
func (p *Provider) probe() bool {
	conn, err := net.DialTimeout("tcp", p.addr, probeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func coordsFromTPV(tpv *gpsd.TPVReport) geoloc.Coordinates {
	coords := geoloc.Coordinates{
		Latitude:  tpv.Lat,
		Longitude: tpv.Lon,
		Accuracy:  horizontalAccuracy(tpv.Epx, tpv.Epy, int(tpv.Mode)),
	}
	if tpv.Mode >= gpsd.Mode3D {
		coords.Altitude = vartype.NewVariable(tpv.Alt)
		coords.AltitudeAccuracy = vartype.NewVariable(tpv.Epv)
	}
	if tpv.Speed > 0 {
		coords.Speed = vartype.NewVariable(tpv.Speed)
	}
	if tpv.Track > 0 {
		coords.Heading = vartype.NewVariable(tpv.Track)
	}
	return coords
}

func horizontalAccuracy(epx, epy float64, mode int) float64 {
	if epx > 0 && epy > 0 {
		// sqrt(epx² + epy²)
		return hypot(epx, epy)
	}
	switch mode {
	case 3:
		return fallbackAccuracy3DFix
	case 2:
		return fallbackAccuracy2DFix
	default:
		return fallbackAccuracyNoFix
	}
}
