// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geoclue implements the geolocation provider capability set on top
// of the GeoClue2 D-Bus service.
package geoclue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/guiabr/guia/internal/geoloc"
	"github.com/guiabr/guia/internal/vartype"
)

const (
	name = "geoclue"

	busName     = "org.freedesktop.GeoClue2"
	managerPath = "/org/freedesktop/GeoClue2/Manager"

	managerInterface  = "org.freedesktop.GeoClue2.Manager"
	clientInterface   = "org.freedesktop.GeoClue2.Client"
	locationInterface = "org.freedesktop.GeoClue2.Location"

	locationUpdatedMember = "LocationUpdated"

	// accuracyLevelExact requests the most precise fix GeoClue2 can deliver.
	accuracyLevelExact = uint32(8)

	desktopID = "guia"

	defaultTimeout   = time.Second * 30
	signalBufferSize = 8
)

type watch struct {
	cancel context.CancelFunc
}

// Provider is a GeoClue2-backed geolocation provider. Support is probed once
// at construction time by checking for the GeoClue2 service on the system bus.
type Provider struct {
	name      string
	supported bool

	mu      sync.Mutex
	nextID  int
	watches map[int]watch
}

// New returns a new GeoClue2-backed Provider.
func New() *Provider {
	provider := &Provider{
		name:    name,
		watches: make(map[int]watch),
	}
	provider.supported = provider.probe()
	return provider
}

// Name returns the name of the Provider instance.
func (p *Provider) Name() string {
	return p.name
}

// IsSupported reports whether the GeoClue2 service was reachable at construction time.
func (p *Provider) IsSupported() bool {
	return p.supported
}

// IsPermissionsAPISupported reports true; GeoClue2 mediates location access
// through its agent authorization.
func (p *Provider) IsPermissionsAPISupported() bool {
	return p.supported
}

// GetCurrentPosition starts a one-shot GeoClue2 client and delivers the first
// location update. On an unsupported provider the error callback is invoked
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

	pos, err := p.acquireOnce(ctx)
	if err != nil {
		if failure != nil {
			failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
		}
		return
	}
	if success != nil {
		success(pos)
	}
}

// WatchPosition starts a GeoClue2 client and delivers a position on every
// location update until the watch is cleared. The boolean return is false
// when the provider is unsupported and no watch was registered.
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

// probe checks whether the GeoClue2 service is present on the system bus.
func (p *Provider) probe() bool {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return false
	}
	defer func() { _ = conn.Close() }()

	var owner string
	err = conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, busName).Store(&owner)
	if err != nil {
		// The service might be activatable but not yet running.
		var activatable []string
		if err = conn.BusObject().Call("org.freedesktop.DBus.ListActivatableNames", 0).Store(&activatable); err != nil {
			return false
		}
		for _, v := range activatable {
			if v == busName {
				return true
			}
		}
		return false
	}
	return owner != ""
}

// acquireOnce starts a GeoClue2 client, waits for the first location update
// and stops the client again.
func (p *Provider) acquireOnce(ctx context.Context) (geoloc.Position, error) {
	var zero geoloc.Position

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return zero, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() { _ = conn.Close() }()

	clientPath, err := p.createClient(conn)
	if err != nil {
		return zero, err
	}

	sigCh := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(sigCh)
	if err = conn.AddMatchSignal(
		dbus.WithMatchInterface(clientInterface),
		dbus.WithMatchMember(locationUpdatedMember),
		dbus.WithMatchObjectPath(clientPath),
	); err != nil {
		return zero, fmt.Errorf("failed to subscribe to location updates: %w", err)
	}

	client := conn.Object(busName, clientPath)
	if err = client.Call(clientInterface+".Start", 0).Err; err != nil {
		return zero, fmt.Errorf("failed to start GeoClue2 client: %w", err)
	}
	defer func() { _ = client.Call(clientInterface+".Stop", 0).Err }()

	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case sgn, ok := <-sigCh:
			if !ok {
				return zero, fmt.Errorf("system bus connection closed")
			}
			locationPath, ok := locationFromSignal(sgn)
			if !ok {
				continue
			}
			return p.readLocation(conn, locationPath)
		}
	}
}

// watchLoop keeps a GeoClue2 client running and forwards location updates
// until the context ends.
func (p *Provider) watchLoop(ctx context.Context, success geoloc.SuccessFunc, failure geoloc.ErrorFunc) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		if failure != nil {
			failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
		}
		return
	}
	defer func() { _ = conn.Close() }()

	clientPath, err := p.createClient(conn)
	if err != nil {
		if failure != nil {
			failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
		}
		return
	}

	sigCh := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(sigCh)
	if err = conn.AddMatchSignal(
		dbus.WithMatchInterface(clientInterface),
		dbus.WithMatchMember(locationUpdatedMember),
		dbus.WithMatchObjectPath(clientPath),
	); err != nil {
		if failure != nil {
			failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
		}
		return
	}

	client := conn.Object(busName, clientPath)
	if err = client.Call(clientInterface+".Start", 0).Err; err != nil {
		if failure != nil {
			failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
		}
		return
	}
	defer func() { _ = client.Call(clientInterface+".Stop", 0).Err }()

	for {
		select {
		case <-ctx.Done():
			return
		case sgn, ok := <-sigCh:
			if !ok {
				if failure != nil {
					failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable,
						Message: "system bus connection closed"})
				}
				return
			}
			locationPath, ok := locationFromSignal(sgn)
			if !ok {
				continue
			}
			pos, err := p.readLocation(conn, locationPath)
			if err != nil {
				if failure != nil {
					failure(geoloc.PositionError{Code: geoloc.ErrCodePositionUnavailable, Message: err.Error()})
				}
				continue
			}
			if success != nil {
				success(pos)
			}
		}
	}
}

// createClient requests a client object from the GeoClue2 manager and
// configures it for exact accuracy.
func (p *Provider) createClient(conn *dbus.Conn) (dbus.ObjectPath, error) {
	var clientPath dbus.ObjectPath
	manager := conn.Object(busName, managerPath)
	if err := manager.Call(managerInterface+".GetClient", 0).Store(&clientPath); err != nil {
		return "", fmt.Errorf("failed to get GeoClue2 client: %w", err)
	}

	client := conn.Object(busName, clientPath)
	if err := client.SetProperty(clientInterface+".DesktopId", dbus.MakeVariant(desktopID)); err != nil {
		return "", fmt.Errorf("failed to set desktop id: %w", err)
	}
	if err := client.SetProperty(clientInterface+".RequestedAccuracyLevel",
		dbus.MakeVariant(accuracyLevelExact)); err != nil {
		return "", fmt.Errorf("failed to set requested accuracy level: %w", err)
	}

	return clientPath, nil
}

// readLocation reads the coordinate properties from a GeoClue2 location object.
func (p *Provider) readLocation(conn *dbus.Conn, path dbus.ObjectPath) (geoloc.Position, error) {
	var zero geoloc.Position
	location := conn.Object(busName, path)

	lat, err := locationProperty(location, "Latitude")
	if err != nil {
		return zero, err
	}
	lon, err := locationProperty(location, "Longitude")
	if err != nil {
		return zero, err
	}
	acc, err := locationProperty(location, "Accuracy")
	if err != nil {
		return zero, err
	}

	coords := geoloc.Coordinates{
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  acc,
	}

	// Altitude, speed and heading are optional and reported as negative or
	// unknown values when unavailable.
	if alt, err := locationProperty(location, "Altitude"); err == nil && alt != -1.7976931348623157e+308 {
		coords.Altitude = vartype.NewVariable(alt)
	}
	if speed, err := locationProperty(location, "Speed"); err == nil && speed >= 0 {
		coords.Speed = vartype.NewVariable(speed)
	}
	if heading, err := locationProperty(location, "Heading"); err == nil && heading >= 0 {
		coords.Heading = vartype.NewVariable(heading)
	}

	return geoloc.Position{Coords: coords, Timestamp: time.Now()}, nil
}

func locationProperty(obj dbus.BusObject, prop string) (float64, error) {
	variant, err := obj.GetProperty(locationInterface + "." + prop)
	if err != nil {
		return 0, fmt.Errorf("failed to get location property %s: %w", prop, err)
	}
	value, ok := variant.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected type for location property %s", prop)
	}
	return value, nil
}

// locationFromSignal extracts the new location object path from a
// LocationUpdated signal.
func locationFromSignal(sgn *dbus.Signal) (dbus.ObjectPath, bool) {
	if sgn == nil || sgn.Name != clientInterface+"."+locationUpdatedMember || len(sgn.Body) != 2 {
		return "", false
	}
	path, ok := sgn.Body[1].(dbus.ObjectPath)
	return path, ok
}
