// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geoloc defines the geolocation provider capability set and its
// common position types. Implementations deliver positions via callbacks,
// mirroring the platform geolocation APIs they wrap. Errors are always
// signalled through the error callback, never via panics or return values.
package geoloc

import (
	"time"

	"github.com/guiabr/guia/internal/vartype"
)

// Position error codes.
const (
	ErrCodeUnsupported         = 0
	ErrCodePermissionDenied    = 1
	ErrCodePositionUnavailable = 2
	ErrCodeTimeout             = 3
)

// UnsupportedMessage is the message delivered when a positioning method is
// called on an unsupported provider.
const UnsupportedMessage = "Geolocation is not supported"

// Coordinates represents a geographic position fix. Altitude, heading and
// speed are optional and tracked with an explicit set state.
type Coordinates struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64

	Altitude         vartype.VarFloat64
	AltitudeAccuracy vartype.VarFloat64
	Heading          vartype.VarFloat64
	Speed            vartype.VarFloat64
}

// Position couples a coordinate fix with the time it was acquired.
type Position struct {
	Coords    Coordinates
	Timestamp time.Time
}

// PositionError describes a failed position acquisition.
type PositionError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e PositionError) Error() string {
	return e.Message
}

// Unsupported returns the PositionError delivered by providers that do not
// support positioning.
func Unsupported() PositionError {
	return PositionError{Code: ErrCodeUnsupported, Message: UnsupportedMessage}
}

// SuccessFunc receives an acquired position.
type SuccessFunc func(Position)

// ErrorFunc receives a position acquisition failure.
type ErrorFunc func(PositionError)

// Options control a position request.
type Options struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// Provider is the capability set every geolocation provider implements. On an
// unsupported provider every positioning method invokes the error callback
// synchronously with an ErrCodeUnsupported error.
type Provider interface {
	Name() string
	GetCurrentPosition(success SuccessFunc, failure ErrorFunc, opts Options)
	WatchPosition(success SuccessFunc, failure ErrorFunc, opts Options) (int, bool)
	ClearWatch(id int)
	IsSupported() bool
	IsPermissionsAPISupported() bool
}
