// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoloc

import "math"

// TruncPrecision is the decimal precision positions are truncated to before
// change comparison (4 decimal places ≈ 11 m).
const TruncPrecision = 4

// Truncate cuts the given float down to the given decimal precision.
func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}

// Valid checks if the coordinates are valid according to the EPSG logic.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// State tracks the last seen position fix and reports whether a new fix
// represents a positional change at truncated precision. Accuracy changes
// alone are not considered positional changes.
type State struct {
	last     Coordinates
	haveLast bool
}

// HasChanged reports whether the given coordinates differ from the last
// stored fix. An empty state always reports a change.
func (s *State) HasChanged(c Coordinates) bool {
	if !s.haveLast {
		return true
	}
	return Truncate(c.Latitude, TruncPrecision) != Truncate(s.last.Latitude, TruncPrecision) ||
		Truncate(c.Longitude, TruncPrecision) != Truncate(s.last.Longitude, TruncPrecision)
}

// Update stores the given coordinates as the last seen fix.
func (s *State) Update(c Coordinates) {
	s.last = c
	s.haveLast = true
}
