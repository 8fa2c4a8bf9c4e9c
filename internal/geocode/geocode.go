// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode defines the reverse geocoding contract and the raw address
// payload shape shared by all geocoder implementations.
package geocode

import (
	"context"

	"github.com/guiabr/guia/internal/geoloc"
)

// RawAddress is the raw address component bag as emitted by the reverse
// geocoding provider. Every field is optional; absent components are empty.
type RawAddress struct {
	Street        string `json:"street"`
	HouseNumber   string `json:"house_number"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

// RawResult is a raw reverse geocoding result.
type RawResult struct {
	Found       bool
	CacheHit    bool
	Latitude    float64
	Longitude   float64
	DisplayName string
	Address     RawAddress
}

// Geocoder resolves coordinates into a raw address payload.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords geoloc.Coordinates) (RawResult, error)
}
