// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package nominatim implements reverse geocoding against the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/guiabr/guia/internal/geocode"
	"github.com/guiabr/guia/internal/geoloc"
	"github.com/guiabr/guia/internal/http"
)

const (
	// APIReverseEndpoint is the Nominatim reverse geocoding endpoint.
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"

	// APITimeout is the request timeout for Nominatim API calls.
	APITimeout = time.Second * 10

	name = "osm-nominatim"
)

// Nominatim is a geocode.Geocoder backed by the OSM Nominatim API.
type Nominatim struct {
	http *http.Client
	lang language.Tag
}

// ReverseResult is the raw jsonv2 response of the Nominatim reverse endpoint.
type ReverseResult struct {
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
	Error       string  `json:"error"`
}

// Address holds the address details part of a Nominatim response.
type Address struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

// New returns a new Nominatim geocoder using the given HTTP client and
// accept-language tag.
func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

// Name returns the name of the Nominatim geocoder.
func (n *Nominatim) Name() string {
	return name
}

// Reverse resolves the given coordinates into a raw address payload. When the
// API cannot geocode the coordinates, the result is returned with Found set
// to false instead of an error.
func (n *Nominatim) Reverse(ctx context.Context, coords geoloc.Coordinates) (geocode.RawResult, error) {
	var result ReverseResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", coords.Latitude))
	query.Set("lon", fmt.Sprintf("%f", coords.Longitude))
	query.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, APIReverseEndpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.RawResult{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}
	if result.Error != "" {
		return geocode.RawResult{Found: false}, nil
	}

	raw := geocode.RawResult{
		Found:       true,
		DisplayName: result.DisplayName,
		Address: geocode.RawAddress{
			Street:        result.Address.Road,
			HouseNumber:   result.Address.HouseNumber,
			Neighbourhood: result.Address.Neighbourhood,
			Suburb:        result.Address.Suburb,
			City:          result.Address.City,
			State:         result.Address.State,
			Postcode:      result.Address.Postcode,
			Country:       result.Address.Country,
			CountryCode:   result.Address.CountryCode,
		},
	}
	if result.Address.City == "" && result.Address.Town != "" {
		raw.Address.City = result.Address.Town
	}
	if result.Address.City == "" && result.Address.Town == "" && result.Address.Village != "" {
		raw.Address.City = result.Address.Village
	}
	raw.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.RawResult{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	raw.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.RawResult{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return raw, nil
}
