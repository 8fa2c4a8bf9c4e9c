// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package address converts raw reverse geocoding payloads into standardized
// Brazilian address records and detects when tracked address components
// change between position updates.
package address

import (
	"fmt"

	"github.com/guiabr/guia/internal/geocode"
)

// Standardized is the canonical Brazilian address record derived from a raw
// reverse geocoding payload. Absent components are empty strings.
type Standardized struct {
	Logradouro     string
	Numero         string
	Bairro         string
	BairroCompleto string
	Cidade         string
	Estado         string
	CEP            string
	Pais           string
	PaisCodigo     string
}

// Standardize derives a Standardized address from the given raw payload. It
// is a total function, any absent input field maps to an empty output field.
func Standardize(raw geocode.RawAddress) Standardized {
	return Standardized{
		Logradouro:     raw.Street,
		Numero:         raw.HouseNumber,
		Bairro:         raw.Neighbourhood,
		BairroCompleto: bairroCompleto(raw.Neighbourhood, raw.Suburb),
		Cidade:         raw.City,
		Estado:         raw.State,
		CEP:            raw.Postcode,
		Pais:           raw.Country,
		PaisCodigo:     raw.CountryCode,
	}
}

// bairroCompleto combines the primary neighbourhood with the suburb into the
// composite display value.
func bairroCompleto(bairro, suburb string) string {
	switch {
	case bairro != "" && suburb != "":
		return fmt.Sprintf("%s, %s", bairro, suburb)
	case bairro == "" && suburb != "":
		return suburb
	default:
		return bairro
	}
}
