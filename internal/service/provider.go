// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"

	"github.com/guiabr/guia/internal/config"
	"github.com/guiabr/guia/internal/geoloc"
	"github.com/guiabr/guia/internal/geoloc/provider/geoclue"
	"github.com/guiabr/guia/internal/geoloc/provider/gpsd"
)

// newProvider selects the geolocation provider configured in the geolocation
// section. The variant set is closed, Validate rejects anything else.
func newProvider(conf *config.Config) (geoloc.Provider, error) {
	switch conf.Geolocation.Provider {
	case config.ProviderGeoClue:
		return geoclue.New(), nil
	case config.ProviderGPSD:
		return gpsd.New(conf.Geolocation.GPSDHost, conf.Geolocation.GPSDPort), nil
	case config.ProviderMock:
		return geoloc.NewMockProvider(geoloc.MockConfig{
			Supported:      true,
			PermissionsAPI: true,
			Delay:          conf.Geolocation.Mock.Delay,
			DefaultPosition: &geoloc.Position{
				Coords: geoloc.Coordinates{
					Latitude:  conf.Geolocation.Mock.Latitude,
					Longitude: conf.Geolocation.Mock.Longitude,
					Accuracy:  conf.Geolocation.Mock.Accuracy,
				},
			},
		}), nil
	default:
		return nil, fmt.Errorf("unknown geolocation provider: %s", conf.Geolocation.Provider)
	}
}
