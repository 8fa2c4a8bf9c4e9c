// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the geolocation provider, the reverse geocoder and
// the address change detection into a long-running watch loop.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/guiabr/guia/internal/address"
	"github.com/guiabr/guia/internal/config"
	"github.com/guiabr/guia/internal/geocode"
	nominatim "github.com/guiabr/guia/internal/geocode/provider/osm-nominatim"
	"github.com/guiabr/guia/internal/geoloc"
	"github.com/guiabr/guia/internal/http"
	"github.com/guiabr/guia/internal/logger"
	"github.com/guiabr/guia/internal/presenter"
)

// Service tracks the visitor's position, resolves it to a standardized
// Brazilian address and announces neighborhood and street changes.
type Service struct {
	config    *config.Config
	logger    *logger.Logger
	localizer *spreak.Localizer
	presenter *presenter.Presenter
	provider  geoloc.Provider
	geocoder  geocode.Geocoder
	manager   *address.Manager
	scheduler gocron.Scheduler
	output    io.Writer

	positionLock sync.Mutex
	position     geoloc.State
	updatedAt    time.Time
}

// New creates a Service from the given configuration. The geolocation
// provider is selected from the geolocation section, reverse geocoding goes
// through the TTL cache in front of the Nominatim API.
func New(conf *config.Config, log *logger.Logger, localizer *spreak.Localizer) (*Service, error) {
	provider, err := newProvider(conf)
	if err != nil {
		return nil, err
	}

	lang := language.Make(conf.Locale)
	if lang == language.Und {
		lang = language.English
	}
	coder := geocode.NewCachedGeocoder(
		nominatim.New(http.New(log), lang),
		conf.Geocoder.CacheTTLHit,
		conf.Geocoder.CacheTTLMiss,
	)

	return newService(conf, log, localizer, lang, provider, coder)
}

// newService finishes the wiring with explicit collaborators. Tests use it to
// inject a mock provider and geocoder.
func newService(conf *config.Config, log *logger.Logger, localizer *spreak.Localizer, lang language.Tag,
	provider geoloc.Provider, coder geocode.Geocoder,
) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		localizer: localizer,
		presenter: presenter.New(localizer, lang),
		provider:  provider,
		geocoder:  coder,
		manager:   address.NewManager(log),
		scheduler: scheduler,
		output:    os.Stdout,
	}
	service.registerChangeCallbacks()
	return service, nil
}

// Run starts the scheduled jobs and the position watch and blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info(s.localizer.Get("starting guia service"),
		slog.String("provider", s.provider.Name()), slog.String("geocoder", s.geocoder.Name()))

	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.printAddress,
		"address_output_job"); err != nil {
		return err
	}
	if err := s.createScheduledJob(ctx, s.config.Intervals.PositionRefresh, s.refreshPosition,
		"position_refresh_job"); err != nil {
		return err
	}
	s.scheduler.Start()

	watchID, watching := s.provider.WatchPosition(
		func(pos geoloc.Position) { s.handlePosition(ctx, pos) },
		s.handlePositionError,
		geoloc.Options{EnableHighAccuracy: true},
	)
	if !watching {
		// The refresh job keeps polling GetCurrentPosition as a fallback.
		s.logger.Warn("position watch unavailable, falling back to periodic polling",
			slog.String("provider", s.provider.Name()))
	}

	<-ctx.Done()
	s.logger.Info(s.localizer.Get("shutting down guia service"))
	if watching {
		s.provider.ClearWatch(watchID)
	}
	return s.scheduler.Shutdown()
}

// registerChangeCallbacks hooks the bairro and logradouro detectors up to
// localized announcements. The callbacks fire inline from the manager's
// insert-time evaluation.
func (s *Service) registerChangeCallbacks() {
	s.manager.SetBairroChangeCallback(func(details address.ChangeDetails) {
		s.logger.Info("neighborhood changed",
			slog.String("previous", details.Previous.Value), slog.String("current", details.Current.Value))
		fmt.Fprintln(s.output, s.presenter.BairroChange(details))
		fmt.Fprintln(s.output, s.presenter.Arrival(details.Current.Display))
	})
	s.manager.SetLogradouroChangeCallback(func(details address.ChangeDetails) {
		s.logger.Info("street changed",
			slog.String("previous", details.Previous.Value), slog.String("current", details.Current.Value))
		fmt.Fprintln(s.output, s.presenter.LogradouroChange(details))
	})
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// refreshPosition polls the current position once. It is scheduled as a
// safety net for stalled watch updates.
func (s *Service) refreshPosition(ctx context.Context) {
	s.provider.GetCurrentPosition(
		func(pos geoloc.Position) { s.handlePosition(ctx, pos) },
		s.handlePositionError,
		geoloc.Options{EnableHighAccuracy: true},
	)
}

// handlePosition applies a position update. Updates that do not move the
// truncated coordinates are dropped before any reverse geocoding happens.
func (s *Service) handlePosition(ctx context.Context, pos geoloc.Position) {
	if !pos.Coords.Valid() {
		s.logger.Debug("dropping invalid coordinates",
			slog.Float64("lat", pos.Coords.Latitude), slog.Float64("lon", pos.Coords.Longitude))
		return
	}

	s.positionLock.Lock()
	if !s.position.HasChanged(pos.Coords) {
		s.positionLock.Unlock()
		return
	}
	s.position.Update(pos.Coords)
	s.positionLock.Unlock()

	result, err := s.geocoder.Reverse(ctx, pos.Coords)
	if err != nil {
		s.logger.Error("failed to reverse geocode position", logger.Err(err))
		return
	}
	if !result.Found {
		s.logger.Debug("position could not be resolved to an address",
			slog.Float64("lat", pos.Coords.Latitude), slog.Float64("lon", pos.Coords.Longitude))
		return
	}

	// Change callbacks fire synchronously inside this call.
	addr := s.manager.GetBrazilianStandardAddress(result.Address)
	s.logger.Debug("address resolved",
		slog.String("bairro", addr.BairroCompleto), slog.String("logradouro", addr.Logradouro),
		slog.Bool("cache_hit", result.CacheHit))

	updated := pos.Timestamp
	if updated.IsZero() {
		updated = time.Now()
	}
	s.positionLock.Lock()
	s.updatedAt = updated
	s.positionLock.Unlock()

	s.printAddress(ctx)
}

func (s *Service) handlePositionError(perr geoloc.PositionError) {
	s.logger.Error("position update failed",
		slog.Int("code", perr.Code), slog.String("message", perr.Message))
}

// printAddress renders the most recent address card to the output writer.
func (s *Service) printAddress(context.Context) {
	addr, ok := s.manager.LastAddress()
	if !ok {
		return
	}
	s.positionLock.Lock()
	updated := s.updatedAt
	s.positionLock.Unlock()
	fmt.Fprint(s.output, s.presenter.AddressCard(addr, updated))
}
