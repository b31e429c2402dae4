package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/Domenick1991/flightwizard/internal/storage"
)

type FlightUseCase interface {
	SearchFlights(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResults, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error)
}

// Gateway is the upstream flight service, REST or simulated.
type Gateway interface {
	SearchFlights(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResults, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FlightService serves repeated searches from a short-lived cache. Bookings
// always go upstream and invalidate nothing: seat counts in cached results
// may lag by up to cacheTTL, and the upstream service has the final say.
type FlightService struct {
	gateway  Gateway
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewFlightService(gateway Gateway, cache Cache, cacheTTL time.Duration, logger *slog.Logger) *FlightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlightService{gateway: gateway, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *FlightService) SearchFlights(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResults, error) {
	key := searchKey(criteria)
	if s.cache != nil && s.cacheTTL > 0 {
		if cached, ok := s.cached(ctx, key); ok {
			return cached, nil
		}
	}

	results, err := s.gateway.SearchFlights(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(results); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache search results", "key", key, "error", err)
			}
		}
	}
	return results, nil
}

func (s *FlightService) cached(ctx context.Context, key string) (*domain.SearchResults, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("search cache unavailable", "key", key, "error", err)
		}
		return nil, false
	}
	var results domain.SearchResults
	if err := json.Unmarshal(data, &results); err != nil {
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return &results, true
}

func (s *FlightService) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	return s.gateway.CreateBooking(ctx, req)
}

func searchKey(c domain.SearchCriteria) string {
	return fmt.Sprintf("cache:search:%s:%s:%s:%s:%s:%d:%d:%d",
		strings.ToLower(c.Origin), strings.ToLower(c.Destination),
		c.DepartureDate, c.ReturnDate, c.TripType,
		c.Passengers.Adults, c.Passengers.Children, c.Passengers.Infants)
}

var _ FlightUseCase = (*FlightService)(nil)
