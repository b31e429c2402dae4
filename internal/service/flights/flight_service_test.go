package flights

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/Domenick1991/flightwizard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SearchFlights(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResults, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResults), args.Error(1)
}

func (m *MockGateway) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingResult), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var criteria = domain.SearchCriteria{
	Origin:        "Lagos",
	Destination:   "Abuja",
	DepartureDate: "2026-11-02",
	TripType:      domain.TripOneWay,
	Passengers:    domain.PassengerCounts{Adults: 2, Children: 1},
}

const expectedKey = "cache:search:lagos:abuja:2026-11-02::one-way:2:1:0"

func results() *domain.SearchResults {
	return &domain.SearchResults{
		Outbound: []domain.FlightOffer{{ID: 11, FlightNumber: "SW101", PriceCents: 19999, AvailableSeats: 42}},
		Return:   []domain.FlightOffer{},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFlightService_SearchFlights_CacheMiss(t *testing.T) {
	gateway := &MockGateway{}
	cache := &MockCache{}
	service := NewFlightService(gateway, cache, time.Minute, quietLogger())
	ctx := context.Background()

	payload, err := json.Marshal(results())
	require.NoError(t, err)

	cache.On("Get", ctx, expectedKey).Return(nil, storage.ErrNotFound)
	gateway.On("SearchFlights", ctx, criteria).Return(results(), nil)
	cache.On("Set", ctx, expectedKey, payload, time.Minute).Return(nil)

	got, err := service.SearchFlights(ctx, criteria)

	assert.NoError(t, err)
	assert.Equal(t, results(), got)
	gateway.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestFlightService_SearchFlights_CacheHit(t *testing.T) {
	gateway := &MockGateway{}
	cache := &MockCache{}
	service := NewFlightService(gateway, cache, time.Minute, quietLogger())
	ctx := context.Background()

	payload, err := json.Marshal(results())
	require.NoError(t, err)
	cache.On("Get", ctx, expectedKey).Return(payload, nil)

	got, err := service.SearchFlights(ctx, criteria)

	assert.NoError(t, err)
	assert.Equal(t, results(), got)
	gateway.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
}

func TestFlightService_SearchFlights_CorruptCacheEntry(t *testing.T) {
	gateway := &MockGateway{}
	cache := &MockCache{}
	service := NewFlightService(gateway, cache, time.Minute, quietLogger())
	ctx := context.Background()

	cache.On("Get", ctx, expectedKey).Return([]byte("{"), nil)
	cache.On("Delete", ctx, expectedKey).Return(nil)
	gateway.On("SearchFlights", ctx, criteria).Return(results(), nil)
	cache.On("Set", ctx, expectedKey, mock.Anything, time.Minute).Return(nil)

	got, err := service.SearchFlights(ctx, criteria)

	assert.NoError(t, err)
	assert.Len(t, got.Outbound, 1)
	cache.AssertExpectations(t)
}

func TestFlightService_SearchFlights_CacheDown(t *testing.T) {
	gateway := &MockGateway{}
	cache := &MockCache{}
	service := NewFlightService(gateway, cache, time.Minute, quietLogger())
	ctx := context.Background()

	cache.On("Get", ctx, expectedKey).Return(nil, errors.New("connection refused"))
	gateway.On("SearchFlights", ctx, criteria).Return(results(), nil)
	cache.On("Set", ctx, expectedKey, mock.Anything, time.Minute).Return(errors.New("connection refused"))

	got, err := service.SearchFlights(ctx, criteria)

	assert.NoError(t, err, "a broken cache never fails the search")
	assert.Len(t, got.Outbound, 1)
}

func TestFlightService_SearchFlights_GatewayError(t *testing.T) {
	gateway := &MockGateway{}
	cache := &MockCache{}
	service := NewFlightService(gateway, cache, time.Minute, quietLogger())
	ctx := context.Background()

	cache.On("Get", ctx, expectedKey).Return(nil, storage.ErrNotFound)
	gateway.On("SearchFlights", ctx, criteria).Return(nil, errors.New("timeout"))

	got, err := service.SearchFlights(ctx, criteria)

	assert.Nil(t, got)
	assert.EqualError(t, err, "timeout")
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_SearchFlights_NoCache(t *testing.T) {
	gateway := &MockGateway{}
	service := NewFlightService(gateway, nil, time.Minute, nil)
	ctx := context.Background()

	gateway.On("SearchFlights", ctx, criteria).Return(results(), nil).Twice()

	_, err := service.SearchFlights(ctx, criteria)
	require.NoError(t, err)
	_, err = service.SearchFlights(ctx, criteria)
	require.NoError(t, err)

	gateway.AssertExpectations(t)
}

func TestFlightService_CreateBooking(t *testing.T) {
	gateway := &MockGateway{}
	cache := &MockCache{}
	service := NewFlightService(gateway, cache, time.Minute, quietLogger())
	ctx := context.Background()

	req := domain.BookingRequest{FlightID: 11, PassengerName: "Ada Obi", SeatsBooked: 3}
	gateway.On("CreateBooking", ctx, req).Return(&domain.BookingResult{Reference: "BK7Q2X9L"}, nil)

	booking, err := service.CreateBooking(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "BK7Q2X9L", booking.Reference)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
