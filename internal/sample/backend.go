// Package sample simulates the flight and payment services with canned data
// and artificial latency, for demos and local development.
package sample

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
)

const (
	timeLayout = "2006-01-02 15:04"

	minID  = 100000
	idSpan = 900000
)

var (
	ErrFlightNotFound = errors.New("flight not found")
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrDeparted       = errors.New("flight has already departed")
)

type departure struct {
	airline    string
	code       string
	at         string
	minutes    int
	priceCents int64
	seats      int
}

var timetable = []departure{
	{airline: "SkyWings Airlines", code: "SW", at: "06:30", minutes: 95, priceCents: 19999, seats: 42},
	{airline: "Global Airways", code: "GA", at: "10:15", minutes: 110, priceCents: 24950, seats: 12},
	{airline: "Continental Express", code: "CE", at: "14:45", minutes: 85, priceCents: 15900, seats: 5},
	{airline: "Horizon Air", code: "HZ", at: "19:20", minutes: 100, priceCents: 21000, seats: 3},
}

// Backend answers searches from a fixed daily timetable and books against
// the offers it has handed out. Departures that have already left are not
// offered.
type Backend struct {
	delay time.Duration
	now   func() time.Time

	mu        sync.Mutex
	offers    map[int64]domain.FlightOffer
	routes    map[string]int64
	bookingID int64
}

func NewBackend(delay time.Duration) *Backend {
	return &Backend{
		delay:  delay,
		now:    time.Now,
		offers: make(map[int64]domain.FlightOffer),
		routes: make(map[string]int64),
	}
}

// WithClock replaces the clock used to hide departed flights.
func (b *Backend) WithClock(now func() time.Time) *Backend {
	b.now = now
	return b
}

func (b *Backend) SearchFlights(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResults, error) {
	if err := wait(ctx, b.delay); err != nil {
		return nil, err
	}

	outbound, err := b.day(criteria.Origin, criteria.Destination, criteria.DepartureDate)
	if err != nil {
		return nil, err
	}
	results := &domain.SearchResults{Outbound: outbound}
	if criteria.RoundTrip() && criteria.ReturnDate != "" {
		back, err := b.day(criteria.Destination, criteria.Origin, criteria.ReturnDate)
		if err != nil {
			return nil, err
		}
		results.Return = back
	}
	return results, nil
}

func (b *Backend) day(from, to, date string) ([]domain.FlightOffer, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	offers := make([]domain.FlightOffer, 0, len(timetable))
	for _, d := range timetable {
		clock, _ := time.Parse("15:04", d.at)
		departs := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
		if !departs.After(now) {
			continue
		}

		route := strings.ToLower(from) + "|" + strings.ToLower(to) + "|" + date + "|" + d.code
		if id, ok := b.routes[route]; ok {
			if known := b.offers[id]; known.AvailableSeats > 0 {
				offers = append(offers, known)
			}
			continue
		}

		id := b.allocateID(route)
		arrives := departs.Add(time.Duration(d.minutes) * time.Minute)
		offer := domain.FlightOffer{
			ID:             id,
			Airline:        d.airline,
			FlightNumber:   fmt.Sprintf("%s%03d", d.code, id%1000),
			DepartureCity:  from,
			ArrivalCity:    to,
			DepartureTime:  departs.Format(timeLayout),
			ArrivalTime:    arrives.Format(timeLayout),
			Duration:       fmt.Sprintf("%dh %dm", d.minutes/60, d.minutes%60),
			PriceCents:     d.priceCents,
			AvailableSeats: d.seats,
			TotalSeats:     180,
		}
		b.offers[id] = offer
		b.routes[route] = id
		offers = append(offers, offer)
	}
	return offers, nil
}

// allocateID hashes route into the six-digit id range, stepping past ids
// already handed to another route.
func (b *Backend) allocateID(route string) int64 {
	h := fnv.New32a()
	h.Write([]byte(route))
	id := int64(h.Sum32()%idSpan) + minID
	for {
		if _, taken := b.offers[id]; !taken {
			return id
		}
		id++
		if id >= minID+idSpan {
			id = minID
		}
	}
}

func (b *Backend) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	if err := wait(ctx, b.delay); err != nil {
		return nil, err
	}
	if req.SeatsBooked < 1 {
		return nil, errors.New("seats_booked must be at least 1")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	offer, ok := b.offers[req.FlightID]
	if !ok {
		return nil, ErrFlightNotFound
	}
	if departs, err := time.Parse(timeLayout, offer.DepartureTime); err == nil && !departs.After(b.now()) {
		return nil, ErrDeparted
	}
	if req.SeatsBooked > offer.AvailableSeats {
		return nil, fmt.Errorf("only %d seats available", offer.AvailableSeats)
	}
	offer.AvailableSeats -= req.SeatsBooked
	b.offers[offer.ID] = offer
	b.bookingID++

	return &domain.BookingResult{
		ID:              b.bookingID,
		Reference:       fmt.Sprintf("FLT%s-%06d", offer.FlightNumber, b.bookingID),
		Status:          domain.BookingStatusConfirmed,
		Timestamp:       b.now().Format("2006-01-02 15:04:05"),
		PassengerName:   req.PassengerName,
		FlightNumber:    offer.FlightNumber,
		DepartureCity:   offer.DepartureCity,
		ArrivalCity:     offer.ArrivalCity,
		DepartureTime:   offer.DepartureTime,
		SeatsBooked:     req.SeatsBooked,
		TotalPriceCents: offer.PriceCents * int64(req.SeatsBooked),
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
