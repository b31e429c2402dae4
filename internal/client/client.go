// Package client talks to the flight search and booking REST endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
)

const (
	searchPath  = "/flights/api/search/"
	bookingPath = "/booking/api/create/"
)

type SearchRequest struct {
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	TripType      string `json:"trip_type"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Infants       int    `json:"infants"`
}

type Flight struct {
	ID             int64   `json:"id"`
	FlightNumber   string  `json:"flight_number"`
	Airline        string  `json:"airline"`
	DepartureCity  string  `json:"departure_city"`
	ArrivalCity    string  `json:"arrival_city"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    string  `json:"arrival_time"`
	Duration       string  `json:"duration"`
	Price          float64 `json:"price"`
	AvailableSeats int     `json:"available_seats"`
	TotalSeats     int     `json:"total_seats"`
}

type SearchResponse struct {
	Success         bool     `json:"success"`
	TripType        string   `json:"trip_type,omitempty"`
	OutboundFlights []Flight `json:"outbound_flights"`
	ReturnFlights   []Flight `json:"return_flights,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type BookingRequest struct {
	FlightID        int64  `json:"flight_id"`
	PassengerName   string `json:"passenger_name"`
	PassengerEmail  string `json:"passenger_email"`
	PassengerPhone  string `json:"passenger_phone"`
	SeatsBooked     int    `json:"seats_booked"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

type Booking struct {
	ID               int64   `json:"id"`
	BookingReference string  `json:"booking_reference"`
	PassengerName    string  `json:"passenger_name"`
	FlightNumber     string  `json:"flight_number"`
	DepartureCity    string  `json:"departure_city"`
	ArrivalCity      string  `json:"arrival_city"`
	DepartureTime    string  `json:"departure_time"`
	SeatsBooked      int     `json:"seats_booked"`
	TotalPrice       float64 `json:"total_price"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
}

type BookingResponse struct {
	Success bool     `json:"success"`
	Booking *Booking `json:"booking,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// APIError is a request the service answered but refused.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service responded with status %d", e.StatusCode)
	}
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) SearchFlights(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResults, error) {
	req := SearchRequest{
		DepartureCity: criteria.Origin,
		ArrivalCity:   criteria.Destination,
		DepartureDate: criteria.DepartureDate,
		ReturnDate:    criteria.ReturnDate,
		TripType:      string(criteria.TripType),
		Adults:        criteria.Passengers.Adults,
		Children:      criteria.Passengers.Children,
		Infants:       criteria.Passengers.Infants,
	}

	var resp SearchResponse
	status, err := c.post(ctx, searchPath, req, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{StatusCode: status, Message: resp.Error}
	}

	results := &domain.SearchResults{Outbound: toOffers(resp.OutboundFlights)}
	if criteria.RoundTrip() {
		results.Return = toOffers(resp.ReturnFlights)
	}
	return results, nil
}

func (c *Client) CreateBooking(ctx context.Context, in domain.BookingRequest) (*domain.BookingResult, error) {
	var resp BookingResponse
	status, err := c.post(ctx, bookingPath, BookingRequest(in), &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Booking == nil {
		return nil, &APIError{StatusCode: status, Message: resp.Error}
	}

	b := resp.Booking
	return &domain.BookingResult{
		ID:              b.ID,
		Reference:       b.BookingReference,
		Status:          domain.BookingStatus(b.Status),
		Timestamp:       b.CreatedAt,
		PassengerName:   b.PassengerName,
		FlightNumber:    b.FlightNumber,
		DepartureCity:   b.DepartureCity,
		ArrivalCity:     b.ArrivalCity,
		DepartureTime:   b.DepartureTime,
		SeatsBooked:     b.SeatsBooked,
		TotalPriceCents: domain.CentsFromAmount(b.TotalPrice),
	}, nil
}

// post sends body as JSON and decodes the reply into out. Error statuses
// still carry a JSON body, so the status code is returned for the caller to
// report alongside the service's message.
func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return resp.StatusCode, &APIError{StatusCode: resp.StatusCode}
		}
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func toOffers(flights []Flight) []domain.FlightOffer {
	offers := make([]domain.FlightOffer, 0, len(flights))
	for _, f := range flights {
		offers = append(offers, domain.FlightOffer{
			ID:             f.ID,
			Airline:        f.Airline,
			FlightNumber:   f.FlightNumber,
			DepartureCity:  f.DepartureCity,
			ArrivalCity:    f.ArrivalCity,
			DepartureTime:  f.DepartureTime,
			ArrivalTime:    f.ArrivalTime,
			Duration:       f.Duration,
			PriceCents:     domain.CentsFromAmount(f.Price),
			AvailableSeats: f.AvailableSeats,
			TotalSeats:     f.TotalSeats,
		})
	}
	return offers
}
