package domain

import (
	"fmt"
	"math"
)

// FlightOffer is a priced, bookable flight returned by a search.
type FlightOffer struct {
	ID             int64  `json:"id"`
	Airline        string `json:"airline"`
	FlightNumber   string `json:"flight_number"`
	DepartureCity  string `json:"departure_city"`
	ArrivalCity    string `json:"arrival_city"`
	DepartureTime  string `json:"departure_time"`
	ArrivalTime    string `json:"arrival_time"`
	Duration       string `json:"duration"`
	PriceCents     int64  `json:"price_cents"`
	AvailableSeats int    `json:"available_seats"`
	TotalSeats     int    `json:"total_seats,omitempty"`
}

// TotalCents prices the offer for the given travellers.
func (f FlightOffer) TotalCents(p PassengerCounts) int64 {
	return f.PriceCents * int64(p.Seats())
}

// SearchResults holds the offers of the last successful search.
type SearchResults struct {
	Outbound []FlightOffer `json:"outbound"`
	Return   []FlightOffer `json:"return"`
}

func (r *SearchResults) FindOutbound(id int64) (FlightOffer, bool) {
	if r == nil {
		return FlightOffer{}, false
	}
	for _, f := range r.Outbound {
		if f.ID == id {
			return f, true
		}
	}
	return FlightOffer{}, false
}

func CentsFromAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func AmountFromCents(cents int64) float64 {
	return float64(cents) / 100
}

// FormatPrice renders cents as a decimal amount, e.g. 59997 -> "599.97".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
