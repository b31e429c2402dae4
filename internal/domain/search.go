package domain

import (
	"fmt"
	"strings"
)

type TripType string

const (
	TripOneWay    TripType = "one-way"
	TripRoundTrip TripType = "round-trip"
)

const DateLayout = "2006-01-02"

const (
	MaxSeats    = 9
	MinAdults   = 1
	MaxChildren = MaxSeats - MinAdults
)

type PassengerKind string

const (
	PassengerAdults   PassengerKind = "adults"
	PassengerChildren PassengerKind = "children"
	PassengerInfants  PassengerKind = "infants"
)

type PassengerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func DefaultPassengerCounts() PassengerCounts {
	return PassengerCounts{Adults: 1}
}

// Seats is the number of paid seats. Infants travel on a lap and are
// neither seated nor priced.
func (p PassengerCounts) Seats() int {
	return p.Adults + p.Children
}

func (p PassengerCounts) Valid() bool {
	return p.Adults >= MinAdults &&
		p.Children >= 0 &&
		p.Infants >= 0 &&
		p.Infants <= p.Adults &&
		p.Seats() <= MaxSeats
}

// Adjust returns the counts after applying delta to one kind of traveller.
// Changes that would break the limits are ignored. Lowering adults below
// the infant count pulls infants down with them.
func (p PassengerCounts) Adjust(kind PassengerKind, delta int) PassengerCounts {
	next := p
	switch kind {
	case PassengerAdults:
		next.Adults += delta
		if next.Infants > next.Adults {
			next.Infants = next.Adults
		}
	case PassengerChildren:
		next.Children += delta
	case PassengerInfants:
		next.Infants += delta
	default:
		return p
	}
	if !next.Valid() {
		return p
	}
	return next
}

// Summary describes the travellers for display, e.g. "2 adults, 1 child".
func (p PassengerCounts) Summary() string {
	parts := []string{plural(p.Adults, "adult", "adults")}
	if p.Children > 0 {
		parts = append(parts, plural(p.Children, "child", "children"))
	}
	if p.Infants > 0 {
		parts = append(parts, plural(p.Infants, "infant", "infants"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

type SearchCriteria struct {
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departure_date"`
	ReturnDate    string          `json:"return_date,omitempty"`
	TripType      TripType        `json:"trip_type"`
	Passengers    PassengerCounts `json:"passengers"`
}

func (c SearchCriteria) RoundTrip() bool {
	return c.TripType == TripRoundTrip
}
