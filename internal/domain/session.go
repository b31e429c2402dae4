package domain

import (
	"slices"
	"time"
)

// Session is everything the traveller has chosen so far in one booking flow.
type Session struct {
	ID             string          `json:"id"`
	CurrentStep    Step            `json:"current_step"`
	Search         *SearchCriteria `json:"search,omitempty"`
	Results        *SearchResults  `json:"results,omitempty"`
	SelectedFlight *FlightOffer    `json:"selected_flight,omitempty"`
	Passenger      *PassengerInfo  `json:"passenger,omitempty"`
	Payment        *PaymentInfo    `json:"payment,omitempty"`
	Booking        *BookingResult  `json:"booking,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, CurrentStep: StepSearch}
}

// Reachable reports whether the data collected so far allows the session to
// sit at step.
func (s *Session) Reachable(step Step) bool {
	switch step {
	case StepSearch:
		return true
	case StepFlightResults:
		return s.Search != nil && s.Results != nil
	case StepPassengerDetails:
		return s.Reachable(StepFlightResults) && s.SelectedFlight != nil
	case StepPayment:
		return s.Reachable(StepPassengerDetails) && s.Passenger != nil
	case StepConfirmation:
		return s.Booking != nil
	default:
		return false
	}
}

func (s *Session) Passengers() PassengerCounts {
	if s.Search == nil {
		return DefaultPassengerCounts()
	}
	return s.Search.Passengers
}

// Clone returns a deep copy so callers can't mutate the controller's record.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Search != nil {
		v := *s.Search
		c.Search = &v
	}
	if s.Results != nil {
		c.Results = &SearchResults{
			Outbound: slices.Clone(s.Results.Outbound),
			Return:   slices.Clone(s.Results.Return),
		}
	}
	if s.SelectedFlight != nil {
		v := *s.SelectedFlight
		c.SelectedFlight = &v
	}
	if s.Passenger != nil {
		v := *s.Passenger
		c.Passenger = &v
	}
	if s.Payment != nil {
		v := *s.Payment
		c.Payment = &v
	}
	if s.Booking != nil {
		v := *s.Booking
		c.Booking = &v
	}
	return &c
}
