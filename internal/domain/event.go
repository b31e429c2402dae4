package domain

import "time"

type EventType string

const EventBookingConfirmed EventType = "booking_confirmed"

type WizardEvent struct {
	Type          EventType      `json:"type"`
	WizardID      string         `json:"wizard_id"`
	Email         string         `json:"email"`
	PassengerName string         `json:"passenger_name"`
	Booking       *BookingResult `json:"booking,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}
