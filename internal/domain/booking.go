package domain

type PassengerInfo struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// PaymentInfo keeps only what is safe to store: the card number and CVV
// never reach it.
type PaymentInfo struct {
	CardholderName string `json:"cardholder_name"`
	CardLast4      string `json:"card_last4"`
	Expiry         string `json:"expiry"`
}

func (p PaymentInfo) MaskedCard() string {
	return "**** **** **** " + p.CardLast4
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type BookingResult struct {
	ID              int64         `json:"id"`
	Reference       string        `json:"reference"`
	Status          BookingStatus `json:"status"`
	Timestamp       string        `json:"timestamp"`
	PassengerName   string        `json:"passenger_name"`
	FlightNumber    string        `json:"flight_number"`
	DepartureCity   string        `json:"departure_city"`
	ArrivalCity     string        `json:"arrival_city"`
	DepartureTime   string        `json:"departure_time"`
	SeatsBooked     int           `json:"seats_booked"`
	TotalPriceCents int64         `json:"total_price_cents"`
}

// BookingRequest asks the booking service to reserve seats on one flight.
type BookingRequest struct {
	FlightID        int64  `json:"flight_id"`
	PassengerName   string `json:"passenger_name"`
	PassengerEmail  string `json:"passenger_email"`
	PassengerPhone  string `json:"passenger_phone"`
	SeatsBooked     int    `json:"seats_booked"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// PaymentRequest carries raw card details to the payment processor. It is
// never serialised.
type PaymentRequest struct {
	AmountCents    int64  `json:"-"`
	CardholderName string `json:"-"`
	CardNumber     string `json:"-"`
	Expiry         string `json:"-"`
	CVV            string `json:"-"`
}

type PaymentReceipt struct {
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	AuthorizedAt  string `json:"authorized_at"`
}
