package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotLoaded       = errors.New("wizard session is not loaded")
	ErrBusy            = errors.New("another wizard operation is in progress")
	ErrWrongStep       = errors.New("operation not allowed at the current step")
	ErrFlightNotFound  = errors.New("flight is not in the last search results")
	ErrBookingComplete = errors.New("booking is already complete")
)

// ValidationError is a field-level guard failure shown next to the field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Message returns the message for field, or "" when the field passed.
func (v ValidationErrors) Message(field string) string {
	for _, err := range v {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

func (v ValidationErrors) Has(field string) bool {
	return v.Message(field) != ""
}

type Op string

const (
	OpSearch  Op = "search"
	OpPayment Op = "payment"
	OpBooking Op = "booking"
)

var notices = map[Op]string{
	OpSearch:  "We couldn't search for flights",
	OpPayment: "Your payment could not be processed",
	OpBooking: "We couldn't create your booking",
}

// RequestError reports a failed call to an outside service. The wizard stays
// on its current step and the user may retry.
type RequestError struct {
	Op  Op
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Notice is the dismissible message shown to the user.
func (e *RequestError) Notice() string {
	return fmt.Sprintf("%s: %v. Please try again.", notices[e.Op], e.Err)
}
