// Package wizard drives the booking flow: search, flight selection,
// passenger details, payment and confirmation.
//
// A Controller owns one session record. Every successful action writes the
// record to its session slot so that a later Load resumes at the same step.
// Forward moves are gated by Guards; moving back is always allowed and keeps
// whatever was already entered.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/Domenick1991/flightwizard/internal/storage"
)

// FlightGateway is the request layer for flight search and booking creation.
type FlightGateway interface {
	SearchFlights(ctx context.Context, criteria domain.SearchCriteria) (*domain.SearchResults, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error)
}

type PaymentProcessor interface {
	Authorize(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentReceipt, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.WizardEvent) error
}

type Controller struct {
	store    storage.Store
	gateway  FlightGateway
	payments PaymentProcessor
	events   EventPublisher
	guards   *Guards
	logger   *slog.Logger
	now      func() time.Time

	sessionTTL time.Duration

	mu      sync.Mutex
	busy    bool
	session *domain.Session
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithEvents(events EventPublisher) Option {
	return func(c *Controller) {
		c.events = events
	}
}

// WithSessionTTL expires an abandoned session slot. Zero keeps it forever.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		c.sessionTTL = ttl
	}
}

func New(store storage.Store, gateway FlightGateway, payments PaymentProcessor, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		gateway:  gateway,
		payments: payments,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.guards = NewGuards(c.now)
	return c
}

// Load restores the session stored under id, or starts a fresh one. A stored
// record that can't be decoded is discarded and the wizard starts over at
// the search step.
//
// If the search form left criteria in the pending slot, they are consumed
// and submitted as a new search. An error from that search is returned, but
// the controller is loaded either way.
func (c *Controller) Load(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("wizard id is required")
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	session, err := c.restore(ctx, id)
	if err != nil {
		c.release(nil)
		return err
	}
	c.release(session)

	form, err := c.takePendingSearch(ctx, id)
	if err != nil || form == nil {
		return err
	}
	if session.Booking != nil {
		return nil
	}
	return c.submitSearch(ctx, *form, true)
}

func (c *Controller) restore(ctx context.Context, id string) (*domain.Session, error) {
	data, err := c.store.Get(ctx, storage.SessionKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return c.reset(ctx, id, err), nil
	}
	if session.ID != id || !session.CurrentStep.Valid() || !session.Reachable(session.CurrentStep) {
		return c.reset(ctx, id, fmt.Errorf("inconsistent session at step %d", session.CurrentStep)), nil
	}
	return &session, nil
}

func (c *Controller) reset(ctx context.Context, id string, cause error) *domain.Session {
	c.logger.Warn("discarding unreadable wizard session", "wizard_id", id, "error", cause)
	if err := c.store.Delete(ctx, storage.SessionKey(id)); err != nil {
		c.logger.Warn("failed to delete unreadable wizard session", "wizard_id", id, "error", err)
	}
	return domain.NewSession(id)
}

func (c *Controller) takePendingSearch(ctx context.Context, id string) (*SearchForm, error) {
	key := storage.PendingSearchKey(id)
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending search: %w", err)
	}
	if err := c.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("clear pending search: %w", err)
	}

	var form SearchForm
	if err := json.Unmarshal(data, &form); err != nil {
		c.logger.Warn("discarding unreadable pending search", "wizard_id", id, "error", err)
		return nil, nil
	}
	return &form, nil
}

// SavePendingSearch is what the standalone search form does: it leaves the
// criteria for the wizard to pick up on its next Load.
func SavePendingSearch(ctx context.Context, store storage.Store, id string, form SearchForm, ttl time.Duration) error {
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode pending search: %w", err)
	}
	return store.Set(ctx, storage.PendingSearchKey(id), data, ttl)
}

// begin marks the controller busy and hands back a working copy of the
// session. Only one operation runs at a time.
func (c *Controller) begin() (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, ErrNotLoaded
	}
	if c.busy {
		return nil, ErrBusy
	}
	c.busy = true
	return c.session.Clone(), nil
}

// release ends the operation, committing next when it is non-nil.
func (c *Controller) release(next *domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if next != nil {
		c.session = next
	}
	c.busy = false
}

func (c *Controller) commit(next *domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = next
}

func (c *Controller) persist(ctx context.Context, s *domain.Session) error {
	s.UpdatedAt = c.now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.store.Set(ctx, storage.SessionKey(s.ID), data, c.sessionTTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// save persists next and ends the operation. On failure the previous session
// stays in place.
func (c *Controller) save(ctx context.Context, next *domain.Session) error {
	if err := c.persist(ctx, next); err != nil {
		c.release(nil)
		return err
	}
	c.release(next)
	return nil
}

// Session returns a copy of the current record.
func (c *Controller) Session() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

func (c *Controller) Step() domain.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return domain.StepSearch
	}
	return c.session.CurrentStep
}

// TotalPrice prices the selected flight for the searched travellers.
func (c *Controller) TotalPrice() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.SelectedFlight == nil {
		return 0, false
	}
	return c.session.SelectedFlight.TotalCents(c.session.Passengers()), true
}

// AdjustPassengers changes one traveller count on the search step. Changes
// that would break the limits, such as more infants than adults, are
// silently ignored.
func (c *Controller) AdjustPassengers(ctx context.Context, kind domain.PassengerKind, delta int) (domain.PassengerCounts, error) {
	next, err := c.begin()
	if err != nil {
		return domain.PassengerCounts{}, err
	}
	if next.CurrentStep != domain.StepSearch {
		c.release(nil)
		return next.Passengers(), ErrWrongStep
	}
	if next.Search == nil {
		next.Search = &domain.SearchCriteria{TripType: domain.TripOneWay, Passengers: domain.DefaultPassengerCounts()}
	}

	counts := next.Search.Passengers.Adjust(kind, delta)
	if counts == next.Search.Passengers {
		c.release(nil)
		return counts, nil
	}
	next.Search.Passengers = counts
	return counts, c.save(ctx, next)
}

// SubmitSearch validates the search form, runs the search and moves to the
// flight results. A form without passenger counts uses the counts already on
// the session. A previously selected flight survives only if the new results
// still offer it.
func (c *Controller) SubmitSearch(ctx context.Context, form SearchForm) error {
	return c.submitSearch(ctx, form, false)
}

func (c *Controller) submitSearch(ctx context.Context, form SearchForm, fromPending bool) error {
	next, err := c.begin()
	if err != nil {
		return err
	}
	if next.Booking != nil {
		c.release(nil)
		return ErrBookingComplete
	}
	if next.CurrentStep != domain.StepSearch {
		if !fromPending {
			c.release(nil)
			return ErrWrongStep
		}
		next.CurrentStep = domain.StepSearch
	}

	// Counts sent with the form win; an empty set falls back to the ones
	// built up with AdjustPassengers.
	if form.Passengers == (domain.PassengerCounts{}) && next.Search != nil {
		form.Passengers = next.Search.Passengers
	}

	criteria, err := c.guards.Search(form)
	if err != nil {
		c.release(nil)
		return err
	}

	results, err := c.gateway.SearchFlights(ctx, criteria)
	if err != nil {
		c.release(nil)
		c.logger.Warn("flight search failed", "wizard_id", next.ID, "error", err)
		return &RequestError{Op: OpSearch, Err: err}
	}
	if results == nil {
		results = &domain.SearchResults{}
	}

	next.Search = &criteria
	next.Results = results
	if next.SelectedFlight != nil {
		if offer, ok := results.FindOutbound(next.SelectedFlight.ID); ok {
			next.SelectedFlight = &offer
		} else {
			next.SelectedFlight = nil
		}
	}
	next.CurrentStep = domain.StepFlightResults

	c.logger.Info("flight search completed",
		"wizard_id", next.ID,
		"origin", criteria.Origin,
		"destination", criteria.Destination,
		"outbound", len(results.Outbound),
		"return", len(results.Return),
	)
	return c.save(ctx, next)
}

// SelectFlight records the chosen outbound offer. The wizard stays on the
// results step until ContinueToPassenger.
func (c *Controller) SelectFlight(ctx context.Context, flightID int64) error {
	next, err := c.begin()
	if err != nil {
		return err
	}
	if next.CurrentStep != domain.StepFlightResults {
		c.release(nil)
		return ErrWrongStep
	}
	offer, ok := next.Results.FindOutbound(flightID)
	if !ok {
		c.release(nil)
		return ErrFlightNotFound
	}
	next.SelectedFlight = &offer
	return c.save(ctx, next)
}

func (c *Controller) ContinueToPassenger(ctx context.Context) error {
	next, err := c.begin()
	if err != nil {
		return err
	}
	if next.CurrentStep != domain.StepFlightResults {
		c.release(nil)
		return ErrWrongStep
	}
	if next.SelectedFlight == nil {
		c.release(nil)
		return ValidationErrors{{Field: "flight", Message: msgFlightRequired}}
	}
	next.CurrentStep = domain.StepPassengerDetails
	return c.save(ctx, next)
}

func (c *Controller) SubmitPassenger(ctx context.Context, form PassengerForm) error {
	next, err := c.begin()
	if err != nil {
		return err
	}
	if next.CurrentStep != domain.StepPassengerDetails {
		c.release(nil)
		return ErrWrongStep
	}
	info, err := c.guards.Passenger(form)
	if err != nil {
		c.release(nil)
		return err
	}
	next.Passenger = &info
	next.CurrentStep = domain.StepPayment
	return c.save(ctx, next)
}

// ConfirmPayment validates the card, takes the payment and creates the
// booking. The masked card summary is kept even if a later call fails, so
// the user can retry without re-entering everything. On success both
// storage slots are cleared and the wizard ends on the confirmation step.
func (c *Controller) ConfirmPayment(ctx context.Context, form PaymentForm) (*domain.BookingResult, error) {
	next, err := c.begin()
	if err != nil {
		return nil, err
	}
	if next.CurrentStep != domain.StepPayment {
		c.release(nil)
		return nil, ErrWrongStep
	}

	info, cardNumber, err := c.guards.Payment(form)
	if err != nil {
		c.release(nil)
		return nil, err
	}
	next.Payment = &info
	if err := c.persist(ctx, next); err != nil {
		c.release(nil)
		return nil, err
	}
	c.commit(next)

	flight := next.SelectedFlight
	passengers := next.Passengers()
	total := flight.TotalCents(passengers)

	receipt, err := c.payments.Authorize(ctx, domain.PaymentRequest{
		AmountCents:    total,
		CardholderName: info.CardholderName,
		CardNumber:     cardNumber,
		Expiry:         info.Expiry,
		CVV:            form.CVV,
	})
	if err != nil {
		c.release(nil)
		c.logger.Warn("payment failed", "wizard_id", next.ID, "error", err)
		return nil, &RequestError{Op: OpPayment, Err: err}
	}
	c.logger.Info("payment authorized", "wizard_id", next.ID, "transaction_id", receipt.TransactionID)

	booking, err := c.gateway.CreateBooking(ctx, domain.BookingRequest{
		FlightID:        flight.ID,
		PassengerName:   next.Passenger.Name,
		PassengerEmail:  next.Passenger.Email,
		PassengerPhone:  next.Passenger.Phone,
		SeatsBooked:     passengers.Seats(),
		SpecialRequests: next.Passenger.SpecialRequests,
	})
	if err != nil {
		c.release(nil)
		c.logger.Warn("booking creation failed", "wizard_id", next.ID, "error", err)
		return nil, &RequestError{Op: OpBooking, Err: err}
	}

	done := next.Clone()
	done.Booking = booking
	done.CurrentStep = domain.StepConfirmation
	done.UpdatedAt = c.now().UTC()
	c.clearSlots(ctx, done.ID)
	c.release(done)

	c.logger.Info("booking confirmed", "wizard_id", done.ID, "reference", booking.Reference)
	c.publish(ctx, done)
	return booking, nil
}

func (c *Controller) clearSlots(ctx context.Context, id string) {
	for _, key := range []string{storage.PendingSearchKey(id), storage.SessionKey(id)} {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to clear wizard slot", "key", key, "error", err)
		}
	}
}

func (c *Controller) publish(ctx context.Context, s *domain.Session) {
	if c.events == nil {
		return
	}
	event := domain.WizardEvent{
		Type:          domain.EventBookingConfirmed,
		WizardID:      s.ID,
		Email:         s.Passenger.Email,
		PassengerName: s.Passenger.Name,
		Booking:       s.Booking,
		OccurredAt:    c.now().UTC(),
	}
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish wizard event", "wizard_id", s.ID, "type", event.Type, "error", err)
	}
}

// GoBack moves to an earlier step without discarding any entered data.
func (c *Controller) GoBack(ctx context.Context, target domain.Step) error {
	next, err := c.begin()
	if err != nil {
		return err
	}
	if next.Booking != nil {
		c.release(nil)
		return ErrBookingComplete
	}
	if !target.Valid() || target > next.CurrentStep {
		c.release(nil)
		return ErrWrongStep
	}
	if target == next.CurrentStep {
		c.release(nil)
		return nil
	}
	next.CurrentStep = target
	return c.save(ctx, next)
}

// StartOver forgets everything, including any pending search.
func (c *Controller) StartOver(ctx context.Context) error {
	next, err := c.begin()
	if err != nil {
		return err
	}
	fresh := domain.NewSession(next.ID)
	for _, key := range []string{storage.PendingSearchKey(next.ID), storage.SessionKey(next.ID)} {
		if err := c.store.Delete(ctx, key); err != nil {
			c.release(nil)
			return fmt.Errorf("clear wizard slot: %w", err)
		}
	}
	c.release(fresh)
	return nil
}
