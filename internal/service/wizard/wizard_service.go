package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/Domenick1991/flightwizard/internal/storage"
	"github.com/Domenick1991/flightwizard/internal/wizard"
	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid wizard id")

type WizardUseCase interface {
	Start(ctx context.Context) (*View, error)
	Get(ctx context.Context, id string) (*View, error)
	SavePendingSearch(ctx context.Context, id string, form wizard.SearchForm) error
	Search(ctx context.Context, id string, form wizard.SearchForm) (*View, error)
	AdjustPassengers(ctx context.Context, id string, kind domain.PassengerKind, delta int) (*View, error)
	SelectFlight(ctx context.Context, id string, flightID int64) (*View, error)
	Continue(ctx context.Context, id string) (*View, error)
	SubmitPassenger(ctx context.Context, id string, form wizard.PassengerForm) (*View, error)
	ConfirmPayment(ctx context.Context, id string, form wizard.PaymentForm) (*View, error)
	GoBack(ctx context.Context, id string, step domain.Step) (*View, error)
	StartOver(ctx context.Context, id string) (*View, error)
}

// View is what the presentation layer needs to render the current step.
type View struct {
	WizardID   string          `json:"wizard_id"`
	Step       domain.Step     `json:"step"`
	StepName   string          `json:"step_name"`
	Session    *domain.Session `json:"session"`
	Travellers string          `json:"travellers"`
	TotalPrice string          `json:"total_price,omitempty"`
	Notice     string          `json:"notice,omitempty"`
}

// WizardService runs one wizard action per call. The controller is rebuilt
// from storage every time, so any instance can serve any wizard.
type WizardService struct {
	store      storage.Store
	locker     storage.Locker
	gateway    wizard.FlightGateway
	payments   wizard.PaymentProcessor
	events     wizard.EventPublisher
	guards     *wizard.Guards
	logger     *slog.Logger
	now        func() time.Time
	lockTTL    time.Duration
	sessionTTL time.Duration
	pendingTTL time.Duration
}

type WizardServiceOption func(*WizardService)

func WithEvents(events wizard.EventPublisher) WizardServiceOption {
	return func(s *WizardService) {
		s.events = events
	}
}

func WithLogger(logger *slog.Logger) WizardServiceOption {
	return func(s *WizardService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) WizardServiceOption {
	return func(s *WizardService) {
		s.now = now
	}
}

func WithTTLs(lock, session, pending time.Duration) WizardServiceOption {
	return func(s *WizardService) {
		s.lockTTL = lock
		s.sessionTTL = session
		s.pendingTTL = pending
	}
}

func NewWizardService(
	store storage.Store,
	locker storage.Locker,
	gateway wizard.FlightGateway,
	payments wizard.PaymentProcessor,
	opts ...WizardServiceOption,
) *WizardService {
	service := &WizardService{
		store:      store,
		locker:     locker,
		gateway:    gateway,
		payments:   payments,
		logger:     slog.Default(),
		now:        time.Now,
		lockTTL:    30 * time.Second,
		pendingTTL: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.guards = wizard.NewGuards(service.now)
	return service
}

func (s *WizardService) Start(ctx context.Context) (*View, error) {
	return s.run(ctx, uuid.NewString(), nil)
}

func (s *WizardService) Get(ctx context.Context, id string) (*View, error) {
	return s.run(ctx, id, nil)
}

// SavePendingSearch stores criteria from the standalone search form. They are
// checked here so the wizard never picks up a form the user couldn't submit.
func (s *WizardService) SavePendingSearch(ctx context.Context, id string, form wizard.SearchForm) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	if _, err := s.guards.Search(form); err != nil {
		return err
	}
	return wizard.SavePendingSearch(ctx, s.store, id, form, s.pendingTTL)
}

func (s *WizardService) Search(ctx context.Context, id string, form wizard.SearchForm) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		return c.SubmitSearch(ctx, form)
	})
}

func (s *WizardService) AdjustPassengers(ctx context.Context, id string, kind domain.PassengerKind, delta int) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		_, err := c.AdjustPassengers(ctx, kind, delta)
		return err
	})
}

func (s *WizardService) SelectFlight(ctx context.Context, id string, flightID int64) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		return c.SelectFlight(ctx, flightID)
	})
}

func (s *WizardService) Continue(ctx context.Context, id string) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		return c.ContinueToPassenger(ctx)
	})
}

func (s *WizardService) SubmitPassenger(ctx context.Context, id string, form wizard.PassengerForm) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		return c.SubmitPassenger(ctx, form)
	})
}

func (s *WizardService) ConfirmPayment(ctx context.Context, id string, form wizard.PaymentForm) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		_, err := c.ConfirmPayment(ctx, form)
		return err
	})
}

func (s *WizardService) GoBack(ctx context.Context, id string, step domain.Step) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		return c.GoBack(ctx, step)
	})
}

func (s *WizardService) StartOver(ctx context.Context, id string) (*View, error) {
	return s.run(ctx, id, func(c *wizard.Controller) error {
		return c.StartOver(ctx)
	})
}

// run locks the wizard, restores its controller, applies action and renders
// the result. The view is returned alongside action errors so callers can
// show the unchanged step next to the error.
func (s *WizardService) run(ctx context.Context, id string, action func(*wizard.Controller) error) (*View, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	lockKey := storage.LockKey(id)
	token, ok, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock wizard: %w", err)
	}
	if !ok {
		return nil, wizard.ErrBusy
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			s.logger.Warn("failed to release wizard lock", "wizard_id", id, "error", err)
		}
	}()

	opts := []wizard.Option{
		wizard.WithLogger(s.logger),
		wizard.WithClock(s.now),
		wizard.WithSessionTTL(s.sessionTTL),
	}
	if s.events != nil {
		opts = append(opts, wizard.WithEvents(s.events))
	}
	ctrl := wizard.New(s.store, s.gateway, s.payments, opts...)

	var notice string
	if err := ctrl.Load(ctx, id); err != nil {
		if ctrl.Session() == nil {
			return nil, err
		}
		notice = noticeFor(err)
	}

	if action != nil {
		if err := action(ctrl); err != nil {
			return render(ctrl, notice), err
		}
	}
	return render(ctrl, notice), nil
}

func noticeFor(err error) string {
	var reqErr *wizard.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Notice()
	}
	return err.Error()
}

func render(ctrl *wizard.Controller, notice string) *View {
	session := ctrl.Session()
	view := &View{
		WizardID:   session.ID,
		Step:       session.CurrentStep,
		StepName:   session.CurrentStep.String(),
		Session:    session,
		Travellers: session.Passengers().Summary(),
		Notice:     notice,
	}
	if session.Booking != nil {
		view.TotalPrice = domain.FormatPrice(session.Booking.TotalPriceCents)
	} else if total, ok := ctrl.TotalPrice(); ok {
		view.TotalPrice = domain.FormatPrice(total)
	}
	return view
}

var _ WizardUseCase = (*WizardService)(nil)
