package sample

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/google/uuid"
)

// DeclinedCard is always refused by Payments.
const DeclinedCard = "4000000000000002"

var ErrCardDeclined = errors.New("card declined")

type Payments struct {
	delay time.Duration
	now   func() time.Time
}

func NewPayments(delay time.Duration) *Payments {
	return &Payments{delay: delay, now: time.Now}
}

func (p *Payments) Authorize(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentReceipt, error) {
	if err := wait(ctx, p.delay); err != nil {
		return nil, err
	}
	if req.CardNumber == DeclinedCard {
		return nil, ErrCardDeclined
	}
	if req.AmountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}
	return &domain.PaymentReceipt{
		TransactionID: uuid.NewString(),
		AmountCents:   req.AmountCents,
		AuthorizedAt:  p.now().UTC().Format(time.RFC3339),
	}, nil
}
