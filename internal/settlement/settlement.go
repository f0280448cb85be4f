// Package settlement applies the paid-state transition for a verified
// charge notification. It is safe under the provider's at-least-once
// delivery: the transition is a single conditional update keyed on the
// order id, and a replay for an already-paid order is a silent no-op.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/RainersCode/honey-sub001/internal/models"
)

var (
	// ErrMissingOrderID means the charge carried no order reference in
	// its metadata. That is a provider-side misconfiguration, so the
	// caller must answer with a client error rather than invite
	// endless retries.
	ErrMissingOrderID = errors.New("charge event carries no order id")

	// ErrOrderNotFound means the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")
)

// StatusSucceeded is the normalized status label written into the
// payment result for a settled charge.
const StatusSucceeded = "succeeded"

// OrderStore is the persistence boundary for settlement.
//
// MarkOrderPaid must be atomic: it flips is_paid only if it is still
// false and reports whether the update was applied, closing the
// check-then-set race under concurrent webhook retries.
type OrderStore interface {
	MarkOrderPaid(ctx context.Context, orderID string, result models.PaymentResult, paidAt time.Time) (bool, error)
	IsOrderPaid(ctx context.Context, orderID string) (bool, error)
}

// Outcome reports what a Settle call did.
type Outcome struct {
	OrderID     string
	AlreadyPaid bool
}

type Service struct {
	Store OrderStore

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

func NewService(store OrderStore) *Service {
	return &Service{Store: store, now: time.Now}
}

// ResultFromEvent builds the payment result snapshot for a charge:
// provider charge id, normalized status, payer email (empty when the
// provider sent none) and the amount converted from minor units to a
// 2-decimal string.
func ResultFromEvent(ev models.ChargeEvent) models.PaymentResult {
	return models.PaymentResult{
		ID:           ev.ChargeID,
		Status:       StatusSucceeded,
		EmailAddress: ev.Email,
		PricePaid:    fmt.Sprintf("%.2f", float64(ev.AmountCents)/100),
	}
}

// Settle moves the order referenced by the event into the paid state,
// exactly once. A second call for the same order succeeds without
// touching the row again. UNPAID → PAID is the only transition here;
// PAID is terminal.
func (s *Service) Settle(ctx context.Context, ev models.ChargeEvent) (Outcome, error) {
	if ev.OrderID == "" {
		return Outcome{}, ErrMissingOrderID
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	applied, err := s.Store.MarkOrderPaid(ctx, ev.OrderID, ResultFromEvent(ev), now().UTC())
	if err != nil {
		return Outcome{}, fmt.Errorf("mark order %s paid: %w", ev.OrderID, err)
	}
	if applied {
		log.Printf("✅ Order %s settled (charge %s, event %s)", ev.OrderID, ev.ChargeID, ev.EventID)
		return Outcome{OrderID: ev.OrderID}, nil
	}

	// Not applied: either a replay for a paid order or a dangling
	// order reference. Only the former is a success.
	paid, err := s.Store.IsOrderPaid(ctx, ev.OrderID)
	if err != nil {
		return Outcome{}, fmt.Errorf("check order %s paid: %w", ev.OrderID, err)
	}
	if !paid {
		return Outcome{}, fmt.Errorf("%w: %s", ErrOrderNotFound, ev.OrderID)
	}

	log.Printf("🔁 Order %s already settled, ignoring replay of event %s", ev.OrderID, ev.EventID)
	return Outcome{OrderID: ev.OrderID, AlreadyPaid: true}, nil
}
