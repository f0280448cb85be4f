package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paidOrder struct {
	result models.PaymentResult
	paidAt time.Time
}

// mockOrderStore mimics the conditional-update semantics of the real
// store: the first MarkOrderPaid for a known order applies, every
// later one reports not-applied.
type mockOrderStore struct {
	mu       sync.Mutex
	known    map[string]bool
	paid     map[string]paidOrder
	markErr  error
	checkErr error
	marks    int
}

func newMockStore(orderIDs ...string) *mockOrderStore {
	known := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		known[id] = true
	}
	return &mockOrderStore{known: known, paid: make(map[string]paidOrder)}
}

func (m *mockOrderStore) MarkOrderPaid(_ context.Context, orderID string, result models.PaymentResult, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks++
	if m.markErr != nil {
		return false, m.markErr
	}
	if !m.known[orderID] {
		return false, nil
	}
	if _, done := m.paid[orderID]; done {
		return false, nil
	}
	m.paid[orderID] = paidOrder{result: result, paidAt: paidAt}
	return true, nil
}

func (m *mockOrderStore) IsOrderPaid(_ context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkErr != nil {
		return false, m.checkErr
	}
	_, done := m.paid[orderID]
	return done, nil
}

func chargeEvent() models.ChargeEvent {
	return models.ChargeEvent{
		EventID:     "evt_1",
		ChargeID:    "ch_1",
		OrderID:     "abc123",
		Email:       "buyer@example.com",
		AmountCents: 5000,
	}
}

func TestSettleMarksOrderPaid(t *testing.T) {
	store := newMockStore("abc123")
	svc := NewService(store)

	out, err := svc.Settle(context.Background(), chargeEvent())

	require.NoError(t, err)
	assert.Equal(t, "abc123", out.OrderID)
	assert.False(t, out.AlreadyPaid)

	got := store.paid["abc123"]
	assert.Equal(t, "ch_1", got.result.ID)
	assert.Equal(t, StatusSucceeded, got.result.Status)
	assert.Equal(t, "buyer@example.com", got.result.EmailAddress)
	assert.Equal(t, "50.00", got.result.PricePaid)
	assert.False(t, got.paidAt.IsZero())
}

func TestSettleIsIdempotent(t *testing.T) {
	store := newMockStore("abc123")
	svc := NewService(store)
	ev := chargeEvent()

	first, err := svc.Settle(context.Background(), ev)
	require.NoError(t, err)
	firstResult := store.paid["abc123"]

	// The provider redelivers the same event; no error, no second
	// application, identical stored result.
	second, err := svc.Settle(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, second.AlreadyPaid)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, firstResult, store.paid["abc123"])
}

func TestSettleMissingOrderID(t *testing.T) {
	store := newMockStore("abc123")
	svc := NewService(store)
	ev := chargeEvent()
	ev.OrderID = ""

	_, err := svc.Settle(context.Background(), ev)

	assert.ErrorIs(t, err, ErrMissingOrderID)
	assert.Empty(t, store.paid, "no order may change on a bad event")
	assert.Zero(t, store.marks)
}

func TestSettleUnknownOrder(t *testing.T) {
	svc := NewService(newMockStore("something-else"))

	_, err := svc.Settle(context.Background(), chargeEvent())

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSettleStoreError(t *testing.T) {
	store := newMockStore("abc123")
	store.markErr = errors.New("connection reset")
	svc := NewService(store)

	_, err := svc.Settle(context.Background(), chargeEvent())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingOrderID)
	assert.NotErrorIs(t, err, ErrOrderNotFound)
}

func TestSettleMissingEmailStoredAsEmptyString(t *testing.T) {
	store := newMockStore("abc123")
	svc := NewService(store)
	ev := chargeEvent()
	ev.Email = ""

	_, err := svc.Settle(context.Background(), ev)

	require.NoError(t, err)
	assert.Equal(t, "", store.paid["abc123"].result.EmailAddress)
}

func TestSettleConcurrentRetriesApplyOnce(t *testing.T) {
	store := newMockStore("abc123")
	svc := NewService(store)
	ev := chargeEvent()

	var wg sync.WaitGroup
	applied := make(chan Outcome, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := svc.Settle(context.Background(), ev)
			assert.NoError(t, err)
			applied <- out
		}()
	}
	wg.Wait()
	close(applied)

	firsts := 0
	for out := range applied {
		if !out.AlreadyPaid {
			firsts++
		}
	}
	assert.Equal(t, 1, firsts, "exactly one delivery may apply the transition")
}
