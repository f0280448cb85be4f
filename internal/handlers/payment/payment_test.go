package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/settlement"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

const testSecret = "whsec_test_secret"

// fakeOrders reproduces the store's conditional-update contract in
// memory.
type fakeOrders struct {
	mu      sync.Mutex
	known   map[string]bool
	paid    map[string]models.PaymentResult
	markErr error
}

func newFakeOrders(ids ...string) *fakeOrders {
	known := make(map[string]bool)
	for _, id := range ids {
		known[id] = true
	}
	return &fakeOrders{known: known, paid: make(map[string]models.PaymentResult)}
}

func (f *fakeOrders) MarkOrderPaid(_ context.Context, orderID string, result models.PaymentResult, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return false, f.markErr
	}
	if !f.known[orderID] {
		return false, nil
	}
	if _, done := f.paid[orderID]; done {
		return false, nil
	}
	f.paid[orderID] = result
	return true, nil
}

func (f *fakeOrders) IsOrderPaid(_ context.Context, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, done := f.paid[orderID]
	return done, nil
}

// signPayload builds a Stripe-Signature header the way the provider
// does: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func chargeEventPayload(eventType, orderID string) []byte {
	metadata := "{}"
	if orderID != "" {
		metadata = fmt.Sprintf(`{"orderId":%q}`, orderID)
	}
	payload := fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"type": %q,
		"api_version": %q,
		"data": {
			"object": {
				"id": "ch_test_1",
				"amount": 5000,
				"metadata": %s,
				"billing_details": {"email": "buyer@example.com"}
			}
		}
	}`, eventType, stripe.APIVersion, metadata)
	return []byte(payload)
}

func newWebhookRouter(store settlement.OrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &WebhookHandler{Settler: settlement.NewService(store)}
	r := gin.New()
	r.POST("/api/payments/webhook", h.Handle)
	return r
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookSettlesOrder(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	w := postWebhook(r, payload, signPayload(payload, testSecret))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["received"])
	assert.Equal(t, "abc123", resp["orderId"])
	assert.Equal(t, "evt_test_1", resp["eventId"])

	result := store.paid["abc123"]
	assert.Equal(t, "ch_test_1", result.ID)
	assert.Equal(t, "succeeded", result.Status)
	assert.Equal(t, "buyer@example.com", result.EmailAddress)
	assert.Equal(t, "50.00", result.PricePaid)
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	sig := signPayload(payload, testSecret)

	first := postWebhook(r, payload, sig)
	require.Equal(t, http.StatusOK, first.Code)
	firstResult := store.paid["abc123"]

	// The provider redelivers: same success shape, result untouched.
	second := postWebhook(r, payload, sig)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, firstResult, store.paid["abc123"])
}

func TestWebhookTamperedPayloadRejected(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	sig := signPayload(payload, testSecret)

	// Flip a single byte after signing.
	tampered := bytes.Replace(payload, []byte("5000"), []byte("5001"), 1)
	w := postWebhook(r, tampered, sig)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.paid, "no order may change on a bad signature")
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	w := postWebhook(r, chargeEventPayload("charge.succeeded", "abc123"), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.paid)
}

func TestWebhookWrongSecretRejected(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	w := postWebhook(r, payload, signPayload(payload, "whsec_other"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.paid)
}

func TestWebhookMissingSecretIsServerError(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	w := postWebhook(r, payload, signPayload(payload, testSecret))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.paid)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.refunded", "abc123")
	w := postWebhook(r, payload, signPayload(payload, testSecret))

	// Acknowledged so the provider stops retrying, but nothing
	// settles.
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["received"])
	assert.Equal(t, "charge.refunded", resp["type"])
	assert.Empty(t, store.paid)
}

func TestWebhookMissingOrderIDIsClientError(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "")
	w := postWebhook(r, payload, signPayload(payload, testSecret))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.paid, "all orders stay unchanged")
}

func TestWebhookUnknownOrderIsClientError(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("some-other-order")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	w := postWebhook(r, payload, signPayload(payload, testSecret))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.paid)
}

func TestWebhookStoreFailureIsRetryable(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")
	store.markErr = errors.New("write timeout")
	r := newWebhookRouter(store)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	w := postWebhook(r, payload, signPayload(payload, testSecret))

	// 5xx keeps the provider retrying until the store recovers.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhookAfterPaidRunsOnceOnReplay(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testSecret)
	store := newFakeOrders("abc123")

	gin.SetMode(gin.TestMode)
	fired := make(chan string, 4)
	h := &WebhookHandler{
		Settler:   settlement.NewService(store),
		AfterPaid: func(orderID string) { fired <- orderID },
	}
	r := gin.New()
	r.POST("/api/payments/webhook", h.Handle)

	payload := chargeEventPayload("charge.succeeded", "abc123")
	sig := signPayload(payload, testSecret)
	require.Equal(t, http.StatusOK, postWebhook(r, payload, sig).Code)
	require.Equal(t, http.StatusOK, postWebhook(r, payload, sig).Code)

	select {
	case id := <-fired:
		assert.Equal(t, "abc123", id)
	case <-time.After(2 * time.Second):
		t.Fatal("AfterPaid hook never fired")
	}

	select {
	case <-fired:
		t.Fatal("AfterPaid hook fired again on a replay")
	case <-time.After(100 * time.Millisecond):
	}
}
