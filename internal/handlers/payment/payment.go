package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// settleTimeout bounds the database round trip so a slow store cannot
// hang the webhook request; on expiry the provider gets a 5xx and
// retries.
const settleTimeout = 10 * time.Second

// WebhookHandler answers the payment provider's charge notifications.
// Verification happens on the verbatim request bytes: the body is
// buffered before parsing because any re-serialisation would break the
// signature.
type WebhookHandler struct {
	Settler *settlement.Service

	// AfterPaid runs asynchronously after a first-time settlement
	// (confirmation e-mail, cart cleanup). Replays never trigger it.
	AfterPaid func(orderID string)
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Webhook body read failed:", err)
		c.String(http.StatusBadRequest, "cannot read request body")
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		// Server misconfiguration: a 5xx makes the provider retry
		// once the secret is in place.
		log.Println("❌ STRIPE_WEBHOOK_SECRET is not configured")
		c.String(http.StatusInternalServerError, "webhook secret not configured")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		log.Println("❌ Webhook signature verification failed:", err)
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	if event.Type != "charge.succeeded" {
		// Acknowledge everything else so the provider stops resending.
		log.Printf("ℹ️ Ignoring event %s (%s)", event.ID, event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true, "type": event.Type, "eventId": event.ID})
		return
	}

	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		log.Println("❌ Cannot decode charge from event:", err)
		c.String(http.StatusBadRequest, "malformed charge payload")
		return
	}

	ev := models.ChargeEvent{
		EventID:     event.ID,
		ChargeID:    charge.ID,
		OrderID:     charge.Metadata["orderId"],
		AmountCents: charge.Amount,
	}
	if charge.BillingDetails != nil {
		ev.Email = charge.BillingDetails.Email
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), settleTimeout)
	defer cancel()

	outcome, err := h.Settler.Settle(ctx, ev)
	switch {
	case errors.Is(err, settlement.ErrMissingOrderID):
		log.Printf("⚠️ Charge %s carries no orderId metadata (event %s)", ev.ChargeID, ev.EventID)
		c.String(http.StatusBadRequest, "orderId missing from charge metadata")
		return
	case errors.Is(err, settlement.ErrOrderNotFound):
		log.Printf("⚠️ Charge %s references unknown order %q (event %s)", ev.ChargeID, ev.OrderID, ev.EventID)
		c.String(http.StatusBadRequest, "unknown order")
		return
	case err != nil:
		log.Printf("❌ Settlement of order %s failed: %v", ev.OrderID, err)
		c.String(http.StatusInternalServerError, "settlement failed")
		return
	}

	if outcome.AlreadyPaid {
		log.Printf("🔁 Replay for already-paid order %s (event %s), acknowledged", outcome.OrderID, event.ID)
	} else {
		log.Printf("💳 Order %s settled (event %s)", outcome.OrderID, event.ID)
		if h.AfterPaid != nil {
			go h.AfterPaid(outcome.OrderID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "orderId": outcome.OrderID, "eventId": event.ID})
}
