package models

// ChargeEvent is the flat, provider-agnostic record the webhook
// boundary produces from a verified charge notification. The
// settlement layer depends on this shape only, never on provider SDK
// types.
type ChargeEvent struct {
	EventID     string
	ChargeID    string
	OrderID     string
	Email       string
	AmountCents int64
}
