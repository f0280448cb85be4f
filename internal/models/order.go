package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Order struct {
	ID             gocql.UUID     `json:"id" db:"order_id"`
	UserID         string         `json:"user_id" db:"user_id"`
	Email          string         `json:"email" db:"email"`
	Items          []CartItem     `json:"items"`
	DeliveryMethod string         `json:"delivery_method" db:"delivery_method"`
	ItemsPrice     float64        `json:"items_price" db:"items_price"`
	ShippingPrice  float64        `json:"shipping_price" db:"shipping_price"`
	TaxPrice       float64        `json:"tax_price" db:"tax_price"`
	TotalPrice     float64        `json:"total_price" db:"total_price"`
	IsPaid         bool           `json:"is_paid" db:"is_paid"`
	PaidAt         *time.Time     `json:"paid_at,omitempty" db:"paid_at"`
	PaymentResult  *PaymentResult `json:"payment_result,omitempty"`
	IsDelivered    bool           `json:"is_delivered" db:"is_delivered"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// PaymentResult is what the payment provider told us about a settled
// charge. PricePaid is kept as a 2-decimal string (minor units / 100)
// exactly as received, for reconciliation against provider exports.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"email_address"`
	PricePaid    string `json:"price_paid"`
}

// PriceBreakdown is the frozen pricing snapshot written into an order
// at checkout. Each field is independently rounded to 2 decimals and
// TotalPrice is the rounded sum of the three rounded components.
type PriceBreakdown struct {
	ItemsPrice    float64 `json:"items_price"`
	ShippingPrice float64 `json:"shipping_price"`
	TaxPrice      float64 `json:"tax_price"`
	TotalPrice    float64 `json:"total_price"`
}
