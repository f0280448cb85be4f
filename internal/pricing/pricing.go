// Package pricing turns cart line items and a delivery method into the
// price breakdown frozen into an order at checkout. It is pure
// computation: it never returns an error, and unresolvable shipping
// configuration degrades to a zero price plus a warning log.
package pricing

import (
	"context"
	"log"
	"math"

	"github.com/RainersCode/honey-sub001/internal/models"
)

// TaxRate is Latvian PVN, applied to the items subtotal.
const TaxRate = 0.21

// Delivery zones with built-in fallback tiers.
const (
	ZoneInternational = "international"
	ZoneOmniva        = "omniva" // parcel-locker network
)

// Fallback tiers used when no persisted rule covers the weight.
const (
	intlLightMaxKg  = 2.0
	intlLightPrice  = 5.00
	intlMediumMaxKg = 10.0
	intlMediumPrice = 12.00
	intlPerKgPrice  = 1.50 // per started kilogram above the medium tier
	omnivaFlatPrice = 4.50
)

// RuleFinder resolves the cheapest persisted shipping rule whose zone
// matches and whose inclusive weight range contains the given weight.
// A nil rule with a nil error means no rule covers the weight.
type RuleFinder interface {
	FindCheapestRule(ctx context.Context, zone string, weight float64) (*models.ShippingRule, error)
}

type Engine struct {
	Rules RuleFinder
}

// Round2 rounds half-up to 2 decimal places. Every breakdown field is
// rounded independently before the total is summed; summing unrounded
// values and rounding once gives different cents in edge cases.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// TotalWeight sums weight × quantity over the cart. Items with a
// missing or invalid weight count as weightless. Never negative.
func TotalWeight(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		w := item.Weight
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		total += w * float64(item.Quantity)
	}
	if total < 0 {
		return 0
	}
	return total
}

// ShippingPrice resolves the shipping cost for a parcel weight in a
// zone. Persisted rules always win; the built-in tiers only cover
// weights no rule matches. A zero return for an unknown zone is a
// configuration gap, not free shipping, and is logged as such.
func (e *Engine) ShippingPrice(ctx context.Context, weight float64, zone string) float64 {
	if e.Rules != nil {
		rule, err := e.Rules.FindCheapestRule(ctx, zone, weight)
		if err != nil {
			log.Printf("⚠️ Shipping rule lookup failed for zone %q (%.3f kg), using defaults: %v", zone, weight, err)
		} else if rule != nil {
			return rule.Price
		}
	}

	switch zone {
	case ZoneInternational:
		if weight <= intlLightMaxKg {
			return intlLightPrice
		}
		if weight <= intlMediumMaxKg {
			return intlMediumPrice
		}
		return intlMediumPrice + math.Ceil(weight-intlMediumMaxKg)*intlPerKgPrice
	case ZoneOmniva:
		return omnivaFlatPrice
	default:
		log.Printf("⚠️ No shipping rule resolvable for zone %q (%.3f kg), shipping priced at 0", zone, weight)
		return 0
	}
}

// Breakdown computes the order totals for a cart and delivery method.
// Deterministic for identical inputs (modulo rule-store contents).
func (e *Engine) Breakdown(ctx context.Context, items []models.CartItem, deliveryMethod string) models.PriceBreakdown {
	var itemsPrice float64
	for _, item := range items {
		itemsPrice += item.UnitPrice * float64(item.Quantity)
	}

	b := models.PriceBreakdown{
		ItemsPrice:    Round2(itemsPrice),
		ShippingPrice: Round2(e.ShippingPrice(ctx, TotalWeight(items), deliveryMethod)),
	}
	b.TaxPrice = Round2(b.ItemsPrice * TaxRate)
	b.TotalPrice = Round2(b.ItemsPrice + b.ShippingPrice + b.TaxPrice)
	return b
}
