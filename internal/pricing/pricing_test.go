package pricing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRules struct {
	rules []models.ShippingRule
	err   error
}

func (s *stubRules) FindCheapestRule(_ context.Context, zone string, weight float64) (*models.ShippingRule, error) {
	if s.err != nil {
		return nil, s.err
	}
	var best *models.ShippingRule
	for i := range s.rules {
		r := &s.rules[i]
		if r.Zone != zone || weight < r.MinWeight || weight > r.MaxWeight {
			continue
		}
		if best == nil || r.Price < best.Price {
			best = r
		}
	}
	return best, nil
}

func TestRound2HalfUp(t *testing.T) {
	// 0.125 and 0.375 are exact in binary, so they exercise the true
	// half-way case: half rounds up, not to even.
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 0.38, Round2(0.375))
	assert.Equal(t, 1.0, Round2(1.004))
	assert.Equal(t, 1.01, Round2(1.006))
	assert.Equal(t, 4.2, Round2(20.0*0.21))
	assert.Equal(t, 0.0, Round2(0))
}

func TestTotalWeight(t *testing.T) {
	items := []models.CartItem{
		{Weight: 0.5, Quantity: 4},
		{Weight: 1.25, Quantity: 2},
	}
	assert.Equal(t, 4.5, TotalWeight(items))
}

func TestTotalWeightInvalidWeightCountsAsZero(t *testing.T) {
	items := []models.CartItem{
		{Weight: -3, Quantity: 2},
		{Weight: math.NaN(), Quantity: 1},
		{Weight: 1, Quantity: 1},
	}
	assert.Equal(t, 1.0, TotalWeight(items))
	assert.GreaterOrEqual(t, TotalWeight(nil), 0.0)
}

func TestShippingPricePrefersCheapestMatchingRule(t *testing.T) {
	e := &Engine{Rules: &stubRules{rules: []models.ShippingRule{
		{Zone: "latvia", MinWeight: 0, MaxWeight: 5, Price: 3.20, Carrier: "dpd"},
		{Zone: "latvia", MinWeight: 1, MaxWeight: 10, Price: 2.80, Carrier: "omniva"},
		{Zone: "estonia", MinWeight: 0, MaxWeight: 10, Price: 1.00, Carrier: "dpd"},
	}}}

	// Both latvia rules cover 2kg, the cheaper one must win regardless
	// of declaration order.
	assert.Equal(t, 2.80, e.ShippingPrice(context.Background(), 2, "latvia"))
	// Only the first rule covers 0.5kg.
	assert.Equal(t, 3.20, e.ShippingPrice(context.Background(), 0.5, "latvia"))
}

func TestShippingPriceRuleRangeIsInclusive(t *testing.T) {
	e := &Engine{Rules: &stubRules{rules: []models.ShippingRule{
		{Zone: "latvia", MinWeight: 1, MaxWeight: 5, Price: 3.00},
	}}}
	assert.Equal(t, 3.00, e.ShippingPrice(context.Background(), 1, "latvia"))
	assert.Equal(t, 3.00, e.ShippingPrice(context.Background(), 5, "latvia"))
	// Outside the range and no default tier for a custom zone.
	assert.Equal(t, 0.0, e.ShippingPrice(context.Background(), 5.001, "latvia"))
}

func TestShippingPriceDefaultTiers(t *testing.T) {
	e := &Engine{Rules: &stubRules{}}
	ctx := context.Background()

	// Light tier boundary is inclusive: exactly 2kg is still light.
	assert.Equal(t, 5.00, e.ShippingPrice(ctx, 2, ZoneInternational))
	// One gram above the threshold moves to the medium tier.
	assert.Equal(t, 12.00, e.ShippingPrice(ctx, 2.001, ZoneInternational))
	assert.Equal(t, 12.00, e.ShippingPrice(ctx, 10, ZoneInternational))
	// Above the medium tier: per-kg surcharge on started kilograms.
	assert.Equal(t, 12.00+1*1.50, e.ShippingPrice(ctx, 10.2, ZoneInternational))
	assert.Equal(t, 12.00+3*1.50, e.ShippingPrice(ctx, 13, ZoneInternational))

	assert.Equal(t, 4.50, e.ShippingPrice(ctx, 7, ZoneOmniva))
	assert.Equal(t, 0.0, e.ShippingPrice(ctx, 7, "mars"))
}

func TestShippingPriceLookupErrorFallsBackToDefaults(t *testing.T) {
	e := &Engine{Rules: &stubRules{err: errors.New("store down")}}
	assert.Equal(t, 5.00, e.ShippingPrice(context.Background(), 1, ZoneInternational))
}

func TestBreakdownMediumTierCart(t *testing.T) {
	// 2 × 10.00 at 1.5kg each, international, no stored rules:
	// 3kg lands in the medium tier.
	e := &Engine{Rules: &stubRules{}}
	items := []models.CartItem{{ProductID: "p1", UnitPrice: 10.00, Quantity: 2, Weight: 1.5}}

	b := e.Breakdown(context.Background(), items, ZoneInternational)

	require.Equal(t, 20.00, b.ItemsPrice)
	require.Equal(t, 12.00, b.ShippingPrice)
	require.Equal(t, 4.20, b.TaxPrice)
	require.Equal(t, 36.20, b.TotalPrice)
}

func TestBreakdownIsDeterministic(t *testing.T) {
	e := &Engine{Rules: &stubRules{rules: []models.ShippingRule{
		{Zone: "latvia", MinWeight: 0, MaxWeight: 30, Price: 2.99},
	}}}
	items := []models.CartItem{
		{UnitPrice: 6.40, Quantity: 3, Weight: 0.72},
		{UnitPrice: 11.35, Quantity: 1, Weight: 1.1},
	}

	first := e.Breakdown(context.Background(), items, "latvia")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, e.Breakdown(context.Background(), items, "latvia"))
	}
}

func TestBreakdownTotalIsSumOfRoundedParts(t *testing.T) {
	e := &Engine{Rules: &stubRules{}}
	carts := [][]models.CartItem{
		{{UnitPrice: 0.01, Quantity: 1, Weight: 0.1}},
		{{UnitPrice: 3.33, Quantity: 3, Weight: 0.333}},
		{{UnitPrice: 7.49, Quantity: 7, Weight: 2.5}, {UnitPrice: 0.99, Quantity: 13, Weight: 0.05}},
		nil,
	}
	for _, items := range carts {
		b := e.Breakdown(context.Background(), items, ZoneInternational)
		assert.Equal(t, Round2(b.ItemsPrice+b.ShippingPrice+b.TaxPrice), b.TotalPrice)
		assert.GreaterOrEqual(t, b.ItemsPrice, 0.0)
		assert.GreaterOrEqual(t, b.TotalPrice, 0.0)
	}
}
