package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRules struct {
	rule *models.ShippingRule
}

func (s *stubRules) FindCheapestRule(_ context.Context, zone string, weight float64) (*models.ShippingRule, error) {
	if s.rule != nil && s.rule.Zone == zone && weight >= s.rule.MinWeight && weight <= s.rule.MaxWeight {
		return s.rule, nil
	}
	return nil, nil
}

func quoteRouter(rules *stubRules) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{Pricing: &pricing.Engine{Rules: rules}}
	r := gin.New()
	r.GET("/api/shipping/quote", h.Quote)
	return r
}

func getQuote(t *testing.T, r *gin.Engine, url string) (int, models.ShippingQuote) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(rec, req)

	var q models.ShippingQuote
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	}
	return rec.Code, q
}

func TestQuoteUsesDefaultTiers(t *testing.T) {
	r := quoteRouter(&stubRules{})

	code, q := getQuote(t, r, "/api/shipping/quote?weight=1.5")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "international", q.Zone)
	assert.Equal(t, 5.00, q.Price)

	code, q = getQuote(t, r, "/api/shipping/quote?weight=12.5&zone=international")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 16.50, q.Price) // 12.00 + 3kg surcharge started
}

func TestQuotePrefersStoredRule(t *testing.T) {
	r := quoteRouter(&stubRules{rule: &models.ShippingRule{
		Zone:      "international",
		MinWeight: 0,
		MaxWeight: 5,
		Price:     3.25,
		Carrier:   "dpd",
	}})

	code, q := getQuote(t, r, "/api/shipping/quote?weight=1.5&zone=international")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3.25, q.Price)
}

func TestQuoteRejectsBadWeight(t *testing.T) {
	r := quoteRouter(&stubRules{})

	code, _ := getQuote(t, r, "/api/shipping/quote?weight=abc")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = getQuote(t, r, "/api/shipping/quote?weight=-1")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = getQuote(t, r, "/api/shipping/quote")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestQuoteUnknownZoneIsFree(t *testing.T) {
	r := quoteRouter(&stubRules{})

	code, q := getQuote(t, r, "/api/shipping/quote?weight=3&zone=local-pickup")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, q.Price)
}
