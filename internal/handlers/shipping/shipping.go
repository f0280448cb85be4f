package shipping

import (
	"log"
	"net/http"
	"strconv"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/pricing"
	"github.com/RainersCode/honey-sub001/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

type Handler struct {
	Rules   *store.ScyllaRules
	Pricing *pricing.Engine
}

// Quote prices a parcel for a zone without touching any cart:
// GET /api/shipping/quote?weight=3.2&zone=international
func (h *Handler) Quote(c *gin.Context) {
	weight, err := strconv.ParseFloat(c.Query("weight"), 64)
	if err != nil || weight < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid weight"})
		return
	}

	zone := c.DefaultQuery("zone", pricing.ZoneInternational)

	price := h.Pricing.ShippingPrice(c.Request.Context(), weight, zone)
	c.JSON(http.StatusOK, models.ShippingQuote{
		Zone:   zone,
		Weight: weight,
		Price:  pricing.Round2(price),
	})
}

// ListRules returns all rules, or one zone's with ?zone=.
func (h *Handler) ListRules(c *gin.Context) {
	var (
		rules []models.ShippingRule
		err   error
	)
	if zone := c.Query("zone"); zone != "" {
		rules, err = h.Rules.ListByZone(c.Request.Context(), zone)
	} else {
		rules, err = h.Rules.ListAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot load shipping rules"})
		return
	}
	if rules == nil {
		rules = []models.ShippingRule{}
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (h *Handler) CreateRule(c *gin.Context) {
	var req struct {
		Zone      string  `json:"zone" binding:"required"`
		MinWeight float64 `json:"min_weight"`
		MaxWeight float64 `json:"max_weight" binding:"required"`
		Price     float64 `json:"price"`
		Carrier   string  `json:"carrier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule", "details": err.Error()})
		return
	}

	if req.MinWeight < 0 || req.MinWeight >= req.MaxWeight {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_weight must be below max_weight"})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return
	}

	rule := &models.ShippingRule{
		ID:        gocql.UUID(uuid.New()),
		Zone:      req.Zone,
		MinWeight: req.MinWeight,
		MaxWeight: req.MaxWeight,
		Price:     req.Price,
		Carrier:   req.Carrier,
	}

	if err := h.Rules.Create(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save rule"})
		return
	}

	log.Printf("✅ Shipping rule created: %s %.2f-%.2f kg at %.2f€ (%s)",
		rule.Zone, rule.MinWeight, rule.MaxWeight, rule.Price, rule.Carrier)
	c.JSON(http.StatusCreated, rule)
}

func (h *Handler) DeleteRule(c *gin.Context) {
	zone := c.Query("zone")
	if zone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zone is required"})
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule id"})
		return
	}

	if err := h.Rules.Delete(c.Request.Context(), zone, gocql.UUID(ruleID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot delete rule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}
