package admin

import (
	"net/http"

	"github.com/RainersCode/honey-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Orders   *store.ScyllaOrders
	Products *store.ScyllaProducts
}

// Dashboard aggregates order counters for the back-office landing
// page. Revenue only counts settled orders.
func (h *Handler) Dashboard(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var paid, delivered int
	var revenue float64
	for _, o := range orders {
		if o.IsPaid {
			paid++
			revenue += o.TotalPrice
		}
		if o.IsDelivered {
			delivered++
		}
	}

	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	lowStock := 0
	for _, p := range products {
		if p.Stock <= 5 {
			lowStock++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": gin.H{
			"total":     len(orders),
			"paid":      paid,
			"unpaid":    len(orders) - paid,
			"delivered": delivered,
		},
		"revenue":            revenue,
		"products":           len(products),
		"low_stock_products": lowStock,
	})
}
