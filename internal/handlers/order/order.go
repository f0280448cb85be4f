package order

import (
	"net/http"
	"time"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Orders *store.ScyllaOrders
}

// ListMine returns the authenticated user's order history.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	orders, err := h.Orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot load orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get returns one order; owners see their own, admins see any.
func (h *Handler) Get(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if o.UserID != c.GetString("user_id") && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
		return
	}

	c.JSON(http.StatusOK, o)
}

// ListAll is the back-office order table.
func (h *Handler) ListAll(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot load orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// MarkDelivered records fulfilment of a paid order.
func (h *Handler) MarkDelivered(c *gin.Context) {
	orderID := c.Param("id")

	o, err := h.Orders.Get(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if !o.IsPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is not paid yet"})
		return
	}

	if err := h.Orders.MarkDelivered(c.Request.Context(), orderID, time.Now().UTC()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot update order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order marked as delivered"})
}
