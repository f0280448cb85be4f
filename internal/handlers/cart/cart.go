package cart

import (
	"net/http"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/pricing"
	"github.com/RainersCode/honey-sub001/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

type Handler struct {
	Carts    *store.RedisCarts
	Products *store.ScyllaProducts
}

// Get returns the cart with its current total weight, so the
// storefront can show a live shipping estimate.
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	items, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot read cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":        items,
		"total_weight": pricing.TotalWeight(items),
	})
}

// Add puts a product in the cart, snapshotting its catalog data.
func (h *Handler) Add(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}

	productUUID, err := uuid.Parse(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.Products.Get(c.Request.Context(), gocql.UUID(productUUID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if !product.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product not available"})
		return
	}

	imageURL := ""
	if len(product.ImageURLs) > 0 {
		imageURL = product.ImageURLs[0]
	}

	item := models.CartItem{
		ProductID: input.ProductID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  input.Quantity,
		Weight:    product.Weight,
		ImageURL:  imageURL,
	}

	items, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot read cart"})
		return
	}

	found := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, item)
	}

	if err := h.Carts.Save(c.Request.Context(), userID, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart", "items": items})
}

// UpdateQuantity sets an exact quantity; zero removes the line.
func (h *Handler) UpdateQuantity(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	items, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot read cart"})
		return
	}

	updated := items[:0]
	for _, item := range items {
		if item.ProductID == input.ProductID {
			if input.Quantity == 0 {
				continue
			}
			item.Quantity = input.Quantity
		}
		updated = append(updated, item)
	}

	if err := h.Carts.Save(c.Request.Context(), userID, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": updated})
}

func (h *Handler) Remove(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	productID := c.Param("productId")

	items, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot read cart"})
		return
	}

	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	if err := h.Carts.Save(c.Request.Context(), userID, kept); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": kept})
}

func (h *Handler) Clear(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if err := h.Carts.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}})
}
