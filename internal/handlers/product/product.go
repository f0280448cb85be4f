package product

import (
	"log"
	"net/http"
	"time"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/services"
	"github.com/RainersCode/honey-sub001/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

type Handler struct {
	Products *store.ScyllaProducts
}

func (h *Handler) List(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot load products"})
		return
	}

	// Storefront listing only shows active products.
	active := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"products": active})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	p, err := h.Products.Get(c.Request.Context(), gocql.UUID(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Search proxies to Elasticsearch: GET /api/products/search?q=linden
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	results, err := services.SearchProducts(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	if results == nil {
		results = []map[string]interface{}{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type productInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required"`
	Stock       int      `json:"stock"`
	SKU         string   `json:"sku"`
	Weight      float64  `json:"weight" binding:"required"`
	Category    string   `json:"category"`
	ImageURLs   []string `json:"image_urls"`
	Tags        []string `json:"tags"`
	IsActive    *bool    `json:"is_active"`
}

func (h *Handler) Create(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product", "details": err.Error()})
		return
	}
	if input.Price < 0 || input.Weight < 0 || input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Negative values not allowed"})
		return
	}

	now := time.Now().UTC()
	p := &models.Product{
		ID:          gocql.UUID(uuid.New()),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		SKU:         input.SKU,
		Weight:      input.Weight,
		Category:    input.Category,
		ImageURLs:   input.ImageURLs,
		Tags:        input.Tags,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}

	if err := h.Products.Save(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save product"})
		return
	}

	// Search index lags behind the catalog, never blocks it.
	go services.IndexProduct(p)

	log.Printf("✅ Product created: %s (%s)", p.Name, p.ID.String())
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	existing, err := h.Products.Get(c.Request.Context(), gocql.UUID(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product", "details": err.Error()})
		return
	}
	if input.Price < 0 || input.Weight < 0 || input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Negative values not allowed"})
		return
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Stock = input.Stock
	existing.SKU = input.SKU
	existing.Weight = input.Weight
	existing.Category = input.Category
	existing.ImageURLs = input.ImageURLs
	existing.Tags = input.Tags
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := h.Products.Save(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save product"})
		return
	}

	go services.IndexProduct(existing)

	c.JSON(http.StatusOK, existing)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if err := h.Products.Delete(c.Request.Context(), gocql.UUID(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot delete product"})
		return
	}

	go services.DeleteProductIndex(id.String())

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadImage stores one image in MinIO and returns its URL; the
// admin UI then attaches it to a product via Update.
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	url, err := services.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		log.Printf("❌ Image upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
