package payment

import (
	"context"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/pricing"
	"github.com/RainersCode/honey-sub001/internal/store"
	"github.com/RainersCode/honey-sub001/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// CheckoutHandler freezes the cart into an order snapshot and opens a
// PaymentIntent for it. Prices, weights and the breakdown are frozen
// here; the webhook later only flips the paid flag.
type CheckoutHandler struct {
	Orders   *store.ScyllaOrders
	Products *store.ScyllaProducts
	Carts    *store.RedisCarts
	Pricing  *pricing.Engine
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req struct {
		DeliveryMethod string `json:"delivery_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx := c.Request.Context()

	items, err := h.Carts.Get(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot read cart"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	// Refresh each line against the catalog so stale carts cannot buy
	// at outdated prices, and verify stock.
	type reservation struct {
		id       gocql.UUID
		stock    int
		quantity int
	}
	reservations := make([]reservation, 0, len(items))

	for i, item := range items {
		productUUID, err := uuid.Parse(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id: " + item.ProductID})
			return
		}

		product, err := h.Products.Get(ctx, gocql.UUID(productUUID))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found: " + item.ProductID})
			return
		}

		if !product.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product no longer available", "product": product.Name})
			return
		}
		if product.Stock < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Insufficient stock",
				"product":   product.Name,
				"available": product.Stock,
				"requested": item.Quantity,
			})
			return
		}

		items[i].Name = product.Name
		items[i].UnitPrice = product.Price
		items[i].Weight = product.Weight
		reservations = append(reservations, reservation{id: product.ID, stock: product.Stock, quantity: item.Quantity})
	}

	breakdown := h.Pricing.Breakdown(ctx, items, req.DeliveryMethod)
	if breakdown.ShippingPrice == 0 {
		// The engine only prices unknown zones at zero. Refuse rather
		// than silently ship for free.
		log.Printf("⚠️ No shipping price resolvable for zone %q (user %s)", req.DeliveryMethod, userID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping unavailable for zone " + req.DeliveryMethod})
		return
	}

	for _, r := range reservations {
		applied, err := h.Products.DecrementStock(ctx, r.id, r.stock, r.quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stock update failed"})
			return
		}
		if !applied {
			c.JSON(http.StatusConflict, gin.H{"error": "Stock changed while checking out, please retry"})
			return
		}
	}

	order := &models.Order{
		ID:             gocql.UUID(uuid.New()),
		UserID:         userID,
		Email:          email,
		Items:          items,
		DeliveryMethod: req.DeliveryMethod,
		ItemsPrice:     breakdown.ItemsPrice,
		ShippingPrice:  breakdown.ShippingPrice,
		TaxPrice:       breakdown.TaxPrice,
		TotalPrice:     breakdown.TotalPrice,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.Orders.Insert(ctx, order); err != nil {
		log.Printf("❌ Order insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create order"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(order.TotalPrice * 100))),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"orderId": order.ID.String(),
			"user_id": userID,
			"email":   email,
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Stripe error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment creation failed", "details": err.Error()})
		return
	}

	log.Printf("💳 Checkout created: order %s, intent %s (%.2f€) for %s",
		order.ID.String(), intent.ID, order.TotalPrice, email)

	c.JSON(http.StatusOK, gin.H{
		"client_secret":  intent.ClientSecret,
		"payment_id":     intent.ID,
		"order_id":       order.ID.String(),
		"items_price":    order.ItemsPrice,
		"shipping_price": order.ShippingPrice,
		"tax_price":      order.TaxPrice,
		"total_price":    order.TotalPrice,
		"currency":       "eur",
		"items_count":    len(items),
	})
}

// ConfirmationHook builds the AfterPaid side effects for the webhook:
// clear the buyer's cart and send the confirmation mail with the PDF
// invoice attached.
func ConfirmationHook(orders *store.ScyllaOrders, carts *store.RedisCarts) func(orderID string) {
	return func(orderID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		order, err := orders.Get(ctx, orderID)
		if err != nil {
			log.Printf("❌ Cannot load settled order %s for confirmation: %v", orderID, err)
			return
		}

		if err := carts.Clear(ctx, order.UserID); err == nil {
			log.Printf("🧹 Cart cleared for %s", order.UserID)
		}

		html := utils.GenerateOrderConfirmationHTML(order)

		var pdf []byte
		if frontendURL := os.Getenv("INVOICE_PAGE_URL"); frontendURL != "" {
			qr, err := utils.GenerateSepaQR(
				os.Getenv("FARM_IBAN"), os.Getenv("FARM_BIC"), os.Getenv("FARM_NAME"),
				order.ID.String(), order.TotalPrice)
			if err != nil {
				log.Printf("⚠️ SEPA QR generation failed: %v", err)
			}
			pdf, err = utils.RenderInvoicePDF(frontendURL, order.ID.String(), qr)
			if err != nil {
				log.Printf("❌ Invoice PDF rendering failed: %v", err)
				pdf = nil
			}
		}

		to := order.Email
		if order.PaymentResult != nil && order.PaymentResult.EmailAddress != "" {
			to = order.PaymentResult.EmailAddress
		}
		if err := utils.SendConfirmationEmail(to, "Your honey order is confirmed", html, pdf); err != nil {
			log.Printf("❌ Confirmation e-mail failed for order %s: %v", orderID, err)
		} else {
			log.Println("📧 Confirmation e-mail sent to", to)
		}
	}
}
