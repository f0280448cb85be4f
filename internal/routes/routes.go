// Package routes wires stores, the pricing engine and the settlement
// service into handlers and mounts them on the Gin engine.
package routes

import (
	"github.com/RainersCode/honey-sub001/internal/handlers/admin"
	"github.com/RainersCode/honey-sub001/internal/handlers/cart"
	"github.com/RainersCode/honey-sub001/internal/handlers/order"
	"github.com/RainersCode/honey-sub001/internal/handlers/payment"
	"github.com/RainersCode/honey-sub001/internal/handlers/product"
	"github.com/RainersCode/honey-sub001/internal/handlers/shipping"
	"github.com/RainersCode/honey-sub001/internal/handlers/user"
	"github.com/RainersCode/honey-sub001/internal/middleware"
	"github.com/RainersCode/honey-sub001/internal/pricing"
	"github.com/RainersCode/honey-sub001/internal/settlement"
	"github.com/RainersCode/honey-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	orders := store.NewOrders()
	products := store.NewProducts()
	carts := store.NewCarts()
	rules := store.NewRules()
	users := store.NewUsers()

	engine := &pricing.Engine{Rules: rules}

	webhook := &payment.WebhookHandler{
		Settler:   settlement.NewService(orders),
		AfterPaid: payment.ConfirmationHook(orders, carts),
	}
	checkout := &payment.CheckoutHandler{
		Orders:   orders,
		Products: products,
		Carts:    carts,
		Pricing:  engine,
	}
	productH := &product.Handler{Products: products}
	cartH := &cart.Handler{Carts: carts, Products: products}
	orderH := &order.Handler{Orders: orders}
	shippingH := &shipping.Handler{Rules: rules, Pricing: engine}
	userH := &user.Handler{Users: users}
	adminH := &admin.Handler{Orders: orders, Products: products}

	api := r.Group("/api")

	// Public catalog and shipping quotes
	api.GET("/products", productH.List)
	api.GET("/products/search", productH.Search)
	api.GET("/products/:id", productH.Get)
	api.GET("/shipping/quote", shippingH.Quote)

	// Stripe calls this one; signature is the only auth.
	api.POST("/payments/webhook", webhook.Handle)

	// Accounts
	auth := api.Group("/auth")
	auth.POST("/register", middleware.RegisterRateLimit(), userH.Register)
	auth.POST("/login", middleware.LoginRateLimit(), userH.Login)
	auth.GET("/:provider", userH.BeginAuth)
	auth.GET("/:provider/callback", userH.CallbackAuth)

	// Everything below needs a valid JWT.
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())

	authed.GET("/me", userH.Me)

	authed.GET("/cart", cartH.Get)
	authed.POST("/cart/items", cartH.Add)
	authed.PUT("/cart/items", cartH.UpdateQuantity)
	authed.DELETE("/cart/items/:productId", cartH.Remove)
	authed.DELETE("/cart", cartH.Clear)

	authed.POST("/checkout", checkout.Checkout)

	authed.GET("/orders", orderH.ListMine)
	authed.GET("/orders/:id", orderH.Get)

	// Back office
	adm := api.Group("/admin")
	adm.Use(middleware.AuthRequired(), middleware.RequireAdmin)

	adm.GET("/dashboard", adminH.Dashboard)

	adm.POST("/products", productH.Create)
	adm.PUT("/products/:id", productH.Update)
	adm.DELETE("/products/:id", productH.Delete)
	adm.POST("/products/:id/image", productH.UploadImage)

	adm.GET("/shipping/rules", shippingH.ListRules)
	adm.POST("/shipping/rules", shippingH.CreateRule)
	adm.DELETE("/shipping/rules/:id", shippingH.DeleteRule)

	adm.GET("/orders", orderH.ListAll)
	adm.PUT("/orders/:id/deliver", orderH.MarkDelivered)
}
