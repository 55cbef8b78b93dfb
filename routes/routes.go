package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edpharma/controllers"
	"edpharma/middleware"
	"edpharma/services"
)

type Handlers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Orders   *controllers.OrderController
	Admin    *controllers.AdminController
}

func RegisterRoutes(r *gin.Engine, h Handlers, identity *services.Identity, limiter *middleware.RateLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/register", limiter.Limit(), h.Auth.Register)
		api.POST("/login", limiter.Limit(), h.Auth.Login)
		api.POST("/logout", h.Auth.Logout)
		api.GET("/products", h.Products.GetProductsPublic)
		api.GET("/products/:id", h.Products.GetProductByID)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(identity))
		{
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.GET("/stats", h.Admin.GetStats)
				admin.GET("/users", h.Admin.GetUsers)

				admin.POST("/products", h.Products.CreateProduct)
				admin.PUT("/products/:id", h.Products.UpdateProduct)
				admin.DELETE("/products/:id", h.Products.DeleteProduct)
				admin.GET("/products", h.Products.GetProductsAdmin)

				admin.GET("/orders", h.Admin.GetOrdersAdmin)
				admin.GET("/orders/:id", h.Admin.GetOrderByIDAdmin)
				admin.PUT("/orders/:id/status", h.Admin.UpdateOrderStatus)
				admin.PUT("/orders/:id/cancel", h.Admin.CancelOrderAdmin)
			}

			user := protected.Group("/user")
			{
				user.GET("/me", h.Auth.Me)
				user.GET("/products", h.Products.GetProductsPublic)

				user.POST("/cart", h.Cart.AddToCart)
				user.GET("/cart", h.Cart.GetCart)
				user.PUT("/cart/:productId", h.Cart.UpdateCart)
				user.DELETE("/cart/:productId", h.Cart.RemoveFromCart)
				user.DELETE("/cart", h.Cart.ClearCart)

				user.POST("/checkout", h.Checkout.BeginCheckout)
				user.GET("/checkout", h.Checkout.GetCheckout)
				user.DELETE("/checkout", h.Checkout.DiscardCheckout)
				user.PUT("/checkout/contact", h.Checkout.UpdateContact)
				user.PUT("/checkout/shipping", h.Checkout.UpdateShipping)
				user.PUT("/checkout/payment", h.Checkout.UpdatePayment)
				user.POST("/checkout/validate", h.Checkout.ValidateField)
				user.POST("/checkout/next", h.Checkout.NextStep)
				user.POST("/checkout/back", h.Checkout.PreviousStep)
				user.POST("/checkout/confirm", h.Checkout.ConfirmOrder)

				user.GET("/orders", h.Orders.GetOrders)
				user.GET("/orders/summary", h.Orders.GetOrderSummary)
				user.GET("/orders/ws", h.Orders.OrdersWS)
				user.GET("/orders/:id", h.Orders.GetOrderByID)
				user.GET("/orders/:id/invoice", h.Orders.GetInvoice)
				user.PUT("/orders/:id/cancel", h.Orders.CancelOrder)
			}
		}
	}
}
