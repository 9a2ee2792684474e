package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ecomkit/storefront/docs"
	"github.com/ecomkit/storefront/internal/auth"
	"github.com/ecomkit/storefront/internal/cart"
	"github.com/ecomkit/storefront/internal/httpx"
	"github.com/ecomkit/storefront/internal/logistics"
	"github.com/ecomkit/storefront/internal/order"
	"github.com/ecomkit/storefront/internal/payment"
	"github.com/ecomkit/storefront/internal/product"
	"github.com/ecomkit/storefront/internal/user"
	"github.com/ecomkit/storefront/internal/verification"
)

type deps struct {
	tokens     *auth.Tokens
	log        *zap.Logger
	products   product.Repository
	categories product.CategoryRepository
	orders     *order.Service
	ordersRepo order.Repository
	payments   *payment.Service
	carts      cart.Repository
	users      *user.Service
	codes      *verification.Service
	express    *logistics.Client
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(d.log), httpx.Prometheus())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	api.POST("/auth/code", requestCodeHandler(d.codes))
	api.POST("/auth/login", loginHandler(d.users))
	api.POST("/admin/auth/login", adminLoginHandler(d.users))

	api.GET("/products", listProductsHandler(d.products))
	api.GET("/products/:id", getProductHandler(d.products))
	api.GET("/categories", listCategoriesHandler(d.categories))

	// Order creation and payment allow guest checkout: a guest order carries
	// no user id, and the ownership check inside the payment workflow matches
	// the empty session id against it.
	api.POST("/orders", httpx.OptionalAuth(d.tokens), createOrderHandler(d.orders))
	api.POST("/payments/charges", httpx.OptionalAuth(d.tokens), createChargeHandler(d.payments))

	authed := api.Group("", httpx.Auth(d.tokens))
	{
		authed.GET("/orders", listOrdersHandler(d.orders))
		authed.GET("/orders/:id", getOrderHandler(d.orders))
		authed.POST("/orders/:id/cancel", cancelOrderHandler(d.orders))
		authed.GET("/orders/:id/logistics", orderLogisticsHandler(d.orders, d.express))

		authed.GET("/cart", getCartHandler(d.carts))
		authed.POST("/cart/items", addToCartHandler(d.carts))
		authed.PUT("/cart/items/:id", updateCartItemHandler(d.carts))
		authed.DELETE("/cart/items/:id", removeCartItemHandler(d.carts))
		authed.DELETE("/cart", clearCartHandler(d.carts))

		authed.POST("/payments/refunds", createRefundHandler(d.payments))
	}

	// Webhook and the return-from-payment poll are unauthenticated: the
	// provider signs the former, order numbers gate the latter.
	api.POST("/payments/webhook", webhookHandler(d.payments))
	api.GET("/payments/verify-by-order/:order_number", verifyPaymentHandler(d.payments))

	admin := api.Group("/admin", httpx.AdminAuth(d.tokens))
	{
		admin.POST("/products", createProductHandler(d.products))
		admin.PUT("/products/:id", updateProductHandler(d.products))
		admin.DELETE("/products/:id", deleteProductHandler(d.products))

		admin.POST("/categories", createCategoryHandler(d.categories))
		admin.PUT("/categories/:id", updateCategoryHandler(d.categories))
		admin.DELETE("/categories/:id", deleteCategoryHandler(d.categories))

		admin.GET("/orders", adminListOrdersHandler(d.ordersRepo))
		admin.GET("/orders/:id", adminGetOrderHandler(d.ordersRepo))
		admin.PUT("/orders/:id/ship", shipOrderHandler(d.ordersRepo))
		admin.GET("/statistics", statisticsHandler(d.ordersRepo))
	}

	return r
}
