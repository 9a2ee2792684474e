package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/storefront/internal/httpx"
	"github.com/ecomkit/storefront/internal/logistics"
	"github.com/ecomkit/storefront/internal/order"
)

// createOrderHandler handles POST /api/orders.
// @Summary Create an order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body order.CreateOrderRequest true "order payload"
// @Success 201 {object} order.Summary
// @Failure 400 {object} product.HTTPError
// @Failure 404 {object} product.HTTPError
// @Failure 409 {object} product.HTTPError
// @Router /orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		summary, err := svc.Create(c.Request.Context(), sessionUserID(c), req)
		httpx.RecordOperation("create_order", err)
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

// listOrdersHandler handles GET /api/orders.
// @Summary List the caller's orders
// @Tags orders
// @Produce json
// @Success 200 {array} order.Order
// @Router /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		orders, err := svc.ListByUser(c.Request.Context(), sessionUserID(c), limit, offset)
		if err != nil {
			abortErr(c, err)
			return
		}
		if orders == nil {
			orders = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"items": orders, "limit": limit, "offset": offset})
	}
}

// getOrderHandler handles GET /api/orders/:id.
// @Summary Get one order with items
// @Tags orders
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} order.Order
// @Failure 404 {object} product.HTTPError
// @Router /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := svc.Get(c.Request.Context(), sessionUserID(c), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o, "items": items})
	}
}

// cancelOrderHandler handles POST /api/orders/:id/cancel.
// @Summary Cancel a pending order
// @Tags orders
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} order.Order
// @Failure 404 {object} product.HTTPError
// @Failure 409 {object} product.HTTPError
// @Router /orders/{id}/cancel [post]
func cancelOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Cancel(c.Request.Context(), sessionUserID(c), c.Param("id"))
		httpx.RecordOperation("cancel_order", err)
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// orderLogisticsHandler handles GET /api/orders/:id/logistics.
func orderLogisticsHandler(svc *order.Service, express *logistics.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, _, err := svc.Get(c.Request.Context(), sessionUserID(c), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}
		if o.TrackingNumber == "" {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "no tracking information yet"})
			return
		}
		tracking, err := express.QueryTracking(c.Request.Context(), o.TrackingNumber)
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "tracking": tracking})
	}
}
