package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/storefront/internal/order"
)

// adminListOrdersHandler handles GET /api/admin/orders.
// @Summary List orders for the back office
// @Tags admin
// @Produce json
// @Param status query string false "filter by status"
// @Param order_number query string false "filter by order number substring"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {array} order.Order
// @Router /admin/orders [get]
func adminListOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}
		orders, total, err := repo.List(c.Request.Context(), order.Filter{
			Status:      order.Status(c.Query("status")),
			OrderNumber: c.Query("order_number"),
			Limit:       limit,
			Offset:      (page - 1) * limit,
		})
		if err != nil {
			abortErr(c, err)
			return
		}
		if orders == nil {
			orders = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"data": orders, "total": total, "page": page, "limit": limit})
	}
}

func adminGetOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o, "items": items})
	}
}

type shipOrderBody struct {
	TrackingNumber string `json:"tracking_number"`
}

// shipOrderHandler handles PUT /api/admin/orders/:id/ship. Only paid orders
// can ship.
func shipOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shipOrderBody
		if err := c.ShouldBindJSON(&req); err != nil || req.TrackingNumber == "" {
			badRequest(c, "tracking_number is required")
			return
		}
		if err := repo.SetTracking(c.Request.Context(), c.Param("id"), req.TrackingNumber); err != nil {
			abortErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func statisticsHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := repo.Stats(c.Request.Context())
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
