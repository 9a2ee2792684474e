package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/storefront/internal/cart"
)

// getCartHandler handles GET /api/cart.
// @Summary Get the caller's cart
// @Tags cart
// @Produce json
// @Success 200 {object} cart.View
// @Router /cart [get]
func getCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := repo.Get(c.Request.Context(), sessionUserID(c))
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func addToCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cart.AddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		if req.ProductID == "" || req.Quantity < 1 {
			badRequest(c, "product_id and a positive quantity are required")
			return
		}
		if err := repo.Add(c.Request.Context(), sessionUserID(c), req.ProductID, req.Quantity); err != nil {
			abortErr(c, err)
			return
		}
		c.Status(http.StatusCreated)
	}
}

func updateCartItemHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cart.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		if req.Quantity < 1 {
			badRequest(c, "quantity must be >= 1")
			return
		}
		if err := repo.UpdateQuantity(c.Request.Context(), sessionUserID(c), c.Param("id"), req.Quantity); err != nil {
			abortErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func removeCartItemHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Remove(c.Request.Context(), sessionUserID(c), c.Param("id")); err != nil {
			abortErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func clearCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Clear(c.Request.Context(), sessionUserID(c)); err != nil {
			abortErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
