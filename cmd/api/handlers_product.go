package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecomkit/storefront/internal/product"
)

// listProductsHandler handles GET /api/products.
// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "search"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} product.ListResponse
// @Router /products [get]
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := c.Query("q")
		items, err := repo.List(c.Request.Context(), product.Query{
			Q:          q,
			CategoryID: c.Query("category_id"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			abortErr(c, err)
			return
		}
		if items == nil {
			items = []product.Product{}
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

// getProductHandler handles GET /api/products/:id.
// @Summary Get one product
// @Tags products
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} product.Product
// @Failure 404 {object} product.HTTPError
// @Router /products/{id} [get]
func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		if req.Name == "" {
			badRequest(c, "name is required")
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			badRequest(c, "price must be a non-negative decimal")
			return
		}
		if req.Stock < 0 {
			badRequest(c, "stock must be non-negative")
			return
		}
		p := &product.Product{
			ID:             uuid.NewString(),
			Name:           req.Name,
			Description:    req.Description,
			Price:          price.StringFixed(2),
			Stock:          req.Stock,
			CategoryID:     req.CategoryID,
			Images:         req.Images,
			Specifications: req.Specifications,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		existing, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}

		updatePrice := false
		if req.Price != "" {
			price, err := decimal.NewFromString(req.Price)
			if err != nil || price.IsNegative() {
				badRequest(c, "price must be a non-negative decimal")
				return
			}
			existing.Price = price.StringFixed(2)
			updatePrice = true
		}
		existing.Name = req.Name
		existing.Description = req.Description
		if req.CategoryID != "" {
			existing.CategoryID = req.CategoryID
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				badRequest(c, "stock must be non-negative")
				return
			}
			existing.Stock = *req.Stock
		}
		if req.Images != nil {
			existing.Images = req.Images
		}
		if req.Specifications != nil {
			existing.Specifications = req.Specifications
		}

		if err := repo.Update(c.Request.Context(), existing, updatePrice); err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}
		if !ok {
			abortErr(c, product.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
