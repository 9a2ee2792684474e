package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecomkit/storefront/internal/product"
)

// listCategoriesHandler handles GET /api/categories.
// @Summary List catalog categories
// @Tags categories
// @Produce json
// @Success 200 {array} product.Category
// @Router /categories [get]
func listCategoriesHandler(repo product.CategoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := repo.ListCategories(c.Request.Context())
		if err != nil {
			abortErr(c, err)
			return
		}
		if cats == nil {
			cats = []product.Category{}
		}
		c.JSON(http.StatusOK, cats)
	}
}

func createCategoryHandler(repo product.CategoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		if req.Name == "" {
			badRequest(c, "name is required")
			return
		}
		cat := &product.Category{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			SortOrder:   req.SortOrder,
		}
		if err := repo.CreateCategory(c.Request.Context(), cat); err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

func updateCategoryHandler(repo product.CategoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		existing, err := repo.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}
		if req.Name != "" {
			existing.Name = req.Name
		}
		if req.Description != "" {
			existing.Description = req.Description
		}
		if req.SortOrder != nil {
			existing.SortOrder = *req.SortOrder
		}
		if err := repo.UpdateCategory(c.Request.Context(), existing); err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

func deleteCategoryHandler(repo product.CategoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortErr(c, err)
			return
		}
		if !ok {
			abortErr(c, product.ErrCategoryNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
