package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/storefront/internal/user"
	"github.com/ecomkit/storefront/internal/verification"
)

type requestCodeBody struct {
	Phone string `json:"phone"`
}

// requestCodeHandler handles POST /api/auth/code.
func requestCodeHandler(codes *verification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requestCodeBody
		if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
			badRequest(c, "phone is required")
			return
		}
		if err := codes.Request(c.Request.Context(), req.Phone); err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sent": true})
	}
}

// loginHandler handles POST /api/auth/login.
// @Summary Log in with phone + SMS code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body user.LoginRequest true "login payload"
// @Success 200 {object} user.AuthResponse
// @Failure 401 {object} product.HTTPError
// @Router /auth/login [post]
func loginHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.Code == "" {
			badRequest(c, "phone and code are required")
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Phone, req.Code)
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// adminLoginHandler handles POST /api/admin/auth/login.
func adminLoginHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			badRequest(c, "username and password are required")
			return
		}
		res, err := svc.AdminLogin(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
