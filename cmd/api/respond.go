package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/storefront/internal/cart"
	"github.com/ecomkit/storefront/internal/order"
	"github.com/ecomkit/storefront/internal/payment"
	"github.com/ecomkit/storefront/internal/product"
	"github.com/ecomkit/storefront/internal/user"
	"github.com/ecomkit/storefront/internal/verification"
)

// abortErr maps domain errors onto HTTP statuses. Business-rule failures are
// 4xx and final; gateway/storage failures are 5xx and retryable.
func abortErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, payment.ErrAlreadyPaid):
		status = http.StatusConflict
	case errors.Is(err, payment.ErrInvalidChannel),
		errors.Is(err, payment.ErrNoSuccessfulPayment),
		errors.Is(err, payment.ErrRefundExceedsPayment),
		errors.Is(err, verification.ErrCodeMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, user.ErrBadCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, verification.ErrThrottled),
		errors.Is(err, verification.ErrTooManyTries):
		status = http.StatusTooManyRequests
	case errors.Is(err, payment.ErrGatewayTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, payment.ErrGateway):
		status = http.StatusBadGateway
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func sessionUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
