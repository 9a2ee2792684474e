package main

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecomkit/storefront/internal/httpx"
	"github.com/ecomkit/storefront/internal/payment"
)

// CreateChargeRequest payload for POST /api/payments/charges.
// swagger:model CreateChargeRequest
type CreateChargeRequest struct {
	OrderID string `json:"order_id"`
	Channel string `json:"channel" example:"alipay_wap"`
	// Required by wx_pub only.
	OpenID string `json:"open_id,omitempty"`
}

// CreateRefundRequest payload for POST /api/payments/refunds.
// swagger:model CreateRefundRequest
type CreateRefundRequest struct {
	OrderID string `json:"order_id"`
	// Minor units; zero means full refund.
	Amount int64  `json:"amount,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// createChargeHandler handles POST /api/payments/charges.
// @Summary Create a payment charge for an order
// @Tags payments
// @Accept json
// @Produce json
// @Param request body CreateChargeRequest true "charge payload"
// @Success 201 {object} payment.Charge
// @Failure 400 {object} product.HTTPError
// @Failure 409 {object} product.HTTPError
// @Failure 502 {object} product.HTTPError
// @Router /payments/charges [post]
func createChargeHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateChargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		if req.OrderID == "" || req.Channel == "" {
			badRequest(c, "order_id and channel are required")
			return
		}
		ch, err := svc.CreateCharge(c.Request.Context(), sessionUserID(c), req.OrderID, req.Channel, c.ClientIP(), req.OpenID)
		httpx.RecordOperation("create_charge", err)
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, ch)
	}
}

// webhookHandler handles POST /api/payments/webhook. The provider retries
// on any 5xx, so persistence failures surface as 500.
func webhookHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}
		signature := c.GetHeader("X-Pingplusplus-Signature")
		result, err := svc.HandleWebhook(c.Request.Context(), body, signature)
		httpx.RecordOperation("webhook", err)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": result})
	}
}

// verifyPaymentHandler handles GET /api/payments/verify-by-order/:order_number.
// Public: it backs the return-from-payment page before the session resumes.
func verifyPaymentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := svc.VerifyByOrderNumber(c.Request.Context(), c.Param("order_number"))
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// createRefundHandler handles POST /api/payments/refunds.
// @Summary Refund an order's captured payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body CreateRefundRequest true "refund payload"
// @Success 201 {object} payment.RefundLog
// @Failure 400 {object} product.HTTPError
// @Failure 404 {object} product.HTTPError
// @Router /payments/refunds [post]
func createRefundHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRefundRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		if req.OrderID == "" {
			badRequest(c, "order_id is required")
			return
		}
		if req.Amount < 0 {
			badRequest(c, "amount must be positive")
			return
		}
		l, err := svc.CreateRefund(c.Request.Context(), sessionUserID(c), req.OrderID, req.Amount, req.Reason)
		httpx.RecordOperation("create_refund", err)
		if err != nil {
			abortErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, l)
	}
}
