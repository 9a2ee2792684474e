package payment

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("payment log not found")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrNoSuccessfulPayment  = errors.New("no successful payment for order")
	ErrRefundExceedsPayment = errors.New("refund amount exceeds captured payment")
	ErrInvalidChannel       = errors.New("invalid payment channel")
	ErrGateway              = errors.New("payment gateway error")
	ErrGatewayTimeout       = errors.New("payment gateway timeout")
	ErrSignatureInvalid     = errors.New("webhook signature invalid")
)

const (
	LogPending   = "pending"
	LogSucceeded = "succeeded"
	LogFailed    = "failed"
)

const (
	ChannelAlipayWap = "alipay_wap"
	ChannelAlipayPC  = "alipay_pc_direct"
	ChannelWxPub     = "wx_pub"
	ChannelWxWap     = "wx_wap"
)

func ValidChannel(ch string) bool {
	switch ch {
	case ChannelAlipayWap, ChannelAlipayPC, ChannelWxPub, ChannelWxWap:
		return true
	}
	return false
}

// PaymentLog records one charge attempt. At most one row per order ever
// reaches succeeded; the workflow enforces that, not the schema.
type PaymentLog struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id,omitempty"`
	ChargeID string `json:"charge_id"`
	Channel  string `json:"channel"`
	// Minor units (fen).
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	// External event id of the webhook that settled this log. The replay
	// defense keys off this column.
	EventID    string          `json:"event_id,omitempty"`
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

type RefundLog struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	ChargeID  string    `json:"charge_id"`
	RefundID  string    `json:"refund_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	EventID   string    `json:"event_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Charge is the gateway's charge object.
type Charge struct {
	ID         string         `json:"id"`
	OrderNo    string         `json:"order_no"`
	AppID      string         `json:"app,omitempty"`
	Channel    string         `json:"channel"`
	Amount     int64          `json:"amount"`
	Currency   string         `json:"currency"`
	Subject    string         `json:"subject,omitempty"`
	Paid       bool           `json:"paid"`
	TimePaid   int64          `json:"time_paid,omitempty"`
	Credential map[string]any `json:"credential,omitempty"`
}

// Refund is the gateway's refund object.
type Refund struct {
	ID          string `json:"id"`
	ChargeID    string `json:"charge"`
	OrderNo     string `json:"order_no,omitempty"`
	Amount      int64  `json:"amount"`
	Succeed     bool   `json:"succeed"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
}

// Event is an inbound webhook notification.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created,omitempty"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

const (
	EventChargeSucceeded = "charge.succeeded"
	EventRefundSucceeded = "refund.succeeded"
)
