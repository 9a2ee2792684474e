package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecomkit/storefront/internal/order"
)

// OrderStore is the slice of the order repository the payment workflow
// needs. *order.PGRepo satisfies it.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*order.Order, []order.Item, error)
	GetByNumber(ctx context.Context, number string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	MarkRefunded(ctx context.Context, id string) error
}

// ChannelConfig drives the channel-specific extra parameters sent with a
// charge. ReturnURLs is an explicit deployment flag; headless deployments
// (native app clients) turn it off.
type ChannelConfig struct {
	AppID      string
	Currency   string
	ReturnURLs bool
	ReturnBase string
}

type Service struct {
	payments Repository
	orders   OrderStore
	gateway  Gateway
	verifier *Verifier
	cfg      ChannelConfig
	log      *zap.Logger
}

func NewService(payments Repository, orders OrderStore, gateway Gateway, verifier *Verifier, cfg ChannelConfig, log *zap.Logger) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "cny"
	}
	return &Service{payments: payments, orders: orders, gateway: gateway, verifier: verifier, cfg: cfg, log: log}
}

// buildChannelExtra returns the per-channel extra parameters. Which channels
// get return URLs is decided by configuration, not by sniffing hostnames.
func (s *Service) buildChannelExtra(channel, openID string) map[string]any {
	extra := map[string]any{}
	if channel == ChannelWxPub && openID != "" {
		extra["open_id"] = openID
	}
	if !s.cfg.ReturnURLs {
		return extra
	}
	switch channel {
	case ChannelAlipayWap:
		extra["success_url"] = s.cfg.ReturnBase + "/payment/result"
		extra["cancel_url"] = s.cfg.ReturnBase + "/payment/cancel"
	case ChannelAlipayPC:
		extra["success_url"] = s.cfg.ReturnBase + "/payment/result"
	case ChannelWxWap:
		extra["result_url"] = s.cfg.ReturnBase + "/payment/result"
	}
	return extra
}

// CreateCharge initiates payment for an order the requester owns. The
// gateway is charged round(total*100) minor units tagged with the order
// number. Gateway failures propagate; the caller re-invokes, no retry here.
func (s *Service) CreateCharge(ctx context.Context, userID, orderID, channel, clientIP, openID string) (*Charge, error) {
	if !ValidChannel(channel) {
		return nil, fmt.Errorf("%s: %w", channel, ErrInvalidChannel)
	}

	o, _, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, order.ErrNotFound
	}
	if o.Status != order.StatusPending && o.Status != order.StatusPendingPayment {
		return nil, fmt.Errorf("order %s is %s: %w", o.OrderNumber, o.Status, order.ErrInvalidState)
	}
	if _, err := s.payments.SucceededPaymentLog(ctx, o.ID); err == nil {
		return nil, ErrAlreadyPaid
	} else if err != ErrNotFound {
		return nil, err
	}

	total, err := decimal.NewFromString(o.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("order %s has invalid total %q", o.ID, o.TotalAmount)
	}
	amount := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	ch, err := s.gateway.CreateCharge(ctx, ChargeRequest{
		OrderNo:  o.OrderNumber,
		AppID:    s.cfg.AppID,
		Channel:  channel,
		Amount:   amount,
		ClientIP: clientIP,
		Currency: s.cfg.Currency,
		Subject:  "Order " + o.OrderNumber,
		Extra:    s.buildChannelExtra(channel, openID),
	})
	if err != nil {
		return nil, err
	}

	raw, _ := json.Marshal(ch)
	l := &PaymentLog{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		ChargeID:   ch.ID,
		Channel:    channel,
		Amount:     ch.Amount,
		Currency:   ch.Currency,
		Status:     LogPending,
		RawPayload: raw,
	}
	if ch.Paid {
		l.Status = LogSucceeded
		now := time.Now()
		l.PaidAt = &now
	}
	if err := s.payments.CreatePaymentLog(ctx, l); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, order.StatusPendingPayment); err != nil {
		return nil, err
	}

	s.log.Info("charge created",
		zap.String("order_number", o.OrderNumber),
		zap.String("charge_id", ch.ID),
		zap.String("channel", channel),
		zap.Int64("amount", ch.Amount))
	return ch, nil
}

// Webhook outcomes. Signature failures and replays acknowledge without
// mutating state; persistence errors surface so the provider redelivers.
const (
	ResultSignatureInvalid = "signature_invalid"
	ResultAlreadyProcessed = "already_processed"
	ResultSuccess          = "success"
)

// HandleWebhook runs received -> verified -> {duplicate | applied}.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (string, error) {
	if err := s.verifier.Verify(body, signature); err != nil {
		s.log.Warn("webhook signature rejected", zap.Error(err))
		return ResultSignatureInvalid, nil
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		s.log.Warn("webhook body unparseable", zap.Error(err))
		return ResultSignatureInvalid, nil
	}

	if ev.ID != "" {
		seen, err := s.payments.EventSeen(ctx, ev.ID)
		if err != nil {
			return "", err
		}
		if seen {
			s.log.Info("webhook replay ignored", zap.String("event_id", ev.ID))
			return ResultAlreadyProcessed, nil
		}
	}

	switch ev.Type {
	case EventChargeSucceeded:
		var ch Charge
		if err := json.Unmarshal(ev.Data.Object, &ch); err != nil {
			return "", fmt.Errorf("decode charge object: %w", err)
		}
		if err := s.applyChargeSucceeded(ctx, &ch, ev.ID); err != nil {
			return "", err
		}
	case EventRefundSucceeded:
		var rf Refund
		if err := json.Unmarshal(ev.Data.Object, &rf); err != nil {
			return "", fmt.Errorf("decode refund object: %w", err)
		}
		if err := s.applyRefundSucceeded(ctx, &rf, ev.ID); err != nil {
			return "", err
		}
	default:
		// Unrecognized event types are accepted and ignored.
		s.log.Debug("webhook event ignored", zap.String("type", ev.Type))
	}
	return ResultSuccess, nil
}

func (s *Service) applyChargeSucceeded(ctx context.Context, ch *Charge, eventID string) error {
	l, err := s.payments.GetPaymentLogByCharge(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("charge %s: %w", ch.ID, err)
	}
	paidAt := time.Now()
	if ch.TimePaid > 0 {
		paidAt = time.Unix(ch.TimePaid, 0)
	}
	if err := s.payments.MarkPaymentSucceeded(ctx, ch.ID, eventID, paidAt); err != nil {
		return err
	}
	if err := s.orders.MarkPaid(ctx, l.OrderID, paidAt); err != nil {
		if errors.Is(err, order.ErrInvalidState) {
			o, _, gerr := s.orders.GetByID(ctx, l.OrderID)
			if gerr == nil && o.Status == order.StatusPaid {
				// Lost the settlement race with another delivery of the
				// same charge; nothing left to apply.
				return nil
			}
			// Money was captured for an order that is no longer payable
			// (cancelled while the charge was in flight). The log stays
			// settled; this needs an operator-issued refund.
			s.log.Error("charge settled for non-payable order",
				zap.String("order_id", l.OrderID),
				zap.String("charge_id", ch.ID),
				zap.String("event_id", eventID))
			return nil
		}
		return err
	}
	s.log.Info("order settled",
		zap.String("order_id", l.OrderID),
		zap.String("charge_id", ch.ID),
		zap.String("event_id", eventID))
	return nil
}

func (s *Service) applyRefundSucceeded(ctx context.Context, rf *Refund, eventID string) error {
	if err := s.payments.MarkRefundSucceeded(ctx, rf.ID, eventID); err != nil {
		return err
	}
	l, err := s.payments.GetPaymentLogByCharge(ctx, rf.ChargeID)
	if err != nil {
		return fmt.Errorf("refund %s charge %s: %w", rf.ID, rf.ChargeID, err)
	}
	if err := s.orders.MarkRefunded(ctx, l.OrderID); err != nil {
		return err
	}
	s.log.Info("order refunded",
		zap.String("order_id", l.OrderID),
		zap.String("refund_id", rf.ID),
		zap.String("event_id", eventID))
	return nil
}

// PaymentState is the public payment view returned to the return-from-
// payment page. No ownership check: order numbers are unguessable.
type PaymentState struct {
	OrderNumber   string       `json:"order_number"`
	OrderStatus   order.Status `json:"order_status"`
	PaymentStatus string       `json:"payment_status"`
	ChargeID      string       `json:"charge_id,omitempty"`
	Amount        int64        `json:"amount,omitempty"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
}

// VerifyByOrderNumber is the polling fallback for delayed or dropped
// webhooks. At most one gateway query per call: if the charge settled while
// the webhook went missing, the same settlement logic is applied once and
// the refreshed state returned.
func (s *Service) VerifyByOrderNumber(ctx context.Context, orderNumber string) (*PaymentState, error) {
	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	l, err := s.payments.LatestPaymentLog(ctx, o.ID)
	if err == ErrNotFound {
		return &PaymentState{OrderNumber: o.OrderNumber, OrderStatus: o.Status, PaymentStatus: o.PaymentStatus}, nil
	}
	if err != nil {
		return nil, err
	}

	if l.Status == LogPending {
		ch, err := s.gateway.RetrieveCharge(ctx, l.ChargeID)
		if err != nil {
			return nil, err
		}
		if ch.Paid {
			if err := s.applyChargeSucceeded(ctx, ch, ""); err != nil {
				return nil, err
			}
			if o, err = s.orders.GetByNumber(ctx, orderNumber); err != nil {
				return nil, err
			}
			if l, err = s.payments.LatestPaymentLog(ctx, o.ID); err != nil {
				return nil, err
			}
		}
	}

	return &PaymentState{
		OrderNumber:   o.OrderNumber,
		OrderStatus:   o.Status,
		PaymentStatus: l.Status,
		ChargeID:      l.ChargeID,
		Amount:        l.Amount,
		PaidAt:        l.PaidAt,
	}, nil
}

// CreateRefund issues a refund against the order's captured charge. Order
// status is left alone; the refund webhook closes the loop.
func (s *Service) CreateRefund(ctx context.Context, userID, orderID string, amount int64, reason string) (*RefundLog, error) {
	o, _, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, order.ErrNotFound
	}

	captured, err := s.payments.SucceededPaymentLog(ctx, o.ID)
	if err == ErrNotFound {
		return nil, ErrNoSuccessfulPayment
	}
	if err != nil {
		return nil, err
	}

	if amount == 0 {
		amount = captured.Amount
	}
	if amount > captured.Amount {
		return nil, fmt.Errorf("requested %d of %d: %w", amount, captured.Amount, ErrRefundExceedsPayment)
	}

	rf, err := s.gateway.CreateRefund(ctx, captured.ChargeID, RefundRequest{Amount: amount, Description: reason})
	if err != nil {
		return nil, err
	}

	l := &RefundLog{
		ID:       uuid.NewString(),
		OrderID:  o.ID,
		ChargeID: captured.ChargeID,
		RefundID: rf.ID,
		Amount:   rf.Amount,
		Status:   LogPending,
		Reason:   reason,
	}
	if rf.Succeed {
		l.Status = LogSucceeded
	}
	if err := s.payments.CreateRefundLog(ctx, l); err != nil {
		return nil, err
	}

	s.log.Info("refund created",
		zap.String("order_id", o.ID),
		zap.String("refund_id", rf.ID),
		zap.Int64("amount", rf.Amount))
	return l, nil
}
