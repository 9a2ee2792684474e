package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecomkit/storefront/internal/product"
)

// CartClearer empties a user's cart after checkout. Failures are logged and
// swallowed: the order stands either way.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// ExpiryPublisher schedules the auto-cancel of an order that is still unpaid
// after the configured delay.
type ExpiryPublisher interface {
	PublishOrderExpiry(orderID string) error
}

type Service struct {
	orders   Repository
	products product.Repository
	carts    CartClearer
	expiry   ExpiryPublisher
	log      *zap.Logger
}

func NewService(orders Repository, products product.Repository, carts CartClearer, expiry ExpiryPublisher, log *zap.Logger) *Service {
	return &Service{orders: orders, products: products, carts: carts, expiry: expiry, log: log}
}

// Create validates the requested line items against the live catalog,
// freezes product snapshots, and persists order + items + stock decrements
// atomically. userID may be empty for guest checkouts.
func (s *Service) Create(ctx context.Context, userID string, req CreateOrderRequest) (*Summary, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order has no items: %w", ErrInvalidState)
	}

	total := decimal.Zero
	items := make([]Item, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("product %s: quantity must be >= 1: %w", line.ProductID, ErrInvalidState)
		}
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrNotFound)
		}
		// Early check only; the transaction's conditional update is what
		// actually guards against concurrent oversell.
		if p.Stock < line.Quantity {
			return nil, fmt.Errorf("product %s: %w", p.Name, ErrInsufficientStock)
		}

		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s has invalid price %q", p.ID, p.Price)
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)

		items = append(items, Item{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Snapshot: Snapshot{
				Name:           p.Name,
				Image:          p.PrimaryImage(),
				Specifications: p.Specifications,
			},
			Quantity: line.Quantity,
			Price:    price.StringFixed(2),
			Subtotal: subtotal.StringFixed(2),
		})
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "alipay"
	}
	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          StatusPending,
		TotalAmount:     total.StringFixed(2),
		ShippingAddress: req.ShippingAddress,
		ContactInfo:     req.ContactInfo,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   PaymentUnpaid,
		Notes:           req.Notes,
	}
	if userID == "" {
		o.GuestEmail = req.ContactInfo.Email
	}
	for i := range items {
		items[i].OrderID = o.ID
	}

	if err := s.orders.Create(ctx, o, items); err != nil {
		return nil, err
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	if userID != "" && s.carts != nil {
		if err := s.carts.Clear(ctx, userID); err != nil {
			s.log.Warn("clear cart after checkout", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if s.expiry != nil {
		if err := s.expiry.PublishOrderExpiry(o.ID); err != nil {
			s.log.Warn("schedule order expiry", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	return &Summary{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}, nil
}

// Get returns an order with its items, scoped to the owning user.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, []Item, error) {
	o, items, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.UserID != userID {
		return nil, nil, ErrNotFound
	}
	return o, items, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

// Cancel is only valid for the owner and only from pending. Stock and
// sales_count restoration happens inside the repository transaction.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	o, _, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	if o.Status != StatusPending {
		return nil, fmt.Errorf("only pending orders can be cancelled: %w", ErrInvalidState)
	}
	if err := s.orders.Cancel(ctx, orderID); err != nil {
		return nil, err
	}
	o.Status = StatusCancelled
	return o, nil
}

// Expire cancels an order that is still unpaid when its payment window runs
// out. Called by the queue consumer, so no ownership check; a paid or
// already-cancelled order is left alone.
func (s *Service) Expire(ctx context.Context, orderID string) error {
	o, _, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != StatusPending {
		return nil
	}
	if err := s.orders.Cancel(ctx, orderID); err != nil {
		// Lost the race with a payment or a manual cancel.
		if errors.Is(err, ErrInvalidState) {
			return nil
		}
		return err
	}
	s.log.Info("expired unpaid order", zap.String("order_id", orderID))
	return nil
}
