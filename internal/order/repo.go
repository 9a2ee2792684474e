package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("invalid order state")
)

type Filter struct {
	Status      Status
	OrderNumber string
	Limit       int
	Offset      int
}

type Stats struct {
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Paid      int    `json:"paid"`
	Shipped   int    `json:"shipped"`
	Cancelled int    `json:"cancelled"`
	Refunded  int    `json:"refunded"`
	Revenue   string `json:"revenue"`
}

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	List(ctx context.Context, f Filter) ([]Order, int, error)
	Cancel(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	MarkRefunded(ctx context.Context, id string) error
	SetTracking(ctx context.Context, id, trackingNumber string) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Stats(ctx context.Context) (*Stats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// newOrderNumber builds the externally presentable order number. Uniqueness
// is backed by the orders.order_number unique index.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "SO" + now.Format("20060102150405") + suffix
}

// Create persists the order, its items and the stock mutations in one
// transaction. Stock is decremented with a conditional update so concurrent
// orders cannot oversell: zero rows affected means another order won the
// remaining stock and the whole transaction rolls back.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if o.OrderNumber == "" {
		o.OrderNumber = newOrderNumber(time.Now())
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO orders (id, order_number, user_id, guest_email, status, total_amount,
                        shipping_address, contact_info, payment_method, payment_status,
                        notes, created_at, updated_at)
    VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
  `, o.ID, o.OrderNumber, o.UserID, o.GuestEmail, o.Status, o.TotalAmount,
		o.ShippingAddress, o.ContactInfo, o.PaymentMethod, o.PaymentStatus, o.Notes); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, product_id, product_snapshot, quantity, price, subtotal)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, it.ID, o.ID, it.ProductID, it.Snapshot, it.Quantity, it.Price, it.Subtotal); err != nil {
			return err
		}
	}

	for _, it := range items {
		tag, err := tx.Exec(ctx, `
      UPDATE products
      SET stock = stock - $2, sales_count = sales_count + $2, updated_at = NOW()
      WHERE id = $1 AND stock >= $2
    `, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("product %s: %w", it.ProductID, ErrInsufficientStock)
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	o, err := r.scanOne(ctx, `WHERE id=$1`, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := r.GetItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

func (r *PGRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.scanOne(ctx, `WHERE order_number=$1`, number)
}

const orderColumns = `
    SELECT id, order_number, COALESCE(user_id,''), COALESCE(guest_email,''), status,
           total_amount::text, shipping_address, contact_info, payment_method,
           payment_status, COALESCE(tracking_number,''), COALESCE(notes,''),
           created_at, updated_at, paid_at
    FROM orders `

func (r *PGRepo) scanOne(ctx context.Context, where string, arg any) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := r.db.QueryRow(ctx, orderColumns+where, arg).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.GuestEmail, &o.Status,
		&o.TotalAmount, &o.ShippingAddress, &o.ContactInfo, &o.PaymentMethod,
		&o.PaymentStatus, &o.TrackingNumber, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, product_id, product_snapshot, quantity, price::text, subtotal::text
    FROM order_items WHERE order_id=$1
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Snapshot, &it.Quantity, &it.Price, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, orderColumns+`
    WHERE user_id=$1
    ORDER BY created_at DESC LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Order, int, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.QueryRow(ctx, `
    SELECT COUNT(*) FROM orders
    WHERE ($1 = '' OR status = $1)
      AND ($2 = '' OR order_number ILIKE '%'||$2||'%')
  `, string(f.Status), f.OrderNumber).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, orderColumns+`
    WHERE ($1 = '' OR status = $1)
      AND ($2 = '' OR order_number ILIKE '%'||$2||'%')
    ORDER BY created_at DESC LIMIT $3 OFFSET $4
  `, string(f.Status), f.OrderNumber, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := scanOrders(rows)
	return out, total, err
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.GuestEmail, &o.Status,
			&o.TotalAmount, &o.ShippingAddress, &o.ContactInfo, &o.PaymentMethod,
			&o.PaymentStatus, &o.TrackingNumber, &o.Notes,
			&o.CreatedAt, &o.UpdatedAt, &o.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Cancel flips a pending order to cancelled and puts the reserved stock
// back, in one transaction. The status check rides on the UPDATE itself so a
// concurrent payment settlement cannot interleave a double restore.
func (r *PGRepo) Cancel(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE orders SET status=$2, updated_at=NOW()
    WHERE id=$1 AND status=$3
  `, id, StatusCancelled, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}

	rows, err := tx.Query(ctx, `SELECT product_id, quantity FROM order_items WHERE order_id=$1`, id)
	if err != nil {
		return err
	}
	type line struct {
		pid string
		qty int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.pid, &l.qty); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
      UPDATE products
      SET stock = stock + $2, sales_count = GREATEST(sales_count - $2, 0), updated_at = NOW()
      WHERE id = $1
    `, l.pid, l.qty); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// MarkPaid settles an unpaid order. The status predicate keeps cancelled
// terminal: a settlement racing a cancel loses and reports ErrInvalidState
// instead of resurrecting the order.
func (r *PGRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders SET status=$2, payment_status=$3, paid_at=$4, updated_at=NOW()
    WHERE id=$1 AND status IN ($5,$6)
  `, id, StatusPaid, PaymentPaid, paidAt, StatusPending, StatusPendingPayment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (r *PGRepo) MarkRefunded(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders SET status=$2, payment_status=$3, updated_at=NOW()
    WHERE id=$1
  `, id, StatusRefunded, PaymentRefunded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SetTracking(ctx context.Context, id, trackingNumber string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders SET status=$2, tracking_number=$3, updated_at=NOW()
    WHERE id=$1 AND status=$4
  `, id, StatusShipped, trackingNumber, StatusPaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// UpdateStatus moves an order between the unpaid states only. The predicate
// rides on the UPDATE so a checkout thread cannot resurrect an order that was
// cancelled while its gateway call was in flight.
func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders SET status = $2, updated_at = NOW()
    WHERE id = $1 AND status IN ($3,$4)
  `, id, status, StatusPending, StatusPendingPayment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// Stats aggregates the admin dashboard counters. Revenue counts orders that
// actually collected money.
func (r *PGRepo) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s Stats
	err := r.db.QueryRow(ctx, `
    SELECT COUNT(*),
           COUNT(*) FILTER (WHERE status IN ('pending','pending_payment')),
           COUNT(*) FILTER (WHERE status = 'paid'),
           COUNT(*) FILTER (WHERE status = 'shipped'),
           COUNT(*) FILTER (WHERE status = 'cancelled'),
           COUNT(*) FILTER (WHERE status = 'refunded'),
           COALESCE(SUM(total_amount) FILTER (WHERE status IN ('paid','shipped')), 0)::text
    FROM orders
  `).Scan(&s.Total, &s.Pending, &s.Paid, &s.Shipped, &s.Cancelled, &s.Refunded, &s.Revenue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
