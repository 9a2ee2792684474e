package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreatePaymentLog(ctx context.Context, l *PaymentLog) error
	GetPaymentLogByCharge(ctx context.Context, chargeID string) (*PaymentLog, error)
	LatestPaymentLog(ctx context.Context, orderID string) (*PaymentLog, error)
	SucceededPaymentLog(ctx context.Context, orderID string) (*PaymentLog, error)
	MarkPaymentSucceeded(ctx context.Context, chargeID, eventID string, paidAt time.Time) error
	EventSeen(ctx context.Context, eventID string) (bool, error)
	CreateRefundLog(ctx context.Context, l *RefundLog) error
	GetRefundLog(ctx context.Context, refundID string) (*RefundLog, error)
	MarkRefundSucceeded(ctx context.Context, refundID, eventID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const paymentLogColumns = `
    SELECT id, order_id, COALESCE(user_id,''), charge_id, channel, amount, currency,
           status, COALESCE(event_id,''), raw_payload, created_at, paid_at
    FROM payment_logs `

func (r *PGRepo) CreatePaymentLog(ctx context.Context, l *PaymentLog) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
    INSERT INTO payment_logs (id, order_id, user_id, charge_id, channel, amount, currency,
                              status, event_id, raw_payload, created_at, paid_at)
    VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,NULLIF($9,''),$10,NOW(),$11)
  `, l.ID, l.OrderID, l.UserID, l.ChargeID, l.Channel, l.Amount, l.Currency,
		l.Status, l.EventID, l.RawPayload, l.PaidAt)
	return err
}

func (r *PGRepo) GetPaymentLogByCharge(ctx context.Context, chargeID string) (*PaymentLog, error) {
	return r.scanOne(ctx, `WHERE charge_id=$1`, chargeID)
}

func (r *PGRepo) LatestPaymentLog(ctx context.Context, orderID string) (*PaymentLog, error) {
	return r.scanOne(ctx, `WHERE order_id=$1 ORDER BY created_at DESC LIMIT 1`, orderID)
}

func (r *PGRepo) SucceededPaymentLog(ctx context.Context, orderID string) (*PaymentLog, error) {
	return r.scanOne(ctx, `WHERE order_id=$1 AND status='succeeded' LIMIT 1`, orderID)
}

func (r *PGRepo) scanOne(ctx context.Context, where string, arg any) (*PaymentLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var l PaymentLog
	err := r.db.QueryRow(ctx, paymentLogColumns+where, arg).Scan(
		&l.ID, &l.OrderID, &l.UserID, &l.ChargeID, &l.Channel, &l.Amount, &l.Currency,
		&l.Status, &l.EventID, &l.RawPayload, &l.CreatedAt, &l.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// MarkPaymentSucceeded settles a pending log. First write wins: a duplicate
// delivery that lost the race finds the row already succeeded and leaves
// paid_at and event_id alone. Callers resolve the log by charge id before
// settling, so zero rows here always means already settled.
func (r *PGRepo) MarkPaymentSucceeded(ctx context.Context, chargeID, eventID string, paidAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
    UPDATE payment_logs
    SET status='succeeded', event_id=COALESCE(NULLIF($2,''), event_id), paid_at=$3
    WHERE charge_id=$1 AND status <> 'succeeded'
  `, chargeID, eventID, paidAt)
	return err
}

// EventSeen reports whether a webhook event id was already applied to any
// payment or refund log. This is the replay defense.
func (r *PGRepo) EventSeen(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `
    SELECT (SELECT COUNT(*) FROM payment_logs WHERE event_id=$1)
         + (SELECT COUNT(*) FROM refund_logs  WHERE event_id=$1)
  `, eventID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepo) CreateRefundLog(ctx context.Context, l *RefundLog) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
    INSERT INTO refund_logs (id, order_id, charge_id, refund_id, amount, status, reason, event_id, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''),NOW())
  `, l.ID, l.OrderID, l.ChargeID, l.RefundID, l.Amount, l.Status, l.Reason, l.EventID)
	return err
}

func (r *PGRepo) GetRefundLog(ctx context.Context, refundID string) (*RefundLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var l RefundLog
	err := r.db.QueryRow(ctx, `
    SELECT id, order_id, charge_id, refund_id, amount, status, COALESCE(reason,''), COALESCE(event_id,''), created_at
    FROM refund_logs WHERE refund_id=$1
  `, refundID).Scan(&l.ID, &l.OrderID, &l.ChargeID, &l.RefundID, &l.Amount, &l.Status, &l.Reason, &l.EventID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *PGRepo) MarkRefundSucceeded(ctx context.Context, refundID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE refund_logs
    SET status='succeeded', event_id=COALESCE(NULLIF($2,''), event_id)
    WHERE refund_id=$1
  `, refundID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
