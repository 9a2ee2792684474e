package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ecomkit/storefront/internal/product"
)

var (
	ErrNotFound          = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	Get(ctx context.Context, userID string) (*View, error)
	Add(ctx context.Context, userID, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Get(ctx context.Context, userID string) (*View, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT ci.id, ci.quantity,
           p.id, p.name, p.description, p.price::text, p.stock, p.sales_count, p.images, p.specifications, p.created_at, p.updated_at
    FROM cart_items ci
    JOIN products p ON p.id = ci.product_id
    WHERE ci.user_id = $1
    ORDER BY ci.created_at
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	view := &View{Items: []Line{}}
	total := decimal.Zero
	for rows.Next() {
		var line Line
		var p product.Product
		if err := rows.Scan(&line.ID, &line.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SalesCount, &p.Images, &p.Specifications, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, err
		}
		sub := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		line.Product = p
		line.Subtotal = sub.StringFixed(2)
		total = total.Add(sub)
		view.TotalItems += line.Quantity
		view.Items = append(view.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	view.Total = total.StringFixed(2)
	return view, nil
}

// Add upserts the line: adding a product already in the cart bumps its
// quantity. The stock check is advisory; checkout re-validates.
func (r *PGRepo) Add(ctx context.Context, userID, productID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var stock int
	if err := r.db.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock); err != nil {
		return product.ErrNotFound
	}
	if stock < quantity {
		return ErrInsufficientStock
	}

	_, err := r.db.Exec(ctx, `
    INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
    VALUES ($1,$2,$3,$4,NOW())
    ON CONFLICT (user_id, product_id)
    DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
  `, uuid.NewString(), userID, productID, quantity)
	return err
}

func (r *PGRepo) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE cart_items SET quantity=$3 WHERE id=$1 AND user_id=$2
  `, itemID, userID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Remove(ctx context.Context, userID, itemID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, itemID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Clear(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
