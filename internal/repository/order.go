package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/towelexpress/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (order_number, user_id, total_amount, status)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`

	listOrdersByUserSQL = `SELECT id, order_number, user_id, total_amount, status, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	getOrderByIDSQL = `SELECT id, order_number, user_id, total_amount, status, created_at
		FROM orders WHERE id = $1`

	listItemsForOrdersSQL = `SELECT oi.order_id, oi.product_id, p.name, p.description, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. An order
// and its line items are written in one transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and its items atomically, filling in the
// generated ID and creation timestamp.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, createOrderSQL,
		o.OrderNumber, o.UserID, o.TotalAmount, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.OrderNumber, err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, createOrderItemSQL,
			o.ID, item.ProductID, item.Quantity, item.UnitPrice,
		); err != nil {
			return fmt.Errorf("creating order item for product %d: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.OrderNumber, err)
	}
	return nil
}

// ListByUser returns the user's orders with items joined, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	itemRows, err := r.pool.Query(ctx, listItemsForOrdersSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID int64
			item    order.Item
		)
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}

	return orders, nil
}

// GetByID returns a single order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, listItemsForOrdersSQL, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("listing items for order %d: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (order.Item, error) {
		var (
			orderID int64
			item    order.Item
		)
		err := row.Scan(&orderID, &item.ProductID, &item.Name, &item.Description, &item.Quantity, &item.UnitPrice)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing items for order %d: %w", id, err)
	}

	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &status, &o.CreatedAt)
	o.Status = order.Status(status)
	return o, err
}
