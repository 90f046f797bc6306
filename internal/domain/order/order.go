package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status enumerates the order lifecycle states. Only StatusPaid is assigned
// by this application; the remaining transitions happen administratively.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Item is a single order line: a product reference with the quantity and the
// unit price captured at the time of ordering. Name and description are
// denormalized snapshots so history pages render without a catalog join.
type Item struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Order is a completed customer order.
type Order struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Repository defines persistence operations for orders and their items.
type Repository interface {
	// Create persists the order and its items and fills in the generated ID
	// and creation timestamp.
	Create(ctx context.Context, o *Order) error
	// ListByUser returns a user's orders with items joined, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	// GetByID returns ErrNotFound when the order does not exist.
	GetByID(ctx context.Context, id int64) (*Order, error)
}
