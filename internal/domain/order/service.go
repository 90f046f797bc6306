package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order placement.
var (
	ErrEmptyItems = errors.New("items required")
	ErrNoUser     = errors.New("user required")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// Payer executes the payment for an order total. The bundled simulator
// cannot fail; the interface exists so a real gateway can replace it
// without touching placement logic.
type Payer interface {
	Pay(ctx context.Context, amount decimal.Decimal) error
}

// SimulatedPayer approximates an external payment call with a fixed delay.
type SimulatedPayer struct {
	Latency time.Duration
}

// Pay waits for the configured latency and succeeds. It returns early with
// the context error when the context is cancelled first.
func (p SimulatedPayer) Pay(ctx context.Context, _ decimal.Decimal) error {
	select {
	case <-time.After(p.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PlaceOrderRequest holds the input for placing an order. TotalAmount is the
// client-computed total; the service recomputes it from the items and the
// server-side value wins.
type PlaceOrderRequest struct {
	UserID      int64
	Items       []Item
	TotalAmount decimal.Decimal
}

// Service encapsulates order placement: validation, total calculation,
// payment, and persistence. Payment runs before the order row is written so
// a failed payment never leaves a dangling paid order.
type Service struct {
	orders Repository
	payer  Payer
	now    func() time.Time
}

// NewService creates an order Service.
func NewService(orders Repository, payer Payer) *Service {
	return &Service{
		orders: orders,
		payer:  payer,
		now:    time.Now,
	}
}

// PlaceOrder validates the request, charges the payment, and persists the
// order with status "paid".
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if req.UserID == 0 {
		return nil, ErrNoUser
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	total := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total = total.Round(2)

	if err := s.payer.Pay(ctx, total); err != nil {
		return nil, errors.Wrap(err, "payment")
	}

	o := &Order{
		OrderNumber: s.newOrderNumber(),
		UserID:      req.UserID,
		Items:       req.Items,
		TotalAmount: total,
		Status:      StatusPaid,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// ListByUser returns a user's order history, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// GetByID returns a single order, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}

// newOrderNumber generates a display order number of the form
// ORD-<unix ms>-<3 digit suffix>, matching the numbers customers already
// have on historical orders.
func (s *Service) newOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", s.now().UnixMilli(), rand.IntN(1000))
}
