// Package checkout models the browse-to-payment flow as an explicit state
// machine. The original flow was scattered across page navigation and
// boolean checks; here every state and transition is named so the logic is
// independently testable.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/towelexpress/storefront/internal/domain/cart"
	"github.com/towelexpress/storefront/internal/domain/order"
	"github.com/towelexpress/storefront/internal/domain/product"
)

// State identifies where the customer is in the checkout flow.
type State int

const (
	// Browsing: the catalog is shown, the cart may be empty or populated.
	Browsing State = iota
	// AwaitingAuth: checkout was requested without an authenticated user.
	AwaitingAuth
	// Reviewing: the order summary is shown; the cart is non-empty.
	Reviewing
	// Paying: the payment call is in flight.
	Paying
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case AwaitingAuth:
		return "awaiting_auth"
	case Reviewing:
		return "reviewing"
	case Paying:
		return "paying"
	}
	return "unknown"
}

// Transition errors.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNotReviewing    = errors.New("not reviewing an order")
	ErrNotAwaitingAuth = errors.New("not awaiting authentication")
)

// Flow holds the checkout state for one client session. It is not safe for
// concurrent use; all mutation happens on the single UI event path.
type Flow struct {
	state         State
	cart          cart.Cart
	authenticated bool
	payer         order.Payer
}

// New creates a flow in the Browsing state with the given cart.
func New(c cart.Cart, authenticated bool, payer order.Payer) *Flow {
	return &Flow{
		state:         Browsing,
		cart:          c,
		authenticated: authenticated,
		payer:         payer,
	}
}

// State returns the current state.
func (f *Flow) State() State { return f.state }

// Cart returns the current cart.
func (f *Flow) Cart() cart.Cart { return f.cart }

// SetAuthenticated records a login completed outside the flow. When the
// flow is waiting at the auth gate, authentication advances it straight to
// Reviewing, resuming the interrupted checkout.
func (f *Flow) SetAuthenticated() {
	f.authenticated = true
	if f.state == AwaitingAuth {
		f.state = Reviewing
	}
}

// AddProduct adds one unit of a product while browsing. Cart mutations in
// other states go through UpdateQuantity on the review page.
func (f *Flow) AddProduct(p product.Product) {
	if f.state != Browsing {
		return
	}
	f.cart = cart.Add(f.cart, p)
}

// RequestCheckout moves from Browsing toward payment: to Reviewing when a
// user is present, to AwaitingAuth otherwise. An empty cart stays put.
func (f *Flow) RequestCheckout() error {
	if len(f.cart) == 0 {
		return ErrEmptyCart
	}
	if f.authenticated {
		f.state = Reviewing
	} else {
		f.state = AwaitingAuth
	}
	return nil
}

// UpdateQuantity changes a line quantity while reviewing. Emptying the cart
// returns the flow to Browsing.
func (f *Flow) UpdateQuantity(productID int64, quantity int) error {
	if f.state != Reviewing {
		return ErrNotReviewing
	}
	f.cart = cart.SetQuantity(f.cart, productID, quantity)
	if len(f.cart) == 0 {
		f.state = Browsing
	}
	return nil
}

// Pay runs the payment for the reviewed cart. On success the cart is
// cleared and the flow returns to Browsing. On failure the flow stays in
// Reviewing with the cart intact, so payment can be retried.
func (f *Flow) Pay(ctx context.Context) (decimal.Decimal, error) {
	if f.state != Reviewing {
		return decimal.Zero, ErrNotReviewing
	}
	amount := cart.TotalAmount(f.cart)

	f.state = Paying
	if err := f.payer.Pay(ctx, amount); err != nil {
		f.state = Reviewing
		return decimal.Zero, errors.Wrap(err, "payment")
	}

	f.cart = nil
	f.state = Browsing
	return amount, nil
}

// Cancel abandons the auth gate or the review page and returns to Browsing
// without side effects. Cancelling mid-payment is not supported.
func (f *Flow) Cancel() {
	if f.state == AwaitingAuth || f.state == Reviewing {
		f.state = Browsing
	}
}
