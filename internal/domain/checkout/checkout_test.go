package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towelexpress/storefront/internal/domain/cart"
	"github.com/towelexpress/storefront/internal/domain/product"
)

type stubPayer struct {
	err   error
	calls int
}

func (p *stubPayer) Pay(_ context.Context, _ decimal.Decimal) error {
	p.calls++
	return p.err
}

func towel() product.Product {
	return product.Product{ID: 1, Name: "Ręcznik Basic 40x80cm", Price: decimal.RequireFromString("49.99")}
}

func populatedCart() cart.Cart {
	return cart.Add(cart.Add(nil, towel()), towel())
}

func TestRequestCheckout_EmptyCart(t *testing.T) {
	f := New(nil, true, &stubPayer{})
	require.ErrorIs(t, f.RequestCheckout(), ErrEmptyCart)
	assert.Equal(t, Browsing, f.State())
}

func TestRequestCheckout_Authenticated(t *testing.T) {
	f := New(populatedCart(), true, &stubPayer{})
	require.NoError(t, f.RequestCheckout())
	assert.Equal(t, Reviewing, f.State())
}

func TestRequestCheckout_Unauthenticated(t *testing.T) {
	f := New(populatedCart(), false, &stubPayer{})
	require.NoError(t, f.RequestCheckout())
	assert.Equal(t, AwaitingAuth, f.State())
}

func TestSetAuthenticated_ResumesInterruptedCheckout(t *testing.T) {
	f := New(populatedCart(), false, &stubPayer{})
	require.NoError(t, f.RequestCheckout())
	require.Equal(t, AwaitingAuth, f.State())

	f.SetAuthenticated()
	assert.Equal(t, Reviewing, f.State())
}

func TestUpdateQuantity_EmptyingCartReturnsToBrowsing(t *testing.T) {
	f := New(populatedCart(), true, &stubPayer{})
	require.NoError(t, f.RequestCheckout())

	require.NoError(t, f.UpdateQuantity(1, 0))
	assert.Equal(t, Browsing, f.State())
	assert.Empty(t, f.Cart())
}

func TestUpdateQuantity_OutsideReviewing(t *testing.T) {
	f := New(populatedCart(), true, &stubPayer{})
	require.ErrorIs(t, f.UpdateQuantity(1, 3), ErrNotReviewing)
}

func TestPay_ClearsCartAndReturnsToBrowsing(t *testing.T) {
	payer := &stubPayer{}
	f := New(populatedCart(), true, payer)
	require.NoError(t, f.RequestCheckout())

	amount, err := f.Pay(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("99.98").Equal(amount))
	assert.Equal(t, 1, payer.calls)
	assert.Equal(t, Browsing, f.State())
	assert.Empty(t, f.Cart())
}

func TestPay_FailureKeepsCartAndReviewing(t *testing.T) {
	payer := &stubPayer{err: errors.New("gateway timeout")}
	f := New(populatedCart(), true, payer)
	require.NoError(t, f.RequestCheckout())

	_, err := f.Pay(context.Background())
	require.Error(t, err)
	assert.Equal(t, Reviewing, f.State())
	assert.NotEmpty(t, f.Cart())
}

func TestPay_OutsideReviewing(t *testing.T) {
	f := New(populatedCart(), true, &stubPayer{})
	_, err := f.Pay(context.Background())
	require.ErrorIs(t, err, ErrNotReviewing)
}

func TestCancel_ReturnsToBrowsingWithoutSideEffects(t *testing.T) {
	f := New(populatedCart(), false, &stubPayer{})
	require.NoError(t, f.RequestCheckout())

	f.Cancel()
	assert.Equal(t, Browsing, f.State())
	assert.Equal(t, 2, cart.TotalItems(f.Cart()))
}

func TestAddProduct_OnlyWhileBrowsing(t *testing.T) {
	f := New(populatedCart(), true, &stubPayer{})
	require.NoError(t, f.RequestCheckout())

	f.AddProduct(towel())
	assert.Equal(t, 2, cart.TotalItems(f.Cart()), "reviewing must not accept new products")

	f.Cancel()
	f.AddProduct(towel())
	assert.Equal(t, 3, cart.TotalItems(f.Cart()))
}
