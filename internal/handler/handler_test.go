package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/towelexpress/storefront/internal/domain/order"
	"github.com/towelexpress/storefront/internal/domain/product"
	"github.com/towelexpress/storefront/internal/domain/user"
	"github.com/towelexpress/storefront/internal/verify"
)

// --- Mock implementations ---

type mockProductRepo struct {
	products []product.Product
	listErr  error
}

func (m *mockProductRepo) ListActive(_ context.Context) ([]product.Product, error) {
	return m.products, m.listErr
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type mockUserRepo struct {
	byPhone   map[string]*user.User
	createErr error
	nextID    int64
}

func newMockUserRepo(users ...*user.User) *mockUserRepo {
	byPhone := make(map[string]*user.User, len(users))
	var maxID int64
	for _, u := range users {
		byPhone[u.Phone] = u
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return &mockUserRepo{byPhone: byPhone, nextID: maxID}
}

func (m *mockUserRepo) Create(_ context.Context, reg user.Registration) (*user.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	u := &user.User{
		ID:              m.nextID,
		Phone:           reg.Phone,
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		Email:           reg.Email,
		CustomerType:    reg.CustomerType,
		CompanyName:     reg.CompanyName,
		TaxID:           reg.TaxID,
		BillingAddress:  reg.BillingAddress,
		ShippingAddress: reg.ShippingAddress,
	}
	m.byPhone[u.Phone] = u
	return u, nil
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (*user.User, error) {
	u, ok := m.byPhone[phone]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range m.byPhone {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) ListPhones(_ context.Context) ([]string, error) {
	phones := make([]string, 0, len(m.byPhone))
	for p := range m.byPhone {
		phones = append(phones, p)
	}
	return phones, nil
}

type mockOrderRepo struct {
	orders    []order.Order
	createErr error
	nextID    int64
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	o.ID = m.nextID
	m.orders = append(m.orders, *o)
	return nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID int64) ([]order.Order, error) {
	var out []order.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, order.ErrNotFound
}

type dropSender struct{}

func (dropSender) Send(_ context.Context, _, _ string) error { return nil }

// --- Helpers ---

type env struct {
	handler  *Handler
	mux      *http.ServeMux
	products *mockProductRepo
	users    *mockUserRepo
	orders   *mockOrderRepo
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	products := &mockProductRepo{products: []product.Product{
		{ID: 1, Name: "Ręcznik Basic 40x80cm", Description: "Jednokrotnego użytku", Price: decimal.RequireFromString("49.99"), Active: true},
		{ID: 2, Name: "Ręcznik Premium 50x90cm", Description: "Wytrzymały, chłonny", Price: decimal.RequireFromString("79.99"), Active: true},
	}}
	users := newMockUserRepo(&user.User{
		ID:        1,
		Phone:     "+48123456789",
		FirstName: "Anna",
		LastName:  "Kowalska",
		Email:     "anna@example.com",
	})
	orders := &mockOrderRepo{}

	userSvc := user.NewService(users, user.NewPhoneFilter(1000, 0.01))
	require.NoError(t, userSvc.WarmFilter(context.Background()))
	orderSvc := order.NewService(orders, order.SimulatedPayer{})
	verifySvc := verify.NewService(verify.NewMemoryStore(), dropSender{})

	h := New(products, userSvc, orderSvc, verifySvc)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	return &env{handler: h, mux: mux, products: products, users: users, orders: orders}
}

func (e *env) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *env) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

var errStoreDown = errors.New("store down")
