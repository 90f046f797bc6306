// Package apiclient is the Go client for the storefront API, one method per
// endpoint. It is what the terminal storefront uses in place of the web
// client's fetch calls.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/towelexpress/storefront/internal/domain/cart"
	"github.com/towelexpress/storefront/internal/domain/order"
	"github.com/towelexpress/storefront/internal/domain/product"
	"github.com/towelexpress/storefront/internal/domain/user"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client calls the storefront API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// ListProducts fetches the active catalog. On transport or server failure it
// returns the static fallback catalog together with the error, so the caller
// can keep rendering while surfacing the problem.
func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return product.Fallback(), err
	}
	return products, nil
}

// Login authenticates by phone number.
func (c *Client) Login(ctx context.Context, phone string) (*LoginResult, error) {
	var resp LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"phone": phone}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// registerRequest is the registration wire format.
type registerRequest struct {
	Phone           string       `json:"phone"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Email           string       `json:"email,omitempty"`
	CustomerType    string       `json:"customer_type"`
	CompanyName     string       `json:"company_name,omitempty"`
	TaxID           string       `json:"nip,omitempty"`
	BillingAddress  user.Address `json:"billing_address"`
	ShippingAddress user.Address `json:"shipping_address"`
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, reg user.Registration) (*user.User, error) {
	req := registerRequest{
		Phone:           reg.Phone,
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		Email:           reg.Email,
		CustomerType:    string(reg.CustomerType),
		CompanyName:     reg.CompanyName,
		TaxID:           reg.TaxID,
		BillingAddress:  reg.BillingAddress,
		ShippingAddress: reg.ShippingAddress,
	}
	var resp struct {
		User *user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// CheckUser reports whether the phone number is registered.
func (c *Client) CheckUser(ctx context.Context, phone string) (bool, error) {
	var resp struct {
		Exists bool `json:"exists"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/check-user", map[string]string{"phone": phone}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// SendSMS asks the server to issue a verification code for the phone.
func (c *Client) SendSMS(ctx context.Context, phone string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/send-sms", map[string]string{"phone": phone}, nil)
}

// VerifyLogin submits a verification code and returns the user on success.
func (c *Client) VerifyLogin(ctx context.Context, phone, code string) (*user.User, error) {
	var resp struct {
		User *user.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/verify-login",
		map[string]string{"phone": phone, "code": code}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListOrders fetches a user's order history, newest first.
func (c *Client) ListOrders(ctx context.Context, userID int64) ([]order.Order, error) {
	var orders []order.Order
	path := fmt.Sprintf("/api/orders?userId=%d", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// createOrderRequest is the order placement wire format: the cart lines plus
// the client-computed total.
type createOrderRequest struct {
	User        createOrderUser `json:"user"`
	Items       []cart.Line     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type createOrderUser struct {
	ID int64 `json:"id"`
}

// CreateOrder places an order from the cart contents.
func (c *Client) CreateOrder(ctx context.Context, userID int64, items cart.Cart) (*order.Order, error) {
	req := createOrderRequest{
		User:        createOrderUser{ID: userID},
		Items:       items,
		TotalAmount: cart.TotalAmount(items).Round(2),
	}
	var resp struct {
		Order *order.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders/create", req, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// Invoice downloads the plain-text invoice for an order.
func (c *Client) Invoice(ctx context.Context, orderID int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/orders/invoice/%d", c.baseURL, orderID), nil)
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, body)
	}
	return string(body), nil
}

// do performs one JSON request/response exchange. A nil out discards the
// response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// apiError extracts the server's error message from a JSON body, falling
// back to the status text.
func apiError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(status)
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}
