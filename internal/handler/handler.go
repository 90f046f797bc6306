// Package handler exposes the storefront HTTP API. Handlers decode JSON
// requests, delegate to the domain services, and map domain errors onto the
// response shapes the web client expects.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/towelexpress/storefront/internal/domain/order"
	"github.com/towelexpress/storefront/internal/domain/product"
	"github.com/towelexpress/storefront/internal/domain/user"
	"github.com/towelexpress/storefront/internal/verify"
)

// maxBodyBytes caps request bodies; no storefront payload comes close.
const maxBodyBytes = 1 << 20

// Handler bundles the HTTP endpoints with their domain dependencies.
type Handler struct {
	products product.Repository
	users    *user.Service
	orders   *order.Service
	verifier *verify.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	products product.Repository,
	users *user.Service,
	orders *order.Service,
	verifier *verify.Service,
) *Handler {
	return &Handler{
		products: products,
		users:    users,
		orders:   orders,
		verifier: verifier,
	}
}

// RegisterRoutes attaches every API route to the mux. Method matching and
// 405 responses come from the mux patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/check-user", h.CheckUser)
	mux.HandleFunc("POST /api/auth/send-sms", h.SendSMS)
	mux.HandleFunc("POST /api/auth/verify-login", h.VerifyLogin)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("POST /api/orders/create", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/invoice/{orderId}", h.Invoice)
}

// decodeJSON reads and unmarshals the request body into v.
func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	return json.NewDecoder(body).Decode(v)
}

// writeJSON marshals v with the given status. Encoding failures are logged
// and abandoned; headers are already out at that point.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("Encode response", zap.Error(err))
	}
}

// errorResponse is the generic error body: {"error": "..."}.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeInternalError logs the cause and responds 500 with a generic body.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, r, http.StatusInternalServerError, "Internal server error")
}
