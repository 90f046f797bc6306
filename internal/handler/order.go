package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/towelexpress/storefront/internal/domain/order"
	"github.com/towelexpress/storefront/internal/domain/user"
)

// ListOrders returns a user's order history with line items, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, r, http.StatusBadRequest, "User ID is required")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, r, http.StatusOK, orders)
}

type createOrderRequest struct {
	User        *createOrderUser  `json:"user"`
	Items       []createOrderItem `json:"items"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
}

type createOrderUser struct {
	ID int64 `json:"id"`
}

// createOrderItem mirrors a stored cart line.
type createOrderItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type createOrderResponse struct {
	Success bool         `json:"success"`
	Order   *order.Order `json:"order,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// CreateOrder places an order from the client's cart. The total the client
// sends is advisory; the server recomputes it from the items.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil || req.User == nil || len(req.Items) == 0 {
		writeJSON(w, r, http.StatusBadRequest, createOrderResponse{
			Success: false,
			Error:   "Brakuje wymaganych danych",
		})
		return
	}

	items := make([]order.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.Item{
			ProductID:   item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		}
	}

	placed, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		UserID:      req.User.ID,
		Items:       items,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNoUser), errors.Is(err, order.ErrEmptyItems):
			writeJSON(w, r, http.StatusBadRequest, createOrderResponse{
				Success: false,
				Error:   "Brakuje wymaganych danych",
			})
		default:
			var iqErr *order.InvalidQuantityError
			if errors.As(err, &iqErr) {
				writeJSON(w, r, http.StatusBadRequest, createOrderResponse{
					Success: false,
					Error:   iqErr.Error(),
				})
				return
			}
			writeInternalError(w, r, err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, createOrderResponse{Success: true, Order: placed})
}

// Invoice renders the plain-text VAT invoice for an order as a download.
func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.PathValue("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, r, http.StatusBadRequest, "Invalid order ID")
		return
	}

	o, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Order not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	// The buyer block is best effort: an order whose user record vanished
	// still gets an invoice, just without buyer details.
	var buyer *user.User
	if u, err := h.users.GetByID(r.Context(), o.UserID); err == nil {
		buyer = u
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("faktura-%d.txt", orderID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(order.Invoice(o, buyer, time.Now())))
}
