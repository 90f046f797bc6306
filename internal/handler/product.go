package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/towelexpress/storefront/internal/domain/product"
)

// ListProducts returns the active catalog ordered by ID. A store failure is
// masked by the static fallback list so the shop stays browsable; the
// response is 200 either way.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		zctx.From(r.Context()).Warn("Catalog unavailable, serving fallback", zap.Error(err))
		writeJSON(w, r, http.StatusOK, product.Fallback())
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	writeJSON(w, r, http.StatusOK, products)
}
