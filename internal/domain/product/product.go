package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// immutable from the storefront's point of view; the catalog is maintained
// out of band.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// ListActive returns all active products ordered by ID.
	ListActive(ctx context.Context) ([]Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
}

// Fallback is the static catalog served when the store is unreachable, so
// the shop stays browsable during an outage. It mirrors the seeded catalog.
func Fallback() []Product {
	return []Product{
		{ID: 1, Name: "Ręcznik Basic 40x80cm", Description: "Jednokrotnego użytku", Price: decimal.RequireFromString("49.99"), Active: true},
		{ID: 2, Name: "Ręcznik Premium 50x90cm", Description: "Wytrzymały, chłonny", Price: decimal.RequireFromString("79.99"), Active: true},
		{ID: 3, Name: "Ręcznik XL 60x100cm", Description: "Duży rozmiar, profesjonalny", Price: decimal.RequireFromString("99.99"), Active: true},
		{ID: 4, Name: "Zestaw 3 ręczników", Description: "Pakiet oszczędnościowy", Price: decimal.RequireFromString("199.99"), Active: true},
	}
}
