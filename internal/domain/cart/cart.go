// Package cart implements the client-side shopping cart as pure transition
// functions over an immutable line slice. Persistence is a caller concern
// (see the session package); the operations here never mutate their input.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/towelexpress/storefront/internal/domain/product"
)

// Line is one product entry in a cart with its quantity. The product fields
// are snapshots taken when the line was first added.
type Line struct {
	ProductID   int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Cart is an ordered sequence of lines, insertion order preserved. At most
// one line exists per product ID, and every stored line has quantity >= 1.
type Cart []Line

// Add returns a cart with one unit of p added: an existing line is
// incremented, otherwise a new line is appended with quantity 1.
func Add(c Cart, p product.Product) Cart {
	for i, line := range c {
		if line.ProductID == p.ID {
			out := clone(c)
			out[i].Quantity++
			return out
		}
	}
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, Line{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    1,
	})
}

// SetQuantity returns a cart with the line for productID set to quantity.
// A quantity of zero or less removes the line. Setting a quantity for an
// absent product ID is a no-op when removing and an append otherwise never
// happens: unknown IDs are simply ignored.
func SetQuantity(c Cart, productID int64, quantity int) Cart {
	if quantity <= 0 {
		out := make(Cart, 0, len(c))
		for _, line := range c {
			if line.ProductID != productID {
				out = append(out, line)
			}
		}
		return out
	}
	out := clone(c)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
			break
		}
	}
	return out
}

// TotalAmount is the sum of price × quantity over all lines. Rounding to
// two decimal places is left to the presentation layer.
func TotalAmount(c Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// TotalItems is the sum of quantities over all lines.
func TotalItems(c Cart) int {
	n := 0
	for _, line := range c {
		n += line.Quantity
	}
	return n
}

func clone(c Cart) Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
