package cart

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ErrCorrupted is returned by Decode when the stored cart state is not
// valid JSON or does not decode into a cart. Callers treat it as "no cart"
// and clear the stored value.
var ErrCorrupted = errors.New("corrupted cart state")

// Encode serializes the cart for client-local storage.
func Encode(c Cart) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode cart")
	}
	return data, nil
}

// Decode parses stored cart state. Invalid JSON and lines that violate the
// cart invariants (non-positive quantity, duplicate product IDs) yield
// ErrCorrupted rather than a partially-trusted cart.
func Decode(data []byte) (Cart, error) {
	if len(data) == 0 {
		return nil, nil
	}
	// Cheap syntactic check first: stored state comes from an untrusted
	// medium and is routinely truncated.
	if !jx.Valid(data) {
		return nil, ErrCorrupted
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ErrCorrupted
	}

	seen := make(map[int64]struct{}, len(c))
	for _, line := range c {
		if line.Quantity <= 0 {
			return nil, ErrCorrupted
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, ErrCorrupted
		}
		seen[line.ProductID] = struct{}{}
	}
	return c, nil
}
