// Package session holds the client-side session: the signed-in user, the
// cart, and the session token, persisted through a Storage adapter the way
// the web client keeps them in browser storage. Corrupted stored values are
// cleared silently and read back as absent.
package session

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/towelexpress/storefront/internal/domain/cart"
	"github.com/towelexpress/storefront/internal/domain/user"
)

// Storage keys, matching the web client's browser storage.
const (
	KeyUser  = "user"
	KeyCart  = "cart"
	KeyToken = "token"
)

// Storage persists session values by key. Get returns nil for an absent key.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Session reads and writes the client session through a Storage adapter.
type Session struct {
	storage Storage
}

// New creates a Session over the given storage.
func New(storage Storage) *Session {
	return &Session{storage: storage}
}

// User returns the stored signed-in user, or nil when absent. A corrupted
// record is cleared and reported as absent.
func (s *Session) User() (*user.User, error) {
	data, err := s.storage.Get(KeyUser)
	if err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	if len(data) == 0 {
		return nil, nil
	}

	var u user.User
	if !jx.Valid(data) || json.Unmarshal(data, &u) != nil {
		_ = s.storage.Delete(KeyUser)
		return nil, nil
	}
	return &u, nil
}

// SetUser stores the signed-in user.
func (s *Session) SetUser(u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "marshal user")
	}
	return s.storage.Set(KeyUser, data)
}

// Token returns the stored session token, or "" when absent.
func (s *Session) Token() (string, error) {
	data, err := s.storage.Get(KeyToken)
	if err != nil {
		return "", errors.Wrap(err, "load token")
	}
	return string(data), nil
}

// SetToken stores the session token.
func (s *Session) SetToken(token string) error {
	return s.storage.Set(KeyToken, []byte(token))
}

// Cart returns the stored cart. A corrupted cart is cleared and read back
// as empty.
func (s *Session) Cart() (cart.Cart, error) {
	data, err := s.storage.Get(KeyCart)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	c, err := cart.Decode(data)
	if err != nil {
		if errors.Is(err, cart.ErrCorrupted) {
			_ = s.storage.Delete(KeyCart)
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode cart")
	}
	return c, nil
}

// SetCart stores the cart. An empty cart removes the stored value.
func (s *Session) SetCart(c cart.Cart) error {
	if len(c) == 0 {
		return s.storage.Delete(KeyCart)
	}
	data, err := cart.Encode(c)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	return s.storage.Set(KeyCart, data)
}

// SignIn stores the user and token together.
func (s *Session) SignIn(u *user.User, token string) error {
	if err := s.SetUser(u); err != nil {
		return err
	}
	return s.SetToken(token)
}

// SignOut removes the user and token, keeping the cart.
func (s *Session) SignOut() error {
	if err := s.storage.Delete(KeyUser); err != nil {
		return err
	}
	return s.storage.Delete(KeyToken)
}

// ClearCart removes the stored cart, as happens after a successful checkout.
func (s *Session) ClearCart() error {
	return s.storage.Delete(KeyCart)
}
