// Package verify issues and checks SMS verification codes. Delivery is
// stubbed: codes are handed to a Sender that only logs them. While the stub
// is in place, the static development code "1234" is always accepted so the
// flow can be exercised without reading logs.
package verify

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// DevCode is the static development verification code.
const DevCode = "1234"

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 5 * time.Minute

// ErrCodeMismatch is returned when a submitted code is neither the issued
// code for the phone nor the static development code.
var ErrCodeMismatch = errors.New("invalid verification code")

// Store persists issued codes with expiry.
type Store interface {
	// Put stores the code for a phone, replacing any previous one.
	Put(ctx context.Context, phone, code string, ttl time.Duration) error
	// Get returns the current code for a phone, or "" when none is stored
	// or it has expired.
	Get(ctx context.Context, phone string) (string, error)
	// Delete removes the code for a phone.
	Delete(ctx context.Context, phone string) error
}

// Sender delivers a verification code to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogSender is the stub Sender: it logs the code instead of delivering it.
type LogSender struct {
	Logger *zap.Logger
}

// Send logs the code that would have been delivered.
func (s LogSender) Send(_ context.Context, phone, code string) error {
	s.Logger.Info("SMS would be sent",
		zap.String("phone", phone),
		zap.String("code", code),
	)
	return nil
}

// Service issues random 4-digit codes and checks submissions.
type Service struct {
	store  Store
	sender Sender
	ttl    time.Duration
}

// NewService creates a verification Service with the default TTL.
func NewService(store Store, sender Sender) *Service {
	return &Service{store: store, sender: sender, ttl: DefaultTTL}
}

// Issue generates a fresh code for the phone, stores it, and hands it to
// the sender.
func (s *Service) Issue(ctx context.Context, phone string) error {
	code, err := randomCode()
	if err != nil {
		return errors.Wrap(err, "generate code")
	}
	if err := s.store.Put(ctx, phone, code, s.ttl); err != nil {
		return errors.Wrap(err, "store code")
	}
	if err := s.sender.Send(ctx, phone, code); err != nil {
		return errors.Wrap(err, "send code")
	}
	return nil
}

// Check validates a submitted code. The static development code always
// passes; an issued code passes once and is consumed.
func (s *Service) Check(ctx context.Context, phone, code string) error {
	if code == DevCode {
		return nil
	}
	stored, err := s.store.Get(ctx, phone)
	if err != nil {
		return errors.Wrap(err, "load code")
	}
	if stored == "" || stored != code {
		return ErrCodeMismatch
	}
	if err := s.store.Delete(ctx, phone); err != nil {
		return errors.Wrap(err, "consume code")
	}
	return nil
}

// randomCode returns a uniformly random 4-digit code, zero padded.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
