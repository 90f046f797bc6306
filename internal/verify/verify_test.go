package verify

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	phone string
	code  string
}

func (s *recordingSender) Send(_ context.Context, phone, code string) error {
	s.phone = phone
	s.code = code
	return nil
}

func TestIssueAndCheck(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(NewMemoryStore(), sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "+48123456789"))
	assert.Equal(t, "+48123456789", sender.phone)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), sender.code)

	require.NoError(t, svc.Check(ctx, "+48123456789", sender.code))

	// Issued codes are single use.
	if sender.code != DevCode {
		assert.ErrorIs(t, svc.Check(ctx, "+48123456789", sender.code), ErrCodeMismatch)
	}
}

func TestCheck_DevCodeAlwaysAccepted(t *testing.T) {
	svc := NewService(NewMemoryStore(), LogSender{Logger: zap.NewNop()})
	require.NoError(t, svc.Check(context.Background(), "+48000000000", DevCode))
}

func TestCheck_WrongCode(t *testing.T) {
	svc := NewService(NewMemoryStore(), &recordingSender{})
	err := svc.Check(context.Background(), "+48123456789", "9999")
	require.ErrorIs(t, err, ErrCodeMismatch)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "+48123456789", "4321", time.Minute))

	code, err := store.Get(ctx, "+48123456789")
	require.NoError(t, err)
	assert.Equal(t, "4321", code)

	current = current.Add(2 * time.Minute)
	code, err = store.Get(ctx, "+48123456789")
	require.NoError(t, err)
	assert.Empty(t, code, "expired code must read as absent")
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "p", "1111", time.Minute))
	require.NoError(t, store.Put(ctx, "p", "2222", time.Minute))

	code, err := store.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "2222", code)
}
