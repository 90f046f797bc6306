package user

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// PhoneFilter is a bloom filter over registered phone numbers. It gives
// definite negatives: a phone not in the filter is guaranteed not to be
// registered, so login and check-user lookups can skip the database for
// unknown numbers. A hit still requires a real lookup (false positives).
type PhoneFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewPhoneFilter creates a filter sized for the expected number of users.
func NewPhoneFilter(expected uint, fpr float64) *PhoneFilter {
	return &PhoneFilter{filter: bloom.NewWithEstimates(expected, fpr)}
}

// Warm loads the given phone numbers into the filter.
func (f *PhoneFilter) Warm(phones []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range phones {
		f.filter.AddString(p)
	}
}

// Add records a newly registered phone number.
func (f *PhoneFilter) Add(phone string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(phone)
}

// MayExist reports whether the phone could be registered. False means the
// phone is definitely not registered.
func (f *PhoneFilter) MayExist(phone string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(phone)
}
