package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// LoginResult holds the authenticated user and their opaque session token.
type LoginResult struct {
	User  *User
	Token string
}

// Service implements phone-number login and registration on top of a user
// repository, with a bloom pre-filter short-circuiting lookups for phones
// that were never registered.
type Service struct {
	repo   Repository
	filter *PhoneFilter
	now    func() time.Time
}

// NewService creates a user Service. The filter may have been warmed by the
// caller; registrations performed through the service keep it up to date.
func NewService(repo Repository, filter *PhoneFilter) *Service {
	return &Service{
		repo:   repo,
		filter: filter,
		now:    time.Now,
	}
}

// WarmFilter loads all registered phone numbers into the pre-filter.
func (s *Service) WarmFilter(ctx context.Context) error {
	phones, err := s.repo.ListPhones(ctx)
	if err != nil {
		return errors.Wrap(err, "list phones")
	}
	s.filter.Warm(phones)
	return nil
}

// Login looks up a user by phone number and mints a session token.
// It returns ErrNotFound for unregistered phones.
func (s *Service) Login(ctx context.Context, phone string) (*LoginResult, error) {
	u, err := s.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: s.mintToken(u.ID)}, nil
}

// GetByPhone resolves a user by phone, consulting the pre-filter first.
func (s *Service) GetByPhone(ctx context.Context, phone string) (*User, error) {
	if !s.filter.MayExist(phone) {
		return nil, ErrNotFound
	}
	u, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get user by phone")
	}
	return u, nil
}

// GetByID resolves a user by their numeric identifier.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get user by id")
	}
	return u, nil
}

// Exists reports whether a user with the given phone is registered.
func (s *Service) Exists(ctx context.Context, phone string) (bool, error) {
	_, err := s.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Register validates and creates a new user. Registering a phone that is
// already taken returns ErrAlreadyExists. When the registration marks the
// shipping address as the billing address, the caller is expected to have
// copied it already; the service only validates completeness.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	if reg.CustomerType == "" {
		reg.CustomerType = CustomerPrivate
	}
	if reg.CustomerType != CustomerBusiness {
		// Company details are meaningless for private customers.
		reg.CompanyName = ""
		reg.TaxID = ""
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	// Lookup first, as the original flow does. The UNIQUE constraint on the
	// phone column still catches races.
	if _, err := s.repo.GetByPhone(ctx, reg.Phone); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check existing user")
	}

	u, err := s.repo.Create(ctx, reg)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		return nil, errors.Wrap(err, "create user")
	}

	s.filter.Add(u.Phone)
	return u, nil
}

// mintToken produces the opaque session token. There is no server-side
// session state; the token only marks the client as authenticated.
func (s *Service) mintToken(userID int64) string {
	return fmt.Sprintf("token_%d_%d", userID, s.now().UnixMilli())
}
