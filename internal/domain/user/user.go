package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for user lookup and registration.
var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user with this phone already exists")
)

// CustomerType distinguishes private and business customers.
type CustomerType string

const (
	CustomerPrivate  CustomerType = "private"
	CustomerBusiness CustomerType = "business"
)

// Address is a postal address used for billing and shipping.
type Address struct {
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
}

// Complete reports whether every address field is filled in.
func (a Address) Complete() bool {
	return a.PostalCode != "" && a.City != "" && a.Street != "" && a.HouseNumber != ""
}

// User is a registered customer, keyed by phone number.
type User struct {
	ID              int64        `json:"id"`
	Phone           string       `json:"phone"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Email           string       `json:"email,omitempty"`
	CustomerType    CustomerType `json:"customer_type"`
	CompanyName     string       `json:"company_name,omitempty"`
	TaxID           string       `json:"tax_id,omitempty"`
	BillingAddress  Address      `json:"billing_address"`
	ShippingAddress Address      `json:"shipping_address"`
	CreatedAt       time.Time    `json:"created_at"`
}

// Registration holds the input for creating a new user.
type Registration struct {
	Phone           string
	FirstName       string
	LastName        string
	Email           string
	CustomerType    CustomerType
	CompanyName     string
	TaxID           string
	BillingAddress  Address
	ShippingAddress Address
}

// ValidationError describes a rejected registration field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing or invalid field: " + e.Field
}

// Validate checks the registration for required fields. Company name and tax
// ID are only required for business customers.
func (r Registration) Validate() error {
	switch {
	case r.Phone == "":
		return &ValidationError{Field: "phone"}
	case r.FirstName == "":
		return &ValidationError{Field: "first_name"}
	case r.LastName == "":
		return &ValidationError{Field: "last_name"}
	}
	if r.CustomerType == CustomerBusiness && r.CompanyName == "" {
		return &ValidationError{Field: "company_name"}
	}
	if !r.BillingAddress.Complete() {
		return &ValidationError{Field: "billing_address"}
	}
	if !r.ShippingAddress.Complete() {
		return &ValidationError{Field: "shipping_address"}
	}
	return nil
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, reg Registration) (*User, error)
	// GetByPhone returns ErrNotFound when no user has the given phone.
	GetByPhone(ctx context.Context, phone string) (*User, error)
	// GetByID returns ErrNotFound when no user has the given ID.
	GetByID(ctx context.Context, id int64) (*User, error)
	// ListPhones returns every registered phone number. Used to warm the
	// phone pre-filter at startup.
	ListPhones(ctx context.Context) ([]string, error)
}
