// Package register models the three-step registration wizard as an explicit
// state machine: phone entry, SMS code verification, profile details. The
// only backward transition is from code verification to phone entry.
package register

import (
	"strings"
	"unicode"

	"github.com/go-faster/errors"

	"github.com/towelexpress/storefront/internal/domain/user"
)

// Step identifies the wizard position.
type Step int

const (
	PhoneEntry Step = iota
	CodeVerification
	ProfileDetails
	Done
)

func (s Step) String() string {
	switch s {
	case PhoneEntry:
		return "phone_entry"
	case CodeVerification:
		return "code_verification"
	case ProfileDetails:
		return "profile_details"
	case Done:
		return "done"
	}
	return "unknown"
}

// PhoneDigits is the required local phone number length. Numbers are
// entered without the country prefix; CountryPrefix is prepended on submit.
const (
	PhoneDigits   = 9
	CountryPrefix = "+48"
)

// DevVerificationCode is accepted in place of a delivered SMS code while
// delivery is stubbed.
const DevVerificationCode = "1234"

// Wizard step errors.
var (
	ErrWrongStep    = errors.New("operation not valid in current step")
	ErrInvalidPhone = errors.New("phone number must have 9 digits")
	ErrInvalidCode  = errors.New("invalid verification code")
)

// Profile holds the details collected in the final step.
type Profile struct {
	CustomerType    user.CustomerType
	FirstName       string
	LastName        string
	Email           string
	CompanyName     string
	TaxID           string
	BillingAddress  user.Address
	SameAsBilling   bool
	ShippingAddress user.Address
}

// Wizard is the registration flow state for one client session.
type Wizard struct {
	step  Step
	phone string
}

// New starts a wizard at the phone entry step.
func New() *Wizard {
	return &Wizard{step: PhoneEntry}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Phone returns the full phone number entered so far, prefix included.
func (w *Wizard) Phone() string { return w.phone }

// SubmitPhone validates the local number and advances to code verification.
// Spaces are tolerated (the entry field groups digits); anything else
// non-numeric or a wrong length is rejected.
func (w *Wizard) SubmitPhone(local string) error {
	if w.step != PhoneEntry {
		return ErrWrongStep
	}
	digits := strings.ReplaceAll(local, " ", "")
	if len(digits) != PhoneDigits {
		return ErrInvalidPhone
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return ErrInvalidPhone
		}
	}
	w.phone = CountryPrefix + digits
	w.step = CodeVerification
	return nil
}

// Back returns from code verification to phone entry so a mistyped number
// can be corrected. No other step supports going back.
func (w *Wizard) Back() error {
	if w.step != CodeVerification {
		return ErrWrongStep
	}
	w.step = PhoneEntry
	return nil
}

// SubmitCode checks the verification code. A wrong code keeps the wizard in
// the verification step so the customer can retry.
func (w *Wizard) SubmitCode(code string) error {
	if w.step != CodeVerification {
		return ErrWrongStep
	}
	if code != DevVerificationCode {
		return ErrInvalidCode
	}
	w.step = ProfileDetails
	return nil
}

// SubmitProfile validates the profile and produces the registration to send
// to the server. When SameAsBilling is set the billing address doubles as
// the shipping address; otherwise a complete shipping address is required.
func (w *Wizard) SubmitProfile(p Profile) (user.Registration, error) {
	if w.step != ProfileDetails {
		return user.Registration{}, ErrWrongStep
	}

	shipping := p.ShippingAddress
	if p.SameAsBilling {
		shipping = p.BillingAddress
	}
	if p.CustomerType == "" {
		p.CustomerType = user.CustomerPrivate
	}

	reg := user.Registration{
		Phone:           w.phone,
		FirstName:       strings.TrimSpace(p.FirstName),
		LastName:        strings.TrimSpace(p.LastName),
		Email:           strings.TrimSpace(p.Email),
		CustomerType:    p.CustomerType,
		CompanyName:     strings.TrimSpace(p.CompanyName),
		TaxID:           strings.TrimSpace(p.TaxID),
		BillingAddress:  p.BillingAddress,
		ShippingAddress: shipping,
	}
	if err := reg.Validate(); err != nil {
		return user.Registration{}, err
	}

	w.step = Done
	return reg, nil
}
