package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towelexpress/storefront/internal/domain/user"
)

func billingAddress() user.Address {
	return user.Address{PostalCode: "00-001", City: "Warszawa", Street: "Przykładowa", HouseNumber: "123"}
}

func validProfile() Profile {
	return Profile{
		CustomerType:   user.CustomerPrivate,
		FirstName:      "Anna",
		LastName:       "Kowalska",
		BillingAddress: billingAddress(),
		SameAsBilling:  true,
	}
}

func wizardAtProfile(t *testing.T) *Wizard {
	t.Helper()
	w := New()
	require.NoError(t, w.SubmitPhone("123 456 789"))
	require.NoError(t, w.SubmitCode("1234"))
	return w
}

func TestSubmitPhone_Valid(t *testing.T) {
	w := New()
	require.NoError(t, w.SubmitPhone("123456789"))
	assert.Equal(t, CodeVerification, w.Step())
	assert.Equal(t, "+48123456789", w.Phone())
}

func TestSubmitPhone_GroupedDigits(t *testing.T) {
	w := New()
	require.NoError(t, w.SubmitPhone("123 456 789"))
	assert.Equal(t, "+48123456789", w.Phone())
}

func TestSubmitPhone_Invalid(t *testing.T) {
	for _, phone := range []string{"", "12345678", "1234567890", "12345678a"} {
		w := New()
		err := w.SubmitPhone(phone)
		assert.ErrorIs(t, err, ErrInvalidPhone, "phone %q", phone)
		assert.Equal(t, PhoneEntry, w.Step())
	}
}

func TestSubmitCode_WrongCodeStaysPut(t *testing.T) {
	w := New()
	require.NoError(t, w.SubmitPhone("123456789"))

	err := w.SubmitCode("9999")
	require.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, CodeVerification, w.Step(), "wrong code must keep the verification step")

	require.NoError(t, w.SubmitCode("1234"))
	assert.Equal(t, ProfileDetails, w.Step())
}

func TestBack_OnlyFromCodeVerification(t *testing.T) {
	w := New()
	assert.ErrorIs(t, w.Back(), ErrWrongStep)

	require.NoError(t, w.SubmitPhone("123456789"))
	require.NoError(t, w.Back())
	assert.Equal(t, PhoneEntry, w.Step())

	// The corrected number replaces the old one.
	require.NoError(t, w.SubmitPhone("987654321"))
	assert.Equal(t, "+48987654321", w.Phone())
}

func TestSubmitProfile_SameAsBillingCopiesAddress(t *testing.T) {
	w := wizardAtProfile(t)

	reg, err := w.SubmitProfile(validProfile())
	require.NoError(t, err)
	assert.Equal(t, reg.BillingAddress, reg.ShippingAddress)
	assert.Equal(t, Done, w.Step())
}

func TestSubmitProfile_SeparateShippingRequired(t *testing.T) {
	w := wizardAtProfile(t)

	p := validProfile()
	p.SameAsBilling = false

	_, err := w.SubmitProfile(p)
	var vErr *user.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "shipping_address", vErr.Field)
	assert.Equal(t, ProfileDetails, w.Step(), "validation failure must not advance")

	p.ShippingAddress = user.Address{PostalCode: "80-001", City: "Gdańsk", Street: "Morska", HouseNumber: "7"}
	reg, err := w.SubmitProfile(p)
	require.NoError(t, err)
	assert.Equal(t, "Gdańsk", reg.ShippingAddress.City)
}

func TestSubmitProfile_BusinessNeedsCompany(t *testing.T) {
	w := wizardAtProfile(t)

	p := validProfile()
	p.CustomerType = user.CustomerBusiness

	_, err := w.SubmitProfile(p)
	var vErr *user.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "company_name", vErr.Field)
}

func TestSubmitProfile_CarriesWizardPhone(t *testing.T) {
	w := wizardAtProfile(t)

	reg, err := w.SubmitProfile(validProfile())
	require.NoError(t, err)
	assert.Equal(t, "+48123456789", reg.Phone)
}

func TestStepOrdering(t *testing.T) {
	w := New()
	assert.ErrorIs(t, w.SubmitCode("1234"), ErrWrongStep)
	_, err := w.SubmitProfile(validProfile())
	assert.ErrorIs(t, err, ErrWrongStep)
}
