package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/towelexpress/storefront/internal/domain/user"
)

func TestInvoice_VATBreakdown(t *testing.T) {
	o := &Order{
		ID:          7,
		OrderNumber: "ORD-1700000001-123",
		UserID:      1,
		Items: []Item{
			{ProductID: 1, Name: "Ręcznik Basic 40x80cm", Quantity: 2, UnitPrice: decimal.RequireFromString("49.99")},
			{ProductID: 2, Name: "Ręcznik Premium 50x90cm", Quantity: 1, UnitPrice: decimal.RequireFromString("79.99")},
		},
		TotalAmount: decimal.RequireFromString("179.97"),
		Status:      StatusPaid,
	}
	buyer := &user.User{
		FirstName: "Jan",
		LastName:  "Kowalski",
		Phone:     "+48123456789",
		Email:     "jan@example.com",
	}

	text := Invoice(o, buyer, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))

	assert.Contains(t, text, "FAKTURA VAT")
	assert.Contains(t, text, "Numer faktury: FAK-7")
	assert.Contains(t, text, "Data wystawienia: 15.01.2024")
	assert.Contains(t, text, "Jan Kowalski")
	assert.Contains(t, text, "+48123456789")

	// Line 1: 2 × 49.99 = 99.98 gross → 81.28 net, 18.70 VAT.
	assert.Contains(t, text, "1. Ręcznik Basic 40x80cm")
	assert.Contains(t, text, "Cena netto: 81.28 zł")
	assert.Contains(t, text, "VAT 23%: 18.70 zł")
	assert.Contains(t, text, "Wartość brutto: 99.98 zł")

	// Totals: 179.97 gross → 146.31 net (81.28 + 65.03), 33.66 VAT.
	assert.Contains(t, text, "RAZEM DO ZAPŁATY: 179.97 zł")
	assert.Contains(t, text, "Wartość netto: 146.31 zł")
	assert.Contains(t, text, "VAT 23%: 33.66 zł")
	assert.Contains(t, text, "Status: OPŁACONE")
}

func TestInvoice_BusinessBuyerIncludesCompany(t *testing.T) {
	o := &Order{
		ID:          8,
		Items:       []Item{{ProductID: 4, Name: "Zestaw 3 ręczników", Quantity: 1, UnitPrice: decimal.RequireFromString("199.99")}},
		TotalAmount: decimal.RequireFromString("199.99"),
	}
	buyer := &user.User{
		FirstName:    "Piotr",
		LastName:     "Nowak",
		Phone:        "+48987654321",
		CustomerType: user.CustomerBusiness,
		CompanyName:  "Hotel Nadmorski Sp. z o.o.",
		TaxID:        "5252248481",
	}

	text := Invoice(o, buyer, time.Now())

	assert.Contains(t, text, "Hotel Nadmorski Sp. z o.o.")
	assert.Contains(t, text, "NIP: 5252248481")
}
