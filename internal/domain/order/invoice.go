package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/towelexpress/storefront/internal/domain/user"
)

// vatRate is the Polish standard VAT rate applied to every catalog item.
var vatRate = decimal.RequireFromString("0.23")

const (
	invoiceRule   = "──────────────────────────────────────────"
	invoiceBorder = "══════════════════════════════════════════"
)

// Invoice renders the fixed-format plain-text VAT invoice for an order.
// Prices are stored gross; net and VAT amounts are derived per line.
func Invoice(o *Order, buyer *user.User, issuedAt time.Time) string {
	var b strings.Builder
	date := issuedAt.Format("02.01.2006")
	one := decimal.NewFromInt(1)

	fmt.Fprintf(&b, "\n%s\n           FAKTURA VAT\n%s\n\n", invoiceBorder, invoiceBorder)
	fmt.Fprintf(&b, "Numer faktury: FAK-%d\n", o.ID)
	fmt.Fprintf(&b, "Data wystawienia: %s\n", date)
	fmt.Fprintf(&b, "Data sprzedaży: %s\n\n%s\n\n", date, invoiceRule)

	b.WriteString("SPRZEDAWCA:\n")
	b.WriteString("Sklep z Ręcznikami Sp. z o.o.\n")
	b.WriteString("ul. Przykładowa 123\n")
	b.WriteString("00-001 Warszawa\n")
	b.WriteString("NIP: 1234567890\n")
	b.WriteString("REGON: 123456789\n\n")
	fmt.Fprintf(&b, "%s\n\n", invoiceRule)

	b.WriteString("NABYWCA:\n")
	if buyer != nil {
		fmt.Fprintf(&b, "%s %s\n", buyer.FirstName, buyer.LastName)
		if buyer.CustomerType == user.CustomerBusiness && buyer.CompanyName != "" {
			fmt.Fprintf(&b, "%s\n", buyer.CompanyName)
			if buyer.TaxID != "" {
				fmt.Fprintf(&b, "NIP: %s\n", buyer.TaxID)
			}
		}
		fmt.Fprintf(&b, "%s\n", buyer.Phone)
		if buyer.Email != "" {
			fmt.Fprintf(&b, "%s\n", buyer.Email)
		}
	}
	fmt.Fprintf(&b, "\n%s\n\n", invoiceRule)

	b.WriteString("POZYCJE FAKTURY:\n\n")
	totalNet := decimal.Zero
	for i, item := range o.Items {
		gross := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		net := gross.Div(one.Add(vatRate)).Round(2)
		vat := gross.Sub(net)
		totalNet = totalNet.Add(net)

		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
		fmt.Fprintf(&b, "   Ilość: %d szt\n", item.Quantity)
		fmt.Fprintf(&b, "   Cena netto: %s zł\n", net.StringFixed(2))
		fmt.Fprintf(&b, "   VAT 23%%: %s zł\n", vat.StringFixed(2))
		fmt.Fprintf(&b, "   Wartość brutto: %s zł\n\n", gross.StringFixed(2))
	}

	totalGross := o.TotalAmount.Round(2)
	totalVAT := totalGross.Sub(totalNet)

	fmt.Fprintf(&b, "%s\n\n", invoiceRule)
	b.WriteString("PODSUMOWANIE:\n")
	fmt.Fprintf(&b, "Wartość netto: %s zł\n", totalNet.StringFixed(2))
	fmt.Fprintf(&b, "VAT 23%%: %s zł\n", totalVAT.StringFixed(2))
	fmt.Fprintf(&b, "RAZEM DO ZAPŁATY: %s zł\n\n", totalGross.StringFixed(2))
	fmt.Fprintf(&b, "%s\n\n", invoiceRule)

	b.WriteString("Sposób płatności: Przelew online\n")
	b.WriteString("Status: OPŁACONE\n\n")
	b.WriteString("Dziękujemy za zakup!\n")
	b.WriteString("Sklep z Ręcznikami\n")
	b.WriteString("tel: +48 123 456 789\n")
	b.WriteString("email: sklep@reczniki.pl\n\n")
	fmt.Fprintf(&b, "%s\n", invoiceBorder)

	return b.String()
}
