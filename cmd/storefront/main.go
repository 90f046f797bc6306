// Command storefront is a terminal client for the storefront API. It drives
// the same flows as the web shop: browsing the catalog, a local cart,
// phone-number login and registration, checkout with simulated payment, and
// order history with invoice download.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/towelexpress/storefront/internal/apiclient"
	"github.com/towelexpress/storefront/internal/domain/cart"
	"github.com/towelexpress/storefront/internal/domain/checkout"
	"github.com/towelexpress/storefront/internal/domain/order"
	"github.com/towelexpress/storefront/internal/domain/product"
	"github.com/towelexpress/storefront/internal/domain/register"
	"github.com/towelexpress/storefront/internal/domain/user"
	"github.com/towelexpress/storefront/internal/session"
)

func main() {
	var (
		apiURL     string
		sessionDir string
	)
	flag.StringVar(&apiURL, "api-url", "http://localhost:8080", "storefront API base URL (or SHOP_API_URL env)")
	flag.StringVar(&sessionDir, "session-dir", "", "directory for session state (default ~/.storefront)")
	flag.Parse()

	if v := os.Getenv("SHOP_API_URL"); v != "" && apiURL == "http://localhost:8080" {
		apiURL = v
	}
	if sessionDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot determine home directory:", err)
			os.Exit(1)
		}
		sessionDir = filepath.Join(home, ".storefront")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, apiURL, sessionDir); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// orderPlacer adapts order placement through the API to the checkout flow's
// Payer: the server performs the simulated payment as part of order creation.
type orderPlacer struct {
	api    *apiclient.Client
	userID int64
	items  cart.Cart
	placed *order.Order
}

func (p *orderPlacer) Pay(ctx context.Context, _ decimal.Decimal) error {
	placed, err := p.api.CreateOrder(ctx, p.userID, p.items)
	if err != nil {
		return err
	}
	p.placed = placed
	return nil
}

// shop holds the terminal client state: the API client, the persisted
// session, and the in-memory checkout flow.
type shop struct {
	api     *apiclient.Client
	session *session.Session
	placer  *orderPlacer
	flow    *checkout.Flow
	user    *user.User
	catalog []product.Product
	in      *bufio.Scanner
	out     *bufio.Writer
}

func run(ctx context.Context, apiURL, sessionDir string) error {
	storage, err := session.NewFileStorage(sessionDir)
	if err != nil {
		return err
	}
	sess := session.New(storage)

	u, err := sess.User()
	if err != nil {
		return err
	}
	storedCart, err := sess.Cart()
	if err != nil {
		return err
	}

	api := apiclient.New(apiURL)
	placer := &orderPlacer{api: api}
	s := &shop{
		api:     api,
		session: sess,
		placer:  placer,
		flow:    checkout.New(storedCart, u != nil, placer),
		user:    u,
		in:      bufio.NewScanner(os.Stdin),
		out:     bufio.NewWriter(os.Stdout),
	}
	defer s.out.Flush()

	s.printf("RĘCZNIK EXPRESS — sklep z ręcznikami\n")
	if u != nil {
		s.printf("Zalogowano jako %s %s (%s)\n", u.FirstName, u.LastName, u.Phone)
	}
	s.printf("Wpisz 'help' aby zobaczyć polecenia.\n")

	for {
		s.printf("[%s]> ", s.flow.State())
		s.out.Flush()

		if !s.in.Scan() {
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if cmd == "quit" || cmd == "exit" {
			return s.saveCart()
		}
		if err := s.dispatch(ctx, cmd, args); err != nil {
			if errors.Is(err, context.Canceled) {
				return s.saveCart()
			}
			s.printf("! %v\n", err)
		}
		if err := s.saveCart(); err != nil {
			s.printf("! zapis koszyka: %v\n", err)
		}
	}
}

func (s *shop) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *shop) saveCart() error {
	return s.session.SetCart(s.flow.Cart())
}

func (s *shop) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.printHelp()
		return nil
	case "products":
		return s.showProducts(ctx)
	case "add":
		return s.addToCart(ctx, args)
	case "cart":
		s.showCart()
		return nil
	case "qty":
		return s.setQuantity(args)
	case "checkout":
		return s.requestCheckout()
	case "pay":
		return s.pay(ctx)
	case "cancel":
		s.flow.Cancel()
		return nil
	case "login":
		return s.login(ctx, args)
	case "register":
		return s.register(ctx)
	case "logout":
		s.user = nil
		return s.session.SignOut()
	case "whoami":
		s.showUser()
		return nil
	case "orders":
		return s.showOrders(ctx)
	case "invoice":
		return s.showInvoice(ctx, args)
	default:
		return errors.Errorf("nieznane polecenie %q, wpisz 'help'", cmd)
	}
}

func (s *shop) printHelp() {
	s.printf(`Polecenia:
  products            pokaż katalog
  add <id>            dodaj produkt do koszyka
  cart                pokaż koszyk
  qty <id> <ilość>    zmień ilość (0 usuwa)
  checkout            przejdź do podsumowania
  pay                 zapłać i złóż zamówienie
  cancel              wróć do przeglądania
  login <telefon>     zaloguj się numerem telefonu
  register            załóż konto (kreator)
  logout              wyloguj się
  whoami              pokaż zalogowanego użytkownika
  orders              historia zamówień
  invoice <id>        pobierz fakturę zamówienia
  quit                zakończ
`)
}

func (s *shop) showProducts(ctx context.Context) error {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		s.printf("(sklep niedostępny, pokazuję katalog awaryjny)\n")
	}
	s.catalog = products
	for _, p := range products {
		s.printf("%3d  %-30s %8s zł  %s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Description)
	}
	return nil
}

func (s *shop) addToCart(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("użycie: add <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.New("użycie: add <id>")
	}

	if s.catalog == nil {
		products, err := s.api.ListProducts(ctx)
		if err != nil {
			s.printf("(sklep niedostępny, pokazuję katalog awaryjny)\n")
		}
		s.catalog = products
	}
	for _, p := range s.catalog {
		if p.ID == id {
			s.flow.AddProduct(p)
			s.printf("Dodano: %s\n", p.Name)
			return nil
		}
	}
	return errors.Errorf("nie ma produktu %d", id)
}

func (s *shop) showCart() {
	c := s.flow.Cart()
	if len(c) == 0 {
		s.printf("Koszyk jest pusty.\n")
		return
	}
	for _, line := range c {
		s.printf("%3d  %-30s %2d szt × %8s zł\n", line.ProductID, line.Name, line.Quantity, line.Price.StringFixed(2))
	}
	s.printf("Razem: %s zł (%d szt)\n", cart.TotalAmount(c).StringFixed(2), cart.TotalItems(c))
}

func (s *shop) setQuantity(args []string) error {
	if len(args) != 2 {
		return errors.New("użycie: qty <id> <ilość>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.New("użycie: qty <id> <ilość>")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.New("użycie: qty <id> <ilość>")
	}

	if s.flow.State() == checkout.Reviewing {
		return s.flow.UpdateQuantity(id, qty)
	}
	// While browsing the cart is edited directly.
	c := cart.SetQuantity(s.flow.Cart(), id, qty)
	s.flow = checkout.New(c, s.user != nil, s.placer)
	return nil
}

func (s *shop) requestCheckout() error {
	if err := s.flow.RequestCheckout(); err != nil {
		return err
	}
	if s.flow.State() == checkout.AwaitingAuth {
		s.printf("Zaloguj się (login <telefon>) lub załóż konto (register), aby kontynuować.\n")
		return nil
	}
	s.showCart()
	s.printf("Wpisz 'pay' aby zapłacić.\n")
	return nil
}

func (s *shop) pay(ctx context.Context) error {
	if s.user == nil {
		return errors.New("najpierw się zaloguj")
	}
	s.placer.userID = s.user.ID
	s.placer.items = s.flow.Cart()

	s.printf("Przetwarzanie płatności...\n")
	s.out.Flush()

	amount, err := s.flow.Pay(ctx)
	if err != nil {
		return err
	}
	s.printf("Zapłacono %s zł. Zamówienie %s przyjęte.\n", amount.StringFixed(2), s.placer.placed.OrderNumber)
	return s.session.ClearCart()
}

func (s *shop) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("użycie: login <telefon>")
	}
	phone := args[0]

	res, err := s.api.Login(ctx, phone)
	if err != nil {
		if apiclient.IsNotFound(err) {
			return errors.New("nie znaleziono konta, użyj 'register'")
		}
		return err
	}

	s.user = res.User
	s.flow.SetAuthenticated()
	if err := s.session.SignIn(res.User, res.Token); err != nil {
		return err
	}
	s.printf("Witaj, %s!\n", res.User.FirstName)
	if s.flow.State() == checkout.Reviewing {
		s.printf("Wracamy do podsumowania zamówienia.\n")
		s.showCart()
	}
	return nil
}

// register walks the three-step wizard: phone, SMS code, profile.
func (s *shop) register(ctx context.Context) error {
	wizard := register.New()

	for wizard.Step() != register.Done {
		switch wizard.Step() {
		case register.PhoneEntry:
			local := s.prompt("Numer telefonu (9 cyfr): ")
			if err := wizard.SubmitPhone(local); err != nil {
				s.printf("! %v\n", err)
				continue
			}
			if err := s.api.SendSMS(ctx, wizard.Phone()); err != nil {
				s.printf("! wysyłka SMS: %v\n", err)
			}

		case register.CodeVerification:
			code := s.prompt("Kod z SMS (lub 'back'): ")
			if code == "back" {
				if err := wizard.Back(); err != nil {
					return err
				}
				continue
			}
			if err := wizard.SubmitCode(code); err != nil {
				s.printf("! %v\n", err)
			}

		case register.ProfileDetails:
			profile, err := s.promptProfile()
			if err != nil {
				return err
			}
			reg, err := wizard.SubmitProfile(profile)
			if err != nil {
				s.printf("! %v\n", err)
				continue
			}

			created, err := s.api.Register(ctx, reg)
			if err != nil {
				return err
			}
			s.user = created
			s.flow.SetAuthenticated()
			if err := s.session.SetUser(created); err != nil {
				return err
			}
			s.printf("Konto utworzone. Witaj, %s!\n", created.FirstName)
		}
	}
	return nil
}

func (s *shop) promptProfile() (register.Profile, error) {
	p := register.Profile{
		FirstName: s.prompt("Imię: "),
		LastName:  s.prompt("Nazwisko: "),
		Email:     s.prompt("E-mail (opcjonalnie): "),
	}
	if strings.EqualFold(s.prompt("Konto firmowe? (t/n): "), "t") {
		p.CustomerType = user.CustomerBusiness
		p.CompanyName = s.prompt("Nazwa firmy: ")
		p.TaxID = s.prompt("NIP: ")
	} else {
		p.CustomerType = user.CustomerPrivate
	}

	s.printf("Adres rozliczeniowy:\n")
	p.BillingAddress = s.promptAddress()

	if strings.EqualFold(s.prompt("Adres dostawy taki sam? (t/n): "), "t") {
		p.SameAsBilling = true
	} else {
		s.printf("Adres dostawy:\n")
		p.ShippingAddress = s.promptAddress()
	}
	return p, nil
}

func (s *shop) promptAddress() user.Address {
	return user.Address{
		PostalCode:  s.prompt("  Kod pocztowy: "),
		City:        s.prompt("  Miasto: "),
		Street:      s.prompt("  Ulica: "),
		HouseNumber: s.prompt("  Numer domu: "),
	}
}

func (s *shop) prompt(label string) string {
	s.printf("%s", label)
	s.out.Flush()
	if !s.in.Scan() {
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *shop) showUser() {
	if s.user == nil {
		s.printf("Nie jesteś zalogowany.\n")
		return
	}
	s.printf("%s %s, tel. %s", s.user.FirstName, s.user.LastName, s.user.Phone)
	if s.user.CustomerType == user.CustomerBusiness {
		s.printf(" (%s, NIP %s)", s.user.CompanyName, s.user.TaxID)
	}
	s.printf("\n")
}

func (s *shop) showOrders(ctx context.Context) error {
	if s.user == nil {
		return errors.New("najpierw się zaloguj")
	}
	orders, err := s.api.ListOrders(ctx, s.user.ID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		s.printf("Brak zamówień.\n")
		return nil
	}
	for _, o := range orders {
		s.printf("#%d  %s  %s  %8s zł  %s\n",
			o.ID, o.OrderNumber, o.CreatedAt.Format("02.01.2006"), o.TotalAmount.StringFixed(2), statusLabel(o.Status))
		for _, item := range o.Items {
			s.printf("     %s × %d\n", item.Name, item.Quantity)
		}
	}
	return nil
}

func (s *shop) showInvoice(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("użycie: invoice <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.New("użycie: invoice <id>")
	}
	text, err := s.api.Invoice(ctx, id)
	if err != nil {
		return err
	}
	s.printf("%s\n", text)
	return nil
}

// statusLabel maps order statuses to the Polish labels the shop displays.
func statusLabel(st order.Status) string {
	switch st {
	case order.StatusPending:
		return "oczekujące"
	case order.StatusPaid:
		return "opłacone"
	case order.StatusShipped:
		return "wysłane"
	case order.StatusDelivered:
		return "dostarczone"
	case order.StatusCancelled:
		return "anulowane"
	}
	return string(st)
}
