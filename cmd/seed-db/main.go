// Command seed-db loads the product catalog and a set of demo users into the
// database. The catalog file may be plain JSON or gzip-compressed JSON
// (detected by the .gz suffix).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/towelexpress/storefront/internal/domain/product"
	"github.com/towelexpress/storefront/internal/domain/user"
	"github.com/towelexpress/storefront/internal/repository"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		demoUsers    bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.gz supported)")
	flag.BoolVar(&demoUsers, "demo-users", true, "seed demo user accounts")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, demoUsers); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, demoUsers bool) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return seedProducts(ctx, repository.NewProductRepository(pool), productsFile)
	})
	if demoUsers {
		g.Go(func() error {
			return seedDemoUsers(ctx, repository.NewUserRepository(pool))
		})
	}
	return g.Wait()
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open products file")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "open gzip stream")
		}
		defer gz.Close()
		r = gz
	}

	var products []product.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	for _, p := range products {
		if err := repo.Upsert(ctx, p); err != nil {
			return err
		}
	}

	slog.Info("products seeded", slog.Int("count", len(products)))
	return nil
}

// seedDemoUsers creates the two demo accounts the storefront docs reference.
// Existing accounts are left untouched.
func seedDemoUsers(ctx context.Context, repo *repository.UserRepository) error {
	demo := []user.Registration{
		{
			Phone:        "+48123456789",
			FirstName:    "Anna",
			LastName:     "Kowalska",
			Email:        "anna@example.com",
			CustomerType: user.CustomerPrivate,
			BillingAddress: user.Address{
				PostalCode: "00-001", City: "Warszawa", Street: "Przykładowa", HouseNumber: "123",
			},
			ShippingAddress: user.Address{
				PostalCode: "00-001", City: "Warszawa", Street: "Przykładowa", HouseNumber: "123",
			},
		},
		{
			Phone:        "+48987654321",
			FirstName:    "Piotr",
			LastName:     "Nowak",
			Email:        "piotr@example.com",
			CustomerType: user.CustomerBusiness,
			CompanyName:  "Hurtownia Ręczników Sp. z o.o.",
			TaxID:        "1234567890",
			BillingAddress: user.Address{
				PostalCode: "30-001", City: "Kraków", Street: "Rynek", HouseNumber: "7",
			},
			ShippingAddress: user.Address{
				PostalCode: "30-001", City: "Kraków", Street: "Rynek", HouseNumber: "7",
			},
		},
	}

	created := 0
	for _, reg := range demo {
		if _, err := repo.Create(ctx, reg); err != nil {
			if errors.Is(err, user.ErrAlreadyExists) {
				continue
			}
			return errors.Wrap(err, "create demo user")
		}
		created++
	}

	slog.Info("demo users seeded", slog.Int("created", created))
	return nil
}
