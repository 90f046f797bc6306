package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/towelexpress/storefront/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO app_users
		(phone, first_name, last_name, email, customer_type, company_name, tax_id, billing_address, shipping_address)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
		RETURNING id, created_at`

	getUserByPhoneSQL = `SELECT id, phone, first_name, last_name, COALESCE(email, ''),
		customer_type, COALESCE(company_name, ''), COALESCE(tax_id, ''),
		billing_address, shipping_address, created_at
		FROM app_users WHERE phone = $1`

	getUserByIDSQL = `SELECT id, phone, first_name, last_name, COALESCE(email, ''),
		customer_type, COALESCE(company_name, ''), COALESCE(tax_id, ''),
		billing_address, shipping_address, created_at
		FROM app_users WHERE id = $1`

	listPhonesSQL = `SELECT phone FROM app_users`
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL. Addresses
// are stored as JSONB documents.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user. A phone collision maps to user.ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, reg user.Registration) (*user.User, error) {
	billing, err := json.Marshal(reg.BillingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshaling billing address: %w", err)
	}
	shipping, err := json.Marshal(reg.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshaling shipping address: %w", err)
	}

	u := &user.User{
		Phone:           reg.Phone,
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		Email:           reg.Email,
		CustomerType:    reg.CustomerType,
		CompanyName:     reg.CompanyName,
		TaxID:           reg.TaxID,
		BillingAddress:  reg.BillingAddress,
		ShippingAddress: reg.ShippingAddress,
	}
	err = r.pool.QueryRow(ctx, createUserSQL,
		reg.Phone, reg.FirstName, reg.LastName, reg.Email,
		string(reg.CustomerType), reg.CompanyName, reg.TaxID,
		billing, shipping,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, user.ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating user %q: %w", reg.Phone, err)
	}

	return u, nil
}

// GetByPhone returns the user registered under the given phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByPhoneSQL, phone)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", phone, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", phone, err)
	}
	return &u, nil
}

// GetByID returns the user with the given identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return &u, nil
}

// ListPhones returns every registered phone number.
func (r *UserRepository) ListPhones(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listPhonesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing phones: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var phone string
		err := row.Scan(&phone)
		return phone, err
	})
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u                 user.User
		customerType      string
		billing, shipping []byte
	)
	err := row.Scan(
		&u.ID, &u.Phone, &u.FirstName, &u.LastName, &u.Email,
		&customerType, &u.CompanyName, &u.TaxID,
		&billing, &shipping, &u.CreatedAt,
	)
	if err != nil {
		return u, err
	}
	u.CustomerType = user.CustomerType(customerType)
	if err := json.Unmarshal(billing, &u.BillingAddress); err != nil {
		return u, fmt.Errorf("unmarshaling billing address: %w", err)
	}
	if err := json.Unmarshal(shipping, &u.ShippingAddress); err != nil {
		return u, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	return u, nil
}
