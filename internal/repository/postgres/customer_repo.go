package postgres

import (
	"context"
	"errors"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerRepository implements domain.CustomerRepository using PostgreSQL
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, name, mobile, address, guarantor_name, guarantor_mobile, created_at, updated_at`

// Create creates a new customer
func (r *CustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO customers (name, mobile, address, guarantor_name, guarantor_mobile)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+customerColumns,
		customer.Name,
		customer.Mobile,
		customer.Address,
		customer.GuarantorName,
		customer.GuarantorMobile,
	)
	return scanCustomer(row)
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(id int32) (*domain.Customer, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// Update updates an existing customer
func (r *CustomerRepository) Update(customer *domain.Customer) (*domain.Customer, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE customers
		SET name = $2, mobile = $3, address = $4, guarantor_name = $5,
			guarantor_mobile = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+customerColumns,
		customer.ID,
		customer.Name,
		customer.Mobile,
		customer.Address,
		customer.GuarantorName,
		customer.GuarantorMobile,
	)
	updated, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return updated, nil
}

// scanCustomer reads one customer row into the domain type
func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Mobile,
		&customer.Address,
		&customer.GuarantorName,
		&customer.GuarantorMobile,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
