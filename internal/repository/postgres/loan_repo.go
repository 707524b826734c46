package postgres

import (
	"context"
	"errors"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, loan_number, customer_id, principal::text, annual_rate_percent::text,
	tenure_months, disbursement_date, emi_start_date, emi_amount::text,
	processing_fee_percent::text, processing_fee_amount::text,
	client_response, is_seized, status, created_at, updated_at`

const insertLoanSQL = `
	INSERT INTO loans (loan_number, customer_id, principal, annual_rate_percent,
		tenure_months, disbursement_date, emi_start_date, emi_amount,
		processing_fee_percent, processing_fee_amount, client_response, is_seized, status)
	VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric, $11, $12, $13)
	RETURNING ` + loanColumns

const updateLoanSQL = `
	UPDATE loans
	SET principal = $2::numeric, annual_rate_percent = $3::numeric, tenure_months = $4,
		disbursement_date = $5, emi_start_date = $6, emi_amount = $7::numeric,
		processing_fee_percent = $8::numeric, processing_fee_amount = $9::numeric,
		client_response = $10, is_seized = $11, status = $12, updated_at = now()
	WHERE id = $1
	RETURNING ` + loanColumns

// Create creates a new loan
func (r *LoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	return r.create(context.Background(), r.pool, loan)
}

// CreateTx creates a new loan within a transaction
func (r *LoanRepository) CreateTx(tx any, loan *domain.Loan) (*domain.Loan, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	return r.create(context.Background(), pgxTx, loan)
}

func (r *LoanRepository) create(ctx context.Context, db dbtx, loan *domain.Loan) (*domain.Loan, error) {
	row := db.QueryRow(ctx, insertLoanSQL,
		loan.LoanNumber,
		loan.CustomerID,
		loan.Principal.String(),
		loan.AnnualRatePercent.String(),
		loan.TenureMonths,
		loan.DisbursementDate,
		loan.EMIStartDate,
		loan.EMIAmount.String(),
		loan.ProcessingFeePercent.String(),
		loan.ProcessingFeeAmount.String(),
		loan.ClientResponse,
		loan.IsSeized,
		loan.Status,
	)
	return scanLoan(row)
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(id int32) (*domain.Loan, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// GetByNumber retrieves a loan by its human-assigned number
func (r *LoanRepository) GetByNumber(loanNumber string) (*domain.Loan, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+loanColumns+` FROM loans WHERE loan_number = $1`, loanNumber)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// List retrieves loans matching the filter, joined against customers for
// text and mobile matching
func (r *LoanRepository) List(filter domain.LoanFilter) ([]*domain.Loan, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+prefixColumns("l", loanColumns)+`
		FROM loans l
		JOIN customers c ON c.id = l.customer_id
		WHERE ($1 = '' OR l.loan_number ILIKE '%' || $1 || '%' OR c.name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR c.mobile = $2 OR c.guarantor_mobile = $2)
		  AND (NOT $3 OR l.is_seized)
		  AND ($4 = '' OR l.status = $4)
		ORDER BY l.loan_number`,
		filter.Query, filter.Mobile, filter.SeizedOnly, filter.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// Update updates an existing loan
func (r *LoanRepository) Update(loan *domain.Loan) (*domain.Loan, error) {
	return r.update(context.Background(), r.pool, loan)
}

// UpdateTx updates an existing loan within a transaction
func (r *LoanRepository) UpdateTx(tx any, loan *domain.Loan) (*domain.Loan, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	return r.update(context.Background(), pgxTx, loan)
}

func (r *LoanRepository) update(ctx context.Context, db dbtx, loan *domain.Loan) (*domain.Loan, error) {
	row := db.QueryRow(ctx, updateLoanSQL,
		loan.ID,
		loan.Principal.String(),
		loan.AnnualRatePercent.String(),
		loan.TenureMonths,
		loan.DisbursementDate,
		loan.EMIStartDate,
		loan.EMIAmount.String(),
		loan.ProcessingFeePercent.String(),
		loan.ProcessingFeeAmount.String(),
		loan.ClientResponse,
		loan.IsSeized,
		loan.Status,
	)
	updated, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return updated, nil
}

// scanLoan reads one loan row into the domain type
func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var loan domain.Loan
	var principal, rate, emi, feePercent, feeAmount string
	err := row.Scan(
		&loan.ID,
		&loan.LoanNumber,
		&loan.CustomerID,
		&principal,
		&rate,
		&loan.TenureMonths,
		&loan.DisbursementDate,
		&loan.EMIStartDate,
		&emi,
		&feePercent,
		&feeAmount,
		&loan.ClientResponse,
		&loan.IsSeized,
		&loan.Status,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if loan.Principal, err = parseDecimal(principal); err != nil {
		return nil, err
	}
	if loan.AnnualRatePercent, err = parseDecimal(rate); err != nil {
		return nil, err
	}
	if loan.EMIAmount, err = parseDecimal(emi); err != nil {
		return nil, err
	}
	if loan.ProcessingFeePercent, err = parseDecimal(feePercent); err != nil {
		return nil, err
	}
	if loan.ProcessingFeeAmount, err = parseDecimal(feeAmount); err != nil {
		return nil, err
	}
	return &loan, nil
}
