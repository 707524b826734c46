package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InstallmentRepository implements domain.InstallmentRepository using
// PostgreSQL. Payment events ride in a jsonb column so an installment and
// its history update as one atomic row write; the version column rejects
// lost updates from concurrent operators.
type InstallmentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepository creates a new InstallmentRepository
func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

const installmentColumns = `id, loan_id, number, due_date, scheduled_amount::text,
	amount_paid::text, events, overdue_surcharge::text, remarks, updated_by,
	version, created_at, updated_at`

// CreateBatchTx inserts the installments of a freshly generated schedule
// within a transaction
func (r *InstallmentRepository) CreateBatchTx(tx any, installments []*domain.Installment) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, inst := range installments {
		events, err := json.Marshal(inst.Events)
		if err != nil {
			return err
		}
		err = pgxTx.QueryRow(ctx, `
			INSERT INTO installments (loan_id, number, due_date, scheduled_amount,
				amount_paid, events, overdue_surcharge, remarks, updated_by)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7::numeric, $8, $9)
			RETURNING id`,
			inst.LoanID,
			inst.Number,
			inst.DueDate,
			inst.ScheduledAmount.String(),
			inst.AmountPaid.String(),
			events,
			inst.OverdueSurcharge.String(),
			inst.Remarks,
			inst.UpdatedBy,
		).Scan(&inst.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves an installment by its ID
func (r *InstallmentRepository) GetByID(id int32) (*domain.Installment, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+installmentColumns+` FROM installments WHERE id = $1`, id)
	inst, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return inst, nil
}

// GetByLoanID retrieves the loan's installments ordered by number
func (r *InstallmentRepository) GetByLoanID(loanID int32) ([]*domain.Installment, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+installmentColumns+` FROM installments WHERE loan_id = $1 ORDER BY number`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []*domain.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

// Update persists the installment as one row write guarded by the version
// column. A stale version yields ErrConcurrentModification so the caller
// retries with fresh data instead of silently overwriting.
func (r *InstallmentRepository) Update(installment *domain.Installment) (*domain.Installment, error) {
	ctx := context.Background()
	events, err := json.Marshal(installment.Events)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE installments
		SET amount_paid = $3::numeric, events = $4, overdue_surcharge = $5::numeric,
			remarks = $6, updated_by = $7, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+installmentColumns,
		installment.ID,
		installment.Version,
		installment.AmountPaid.String(),
		events,
		installment.OverdueSurcharge.String(),
		installment.Remarks,
		installment.UpdatedBy,
	)
	updated, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a stale write from a missing row.
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM installments WHERE id = $1)`,
				installment.ID).Scan(&exists); checkErr != nil {
				return nil, checkErr
			}
			if exists {
				return nil, domain.ErrConcurrentModification
			}
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// DeleteWithoutPaymentsTx removes every installment of the loan that has no
// payment events; used by schedule regeneration
func (r *InstallmentRepository) DeleteWithoutPaymentsTx(tx any, loanID int32) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}
	_, err = pgxTx.Exec(context.Background(),
		`DELETE FROM installments WHERE loan_id = $1 AND jsonb_array_length(events) = 0`, loanID)
	return err
}

// scanInstallment reads one installment row into the domain type
func scanInstallment(row pgx.Row) (*domain.Installment, error) {
	var inst domain.Installment
	var scheduled, paid, surcharge string
	var events []byte
	err := row.Scan(
		&inst.ID,
		&inst.LoanID,
		&inst.Number,
		&inst.DueDate,
		&scheduled,
		&paid,
		&events,
		&surcharge,
		&inst.Remarks,
		&inst.UpdatedBy,
		&inst.Version,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if inst.ScheduledAmount, err = parseDecimal(scheduled); err != nil {
		return nil, err
	}
	if inst.AmountPaid, err = parseDecimal(paid); err != nil {
		return nil, err
	}
	if inst.OverdueSurcharge, err = parseDecimal(surcharge); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(events, &inst.Events); err != nil {
		return nil, err
	}
	return &inst, nil
}
