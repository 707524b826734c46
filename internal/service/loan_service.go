package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/emitrack/emitrack-backend/internal/statemachine"
	"github.com/emitrack/emitrack-backend/internal/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TxStarter abstracts pgxpool.Pool so transactional paths stay testable.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LoanService handles intake, term edits, seizure and lifecycle transitions.
type LoanService struct {
	db              TxStarter
	loanRepo        domain.LoanRepository
	installmentRepo domain.InstallmentRepository
	customerRepo    domain.CustomerRepository
	schedule        *ScheduleService
	clock           domain.Clock
	locks           *LoanLocks
	eventPublisher  websocket.EventPublisher
}

// NewLoanService creates a new LoanService
func NewLoanService(db TxStarter, loanRepo domain.LoanRepository, installmentRepo domain.InstallmentRepository, customerRepo domain.CustomerRepository, schedule *ScheduleService, clock domain.Clock, locks *LoanLocks) *LoanService {
	return &LoanService{
		db:              db,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		customerRepo:    customerRepo,
		schedule:        schedule,
		clock:           clock,
		locks:           locks,
	}
}

// SetEventPublisher sets the publisher for real-time back-office updates
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LoanService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateLoanInput contains input for loan intake
type CreateLoanInput struct {
	LoanNumber           string
	CustomerID           int32
	Principal            decimal.Decimal
	AnnualRatePercent    decimal.Decimal
	TenureMonths         int32
	DisbursementDate     time.Time
	EMIStartDate         time.Time
	ProcessingFeePercent decimal.Decimal
}

// CreateLoan validates the terms, computes the EMI and processing fee, and
// persists the loan together with its full schedule in one transaction.
func (s *LoanService) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	loan := &domain.Loan{
		LoanNumber:           strings.TrimSpace(input.LoanNumber),
		CustomerID:           input.CustomerID,
		Principal:            input.Principal,
		AnnualRatePercent:    input.AnnualRatePercent,
		TenureMonths:         input.TenureMonths,
		DisbursementDate:     input.DisbursementDate,
		EMIStartDate:         input.EMIStartDate,
		ProcessingFeePercent: input.ProcessingFeePercent,
		Status:               domain.LoanStatusActive,
	}
	if err := loan.ValidateTerms(); err != nil {
		return nil, err
	}

	if _, err := s.customerRepo.GetByID(input.CustomerID); err != nil {
		return nil, err
	}

	if _, err := s.loanRepo.GetByNumber(loan.LoanNumber); err == nil {
		return nil, domain.ErrLoanNumberTaken
	} else if !errors.Is(err, domain.ErrLoanNotFound) {
		return nil, err
	}

	loan.EMIAmount = CalculateEMI(loan.Principal, loan.AnnualRatePercent, int(loan.TenureMonths))
	loan.ProcessingFeeAmount = CalculateProcessingFee(loan.Principal, loan.ProcessingFeePercent)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := s.loanRepo.CreateTx(tx, loan)
	if err != nil {
		return nil, err
	}

	installments, err := s.schedule.GenerateSchedule(created)
	if err != nil {
		return nil, err
	}
	if err := s.installmentRepo.CreateBatchTx(tx, installments); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().
		Str("loan_number", created.LoanNumber).
		Str("emi", created.EMIAmount.StringFixed(2)).
		Int32("tenure_months", created.TenureMonths).
		Msg("Loan created with schedule")

	s.publishEvent(websocket.LoanCreated(created))
	return created, nil
}

// UpdateTermsInput contains the editable amortization terms
type UpdateTermsInput struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TenureMonths      int32
	EMIStartDate      time.Time
}

// UpdateTerms edits the amortization terms and regenerates the schedule.
// Installments that already carry payments are preserved; the rest are
// replaced from the new terms. Runs under the loan's lock so it cannot
// interleave with a payment application.
func (s *LoanService) UpdateTerms(ctx context.Context, loanID int32, input UpdateTermsInput) (*domain.Loan, error) {
	defer s.locks.Lock(loanID).Unlock()

	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, domain.ErrLoanNotActive
	}

	loan.Principal = input.Principal
	loan.AnnualRatePercent = input.AnnualRatePercent
	loan.TenureMonths = input.TenureMonths
	loan.EMIStartDate = input.EMIStartDate
	if err := loan.ValidateTerms(); err != nil {
		return nil, err
	}
	loan.EMIAmount = CalculateEMI(loan.Principal, loan.AnnualRatePercent, int(loan.TenureMonths))
	loan.ProcessingFeeAmount = CalculateProcessingFee(loan.Principal, loan.ProcessingFeePercent)

	existing, err := s.installmentRepo.GetByLoanID(loanID)
	if err != nil {
		return nil, err
	}

	_, inserted, err := s.schedule.RegenerateSchedule(loan, existing)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := s.loanRepo.UpdateTx(tx, loan)
	if err != nil {
		return nil, err
	}
	if err := s.installmentRepo.DeleteWithoutPaymentsTx(tx, loanID); err != nil {
		return nil, err
	}
	if err := s.installmentRepo.CreateBatchTx(tx, inserted); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().
		Str("loan_number", updated.LoanNumber).
		Int("regenerated", len(inserted)).
		Msg("Loan terms updated, schedule regenerated")

	s.publishEvent(websocket.LoanUpdated(updated))
	return updated, nil
}

// SetSeized toggles the seizure flag.
func (s *LoanService) SetSeized(loanID int32, seized bool) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	loan.IsSeized = seized

	updated, err := s.loanRepo.Update(loan)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.LoanSeized(updated))
	return updated, nil
}

// SetClientResponse updates the free-text follow-up note.
func (s *LoanService) SetClientResponse(loanID int32, response string) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	loan.ClientResponse = &response

	updated, err := s.loanRepo.Update(loan)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.LoanUpdated(updated))
	return updated, nil
}

// CloseLoan closes a loan that is settled: either every installment is paid
// or the ledger covers every elapsed installment plus the remaining
// principal (foreclosure payoff).
func (s *LoanService) CloseLoan(ctx context.Context, loanID int32) (*domain.Loan, error) {
	defer s.locks.Lock(loanID).Unlock()

	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	installments, err := s.installmentRepo.GetByLoanID(loanID)
	if err != nil {
		return nil, err
	}
	if !s.isSettled(loan, installments) {
		return nil, fmt.Errorf("%w: loan %s", domain.ErrLoanNotSettled, loan.LoanNumber)
	}

	machine := statemachine.NewLoanFSM(loan)
	if err := machine.Close(ctx); err != nil {
		return nil, err
	}

	updated, err := s.loanRepo.Update(loan)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.LoanClosed(updated))
	return updated, nil
}

// MarkSold records that the debt was sold to a third party.
func (s *LoanService) MarkSold(ctx context.Context, loanID int32) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}

	machine := statemachine.NewLoanFSM(loan)
	if err := machine.Sell(ctx); err != nil {
		return nil, err
	}

	updated, err := s.loanRepo.Update(loan)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.LoanUpdated(updated))
	return updated, nil
}

// ReopenLoan reverses a close after a correction.
func (s *LoanService) ReopenLoan(ctx context.Context, loanID int32) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}

	machine := statemachine.NewLoanFSM(loan)
	if err := machine.Reopen(ctx); err != nil {
		return nil, err
	}

	updated, err := s.loanRepo.Update(loan)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.LoanUpdated(updated))
	return updated, nil
}

// GetLoan retrieves a loan by ID
func (s *LoanService) GetLoan(loanID int32) (*domain.Loan, error) {
	return s.loanRepo.GetByID(loanID)
}

// GetSchedule retrieves the loan's installments ordered by number
func (s *LoanService) GetSchedule(loanID int32) ([]*domain.Installment, error) {
	if _, err := s.loanRepo.GetByID(loanID); err != nil {
		return nil, err
	}
	return s.installmentRepo.GetByLoanID(loanID)
}

// isSettled reports whether the ledger fully covers the loan: natural
// completion (all installments paid) or a foreclosure payoff (every elapsed
// installment paid and the surplus covering the remaining principal).
func (s *LoanService) isSettled(loan *domain.Loan, installments []*domain.Installment) bool {
	today := s.clock.Today()

	allPaid := true
	elapsedScheduled := decimal.Zero
	totalPaid := decimal.Zero
	elapsed := 0
	for _, inst := range installments {
		totalPaid = totalPaid.Add(inst.AmountPaid)
		status := inst.Status(today)
		if status != domain.StatusPaid {
			allPaid = false
		}
		if !inst.DueDate.After(today) {
			elapsedScheduled = elapsedScheduled.Add(inst.ScheduledAmount)
			elapsed++
			if status != domain.StatusPaid {
				return false // an elapsed installment is still open
			}
		}
	}
	if allPaid {
		return true
	}

	lines := BuildBreakdown(loan, installments)
	remaining := loan.Principal
	if elapsed > 0 && elapsed <= len(lines) {
		remaining = lines[elapsed-1].Balance
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return totalPaid.GreaterThanOrEqual(elapsedScheduled.Add(remaining))
}
