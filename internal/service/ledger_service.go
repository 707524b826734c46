package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/emitrack/emitrack-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerService applies payment events to installments. The paid amount is
// never stored without a backing event trail: every mutation appends events
// and recomputes the total from the full history.
type LedgerService struct {
	installmentRepo domain.InstallmentRepository
	clock           domain.Clock
	locks           *LoanLocks
	eventPublisher  websocket.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(installmentRepo domain.InstallmentRepository, clock domain.Clock, locks *LoanLocks) *LedgerService {
	return &LedgerService{
		installmentRepo: installmentRepo,
		clock:           clock,
		locks:           locks,
	}
}

// SetEventPublisher sets the publisher for real-time back-office updates
func (s *LedgerService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LedgerService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// PaymentInput is one collection entry: same-day multi-instrument payments
// and multi-date backfills arrive as a batch in a single call.
type PaymentInput struct {
	Date   time.Time
	Mode   string
	Amount decimal.Decimal
}

// ApplyPayment appends the events to the installment's history, recomputes
// the cumulative paid amount from that history, and stamps the acting
// operator. Overpayment is accepted and recorded as an over-collection; the
// derived status pins at Paid and no credit rolls forward.
func (s *LedgerService) ApplyPayment(installmentID int32, inputs []PaymentInput, actor string) (*domain.Installment, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one payment event is required", domain.ErrInvalidAmount)
	}
	for i, in := range inputs {
		if in.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: event %d has amount %s", domain.ErrInvalidAmount, i+1, in.Amount)
		}
		if strings.TrimSpace(in.Mode) == "" {
			return nil, fmt.Errorf("%w: event %d", domain.ErrInvalidMode, i+1)
		}
	}

	// Resolve the loan before taking its lock.
	installment, err := s.installmentRepo.GetByID(installmentID)
	if err != nil {
		return nil, err
	}

	defer s.locks.Lock(installment.LoanID).Unlock()

	// Reload under the lock so the append sees the latest history.
	installment, err = s.installmentRepo.GetByID(installmentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for _, in := range inputs {
		date := in.Date
		if date.IsZero() {
			date = s.clock.Today()
		}
		installment.Events = append(installment.Events, domain.PaymentEvent{
			ID:         uuid.New(),
			Date:       date,
			Mode:       strings.TrimSpace(in.Mode),
			Amount:     in.Amount,
			RecordedBy: actor,
		})
	}
	installment.AmountPaid = installment.EventTotal()
	installment.UpdatedBy = actor
	installment.UpdatedAt = now

	updated, err := s.installmentRepo.Update(installment)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("loan_id", updated.LoanID).
		Int32("installment", updated.Number).
		Str("amount_paid", updated.AmountPaid.StringFixed(2)).
		Str("actor", actor).
		Msg("Payment applied")

	s.publishEvent(websocket.PaymentRecorded(updated))
	return updated, nil
}

// SetSurcharge updates the descriptive overdue surcharge and remarks fields.
// Independent of payment amounts.
func (s *LedgerService) SetSurcharge(installmentID int32, surcharge decimal.Decimal, remarks *string, actor string) (*domain.Installment, error) {
	if surcharge.IsNegative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSurcharge, surcharge)
	}
	if remarks != nil && len(*remarks) > domain.MaxRemarksLength {
		return nil, fmt.Errorf("%w: remarks exceed %d characters", domain.ErrInvalidSurcharge, domain.MaxRemarksLength)
	}

	installment, err := s.installmentRepo.GetByID(installmentID)
	if err != nil {
		return nil, err
	}

	defer s.locks.Lock(installment.LoanID).Unlock()

	installment, err = s.installmentRepo.GetByID(installmentID)
	if err != nil {
		return nil, err
	}

	installment.OverdueSurcharge = surcharge
	installment.Remarks = remarks
	installment.UpdatedBy = actor
	installment.UpdatedAt = s.clock.Now()

	updated, err := s.installmentRepo.Update(installment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.SurchargeUpdated(updated))
	return updated, nil
}
