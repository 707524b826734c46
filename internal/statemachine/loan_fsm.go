package statemachine

import (
	"context"
	"fmt"

	"github.com/emitrack/emitrack-backend/internal/domain"
	"github.com/looplab/fsm"
)

// LoanFSM wraps a loan with its lifecycle state machine
type LoanFSM struct {
	loan *domain.Loan
	fsm  *fsm.FSM
}

// NewLoanFSM creates a new loan state machine seeded with the loan's
// current status
func NewLoanFSM(loan *domain.Loan) *LoanFSM {
	l := &LoanFSM{loan: loan}

	l.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// active → closed (settled or foreclosed)
			{Name: "close", Src: []string{domain.LoanStatusActive}, Dst: domain.LoanStatusClosed},

			// active → sold (debt sold to a third party)
			{Name: "sell", Src: []string{domain.LoanStatusActive}, Dst: domain.LoanStatusSold},

			// closed → active (reopen after a correction)
			{Name: "reopen", Src: []string{domain.LoanStatusClosed}, Dst: domain.LoanStatusActive},
		},
		fsm.Callbacks{},
	)

	return l
}

// Close transitions the loan to closed
func (l *LoanFSM) Close(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("cannot close loan in state %s: %w", l.loan.Status, err)
	}
	l.loan.Status = l.fsm.Current()
	return nil
}

// Sell transitions the loan to sold
func (l *LoanFSM) Sell(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "sell"); err != nil {
		return fmt.Errorf("cannot sell loan in state %s: %w", l.loan.Status, err)
	}
	l.loan.Status = l.fsm.Current()
	return nil
}

// Reopen transitions the loan from closed back to active
func (l *LoanFSM) Reopen(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("cannot reopen loan in state %s: %w", l.loan.Status, err)
	}
	l.loan.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LoanFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LoanFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
