package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/prestia/prestia-api/internal/models"
)

// LoanFSM wraps a loan with its state machine. active → closed is the normal
// path (full repayment or explicit close); defaulted and written_off are set
// externally, never derived from payment arithmetic. closed → active exists
// only for payment reversal.
type LoanFSM struct {
	loan *models.Loan
	fsm  *fsm.FSM
}

// NewLoanFSM creates a new loan state machine
func NewLoanFSM(loan *models.Loan) *LoanFSM {
	lfsm := &LoanFSM{
		loan: loan,
	}

	lfsm.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// active → closed
			{Name: "close", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusClosed},

			// active → defaulted
			{Name: "default", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusDefaulted},

			// active → written_off
			{Name: "write_off", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusWrittenOff},

			// closed → active (payment reversal)
			{Name: "reopen", Src: []string{models.LoanStatusClosed}, Dst: models.LoanStatusActive},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Close transitions the loan to closed state. It fails while principal is
// still outstanding.
func (l *LoanFSM) Close(ctx context.Context) error {
	if !l.loan.MayClose() {
		return fmt.Errorf("loan cannot be closed in current state: %s (outstanding principal %.2f)",
			l.loan.Status, l.loan.OutstandingPrincipal)
	}

	if err := l.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("failed to close loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Default transitions the loan to defaulted state
func (l *LoanFSM) Default(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "default"); err != nil {
		return fmt.Errorf("failed to default loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// WriteOff transitions the loan to written_off state
func (l *LoanFSM) WriteOff(ctx context.Context) error {
	if err := l.fsm.Event(ctx, "write_off"); err != nil {
		return fmt.Errorf("failed to write off loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Reopen transitions a closed loan back to active
func (l *LoanFSM) Reopen(ctx context.Context) error {
	if !l.loan.MayReopen() {
		return fmt.Errorf("loan cannot be reopened in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("failed to reopen loan: %w", err)
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
