package services

import (
	"context"
	"math"
	"time"

	"github.com/prestia/prestia-api/internal/interest"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/statemachine"
)

// allocationResult summarizes what a payment did to a loan.
type allocationResult struct {
	InterestPaid  float64
	PrincipalPaid float64
	Closed        bool
}

// allocatePayment applies one payment to a loan under the interest-first
// policy and mutates the loan's ledger state in place. The caller must hold
// the loan row lock and persist the loan afterwards.
//
// Any amount left after interest and full principal is accepted but not
// tracked: overpayment beyond payoff is neither refunded nor recorded.
func allocatePayment(ctx context.Context, loan *models.Loan, amount float64, paymentDate time.Time) (allocationResult, error) {
	accrued := interest.Accrued(loan.OutstandingPrincipal, loan.InterestRate,
		loan.DisbursementDate, loan.DueDate, paymentDate, loan.InterestType)

	// Interest accrued since the last capture, not yet collected
	outstandingInterest := math.Max(0, accrued-loan.TotalInterestEarned)

	interestPaid := math.Min(amount, outstandingInterest)
	remaining := amount - interestPaid
	principalPaid := math.Min(remaining, loan.OutstandingPrincipal)

	loan.TotalAmountPaid += amount
	loan.TotalInterestEarned += interestPaid
	loan.TotalPrincipalPaid += principalPaid
	loan.TotalPayments++
	effectiveDate := paymentDate
	loan.LastPaymentDate = &effectiveDate

	loan.RecomputeOutstanding(paymentDate)

	result := allocationResult{
		InterestPaid:  interestPaid,
		PrincipalPaid: principalPaid,
	}

	if loan.OutstandingPrincipal <= 0 && loan.OutstandingInterest <= 0 && loan.IsActive() {
		if err := statemachine.NewLoanFSM(loan).Close(ctx); err != nil {
			return result, err
		}
		// The payment's effective date, not generation time
		closed := paymentDate
		loan.ClosedDate = &closed
		result.Closed = true
	}

	return result, nil
}

// reversalResult summarizes what deleting a payment did to a loan.
type reversalResult struct {
	Reopened bool
}

// reversePayment undoes a payment's effect on the loan: a pure arithmetic
// inverse of the allocation step. It deliberately does not re-accrue
// interest as of any date, so OutstandingInterest may be stale until the
// next recompute (recompute is idempotent and safe to call again).
func reversePayment(ctx context.Context, loan *models.Loan, payment *models.Payment) (reversalResult, error) {
	loan.TotalAmountPaid -= payment.Amount
	loan.TotalInterestEarned -= payment.InterestPaid
	loan.TotalPrincipalPaid -= payment.PrincipalPaid
	loan.OutstandingPrincipal += payment.PrincipalPaid
	loan.TotalPayments--
	if loan.TotalPayments < 0 {
		loan.TotalPayments = 0
	}

	result := reversalResult{}

	if loan.Status == models.LoanStatusClosed {
		if err := statemachine.NewLoanFSM(loan).Reopen(ctx); err != nil {
			return result, err
		}
		loan.ClosedDate = nil
		result.Reopened = true
	}

	return result, nil
}
