package services

import (
	"context"
	"testing"
	"time"

	"github.com/prestia/prestia-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoan() *models.Loan {
	disbursed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Loan{
		ID:                   1,
		LoanID:               "00-001-001-01-D",
		CustomerID:           1,
		PrincipalAmount:      1000,
		InterestType:         models.InterestTypeDaily,
		InterestRate:         2,
		DisbursementDate:     disbursed,
		DueDate:              disbursed.AddDate(0, 0, 30),
		OutstandingPrincipal: 1000,
		Status:               models.LoanStatusActive,
	}
}

// Ten days in, a 1000 loan at 2% daily has accrued 200 of interest. A 150
// payment should go entirely to interest.
func TestAllocatePayment_InterestFirst(t *testing.T) {
	loan := newTestLoan()
	paymentDate := loan.DisbursementDate.AddDate(0, 0, 10)

	result, err := allocatePayment(context.Background(), loan, 150, paymentDate)
	require.NoError(t, err)

	assert.InDelta(t, 150, result.InterestPaid, 0.001)
	assert.InDelta(t, 0, result.PrincipalPaid, 0.001)
	assert.False(t, result.Closed)

	assert.InDelta(t, 1000, loan.OutstandingPrincipal, 0.001)
	assert.InDelta(t, 50, loan.OutstandingInterest, 0.001)
	assert.InDelta(t, 150, loan.TotalInterestEarned, 0.001)
	assert.InDelta(t, 150, loan.TotalAmountPaid, 0.001)
	assert.Equal(t, 1, loan.TotalPayments)
	assert.Equal(t, models.LoanStatusActive, loan.Status)
}

func TestAllocatePayment_SplitsAcrossInterestAndPrincipal(t *testing.T) {
	loan := newTestLoan()
	paymentDate := loan.DisbursementDate.AddDate(0, 0, 10)

	result, err := allocatePayment(context.Background(), loan, 250, paymentDate)
	require.NoError(t, err)

	assert.InDelta(t, 200, result.InterestPaid, 0.001)
	assert.InDelta(t, 50, result.PrincipalPaid, 0.001)
	assert.False(t, result.Closed)

	assert.InDelta(t, 950, loan.OutstandingPrincipal, 0.001)
	assert.InDelta(t, 200, loan.TotalInterestEarned, 0.001)
	assert.InDelta(t, 50, loan.TotalPrincipalPaid, 0.001)
}

func TestAllocatePayment_ExactPayoffClosesLoan(t *testing.T) {
	loan := newTestLoan()
	paymentDate := loan.DisbursementDate.AddDate(0, 0, 10)

	// 200 accrued interest plus the full 1000 principal
	result, err := allocatePayment(context.Background(), loan, 1200, paymentDate)
	require.NoError(t, err)

	assert.InDelta(t, 200, result.InterestPaid, 0.001)
	assert.InDelta(t, 1000, result.PrincipalPaid, 0.001)
	assert.True(t, result.Closed)

	assert.InDelta(t, 0, loan.OutstandingPrincipal, 0.001)
	assert.Equal(t, models.LoanStatusClosed, loan.Status)
	require.NotNil(t, loan.ClosedDate)
	// The close stamps the payment's effective date, not wall-clock time
	assert.Equal(t, paymentDate, *loan.ClosedDate)
}

// Overpayment beyond full payoff is accepted and dropped: it shows up in
// gross cash received but neither reduces principal below zero nor creates
// a credit balance.
func TestAllocatePayment_OverpaymentDropped(t *testing.T) {
	loan := newTestLoan()
	paymentDate := loan.DisbursementDate.AddDate(0, 0, 10)

	result, err := allocatePayment(context.Background(), loan, 5000, paymentDate)
	require.NoError(t, err)

	assert.InDelta(t, 200, result.InterestPaid, 0.001)
	assert.InDelta(t, 1000, result.PrincipalPaid, 0.001)
	assert.True(t, result.Closed)

	assert.InDelta(t, 5000, loan.TotalAmountPaid, 0.001)
	assert.InDelta(t, 0, loan.OutstandingPrincipal, 0.001)
	// 3800 of excess cash is not tracked anywhere on the loan
	assert.InDelta(t, 1000, loan.TotalPrincipalPaid, 0.001)
	assert.InDelta(t, 200, loan.TotalInterestEarned, 0.001)
}

func TestAllocatePayment_PrincipalNeverNegative(t *testing.T) {
	loan := newTestLoan()

	amounts := []float64{100, 300, 250, 400, 700, 50}
	for i, amount := range amounts {
		if !loan.IsActive() {
			break
		}
		paymentDate := loan.DisbursementDate.AddDate(0, 0, 5+i)
		_, err := allocatePayment(context.Background(), loan, amount, paymentDate)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, loan.OutstandingPrincipal, 0.0)
		assert.InDelta(t, loan.PrincipalAmount-loan.TotalPrincipalPaid, loan.OutstandingPrincipal, 0.001)
	}
}

// Accrual is capped at the due date, so a payment long after it sees the
// same accrued interest as one exactly at the due date.
func TestAllocatePayment_NoAccrualPastDueDate(t *testing.T) {
	atDue := newTestLoan()
	pastDue := newTestLoan()

	resultAtDue, err := allocatePayment(context.Background(), atDue, 500, atDue.DueDate)
	require.NoError(t, err)

	resultPastDue, err := allocatePayment(context.Background(), pastDue, 500, pastDue.DueDate.AddDate(0, 0, 90))
	require.NoError(t, err)

	assert.InDelta(t, resultAtDue.InterestPaid, resultPastDue.InterestPaid, 0.001)
	assert.InDelta(t, atDue.OutstandingPrincipal, pastDue.OutstandingPrincipal, 0.001)
}

func TestReversePayment_RestoresState(t *testing.T) {
	loan := newTestLoan()
	paymentDate := loan.DisbursementDate.AddDate(0, 0, 10)

	result, err := allocatePayment(context.Background(), loan, 250, paymentDate)
	require.NoError(t, err)

	payment := &models.Payment{
		Amount:        250,
		InterestPaid:  result.InterestPaid,
		PrincipalPaid: result.PrincipalPaid,
		PaymentDate:   paymentDate,
	}

	reversal, err := reversePayment(context.Background(), loan, payment)
	require.NoError(t, err)
	assert.False(t, reversal.Reopened)

	assert.InDelta(t, 1000, loan.OutstandingPrincipal, 0.001)
	assert.InDelta(t, 0, loan.TotalAmountPaid, 0.001)
	assert.InDelta(t, 0, loan.TotalInterestEarned, 0.001)
	assert.InDelta(t, 0, loan.TotalPrincipalPaid, 0.001)
	assert.Equal(t, 0, loan.TotalPayments)
	assert.Equal(t, models.LoanStatusActive, loan.Status)
}

func TestReversePayment_ReopensClosedLoan(t *testing.T) {
	loan := newTestLoan()
	paymentDate := loan.DisbursementDate.AddDate(0, 0, 10)

	result, err := allocatePayment(context.Background(), loan, 1200, paymentDate)
	require.NoError(t, err)
	require.True(t, result.Closed)
	require.Equal(t, models.LoanStatusClosed, loan.Status)

	payment := &models.Payment{
		Amount:        1200,
		InterestPaid:  result.InterestPaid,
		PrincipalPaid: result.PrincipalPaid,
		PaymentDate:   paymentDate,
	}

	reversal, err := reversePayment(context.Background(), loan, payment)
	require.NoError(t, err)

	assert.True(t, reversal.Reopened)
	assert.Equal(t, models.LoanStatusActive, loan.Status)
	assert.Nil(t, loan.ClosedDate)
	assert.InDelta(t, 1000, loan.OutstandingPrincipal, 0.001)
}

func TestReversePayment_TotalPaymentsFlooredAtZero(t *testing.T) {
	loan := newTestLoan()

	payment := &models.Payment{Amount: 100, InterestPaid: 100}

	_, err := reversePayment(context.Background(), loan, payment)
	require.NoError(t, err)

	assert.Equal(t, 0, loan.TotalPayments)
}
