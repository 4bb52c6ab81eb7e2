package statemachine

import (
	"context"
	"testing"

	"github.com/prestia/prestia-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLoanFSM_CloseRequiresZeroPrincipal(t *testing.T) {
	loan := &models.Loan{
		Status:               models.LoanStatusActive,
		OutstandingPrincipal: 500,
	}

	err := NewLoanFSM(loan).Close(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.LoanStatusActive, loan.Status)
}

func TestLoanFSM_CloseWhenPaidOff(t *testing.T) {
	loan := &models.Loan{
		Status:               models.LoanStatusActive,
		OutstandingPrincipal: 0,
	}

	err := NewLoanFSM(loan).Close(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.LoanStatusClosed, loan.Status)
}

func TestLoanFSM_CloseAlreadyClosed(t *testing.T) {
	loan := &models.Loan{
		Status:               models.LoanStatusClosed,
		OutstandingPrincipal: 0,
	}

	err := NewLoanFSM(loan).Close(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.LoanStatusClosed, loan.Status)
}

func TestLoanFSM_DefaultAndWriteOffOnlyFromActive(t *testing.T) {
	loan := &models.Loan{Status: models.LoanStatusActive}
	assert.NoError(t, NewLoanFSM(loan).Default(context.Background()))
	assert.Equal(t, models.LoanStatusDefaulted, loan.Status)

	// Terminal states do not transition further
	assert.Error(t, NewLoanFSM(loan).WriteOff(context.Background()))
	assert.Error(t, NewLoanFSM(loan).Close(context.Background()))
	assert.Equal(t, models.LoanStatusDefaulted, loan.Status)

	loan2 := &models.Loan{Status: models.LoanStatusActive}
	assert.NoError(t, NewLoanFSM(loan2).WriteOff(context.Background()))
	assert.Equal(t, models.LoanStatusWrittenOff, loan2.Status)
}

func TestLoanFSM_ReopenOnlyFromClosed(t *testing.T) {
	loan := &models.Loan{Status: models.LoanStatusClosed}
	assert.NoError(t, NewLoanFSM(loan).Reopen(context.Background()))
	assert.Equal(t, models.LoanStatusActive, loan.Status)

	active := &models.Loan{Status: models.LoanStatusActive}
	assert.Error(t, NewLoanFSM(active).Reopen(context.Background()))

	defaulted := &models.Loan{Status: models.LoanStatusDefaulted}
	assert.Error(t, NewLoanFSM(defaulted).Reopen(context.Background()))
}
