package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoanID(t *testing.T) {
	assert.Equal(t, "00-003-007-02-D", LoanID(3, 7, 2, "d"))
	assert.Equal(t, "00-120-045-11-M", LoanID(120, 45, 11, "M"))
	// Widths are minimums, not truncation
	assert.Equal(t, "00-1000-007-02-D", LoanID(1000, 7, 2, "D"))
}

func TestCustomerID(t *testing.T) {
	assert.Equal(t, "CUS-00042", CustomerID(42))
	assert.Equal(t, "CUS-00001", CustomerID(1))
	assert.Equal(t, "CUS-123456", CustomerID(123456))
}

func TestPaymentID(t *testing.T) {
	genDate := time.Date(2026, time.August, 27, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "PAY-20260827-00003", PaymentID(3, genDate))
	assert.Equal(t, "PAY-20260827-00120", PaymentID(120, genDate))
}

func TestTypeCode(t *testing.T) {
	assert.Equal(t, "D", TypeCode("daily"))
	assert.Equal(t, "M", TypeCode("monthly"))
	assert.Equal(t, "", TypeCode(""))
}
