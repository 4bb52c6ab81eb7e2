// Package idgen formats the human-readable business identifiers for
// customers, loans and payments. Formatting is pure; sequence numbers are
// allocated atomically by repository.SequenceRepository so two concurrent
// creates can never observe the same value.
package idgen

import (
	"fmt"
	"strings"
	"time"
)

// Loan type codes
const (
	TypeCodeDaily   = "D"
	TypeCodeMonthly = "M"
)

// LoanID formats a loan identifier: "00-{seq:3}-{cusNum:3}-{loanNo:2}-{TYPE}".
// sequenceNumber is the global loan sequence, customerNumber the customer's
// own sequence number, customerLoanNumber the per-customer loan count.
func LoanID(sequenceNumber, customerNumber, customerLoanNumber int, typeCode string) string {
	return fmt.Sprintf("00-%03d-%03d-%02d-%s",
		sequenceNumber, customerNumber, customerLoanNumber, strings.ToUpper(typeCode))
}

// CustomerID formats a customer identifier: "CUS-{seq:5}".
func CustomerID(sequenceNumber int) string {
	return fmt.Sprintf("CUS-%05d", sequenceNumber)
}

// PaymentID formats a payment identifier: "PAY-{YYYYMMDD}-{seq:5}".
// The date is the generation date, not the payment's effective date;
// sequenceNumber restarts each calendar day.
func PaymentID(sequenceNumber int, generatedAt time.Time) string {
	return fmt.Sprintf("PAY-%s-%05d", generatedAt.Format("20060102"), sequenceNumber)
}

// TypeCode derives the single-letter loan type code from an interest type
// ("daily" → "D", "monthly" → "M").
func TypeCode(interestType string) string {
	if interestType == "" {
		return ""
	}
	return strings.ToUpper(interestType[:1])
}
