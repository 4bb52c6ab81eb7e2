// Package interest implements the simple-interest accrual engine.
//
// Interest accrues linearly against the outstanding principal at calculation
// time. There is no compounding and no annualization: the rate is a
// whole-percent rate per period (rate=2 on a daily loan means 2% per day,
// on a monthly loan 2% per 30-day month).
package interest

import "time"

// Interest type constants
const (
	TypeDaily   = "daily"
	TypeMonthly = "monthly"
)

const (
	msPerDay   int64 = 86_400_000
	msPerMonth int64 = msPerDay * 30
)

// IsValidType reports whether t is a supported interest type.
func IsValidType(t string) bool {
	return t == TypeDaily || t == TypeMonthly
}

// Accrued returns the simple interest accrued on outstandingPrincipal as of
// asOf. Accrual starts at the disbursement date and is capped at the due
// date: a loan left unpaid past its due date accrues no further interest
// through this function. Daily loans accrue per whole elapsed day (partial
// days don't count); monthly loans accrue fractionally over a 30-day month
// approximation, not calendar months.
//
// The function is pure: identical inputs always yield identical output.
func Accrued(outstandingPrincipal, rate float64, disbursementDate, dueDate, asOf time.Time, interestType string) float64 {
	end := asOf
	if dueDate.Before(end) {
		end = dueDate
	}

	if !end.After(disbursementDate) {
		return 0
	}

	elapsedMs := end.Sub(disbursementDate).Milliseconds()

	switch interestType {
	case TypeDaily:
		days := elapsedMs / msPerDay
		return outstandingPrincipal * rate * float64(days) / 100
	case TypeMonthly:
		months := float64(elapsedMs) / float64(msPerMonth)
		return outstandingPrincipal * rate * months / 100
	default:
		return 0
	}
}
