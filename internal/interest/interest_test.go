package interest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAccrued_Daily(t *testing.T) {
	disbursed := date(2026, time.January, 1)
	due := date(2026, time.March, 1)

	// 1000 at 2% per day for 10 days = 200
	got := Accrued(1000, 2, disbursed, due, date(2026, time.January, 11), TypeDaily)
	assert.Equal(t, 200.0, got)
}

func TestAccrued_DailyFloorsPartialDays(t *testing.T) {
	disbursed := date(2026, time.January, 1)
	due := date(2026, time.March, 1)

	// 10 days and 23 hours elapsed still counts as 10 days
	asOf := date(2026, time.January, 11).Add(23 * time.Hour)
	got := Accrued(1000, 2, disbursed, due, asOf, TypeDaily)
	assert.Equal(t, 200.0, got)
}

func TestAccrued_MonthlyIsFractional(t *testing.T) {
	disbursed := date(2026, time.January, 1)
	due := date(2026, time.December, 1)

	// 15 days on a monthly loan = half a 30-day month: 1000 * 5% * 0.5 = 25
	got := Accrued(1000, 5, disbursed, due, date(2026, time.January, 16), TypeMonthly)
	assert.InDelta(t, 25.0, got, 1e-9)

	// 45 days = 1.5 months: 1000 * 5% * 1.5 = 75
	got = Accrued(1000, 5, disbursed, due, date(2026, time.February, 15), TypeMonthly)
	assert.InDelta(t, 75.0, got, 1e-9)
}

func TestAccrued_ZeroBeforeDisbursement(t *testing.T) {
	disbursed := date(2026, time.June, 1)
	due := date(2026, time.July, 1)

	assert.Equal(t, 0.0, Accrued(1000, 2, disbursed, due, date(2026, time.May, 15), TypeDaily))
	assert.Equal(t, 0.0, Accrued(1000, 2, disbursed, due, disbursed, TypeDaily))
}

func TestAccrued_ConstantPastDueDate(t *testing.T) {
	disbursed := date(2026, time.January, 1)
	due := date(2026, time.January, 31)

	atDue := Accrued(1000, 2, disbursed, due, due, TypeDaily)
	after := Accrued(1000, 2, disbursed, due, date(2026, time.June, 1), TypeDaily)
	wayAfter := Accrued(1000, 2, disbursed, due, date(2027, time.June, 1), TypeDaily)

	assert.Equal(t, atDue, after)
	assert.Equal(t, atDue, wayAfter)
}

func TestAccrued_MonotoneNonDecreasing(t *testing.T) {
	disbursed := date(2026, time.January, 1)
	due := date(2026, time.April, 1)

	prev := 0.0
	for d := 0; d < 120; d++ {
		asOf := disbursed.AddDate(0, 0, d)
		got := Accrued(1500, 3, disbursed, due, asOf, TypeDaily)
		assert.GreaterOrEqual(t, got, prev, "accrual decreased at day %d", d)
		prev = got
	}
}

func TestAccrued_Pure(t *testing.T) {
	disbursed := date(2026, time.January, 1)
	due := date(2026, time.February, 1)
	asOf := date(2026, time.January, 20)

	first := Accrued(2500, 4, disbursed, due, asOf, TypeMonthly)
	second := Accrued(2500, 4, disbursed, due, asOf, TypeMonthly)
	assert.Equal(t, first, second)
}

func TestAccrued_UnknownTypeReturnsZero(t *testing.T) {
	disbursed := date(2026, time.January, 1)
	due := date(2026, time.February, 1)
	assert.Equal(t, 0.0, Accrued(1000, 2, disbursed, due, due, "weekly"))
}

func TestIsValidType(t *testing.T) {
	assert.True(t, IsValidType(TypeDaily))
	assert.True(t, IsValidType(TypeMonthly))
	assert.False(t, IsValidType("annual"))
	assert.False(t, IsValidType(""))
}
