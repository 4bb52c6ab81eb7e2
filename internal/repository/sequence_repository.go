package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SequenceRepository allocates monotonically-increasing sequence numbers.
// Every allocation is a single-statement Postgres upsert, so concurrent
// creators can never observe the same value. The old "find last record,
// add one" derivation races under concurrent writers and is not used here.
//
// Counters advance even when the surrounding create later fails, which can
// leave gaps in a sequence. Gaps are harmless; duplicates are not.
type SequenceRepository interface {
	WithTx(tx *gorm.DB) SequenceRepository
	// NextLoanSequence returns the next global loan sequence number.
	NextLoanSequence(ctx context.Context) (int, error)
	// NextCustomerSequence returns the next customer sequence number.
	NextCustomerSequence(ctx context.Context) (int, error)
	// NextCustomerLoanNumber returns the next per-customer loan number.
	NextCustomerLoanNumber(ctx context.Context, customerID uint) (int, error)
	// NextPaymentSequence returns the next day-local payment sequence for
	// the given generation date.
	NextPaymentSequence(ctx context.Context, day time.Time) (int, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) WithTx(tx *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: tx}
}

// next atomically increments the named counter and returns the new value.
func (r *sequenceRepository) next(ctx context.Context, name string) (int, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (name, value, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (name)
		DO UPDATE SET value = sequence_counters.value + 1, updated_at = NOW()
		RETURNING value`, name).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", name, err)
	}
	return int(value), nil
}

func (r *sequenceRepository) NextLoanSequence(ctx context.Context) (int, error) {
	return r.next(ctx, "loans")
}

func (r *sequenceRepository) NextCustomerSequence(ctx context.Context) (int, error) {
	return r.next(ctx, "customers")
}

func (r *sequenceRepository) NextCustomerLoanNumber(ctx context.Context, customerID uint) (int, error) {
	return r.next(ctx, fmt.Sprintf("customer_loans:%d", customerID))
}

func (r *sequenceRepository) NextPaymentSequence(ctx context.Context, day time.Time) (int, error) {
	return r.next(ctx, fmt.Sprintf("payments:%s", day.Format("20060102")))
}
