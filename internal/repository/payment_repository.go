package repository

import (
	"context"
	"strings"
	"time"

	"github.com/prestia/prestia-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByCode(ctx context.Context, code string) (*models.Payment, error)
	FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) error
	CountForDay(ctx context.Context, day time.Time) (int64, error)
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	return &paymentRepository{db: tx}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Loan").
		Preload("Customer").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByCode(ctx context.Context, code string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Loan").
		Preload("Customer").
		Where("code = ?", code).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		if isDuplicateKeyError(err, "payments_code_key") || isDuplicateKeyError(err, "idx_payments_code") {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

// CountForDay counts payments created during the given calendar day.
// Kept for stats; identifier sequencing uses SequenceRepository instead of
// counting rows, which would race under concurrent writers.
func (r *paymentRepository) CountForDay(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("payments.status = ?", status)
	}
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("payments.payment_date >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		if len(val) == 10 { // YYYY-MM-DD
			val += " 23:59:59"
		}
		db = db.Where("payments.payment_date <= ?", val)
	}

	if query.Search != "" {
		search := "%" + strings.TrimSpace(query.Search) + "%"
		db = db.Joins("LEFT JOIN loans ON loans.id = payments.loan_id").
			Joins("LEFT JOIN customers ON customers.id = payments.customer_id").
			Where("payments.code ILIKE ? OR loans.code ILIKE ? OR customers.full_name ILIKE ?",
				search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("payments.payment_date DESC, payments.id DESC")
	}

	err := applyPagination(db, query).
		Preload("Loan").
		Preload("Customer").
		Find(&payments).Error
	return payments, total, err
}
