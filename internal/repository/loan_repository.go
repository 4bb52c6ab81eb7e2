package repository

import (
	"context"
	"strings"
	"time"

	"github.com/prestia/prestia-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	WithTx(tx *gorm.DB) LoanRepository
	FindByID(ctx context.Context, id uint) (*models.Loan, error)
	FindByCode(ctx context.Context, code string) (*models.Loan, error)
	// FindByCodeForUpdate locks the loan row for the duration of the
	// surrounding transaction. Payment allocation and reversal go through
	// this so concurrent payments against one loan serialize.
	FindByCodeForUpdate(ctx context.Context, code string) (*models.Loan, error)
	FindByCodeWithDetails(ctx context.Context, code string) (*models.Loan, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]models.Loan, error)
	FindOverdue(ctx context.Context) ([]models.Loan, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	List(ctx context.Context, query *LoanQuery) ([]models.Loan, int64, error)
}

// LoanQuery extends ListQuery with loan-specific filters
type LoanQuery struct {
	*ListQuery
	Status     string
	CustomerID uint
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) WithTx(tx *gorm.DB) LoanRepository {
	return &loanRepository{db: tx}
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByCode(ctx context.Context, code string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByCodeForUpdate(ctx context.Context, code string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByCodeWithDetails(ctx context.Context, code string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Joins("Customer").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, id ASC")
		}).
		Where("loans.code = ?", code).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByCustomer(ctx context.Context, customerID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepository) FindOverdue(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Joins("Customer").
		Where("loans.status = ? AND loans.due_date < ? AND loans.outstanding_principal > 0",
			models.LoanStatusActive, time.Now()).
		Order("loans.due_date ASC").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		if isDuplicateKeyError(err, "loans_code_key") || isDuplicateKeyError(err, "idx_loans_code") {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

func (r *loanRepository) List(ctx context.Context, query *LoanQuery) ([]models.Loan, int64, error) {
	var loans []models.Loan
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Loan{})

	if query.Status != "" {
		db = db.Where("loans.status = ?", query.Status)
	}
	if query.CustomerID > 0 {
		db = db.Where("loans.customer_id = ?", query.CustomerID)
	}

	if query.Filters != nil {
		if val, ok := query.Filters["status_in"]; ok && val != "" {
			statuses := strings.Split(val, ",")
			for i, s := range statuses {
				statuses[i] = strings.TrimSpace(s)
			}
			db = db.Where("loans.status IN ?", statuses)
		}
		if val, ok := query.Filters["interest_type"]; ok && val != "" {
			db = db.Where("loans.interest_type = ?", val)
		}
		if val, ok := query.Filters["start_date"]; ok && val != "" {
			db = db.Where("loans.created_at >= ?", val)
		}
		if val, ok := query.Filters["end_date"]; ok && val != "" {
			// Include the full day if only a date is provided
			if len(val) == 10 { // YYYY-MM-DD
				val += " 23:59:59"
			}
			db = db.Where("loans.created_at <= ?", val)
		}
		if val, ok := query.Filters["overdue"]; ok && val == "true" {
			db = db.Where("loans.status = ? AND loans.due_date < ? AND loans.outstanding_principal > 0",
				models.LoanStatusActive, time.Now())
		}
	}

	// JOIN only for filtering; the association is loaded via Joins below
	if query.Search != "" {
		search := "%" + strings.TrimSpace(query.Search) + "%"
		db = db.Joins("LEFT JOIN customers ON customers.id = loans.customer_id").
			Where("loans.code ILIKE ? OR customers.full_name ILIKE ? OR customers.code ILIKE ?",
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
		db = db.Order("loans.created_at DESC")
	}

	err := applyPagination(db, query.ListQuery).
		Preload("Customer").
		Find(&loans).Error
	return loans, total, err
}
