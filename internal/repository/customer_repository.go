package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prestia/prestia-api/internal/models"
	"gorm.io/gorm"
)

// Duplicate-key sentinels surfaced to the service layer
var (
	ErrDuplicatePhone = errors.New("ya existe un cliente con este número de teléfono")
	ErrDuplicateCode  = errors.New("ya existe un registro con este código")
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	WithTx(tx *gorm.DB) CustomerRepository
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
	FindByCode(ctx context.Context, code string) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) WithTx(tx *gorm.DB) CustomerRepository {
	return &customerRepository{db: tx}
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByCode(ctx context.Context, code string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("code = ? AND discarded_at IS NULL", code).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("phone = ? AND discarded_at IS NULL", phone).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if isDuplicateKeyError(err, "customers_phone_key") || isDuplicateKeyError(err, "idx_customers_phone") {
			return ErrDuplicatePhone
		}
		if isDuplicateKeyError(err, "customers_code_key") || isDuplicateKeyError(err, "idx_customers_code") {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// isDuplicateKeyError reports whether err is a Postgres unique violation on
// the given constraint.
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
	}
	return false
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *customerRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Update("discarded_at", gorm.Expr("NOW()")).Error
}

func (r *customerRepository) List(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("discarded_at IS NULL")

	if status := query.Filters["status"]; status != "" {
		db = db.Where("customers.status = ?", status)
	}

	if query.Search != "" {
		search := "%" + strings.TrimSpace(query.Search) + "%"
		db = db.Where("customers.full_name ILIKE ? OR customers.phone ILIKE ? OR customers.code ILIKE ?",
			search, search, search)
	}

	// Count using a separate session so the main query is not altered by Count()
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
		db = db.Order("customers.created_at DESC")
	}

	err := applyPagination(db, query).Find(&customers).Error
	return customers, total, err
}
