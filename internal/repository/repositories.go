package repository

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxRunner abstracts gorm's Transaction entry point so services can open
// transactions without holding a concrete *gorm.DB. *gorm.DB satisfies it.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Repositories holds all repository instances
type Repositories struct {
	Customer     CustomerRepository
	Loan         LoanRepository
	Payment      PaymentRepository
	Sequence     SequenceRepository
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Notification NotificationRepository
	Analytics    AnalyticsRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer:     NewCustomerRepository(db),
		Loan:         NewLoanRepository(db),
		Payment:      NewPaymentRepository(db),
		Sequence:     NewSequenceRepository(db),
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Notification: NewNotificationRepository(db),
		Analytics:    NewAnalyticsRepository(db),
	}
}

// ListQuery carries the common list parameters (pagination, search, sort,
// free-form filters) parsed at the handler layer.
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// applyPagination applies offset/limit from a ListQuery
func applyPagination(db *gorm.DB, query *ListQuery) *gorm.DB {
	if query.PerPage <= 0 {
		query.PerPage = 20
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	offset := (query.Page - 1) * query.PerPage
	return db.Offset(offset).Limit(query.PerPage)
}
