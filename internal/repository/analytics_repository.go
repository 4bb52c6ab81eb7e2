package repository

import (
	"context"

	"github.com/prestia/prestia-api/internal/models"
	"gorm.io/gorm"
)

// PortfolioOverview holds the aggregate portfolio figures
type PortfolioOverview struct {
	TotalCustomers       int64   `json:"total_customers"`
	ActiveCustomers      int64   `json:"active_customers"`
	TotalLoans           int64   `json:"total_loans"`
	ActiveLoans          int64   `json:"active_loans"`
	OverdueLoans         int64   `json:"overdue_loans"`
	TotalDisbursed       float64 `json:"total_disbursed"`
	OutstandingPrincipal float64 `json:"outstanding_principal"`
	TotalInterestEarned  float64 `json:"total_interest_earned"`
	TotalRepaid          float64 `json:"total_repaid"`
	TotalPayments        int64   `json:"total_payments"`
}

// StatusCount is one slice of the loan status distribution
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// AnalyticsRepository defines the interface for aggregate portfolio queries
type AnalyticsRepository interface {
	GetOverview(ctx context.Context) (*PortfolioOverview, error)
	GetStatusDistribution(ctx context.Context) ([]StatusCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetOverview(ctx context.Context) (*PortfolioOverview, error) {
	overview := &PortfolioOverview{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Customer{}).
		Where("discarded_at IS NULL").
		Count(&overview.TotalCustomers).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Customer{}).
		Where("discarded_at IS NULL AND status = ?", models.CustomerStatusActive).
		Count(&overview.ActiveCustomers).Error; err != nil {
		return nil, err
	}

	var loanAgg struct {
		TotalLoans           int64
		ActiveLoans          int64
		OverdueLoans         int64
		TotalDisbursed       float64
		OutstandingPrincipal float64
		TotalInterestEarned  float64
		TotalRepaid          float64
	}
	err := db.Model(&models.Loan{}).
		Select(`COUNT(*) AS total_loans,
			COUNT(*) FILTER (WHERE status = 'active') AS active_loans,
			COUNT(*) FILTER (WHERE status = 'active' AND due_date < NOW() AND outstanding_principal > 0) AS overdue_loans,
			COALESCE(SUM(principal_amount), 0) AS total_disbursed,
			COALESCE(SUM(outstanding_principal) FILTER (WHERE status IN ('active', 'defaulted')), 0) AS outstanding_principal,
			COALESCE(SUM(total_interest_earned), 0) AS total_interest_earned,
			COALESCE(SUM(total_amount_paid), 0) AS total_repaid`).
		Scan(&loanAgg).Error
	if err != nil {
		return nil, err
	}

	overview.TotalLoans = loanAgg.TotalLoans
	overview.ActiveLoans = loanAgg.ActiveLoans
	overview.OverdueLoans = loanAgg.OverdueLoans
	overview.TotalDisbursed = loanAgg.TotalDisbursed
	overview.OutstandingPrincipal = loanAgg.OutstandingPrincipal
	overview.TotalInterestEarned = loanAgg.TotalInterestEarned
	overview.TotalRepaid = loanAgg.TotalRepaid

	if err := db.Model(&models.Payment{}).
		Count(&overview.TotalPayments).Error; err != nil {
		return nil, err
	}

	return overview, nil
}

func (r *analyticsRepository) GetStatusDistribution(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}
