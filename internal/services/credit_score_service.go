package services

import (
	"context"
	"fmt"

	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/prestia/prestia-api/pkg/logger"
)

// CreditScoreService handles customer credit score calculations
type CreditScoreService struct {
	customerRepo repository.CustomerRepository
	loanRepo     repository.LoanRepository
	paymentRepo  repository.PaymentRepository
}

func NewCreditScoreService(customerRepo repository.CustomerRepository, loanRepo repository.LoanRepository, paymentRepo repository.PaymentRepository) *CreditScoreService {
	return &CreditScoreService{
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
	}
}

// UpdateScore calculates and updates the credit score for a single customer
func (s *CreditScoreService) UpdateScore(ctx context.Context, customerID uint) error {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to find customer: %w", err)
	}

	score := s.calculateCreditScore(ctx, customerID)

	customer.CreditScore = score
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return fmt.Errorf("failed to update credit score: %w", err)
	}

	logger.Info(fmt.Sprintf("[CreditScoreService] Updated credit score for customer %d: %d", customerID, score))
	return nil
}

// UpdateAllScores updates credit scores for all customers in batches
func (s *CreditScoreService) UpdateAllScores(ctx context.Context) error {
	logger.Info("[CreditScoreService] Updating all customer credit scores...")

	page := 1
	pageSize := 100
	totalProcessed := 0

	for {
		query := repository.NewListQuery()
		query.Page = page
		query.PerPage = pageSize

		customers, total, err := s.customerRepo.List(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to fetch customers page %d: %w", page, err)
		}

		if len(customers) == 0 {
			break
		}

		for _, customer := range customers {
			if err := s.UpdateScore(ctx, customer.ID); err != nil {
				logger.Error(fmt.Sprintf("[CreditScoreService] Error updating score for customer %d: %v", customer.ID, err))
				continue
			}
			totalProcessed++
		}

		if int64(totalProcessed) >= total || len(customers) < pageSize {
			break
		}

		page++
	}

	logger.Info(fmt.Sprintf("[CreditScoreService] Updated credit scores for %d customers", totalProcessed))
	return nil
}

// calculateCreditScore scores a customer from loan and payment history
func (s *CreditScoreService) calculateCreditScore(ctx context.Context, customerID uint) int {
	baseScore := 500

	loans, err := s.loanRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return baseScore
	}

	for _, loan := range loans {
		payments, err := s.paymentRepo.FindByLoan(ctx, loan.ID)
		if err != nil {
			continue
		}

		for _, payment := range payments {
			if payment.Status != models.PaymentStatusCompleted {
				continue
			}
			daysLate := int(payment.PaymentDate.Sub(loan.DueDate).Hours() / 24)

			if daysLate <= 0 {
				// Paid within the term: +5 points
				baseScore += 5
			} else if daysLate <= 7 {
				baseScore -= 2
			} else if daysLate <= 30 {
				baseScore -= 5
			} else {
				baseScore -= 10
			}
		}

		switch loan.Status {
		case models.LoanStatusClosed:
			// Fully repaid loan
			baseScore += 50
		case models.LoanStatusDefaulted:
			baseScore -= 100
		case models.LoanStatusWrittenOff:
			baseScore -= 150
		}

		if loan.IsOverdue() {
			baseScore -= 5 * min(loan.OverdueDays(), 20)
		}
	}

	// Clamp to the usual range
	if baseScore < 300 {
		baseScore = 300
	}
	if baseScore > 850 {
		baseScore = 850
	}

	return baseScore
}
