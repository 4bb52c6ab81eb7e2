package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prestia/prestia-api/internal/idgen"
	"github.com/prestia/prestia-api/internal/jobs"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/prestia/prestia-api/internal/statemachine"
	"github.com/prestia/prestia-api/pkg/logger"
	"gorm.io/gorm"
)

// LoanService handles loan origination, lifecycle transitions and the
// outstanding-balance recompute.
type LoanService struct {
	db              repository.TxRunner
	repo            repository.LoanRepository
	customerRepo    repository.CustomerRepository
	sequenceRepo    repository.SequenceRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewLoanService(
	db repository.TxRunner,
	repo repository.LoanRepository,
	customerRepo repository.CustomerRepository,
	sequenceRepo repository.SequenceRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *LoanService {
	return &LoanService{
		db:              db,
		repo:            repo,
		customerRepo:    customerRepo,
		sequenceRepo:    sequenceRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// CreateLoanInput carries a disbursement request
type CreateLoanInput struct {
	CustomerID       string    `json:"customer_id" binding:"required"`
	PrincipalAmount  float64   `json:"principal_amount" binding:"required"`
	InterestType     string    `json:"interest_type" binding:"required"`
	InterestRate     float64   `json:"interest_rate"`
	DisbursementDate time.Time `json:"disbursement_date" binding:"required"`
	DueDate          time.Time `json:"due_date" binding:"required"`
	Note             *string   `json:"note"`
}

func (s *LoanService) FindByCode(ctx context.Context, code string) (*models.Loan, error) {
	loan, err := s.repo.FindByCodeWithDetails(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) List(ctx context.Context, query *repository.LoanQuery) ([]models.Loan, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *LoanService) FindByCustomer(ctx context.Context, customerCode string) ([]models.Loan, error) {
	customer, err := s.customerRepo.FindByCode(ctx, customerCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.FindByCustomer(ctx, customer.ID)
}

// Create disburses a new loan: allocates the global and per-customer
// sequence numbers, derives the loan identifier, and initializes the ledger
// state with the full principal outstanding regardless of what the caller
// sent.
func (s *LoanService) Create(ctx context.Context, input CreateLoanInput, actorID uint, ip, userAgent string) (*models.Loan, error) {
	if input.PrincipalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	loan := &models.Loan{
		PrincipalAmount:  input.PrincipalAmount,
		InterestType:     input.InterestType,
		InterestRate:     input.InterestRate,
		LoanTypeCode:     idgen.TypeCode(input.InterestType),
		DisbursementDate: input.DisbursementDate,
		DueDate:          input.DueDate,
		Note:             input.Note,
	}
	if err := loan.ValidateTerms(); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		customers := s.customerRepo.WithTx(tx)
		customer, err := customers.FindByCode(ctx, input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if customer.Status == models.CustomerStatusBlocked {
			return ErrInvalidState
		}

		sequences := s.sequenceRepo.WithTx(tx)
		seq, err := sequences.NextLoanSequence(ctx)
		if err != nil {
			return err
		}
		customerLoanNumber, err := sequences.NextCustomerLoanNumber(ctx, customer.ID)
		if err != nil {
			return err
		}

		loan.GUID = uuid.New().String()
		loan.SequenceNumber = seq
		loan.CustomerID = customer.ID
		loan.CustomerLoanNumber = customerLoanNumber
		loan.LoanID = idgen.LoanID(seq, customer.SequenceNumber, customerLoanNumber, loan.LoanTypeCode)
		loan.Status = models.LoanStatusActive

		// Ledger state starts at full principal, zero everything else
		loan.OutstandingPrincipal = loan.PrincipalAmount
		loan.OutstandingInterest = 0
		loan.TotalAmountPaid = 0
		loan.TotalPrincipalPaid = 0
		loan.TotalInterestEarned = 0
		loan.TotalPayments = 0

		if err := s.repo.WithTx(tx).Create(ctx, loan); err != nil {
			return err
		}

		customer.IncrementLoanCount()
		customer.AddBorrowed(loan.PrincipalAmount)
		return customers.Update(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	loanCopy := *loan
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		if err := s.notificationSvc.NotifyCustomer(ctx, loanCopy.CustomerID,
			"Préstamo desembolsado",
			fmt.Sprintf("Tu préstamo %s por L%.2f ha sido desembolsado", loanCopy.LoanID, loanCopy.PrincipalAmount),
			models.NotificationTypeLoanDisbursed); err != nil {
			return err
		}
		customer, err := s.customerRepo.FindByID(ctx, loanCopy.CustomerID)
		if err != nil {
			return err
		}
		return s.emailSvc.SendLoanDisbursed(ctx, customer, &loanCopy)
	})

	s.auditSvc.Log(ctx, actorID, "CREATE", "Loan", loan.ID,
		fmt.Sprintf("Préstamo %s creado por %.2f", loan.LoanID, loan.PrincipalAmount), ip, userAgent)

	return loan, nil
}

// Close transitions an active loan to closed. It refuses when principal is
// still outstanding, leaving the loan untouched.
func (s *LoanService) Close(ctx context.Context, code string, actorID uint, ip, userAgent string) (*models.Loan, error) {
	loan, err := s.transition(ctx, code, func(ctx context.Context, loan *models.Loan) error {
		if err := statemachine.NewLoanFSM(loan).Close(ctx); err != nil {
			return ErrInvalidState
		}
		now := time.Now()
		loan.ClosedDate = &now
		loan.RecomputeOutstanding(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "CLOSE", "Loan", loan.ID,
		fmt.Sprintf("Préstamo %s cerrado", loan.LoanID), ip, userAgent)
	return loan, nil
}

// Default marks an active loan as defaulted. Balances stay as they are so
// the exposure remains visible.
func (s *LoanService) Default(ctx context.Context, code string, actorID uint, ip, userAgent string) (*models.Loan, error) {
	loan, err := s.transition(ctx, code, func(ctx context.Context, loan *models.Loan) error {
		if err := statemachine.NewLoanFSM(loan).Default(ctx); err != nil {
			return ErrInvalidState
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTerminal(loan, "Préstamo en mora",
		fmt.Sprintf("Tu préstamo %s ha sido marcado en mora", loan.LoanID))
	s.auditSvc.Log(ctx, actorID, "DEFAULT", "Loan", loan.ID,
		fmt.Sprintf("Préstamo %s marcado en mora", loan.LoanID), ip, userAgent)
	return loan, nil
}

// WriteOff marks an active loan as written off and books the remaining
// principal as a loss.
func (s *LoanService) WriteOff(ctx context.Context, code string, actorID uint, ip, userAgent string) (*models.Loan, error) {
	loan, err := s.transition(ctx, code, func(ctx context.Context, loan *models.Loan) error {
		if err := statemachine.NewLoanFSM(loan).WriteOff(ctx); err != nil {
			return ErrInvalidState
		}
		loan.RecomputeOutstanding(time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "WRITE_OFF", "Loan", loan.ID,
		fmt.Sprintf("Préstamo %s castigado, pérdida de %.2f", loan.LoanID, loan.OutstandingPrincipal), ip, userAgent)
	return loan, nil
}

// Recompute rebuilds a loan's derived figures as of now and persists them.
func (s *LoanService) Recompute(ctx context.Context, code string) (*models.Loan, error) {
	return s.transition(ctx, code, func(ctx context.Context, loan *models.Loan) error {
		loan.RecomputeOutstanding(time.Now())
		return nil
	})
}

// Preview returns a loan's figures recomputed as of an arbitrary date
// without persisting anything.
func (s *LoanService) Preview(ctx context.Context, code string, asOf time.Time) (*models.Loan, error) {
	loan, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	loan.RecomputeOutstanding(asOf)
	return loan, nil
}

// transition loads the loan under a row lock, applies fn and persists the
// result. Both sides of the customer active-loan counter are updated when
// the loan leaves the active state.
func (s *LoanService) transition(ctx context.Context, code string, fn func(ctx context.Context, loan *models.Loan) error) (*models.Loan, error) {
	var loan *models.Loan

	err := s.db.Transaction(func(tx *gorm.DB) error {
		loans := s.repo.WithTx(tx)

		var err error
		loan, err = loans.FindByCodeForUpdate(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		wasActive := loan.IsActive()
		if err := fn(ctx, loan); err != nil {
			return err
		}

		if err := loans.Update(ctx, loan); err != nil {
			return err
		}

		if wasActive && loan.IsTerminal() {
			customers := s.customerRepo.WithTx(tx)
			customer, err := customers.FindByID(ctx, loan.CustomerID)
			if err != nil {
				return err
			}
			customer.AdjustActiveLoans(-1)
			return customers.Update(ctx, customer)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) afterTerminal(loan *models.Loan, title, body string) {
	customerID := loan.CustomerID
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyCustomer(ctx, customerID, title, body,
			models.NotificationTypeLoanOverdue)
	})
}

// MarkOverdueLoans scans for loans past due with principal outstanding and
// sends reminders. Runs from the scheduler; failures are logged, not fatal.
func (s *LoanService) MarkOverdueLoans(ctx context.Context) error {
	loans, err := s.repo.FindOverdue(ctx)
	if err != nil {
		return err
	}

	for i := range loans {
		loan := loans[i]
		if err := s.notificationSvc.NotifyCustomer(ctx, loan.CustomerID,
			"Préstamo vencido",
			fmt.Sprintf("Tu préstamo %s está vencido hace %d días", loan.LoanID, loan.OverdueDays()),
			models.NotificationTypeLoanOverdue); err != nil {
			logger.Error("failed to notify overdue loan", "loan", loan.LoanID, "error", err)
			continue
		}
		customer, err := s.customerRepo.FindByID(ctx, loan.CustomerID)
		if err != nil {
			logger.Error("failed to load customer for overdue reminder", "loan", loan.LoanID, "error", err)
			continue
		}
		if err := s.emailSvc.SendOverdueReminder(ctx, customer, &loan); err != nil {
			logger.Error("failed to email overdue reminder", "loan", loan.LoanID, "error", err)
		}
	}

	logger.Info("overdue loan scan finished", "count", len(loans))
	return nil
}
