package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prestia/prestia-api/internal/idgen"
	"github.com/prestia/prestia-api/internal/jobs"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/repository"
	"gorm.io/gorm"
)

// PaymentService runs the payment allocation core: interest-first splitting
// of incoming cash, loan state mutation and payment record creation, all as
// one atomic unit per loan.
type PaymentService struct {
	db              repository.TxRunner
	repo            repository.PaymentRepository
	loanRepo        repository.LoanRepository
	customerRepo    repository.CustomerRepository
	sequenceRepo    repository.SequenceRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewPaymentService(
	db repository.TxRunner,
	repo repository.PaymentRepository,
	loanRepo repository.LoanRepository,
	customerRepo repository.CustomerRepository,
	sequenceRepo repository.SequenceRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *PaymentService {
	return &PaymentService{
		db:              db,
		repo:            repo,
		loanRepo:        loanRepo,
		customerRepo:    customerRepo,
		sequenceRepo:    sequenceRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// CreatePaymentInput carries a payment request against a loan
type CreatePaymentInput struct {
	LoanID      string     `json:"loan_id" binding:"required"`
	Amount      float64    `json:"amount" binding:"required"`
	PaymentDate *time.Time `json:"payment_date"`
	Note        *string    `json:"note"`
}

func (s *PaymentService) FindByCode(ctx context.Context, code string) (*models.Payment, error) {
	payment, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) FindByLoan(ctx context.Context, loanCode string) ([]models.Payment, error) {
	loan, err := s.loanRepo.FindByCode(ctx, loanCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.FindByLoan(ctx, loan.ID)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

// Create allocates a payment against a loan. The whole read-allocate-write
// runs inside one transaction holding the loan row lock, so concurrent
// payments against the same loan serialize while payments against different
// loans proceed in parallel.
func (s *PaymentService) Create(ctx context.Context, input CreatePaymentInput, actorID uint, ip, userAgent string) (*models.Payment, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	var payment *models.Payment
	var loanClosed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		loans := s.loanRepo.WithTx(tx)

		loan, err := loans.FindByCodeForUpdate(ctx, input.LoanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// No payments against closed, defaulted or written-off loans
		if !loan.IsActive() {
			return ErrInvalidState
		}

		result, err := allocatePayment(ctx, loan, input.Amount, paymentDate)
		if err != nil {
			return err
		}

		now := time.Now()
		seq, err := s.sequenceRepo.WithTx(tx).NextPaymentSequence(ctx, now)
		if err != nil {
			return err
		}

		payment = &models.Payment{
			PaymentID:                 idgen.PaymentID(seq, now),
			LoanID:                    loan.ID,
			CustomerID:                loan.CustomerID,
			Amount:                    input.Amount,
			PrincipalPaid:             result.PrincipalPaid,
			InterestPaid:              result.InterestPaid,
			PaymentDate:               paymentDate,
			OutstandingPrincipalAfter: loan.OutstandingPrincipal,
			OutstandingInterestAfter:  loan.OutstandingInterest,
			Status:                    models.PaymentStatusCompleted,
			Note:                      input.Note,
		}

		if err := loans.Update(ctx, loan); err != nil {
			return err
		}

		customers := s.customerRepo.WithTx(tx)
		customer, err := customers.FindByID(ctx, loan.CustomerID)
		if err != nil {
			return err
		}
		customer.AddRepaid(input.Amount)
		if result.Closed {
			customer.AdjustActiveLoans(-1)
		}
		if err := customers.Update(ctx, customer); err != nil {
			return err
		}

		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}

		loanClosed = result.Closed
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notify the customer out of band
	paymentCopy := *payment
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		if err := s.notificationSvc.NotifyCustomer(ctx, paymentCopy.CustomerID,
			"Pago recibido",
			fmt.Sprintf("Hemos recibido tu pago de L%.2f", paymentCopy.Amount),
			models.NotificationTypePaymentReceived); err != nil {
			return err
		}
		if loanClosed {
			if err := s.notificationSvc.NotifyCustomer(ctx, paymentCopy.CustomerID,
				"Préstamo saldado",
				"Tu préstamo ha sido pagado por completo. ¡Gracias!",
				models.NotificationTypeLoanClosed); err != nil {
				return err
			}
		}
		customer, err := s.customerRepo.FindByID(ctx, paymentCopy.CustomerID)
		if err != nil {
			return err
		}
		return s.emailSvc.SendPaymentReceived(ctx, customer, &paymentCopy, loanClosed)
	})

	s.auditSvc.Log(ctx, actorID, "CREATE", "Payment", payment.ID,
		fmt.Sprintf("Pago de %.2f aplicado al préstamo %s", payment.Amount, input.LoanID), ip, userAgent)

	return payment, nil
}

// Delete reverses a payment's effect on its loan and removes the record.
// The inverse is pure arithmetic: no re-accrual happens here, and a loan
// that was closed solely by this payment reopens.
func (s *PaymentService) Delete(ctx context.Context, code string, actorID uint, ip, userAgent string) error {
	var deleted models.Payment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		payments := s.repo.WithTx(tx)

		payment, err := payments.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		loans := s.loanRepo.WithTx(tx)
		loan, err := loans.FindByCodeForUpdate(ctx, payment.Loan.LoanID)
		if err != nil {
			return err
		}

		result, err := reversePayment(ctx, loan, payment)
		if err != nil {
			return err
		}

		if err := loans.Update(ctx, loan); err != nil {
			return err
		}

		customers := s.customerRepo.WithTx(tx)
		customer, err := customers.FindByID(ctx, payment.CustomerID)
		if err != nil {
			return err
		}
		customer.AddRepaid(-payment.Amount)
		if customer.TotalAmountRepaid < 0 {
			customer.TotalAmountRepaid = 0
		}
		if result.Reopened {
			customer.AdjustActiveLoans(1)
		}
		if err := customers.Update(ctx, customer); err != nil {
			return err
		}

		deleted = *payment
		return payments.Delete(ctx, payment.ID)
	})
	if err != nil {
		return err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyCustomer(ctx, deleted.CustomerID,
			"Pago revertido",
			fmt.Sprintf("Tu pago de L%.2f ha sido revertido", deleted.Amount),
			models.NotificationTypePaymentReversed)
	})

	s.auditSvc.Log(ctx, actorID, "DELETE", "Payment", deleted.ID,
		fmt.Sprintf("Pago %s de %.2f revertido", deleted.PaymentID, deleted.Amount), ip, userAgent)

	return nil
}
