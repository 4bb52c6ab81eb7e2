package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prestia/prestia-api/internal/idgen"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/repository"
	"gorm.io/gorm"
)

// CustomerService handles customer registration and profile management.
type CustomerService struct {
	db           repository.TxRunner
	repo         repository.CustomerRepository
	sequenceRepo repository.SequenceRepository
	auditSvc     *AuditService
}

func NewCustomerService(
	db repository.TxRunner,
	repo repository.CustomerRepository,
	sequenceRepo repository.SequenceRepository,
	auditSvc *AuditService,
) *CustomerService {
	return &CustomerService{
		db:           db,
		repo:         repo,
		sequenceRepo: sequenceRepo,
		auditSvc:     auditSvc,
	}
}

// CreateCustomerInput carries a customer registration request
type CreateCustomerInput struct {
	FullName string  `json:"full_name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Identity *string `json:"identity"`
}

// UpdateCustomerInput carries a partial profile update. Nil fields are left
// untouched; the customer code and sequence number are never updatable.
type UpdateCustomerInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Identity *string `json:"identity"`
	Status   *string `json:"status"`
}

func (s *CustomerService) FindByCode(ctx context.Context, code string) (*models.Customer, error) {
	customer, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a customer, allocating the next customer sequence and the
// derived CUS code inside one transaction.
func (s *CustomerService) Create(ctx context.Context, input CreateCustomerInput, actorID uint, ip, userAgent string) (*models.Customer, error) {
	customer := &models.Customer{
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
		Address:  input.Address,
		Identity: input.Identity,
		Status:   models.CustomerStatusActive,
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := s.sequenceRepo.WithTx(tx).NextCustomerSequence(ctx)
		if err != nil {
			return err
		}

		customer.GUID = uuid.New().String()
		customer.SequenceNumber = seq
		customer.CustomerID = idgen.CustomerID(seq)

		if err := s.repo.WithTx(tx).Create(ctx, customer); err != nil {
			if errors.Is(err, repository.ErrDuplicatePhone) || errors.Is(err, repository.ErrDuplicateCode) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "CREATE", "Customer", customer.ID,
		fmt.Sprintf("Cliente %s registrado", customer.CustomerID), ip, userAgent)

	return customer, nil
}

// Update applies a partial profile update to a customer.
func (s *CustomerService) Update(ctx context.Context, code string, input UpdateCustomerInput, actorID uint, ip, userAgent string) (*models.Customer, error) {
	customer, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.FullName != nil {
		customer.FullName = *input.FullName
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.Identity != nil {
		customer.Identity = input.Identity
	}
	if input.Status != nil {
		switch *input.Status {
		case models.CustomerStatusActive, models.CustomerStatusInactive, models.CustomerStatusBlocked:
			customer.Status = *input.Status
		default:
			return nil, ErrInvalidInput
		}
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "Customer", customer.ID,
		fmt.Sprintf("Cliente %s actualizado", customer.CustomerID), ip, userAgent)

	return customer, nil
}

// Delete soft-deletes a customer. Customers with active loans cannot be
// removed.
func (s *CustomerService) Delete(ctx context.Context, code string, actorID uint, ip, userAgent string) error {
	customer, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if customer.ActiveLoans > 0 {
		return ErrInvalidState
	}

	if err := s.repo.SoftDelete(ctx, customer.ID); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "DELETE", "Customer", customer.ID,
		fmt.Sprintf("Cliente %s eliminado", customer.CustomerID), ip, userAgent)
	return nil
}
