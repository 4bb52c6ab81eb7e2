package services

import (
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

// Mock LoanRepository
type mockLoanRepository struct {
	repository.LoanRepository
	mockFindOverdue func(ctx context.Context) ([]models.Loan, error)
}

func (m *mockLoanRepository) FindOverdue(ctx context.Context) ([]models.Loan, error) {
	return m.mockFindOverdue(ctx)
}

// Mock CustomerRepository
type mockCustomerRepository struct {
	repository.CustomerRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Customer, error)
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	return m.mockFindByID(ctx, id)
}

func TestGenerateOverdueLoansCSV(t *testing.T) {
	mockLoans := &mockLoanRepository{}
	mockCustomers := &mockCustomerRepository{}
	service := NewReportService(mockLoans, nil, mockCustomers)

	dueDate := time.Now().AddDate(0, 0, -10)
	mockLoans.mockFindOverdue = func(ctx context.Context) ([]models.Loan, error) {
		return []models.Loan{
			{
				LoanID:               "00-001-001-01-D",
				CustomerID:           1,
				Status:               models.LoanStatusActive,
				DueDate:              dueDate,
				OutstandingPrincipal: 800,
				OutstandingInterest:  160,
			},
		}, nil
	}
	mockCustomers.mockFindByID = func(ctx context.Context, id uint) (*models.Customer, error) {
		return &models.Customer{
			ID:       id,
			FullName: "Juan Pérez",
			Phone:    "9999-8888",
		}, nil
	}

	buf, err := service.GenerateOverdueLoansCSV(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, buf)

	records, err := csv.NewReader(buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	assert.Equal(t, "Préstamo", records[0][0])
	assert.Equal(t, "00-001-001-01-D", records[1][0])
	assert.Equal(t, "Juan Pérez", records[1][1])
	assert.Equal(t, "9999-8888", records[1][2])
	assert.Equal(t, dueDate.Format("2006-01-02"), records[1][3])
	assert.Equal(t, "10", records[1][4])
	assert.Equal(t, "800.00", records[1][5])
	assert.Equal(t, "160.00", records[1][6])
}

func TestGenerateOverdueLoansCSV_MissingCustomer(t *testing.T) {
	mockLoans := &mockLoanRepository{}
	mockCustomers := &mockCustomerRepository{}
	service := NewReportService(mockLoans, nil, mockCustomers)

	mockLoans.mockFindOverdue = func(ctx context.Context) ([]models.Loan, error) {
		return []models.Loan{
			{
				LoanID:               "00-002-003-01-M",
				CustomerID:           9,
				Status:               models.LoanStatusActive,
				DueDate:              time.Now().AddDate(0, 0, -1),
				OutstandingPrincipal: 100,
			},
		}, nil
	}
	mockCustomers.mockFindByID = func(ctx context.Context, id uint) (*models.Customer, error) {
		return nil, assert.AnError
	}

	buf, err := service.GenerateOverdueLoansCSV(context.Background())
	assert.NoError(t, err)

	records, err := csv.NewReader(buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "N/A", records[1][1])
	assert.Equal(t, "N/A", records[1][2])
}

func TestGenerateOverdueLoansCSV_Empty(t *testing.T) {
	mockLoans := &mockLoanRepository{}
	service := NewReportService(mockLoans, nil, &mockCustomerRepository{})

	mockLoans.mockFindOverdue = func(ctx context.Context) ([]models.Loan, error) {
		return nil, nil
	}

	buf, err := service.GenerateOverdueLoansCSV(context.Background())
	assert.NoError(t, err)

	records, err := csv.NewReader(buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
}
