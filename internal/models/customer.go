package models

import (
	"strings"
	"time"
)

// Customer represents a borrower and their aggregate lending counters.
// The counters are maintained by loan-lifecycle and payment events, never
// recomputed from scratch.
type Customer struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	CustomerID     string  `gorm:"column:code;uniqueIndex;not null" json:"customer_id"`
	GUID           string  `gorm:"uniqueIndex" json:"guid"`
	SequenceNumber int     `gorm:"not null;uniqueIndex" json:"sequence_number"`
	FullName       string  `gorm:"not null" json:"full_name"`
	Phone          string  `gorm:"uniqueIndex;not null" json:"phone"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
	Identity       *string `gorm:"index" json:"identity"`
	Status         string  `gorm:"default:active;not null;index" json:"status"`

	// Running counters
	TotalLoans          int     `gorm:"default:0" json:"total_loans"`
	ActiveLoans         int     `gorm:"default:0" json:"active_loans"`
	TotalAmountBorrowed float64 `gorm:"type:decimal(15,2);default:0" json:"total_amount_borrowed"`
	TotalAmountRepaid   float64 `gorm:"type:decimal(15,2);default:0" json:"total_amount_repaid"`

	CreditScore int        `gorm:"default:0" json:"credit_score"`
	Note        *string    `gorm:"type:text" json:"note"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DiscardedAt *time.Time `gorm:"index" json:"-"`

	// Associations
	Loans []Loan `gorm:"foreignKey:CustomerID" json:"loans,omitempty"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// Customer status constants
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
	CustomerStatusBlocked  = "blocked"
)

// Validate checks construction-time constraints and returns a descriptive
// error for the first violation found.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.FullName) == "" {
		return &ValidationError{Field: "full_name", Message: "el nombre es requerido"}
	}
	if strings.TrimSpace(c.Phone) == "" {
		return &ValidationError{Field: "phone", Message: "el teléfono es requerido"}
	}
	switch c.Status {
	case "", CustomerStatusActive, CustomerStatusInactive, CustomerStatusBlocked:
	default:
		return &ValidationError{Field: "status", Message: "estado de cliente inválido"}
	}
	return nil
}

// IsActive returns true if the customer may take new loans
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// IncrementLoanCount records a newly disbursed loan in the aggregates.
func (c *Customer) IncrementLoanCount() {
	c.TotalLoans++
	c.ActiveLoans++
}

// AdjustActiveLoans moves the active-loan counter by delta, floored at zero.
func (c *Customer) AdjustActiveLoans(delta int) {
	c.ActiveLoans += delta
	if c.ActiveLoans < 0 {
		c.ActiveLoans = 0
	}
}

// AddBorrowed adds a disbursed principal to the borrowed total.
func (c *Customer) AddBorrowed(amount float64) {
	c.TotalAmountBorrowed += amount
}

// AddRepaid adds a received payment to the repaid total.
func (c *Customer) AddRepaid(amount float64) {
	c.TotalAmountRepaid += amount
}

// CustomerResponse is the JSON response format for customers
type CustomerResponse struct {
	ID                  uint      `json:"id"`
	CustomerID          string    `json:"customer_id"`
	FullName            string    `json:"full_name"`
	Phone               string    `json:"phone"`
	Email               *string   `json:"email"`
	Address             *string   `json:"address"`
	Identity            *string   `json:"identity"`
	Status              string    `json:"status"`
	TotalLoans          int       `json:"total_loans"`
	ActiveLoans         int       `json:"active_loans"`
	TotalAmountBorrowed float64   `json:"total_amount_borrowed"`
	TotalAmountRepaid   float64   `json:"total_amount_repaid"`
	CreditScore         int       `json:"credit_score"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Loans []LoanResponse `json:"loans,omitempty"`
}

// ToResponse converts Customer to CustomerResponse
func (c *Customer) ToResponse() CustomerResponse {
	resp := CustomerResponse{
		ID:                  c.ID,
		CustomerID:          c.CustomerID,
		FullName:            c.FullName,
		Phone:               c.Phone,
		Email:               c.Email,
		Address:             c.Address,
		Identity:            c.Identity,
		Status:              c.Status,
		TotalLoans:          c.TotalLoans,
		ActiveLoans:         c.ActiveLoans,
		TotalAmountBorrowed: c.TotalAmountBorrowed,
		TotalAmountRepaid:   c.TotalAmountRepaid,
		CreditScore:         c.CreditScore,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}

	for _, loan := range c.Loans {
		resp.Loans = append(resp.Loans, loan.ToResponse())
	}

	return resp
}
