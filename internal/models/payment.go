package models

import (
	"time"
)

// Payment is an immutable historical record of one allocation. It snapshots
// the loan's outstanding figures right after the allocation ran; deleting a
// payment reverses its effect on the owning loan but the record itself is
// never amended.
type Payment struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PaymentID  string `gorm:"column:code;uniqueIndex;not null" json:"payment_id"`
	LoanID     uint   `gorm:"not null;index" json:"loan_id"`
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`

	Amount        float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	PrincipalPaid float64   `gorm:"type:decimal(15,2);not null" json:"principal_paid"`
	InterestPaid  float64   `gorm:"type:decimal(15,2);not null" json:"interest_paid"`
	PaymentDate   time.Time `gorm:"type:date;not null;index" json:"payment_date"`

	// Snapshot of the loan state immediately after allocation
	OutstandingPrincipalAfter float64 `gorm:"type:decimal(15,2);not null" json:"outstanding_principal_after"`
	OutstandingInterestAfter  float64 `gorm:"type:decimal(15,2);not null" json:"outstanding_interest_after"`

	Status    string    `gorm:"default:completed;not null;index" json:"status"`
	Note      *string   `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Loan     Loan     `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
	PaymentStatusReversed  = "reversed"
)

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID                        uint      `json:"id"`
	PaymentID                 string    `json:"payment_id"`
	LoanID                    uint      `json:"loan_id"`
	LoanCode                  string    `json:"loan_code,omitempty"`
	CustomerID                uint      `json:"customer_id"`
	CustomerCode              string    `json:"customer_code,omitempty"`
	CustomerName              string    `json:"customer_name,omitempty"`
	Amount                    float64   `json:"amount"`
	PrincipalPaid             float64   `json:"principal_paid"`
	InterestPaid              float64   `json:"interest_paid"`
	PaymentDate               time.Time `json:"payment_date"`
	OutstandingPrincipalAfter float64   `json:"outstanding_principal_after"`
	OutstandingInterestAfter  float64   `json:"outstanding_interest_after"`
	Status                    string    `json:"status"`
	Note                      *string   `json:"note"`
	CreatedAt                 time.Time `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:                        p.ID,
		PaymentID:                 p.PaymentID,
		LoanID:                    p.LoanID,
		CustomerID:                p.CustomerID,
		Amount:                    p.Amount,
		PrincipalPaid:             p.PrincipalPaid,
		InterestPaid:              p.InterestPaid,
		PaymentDate:               p.PaymentDate,
		OutstandingPrincipalAfter: p.OutstandingPrincipalAfter,
		OutstandingInterestAfter:  p.OutstandingInterestAfter,
		Status:                    p.Status,
		Note:                      p.Note,
		CreatedAt:                 p.CreatedAt,
	}

	if p.Loan.ID != 0 {
		resp.LoanCode = p.Loan.LoanID
	}
	if p.Customer.ID != 0 {
		resp.CustomerCode = p.Customer.CustomerID
		resp.CustomerName = p.Customer.FullName
	}

	return resp
}
