package models

import (
	"time"

	"github.com/prestia/prestia-api/internal/interest"
)

// Loan is the central ledger entity. Terms are immutable after creation;
// the financial state below them is mutated only by payment allocation,
// reversal and recompute.
type Loan struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	LoanID             string `gorm:"column:code;uniqueIndex;not null" json:"loan_id"`
	GUID               string `gorm:"uniqueIndex" json:"guid"`
	SequenceNumber     int    `gorm:"not null;uniqueIndex" json:"sequence_number"`
	CustomerID         uint   `gorm:"not null;index" json:"customer_id"`
	CustomerLoanNumber int    `gorm:"not null" json:"customer_loan_number"`

	// Terms (immutable after creation)
	PrincipalAmount  float64   `gorm:"type:decimal(15,2);not null" json:"principal_amount"`
	InterestType     string    `gorm:"not null" json:"interest_type"`
	InterestRate     float64   `gorm:"type:decimal(10,4);not null" json:"interest_rate"`
	LoanTypeCode     string    `gorm:"not null" json:"loan_type_code"`
	DisbursementDate time.Time `gorm:"type:date;not null" json:"disbursement_date"`
	DueDate          time.Time `gorm:"type:date;not null;index" json:"due_date"`

	// Mutable ledger state
	OutstandingPrincipal float64    `gorm:"type:decimal(15,2);not null" json:"outstanding_principal"`
	OutstandingInterest  float64    `gorm:"type:decimal(15,2);default:0" json:"outstanding_interest"`
	TotalAmountPaid      float64    `gorm:"type:decimal(15,2);default:0" json:"total_amount_paid"`
	TotalPrincipalPaid   float64    `gorm:"type:decimal(15,2);default:0" json:"total_principal_paid"`
	TotalInterestEarned  float64    `gorm:"type:decimal(15,2);default:0" json:"total_interest_earned"`
	TotalPayments        int        `gorm:"default:0" json:"total_payments"`
	LastPaymentDate      *time.Time `gorm:"type:date" json:"last_payment_date"`
	ProfitLoss           float64    `gorm:"type:decimal(15,2);default:0" json:"profit_loss"`
	Status               string     `gorm:"default:active;not null;index" json:"status"`
	ClosedDate           *time.Time `gorm:"type:date" json:"closed_date"`

	Note      *string   `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Customer Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Payments []Payment `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan status constants
const (
	LoanStatusActive     = "active"
	LoanStatusClosed     = "closed"
	LoanStatusDefaulted  = "defaulted"
	LoanStatusWrittenOff = "written_off"
)

// Interest type constants, re-exported for callers that only see models
const (
	InterestTypeDaily   = interest.TypeDaily
	InterestTypeMonthly = interest.TypeMonthly
)

// ValidateTerms checks the immutable loan terms at construction time.
func (l *Loan) ValidateTerms() error {
	if l.PrincipalAmount < 0 {
		return &ValidationError{Field: "principal_amount", Message: "el monto principal no puede ser negativo"}
	}
	if l.InterestRate < 0 {
		return &ValidationError{Field: "interest_rate", Message: "la tasa de interés no puede ser negativa"}
	}
	if !interest.IsValidType(l.InterestType) {
		return &ValidationError{Field: "interest_type", Message: "tipo de interés inválido (daily|monthly)"}
	}
	if l.DisbursementDate.IsZero() {
		return &ValidationError{Field: "disbursement_date", Message: "la fecha de desembolso es requerida"}
	}
	if !l.DueDate.After(l.DisbursementDate) {
		return &ValidationError{Field: "due_date", Message: "la fecha de vencimiento debe ser posterior al desembolso"}
	}
	return nil
}

// IsActive returns true if the loan accepts payments
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// IsTerminal returns true if the loan reached a terminal state
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusClosed ||
		l.Status == LoanStatusDefaulted ||
		l.Status == LoanStatusWrittenOff
}

// MayClose returns true if the loan can transition to closed
func (l *Loan) MayClose() bool {
	return l.Status == LoanStatusActive && l.OutstandingPrincipal <= 0
}

// MayReopen returns true if the loan can be reopened (payment reversal)
func (l *Loan) MayReopen() bool {
	return l.Status == LoanStatusClosed
}

// IsOverdue returns true if an unpaid loan is past its due date
func (l *Loan) IsOverdue() bool {
	return l.Status == LoanStatusActive &&
		l.OutstandingPrincipal > 0 &&
		time.Now().After(l.DueDate)
}

// OverdueDays returns the number of days past the due date
func (l *Loan) OverdueDays() int {
	if !l.IsOverdue() {
		return 0
	}
	return int(time.Since(l.DueDate).Hours() / 24)
}

// AccruedInterest returns the interest accrued on the current outstanding
// principal as of asOf.
func (l *Loan) AccruedInterest(asOf time.Time) float64 {
	return interest.Accrued(l.OutstandingPrincipal, l.InterestRate,
		l.DisbursementDate, l.DueDate, asOf, l.InterestType)
}

// RecomputeOutstanding rebuilds the derived ledger figures from the running
// totals as of asOf. Outstanding principal is derived from the principal-paid
// running total, never from gross TotalAmountPaid: gross cash includes the
// interest portion and using it would double-subtract interest from principal.
// Safe to call repeatedly; the computation is idempotent for a fixed asOf.
func (l *Loan) RecomputeOutstanding(asOf time.Time) {
	l.OutstandingPrincipal = l.PrincipalAmount - l.TotalPrincipalPaid
	if l.OutstandingPrincipal < 0 {
		l.OutstandingPrincipal = 0
	}

	l.OutstandingInterest = l.AccruedInterest(asOf) - l.TotalInterestEarned

	l.ProfitLoss = l.TotalInterestEarned
	if l.Status == LoanStatusWrittenOff {
		l.ProfitLoss -= l.OutstandingPrincipal
	}
}

// LoanResponse is the JSON response format for loans
type LoanResponse struct {
	ID                   uint       `json:"id"`
	LoanID               string     `json:"loan_id"`
	SequenceNumber       int        `json:"sequence_number"`
	CustomerID           uint       `json:"customer_id"`
	CustomerCode         string     `json:"customer_code,omitempty"`
	CustomerName         string     `json:"customer_name,omitempty"`
	CustomerLoanNumber   int        `json:"customer_loan_number"`
	PrincipalAmount      float64    `json:"principal_amount"`
	InterestType         string     `json:"interest_type"`
	InterestRate         float64    `json:"interest_rate"`
	LoanTypeCode         string     `json:"loan_type_code"`
	DisbursementDate     time.Time  `json:"disbursement_date"`
	DueDate              time.Time  `json:"due_date"`
	OutstandingPrincipal float64    `json:"outstanding_principal"`
	OutstandingInterest  float64    `json:"outstanding_interest"`
	TotalAmountPaid      float64    `json:"total_amount_paid"`
	TotalPrincipalPaid   float64    `json:"total_principal_paid"`
	TotalInterestEarned  float64    `json:"total_interest_earned"`
	TotalPayments        int        `json:"total_payments"`
	LastPaymentDate      *time.Time `json:"last_payment_date"`
	ProfitLoss           float64    `json:"profit_loss"`
	Status               string     `json:"status"`
	ClosedDate           *time.Time `json:"closed_date"`
	OverdueDays          int        `json:"overdue_days"`
	Note                 *string    `json:"note"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	Payments []PaymentResponse `json:"payments,omitempty"`
}

// ToResponse converts Loan to LoanResponse
func (l *Loan) ToResponse() LoanResponse {
	resp := LoanResponse{
		ID:                   l.ID,
		LoanID:               l.LoanID,
		SequenceNumber:       l.SequenceNumber,
		CustomerID:           l.CustomerID,
		CustomerLoanNumber:   l.CustomerLoanNumber,
		PrincipalAmount:      l.PrincipalAmount,
		InterestType:         l.InterestType,
		InterestRate:         l.InterestRate,
		LoanTypeCode:         l.LoanTypeCode,
		DisbursementDate:     l.DisbursementDate,
		DueDate:              l.DueDate,
		OutstandingPrincipal: l.OutstandingPrincipal,
		OutstandingInterest:  l.OutstandingInterest,
		TotalAmountPaid:      l.TotalAmountPaid,
		TotalPrincipalPaid:   l.TotalPrincipalPaid,
		TotalInterestEarned:  l.TotalInterestEarned,
		TotalPayments:        l.TotalPayments,
		LastPaymentDate:      l.LastPaymentDate,
		ProfitLoss:           l.ProfitLoss,
		Status:               l.Status,
		ClosedDate:           l.ClosedDate,
		OverdueDays:          l.OverdueDays(),
		Note:                 l.Note,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}

	if l.Customer.ID != 0 {
		resp.CustomerCode = l.Customer.CustomerID
		resp.CustomerName = l.Customer.FullName
	}

	for _, payment := range l.Payments {
		resp.Payments = append(resp.Payments, payment.ToResponse())
	}

	return resp
}
