package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/repository"
	"gorm.io/gorm"
)

type ReportService struct {
	loanRepo     repository.LoanRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
}

func NewReportService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
) *ReportService {
	return &ReportService{
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
	}
}

// GenerateOverdueLoansCSV dumps every overdue loan with its customer contact
// data, for the collections follow-up sheet.
func (s *ReportService) GenerateOverdueLoansCSV(ctx context.Context) (*bytes.Buffer, error) {
	loans, err := s.loanRepo.FindOverdue(ctx)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Préstamo", "Cliente", "Teléfono", "Vencimiento", "Días de Atraso", "Capital Pendiente", "Interés Pendiente"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range loans {
		loan := loans[i]

		customerName := "N/A"
		customerPhone := "N/A"
		customer, err := s.customerRepo.FindByID(ctx, loan.CustomerID)
		if err == nil {
			customerName = customer.FullName
			customerPhone = customer.Phone
		}

		record := []string{
			loan.LoanID,
			customerName,
			customerPhone,
			loan.DueDate.Format("2006-01-02"),
			fmt.Sprintf("%d", loan.OverdueDays()),
			fmt.Sprintf("%.2f", loan.OutstandingPrincipal),
			fmt.Sprintf("%.2f", loan.OutstandingInterest),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateLoanStatementPDF renders the statement of account for one loan,
// payment by payment, as a PDF.
func (s *ReportService) GenerateLoanStatementPDF(ctx context.Context, loanCode string) (*bytes.Buffer, error) {
	loan, err := s.loanRepo.FindByCodeWithDetails(ctx, loanCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	type PaymentRow struct {
		PaymentID     string
		PaymentDate   string
		Amount        string
		InterestPaid  string
		PrincipalPaid string
		Outstanding   string
	}

	type StatementData struct {
		Loan         *models.Loan
		CustomerName string
		Date         string
		Payments     []PaymentRow
	}

	var rows []PaymentRow
	for _, p := range loan.Payments {
		rows = append(rows, PaymentRow{
			PaymentID:     p.PaymentID,
			PaymentDate:   p.PaymentDate.Format("02/01/2006"),
			Amount:        fmt.Sprintf("%.2f", p.Amount),
			InterestPaid:  fmt.Sprintf("%.2f", p.InterestPaid),
			PrincipalPaid: fmt.Sprintf("%.2f", p.PrincipalPaid),
			Outstanding:   fmt.Sprintf("%.2f", p.OutstandingPrincipalAfter),
		})
	}

	data := StatementData{
		Loan:         loan,
		CustomerName: loan.Customer.FullName,
		Date:         time.Now().Format("02/01/2006"),
		Payments:     rows,
	}

	return s.generatePDF("loan_statement.html", data)
}

// GenerateCustomerStatementPDF renders a customer's full position: every
// loan with its balances and totals, as a PDF.
func (s *ReportService) GenerateCustomerStatementPDF(ctx context.Context, customerCode string) (*bytes.Buffer, error) {
	customer, err := s.customerRepo.FindByCode(ctx, customerCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	loans, err := s.loanRepo.FindByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	type LoanRow struct {
		LoanID      string
		Disbursed   string
		DueDate     string
		Principal   string
		Outstanding string
		Interest    string
		Status      string
	}

	type StatementData struct {
		Customer         *models.Customer
		Date             string
		Loans            []LoanRow
		TotalOutstanding string
	}

	var rows []LoanRow
	totalOutstanding := 0.0
	for _, loan := range loans {
		rows = append(rows, LoanRow{
			LoanID:      loan.LoanID,
			Disbursed:   loan.DisbursementDate.Format("02/01/2006"),
			DueDate:     loan.DueDate.Format("02/01/2006"),
			Principal:   fmt.Sprintf("%.2f", loan.PrincipalAmount),
			Outstanding: fmt.Sprintf("%.2f", loan.OutstandingPrincipal),
			Interest:    fmt.Sprintf("%.2f", loan.OutstandingInterest),
			Status:      loan.Status,
		})
		if loan.IsActive() {
			totalOutstanding += loan.OutstandingPrincipal + loan.OutstandingInterest
		}
	}

	data := StatementData{
		Customer:         customer,
		Date:             time.Now().Format("02/01/2006"),
		Loans:            rows,
		TotalOutstanding: fmt.Sprintf("%.2f", totalOutstanding),
	}

	return s.generatePDF("customer_statement.html", data)
}

func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s (path: %s): %w", templateName, tmplPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
