package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/prestia/prestia-api/internal/config"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/pkg/logger"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// checkEmailPreconditions decides whether an email can go out at all.
// Customers without an email address are skipped silently.
func (s *EmailService) checkEmailPreconditions(customer *models.Customer, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Info(fmt.Sprintf("Email notifications disabled, skipping %s", operation))
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, errors.New("RESEND_API_KEY is not set")
	}
	if s.config.FromEmail == "" {
		return false, errors.New("FROM_EMAIL is not set")
	}
	if customer.Email == nil || *customer.Email == "" {
		logger.Info(fmt.Sprintf("Customer %s has no email, skipping %s", customer.CustomerID, operation))
		return false, nil
	}
	return true, nil
}

func (s *EmailService) SendPaymentReceived(ctx context.Context, customer *models.Customer, payment *models.Payment, loanClosed bool) error {
	ok, err := s.checkEmailPreconditions(customer, "payment received email")
	if !ok {
		return err
	}

	data := struct {
		Name          string
		PaymentID     string
		Amount        string
		InterestPaid  string
		PrincipalPaid string
		PaymentDate   string
		Outstanding   string
		LoanClosed    bool
	}{
		Name:          customer.FullName,
		PaymentID:     payment.PaymentID,
		Amount:        fmt.Sprintf("L%.2f", payment.Amount),
		InterestPaid:  fmt.Sprintf("L%.2f", payment.InterestPaid),
		PrincipalPaid: fmt.Sprintf("L%.2f", payment.PrincipalPaid),
		PaymentDate:   payment.PaymentDate.Format("02/01/2006"),
		Outstanding:   fmt.Sprintf("L%.2f", payment.OutstandingPrincipalAfter),
		LoanClosed:    loanClosed,
	}

	body, err := s.renderTemplate("payment_received.html", data)
	if err != nil {
		return err
	}

	return s.send(*customer.Email, "Pago Recibido", body)
}

func (s *EmailService) SendLoanDisbursed(ctx context.Context, customer *models.Customer, loan *models.Loan) error {
	ok, err := s.checkEmailPreconditions(customer, "loan disbursed email")
	if !ok {
		return err
	}

	data := struct {
		Name             string
		LoanID           string
		PrincipalAmount  string
		InterestRate     string
		InterestType     string
		DisbursementDate string
		DueDate          string
	}{
		Name:             customer.FullName,
		LoanID:           loan.LoanID,
		PrincipalAmount:  fmt.Sprintf("L%.2f", loan.PrincipalAmount),
		InterestRate:     fmt.Sprintf("%.2f%%", loan.InterestRate),
		InterestType:     loan.InterestType,
		DisbursementDate: loan.DisbursementDate.Format("02/01/2006"),
		DueDate:          loan.DueDate.Format("02/01/2006"),
	}

	body, err := s.renderTemplate("loan_disbursed.html", data)
	if err != nil {
		return err
	}

	return s.send(*customer.Email, "Préstamo Desembolsado", body)
}

func (s *EmailService) SendOverdueReminder(ctx context.Context, customer *models.Customer, loan *models.Loan) error {
	ok, err := s.checkEmailPreconditions(customer, "overdue reminder email")
	if !ok {
		return err
	}

	data := struct {
		Name        string
		LoanID      string
		DueDate     string
		OverdueDays int
		Outstanding string
	}{
		Name:        customer.FullName,
		LoanID:      loan.LoanID,
		DueDate:     loan.DueDate.Format("02/01/2006"),
		OverdueDays: loan.OverdueDays(),
		Outstanding: fmt.Sprintf("L%.2f", loan.OutstandingPrincipal+loan.OutstandingInterest),
	}

	body, err := s.renderTemplate("overdue_loan.html", data)
	if err != nil {
		return err
	}

	return s.send(*customer.Email, "Préstamo Vencido", body)
}

func (s *EmailService) send(to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
