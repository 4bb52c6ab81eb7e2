package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prestia/prestia-api/internal/config"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/services"
	"github.com/prestia/prestia-api/pkg/logger"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Setup("development")

	if cfg.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is not set")
	}

	// Initialize email service
	emailService := services.NewEmailService(cfg)

	// Check if TEST_EMAIL_TO is set, otherwise use a default
	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Emails might mock or fail if domain not verified.")
	}

	customer := &models.Customer{
		CustomerID: "CUS-00001",
		FullName:   "Cliente de Prueba",
		Email:      &toEmail,
	}

	now := time.Now()
	loan := &models.Loan{
		LoanID:               "00-001-001-01-D",
		PrincipalAmount:      1000,
		InterestRate:         2,
		InterestType:         models.InterestTypeDaily,
		DisbursementDate:     now,
		DueDate:              now.AddDate(0, 1, 0),
		OutstandingPrincipal: 1000,
	}

	// Send Loan Disbursed email
	log.Printf("Sending Loan Disbursed email to %s...", toEmail)
	if err := emailService.SendLoanDisbursed(context.Background(), customer, loan); err != nil {
		log.Fatalf("Failed to send Loan Disbursed email: %v", err)
	}
	log.Println("Loan Disbursed email sent successfully!")

	payment := &models.Payment{
		PaymentID:                 "PAY-20260101-00001",
		Amount:                    250,
		InterestPaid:              200,
		PrincipalPaid:             50,
		PaymentDate:               now,
		OutstandingPrincipalAfter: 950,
	}

	// Send Payment Received email
	log.Printf("Sending Payment Received email to %s...", toEmail)
	if err := emailService.SendPaymentReceived(context.Background(), customer, payment, false); err != nil {
		log.Fatalf("Failed to send Payment Received email: %v", err)
	}
	log.Println("Payment Received email sent successfully!")

	// Send Overdue Reminder email
	loan.DueDate = now.AddDate(0, 0, -5)
	log.Printf("Sending Overdue Reminder email to %s...", toEmail)
	if err := emailService.SendOverdueReminder(context.Background(), customer, loan); err != nil {
		log.Fatalf("Failed to send Overdue Reminder email: %v", err)
	}
	log.Println("Overdue Reminder email sent successfully!")
}
