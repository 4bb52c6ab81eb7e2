package services

import (
	"github.com/prestia/prestia-api/internal/cache"
	"github.com/prestia/prestia-api/internal/config"
	"github.com/prestia/prestia-api/internal/jobs"
	"github.com/prestia/prestia-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	Customer     *CustomerService
	Loan         *LoanService
	Payment      *PaymentService
	Notification *NotificationService
	Report       *ReportService
	Audit        *AuditService
	CreditScore  *CreditScoreService
	Email        *EmailService
	Analytics    *AnalyticsService
	Export       *ExportService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, c cache.Cache, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)
	analyticsSvc := NewAnalyticsService(repos.Analytics, c)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		Customer:     NewCustomerService(db, repos.Customer, repos.Sequence, auditSvc),
		Loan:         NewLoanService(db, repos.Loan, repos.Customer, repos.Sequence, notificationSvc, emailSvc, auditSvc, worker),
		Payment:      NewPaymentService(db, repos.Payment, repos.Loan, repos.Customer, repos.Sequence, notificationSvc, emailSvc, auditSvc, worker),
		Notification: notificationSvc,
		Report:       NewReportService(repos.Loan, repos.Payment, repos.Customer),
		Audit:        auditSvc,
		CreditScore:  NewCreditScoreService(repos.Customer, repos.Loan, repos.Payment),
		Email:        emailSvc,
		Analytics:    analyticsSvc,
		Export:       NewExportService(analyticsSvc),
		Job:          NewJobService(worker),
	}
}
