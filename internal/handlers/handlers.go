package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prestia/prestia-api/internal/models"
	"github.com/prestia/prestia-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Customer *CustomerHandler
	Loan     *LoanHandler
	Payment  *PaymentHandler
	Stats    *StatsHandler
	Audit    *AuditHandler
	Job      *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(),
		Auth:     NewAuthHandler(svcs.Auth),
		Customer: NewCustomerHandler(svcs.Customer, svcs.Loan, svcs.Notification, svcs.Report),
		Loan:     NewLoanHandler(svcs.Loan, svcs.Payment, svcs.Report),
		Payment:  NewPaymentHandler(svcs.Payment),
		Stats:    NewStatsHandler(svcs.Analytics, svcs.Export, svcs.Report),
		Audit:    NewAuditHandler(svcs.Audit),
		Job:      NewJobHandler(svcs.Job),
	}
}

// respondData writes the standard success envelope
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondMessage writes the standard failure envelope
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(c *gin.Context, err error) {
	var validationErr *models.ValidationError

	switch {
	case errors.Is(err, services.ErrNotFound):
		respondMessage(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidInput):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		respondMessage(c, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, services.ErrDuplicate):
		respondMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		respondMessage(c, http.StatusUnauthorized, err.Error())
	default:
		respondMessage(c, http.StatusInternalServerError, err.Error())
	}
}
