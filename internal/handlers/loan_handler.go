package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prestia/prestia-api/internal/middleware"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/prestia/prestia-api/internal/services"
)

type LoanHandler struct {
	loanService    *services.LoanService
	paymentService *services.PaymentService
	reportService  *services.ReportService
}

func NewLoanHandler(
	loanService *services.LoanService,
	paymentService *services.PaymentService,
	reportService *services.ReportService,
) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		paymentService: paymentService,
		reportService:  reportService,
	}
}

// @Summary List Loans
// @Description Get a paginated list of loans
// @Tags Loans
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param interest_type query string false "Filter by interest type"
// @Param overdue query bool false "Only overdue loans"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans [get]
func (h *LoanHandler) Index(c *gin.Context) {
	listQuery := repository.NewListQuery()
	listQuery.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	listQuery.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	listQuery.Search = c.Query("search_term")
	listQuery.Filters["interest_type"] = c.Query("interest_type")
	listQuery.Filters["overdue"] = c.Query("overdue")
	listQuery.Filters["start_date"] = c.Query("start_date")
	listQuery.Filters["end_date"] = c.Query("end_date")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		listQuery.SortBy = parts[0]
		if len(parts) > 1 {
			listQuery.SortDir = parts[1]
		}
	}

	query := &repository.LoanQuery{
		ListQuery: listQuery,
		Status:    c.Query("status"),
	}

	loans, total, err := h.loanService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for i := range loans {
		responses = append(responses, loans[i].ToResponse())
	}

	respondData(c, http.StatusOK, gin.H{
		"loans": responses,
		"pagination": gin.H{
			"page":        listQuery.Page,
			"per_page":    listQuery.PerPage,
			"total":       total,
			"total_pages": (total + int64(listQuery.PerPage) - 1) / int64(listQuery.PerPage),
		},
	})
}

// @Summary Get Loan
// @Description Get a loan by code with its customer and payments
// @Tags Loans
// @Produce json
// @Param loan_id path string true "Loan code (00-001-001-01-D)"
// @Success 200 {object} models.LoanResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id} [get]
func (h *LoanHandler) Show(c *gin.Context) {
	loan, err := h.loanService.FindByCode(c.Request.Context(), c.Param("loan_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, loan.ToResponse())
}

// @Summary Create Loan
// @Description Disburses a new loan to a customer
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body services.CreateLoanInput true "Loan Terms"
// @Success 201 {object} models.LoanResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var input services.CreateLoanInput
	if err := BindNestedOrFlat(c, "loan", &input); err != nil {
		respondMessage(c, http.StatusBadRequest, "Datos de préstamo inválidos")
		return
	}

	loan, err := h.loanService.Create(c.Request.Context(), input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, loan.ToResponse())
}

// @Summary Close Loan
// @Description Closes a fully paid loan; fails if principal remains
// @Tags Loans
// @Produce json
// @Param loan_id path string true "Loan code"
// @Success 200 {object} models.LoanResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/close [post]
func (h *LoanHandler) Close(c *gin.Context) {
	loan, err := h.loanService.Close(c.Request.Context(), c.Param("loan_id"),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, loan.ToResponse())
}

// @Summary Default Loan
// @Description Marks an active loan as defaulted
// @Tags Loans
// @Produce json
// @Param loan_id path string true "Loan code"
// @Success 200 {object} models.LoanResponse
// @Security BearerAuth
// @Router /loans/{loan_id}/default [post]
func (h *LoanHandler) Default(c *gin.Context) {
	loan, err := h.loanService.Default(c.Request.Context(), c.Param("loan_id"),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, loan.ToResponse())
}

// @Summary Write Off Loan
// @Description Writes off an active loan, booking the remaining principal as loss
// @Tags Loans
// @Produce json
// @Param loan_id path string true "Loan code"
// @Success 200 {object} models.LoanResponse
// @Security BearerAuth
// @Router /loans/{loan_id}/write-off [post]
func (h *LoanHandler) WriteOff(c *gin.Context) {
	loan, err := h.loanService.WriteOff(c.Request.Context(), c.Param("loan_id"),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, loan.ToResponse())
}

// @Summary Recalculate Loan
// @Description Recomputes outstanding balances; pass as_of for a dry-run preview
// @Tags Loans
// @Produce json
// @Param loan_id path string true "Loan code"
// @Param as_of query string false "Preview date (YYYY-MM-DD), not persisted"
// @Success 200 {object} models.LoanResponse
// @Security BearerAuth
// @Router /loans/{loan_id}/calculate [post]
func (h *LoanHandler) Calculate(c *gin.Context) {
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		asOf, err := time.Parse("2006-01-02", asOfStr)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Fecha inválida, use YYYY-MM-DD")
			return
		}
		loan, err := h.loanService.Preview(c.Request.Context(), c.Param("loan_id"), asOf)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondData(c, http.StatusOK, loan.ToResponse())
		return
	}

	loan, err := h.loanService.Recompute(c.Request.Context(), c.Param("loan_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, loan.ToResponse())
}

// @Summary Loan Payments
// @Description Lists the payments applied to a loan
// @Tags Loans
// @Produce json
// @Param loan_id path string true "Loan code"
// @Success 200 {object} []models.PaymentResponse
// @Security BearerAuth
// @Router /loans/{loan_id}/payments [get]
func (h *LoanHandler) Payments(c *gin.Context) {
	payments, err := h.paymentService.FindByLoan(c.Request.Context(), c.Param("loan_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	respondData(c, http.StatusOK, responses)
}

// @Summary Loan Statement PDF
// @Description Downloads the loan's statement of account as PDF
// @Tags Loans
// @Produce application/pdf
// @Param loan_id path string true "Loan code"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /loans/{loan_id}/statement [get]
func (h *LoanHandler) Statement(c *gin.Context) {
	buf, err := h.reportService.GenerateLoanStatementPDF(c.Request.Context(), c.Param("loan_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=estado_cuenta.pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
