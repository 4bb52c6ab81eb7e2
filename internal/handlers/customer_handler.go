package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prestia/prestia-api/internal/middleware"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/prestia/prestia-api/internal/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
	loanService     *services.LoanService
	notificationSvc *services.NotificationService
	reportService   *services.ReportService
}

func NewCustomerHandler(
	customerService *services.CustomerService,
	loanService *services.LoanService,
	notificationSvc *services.NotificationService,
	reportService *services.ReportService,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		loanService:     loanService,
		notificationSvc: notificationSvc,
		reportService:   reportService,
	}
}

// @Summary List Customers
// @Description Get a paginated list of customers
// @Tags Customers
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, phone or code"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	customers, total, err := h.customerService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for i := range customers {
		responses = append(responses, customers[i].ToResponse())
	}

	respondData(c, http.StatusOK, gin.H{
		"customers": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Customer
// @Description Get a customer by code
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer_id path string true "Customer code (CUS-00001)"
// @Success 200 {object} models.CustomerResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [get]
func (h *CustomerHandler) Show(c *gin.Context) {
	customer, err := h.customerService.FindByCode(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, customer.ToResponse())
}

// @Summary Create Customer
// @Description Registers a new customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body services.CreateCustomerInput true "Customer Details"
// @Success 201 {object} models.CustomerResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var input services.CreateCustomerInput
	if err := BindNestedOrFlat(c, "customer", &input); err != nil {
		respondMessage(c, http.StatusBadRequest, "Datos de cliente inválidos")
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, customer.ToResponse())
}

// @Summary Update Customer
// @Description Applies a partial update to a customer profile
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer_id path string true "Customer code"
// @Param request body services.UpdateCustomerInput true "Fields to update"
// @Success 200 {object} models.CustomerResponse
// @Security BearerAuth
// @Router /customers/{customer_id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	var input services.UpdateCustomerInput
	if err := BindNestedOrFlat(c, "customer", &input); err != nil {
		respondMessage(c, http.StatusBadRequest, "Datos de cliente inválidos")
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), c.Param("customer_id"), input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, customer.ToResponse())
}

// @Summary Delete Customer
// @Description Soft-deletes a customer without active loans
// @Tags Customers
// @Produce json
// @Param customer_id path string true "Customer code"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers/{customer_id} [delete]
func (h *CustomerHandler) Destroy(c *gin.Context) {
	err := h.customerService.Delete(c.Request.Context(), c.Param("customer_id"),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "Cliente eliminado"})
}

// @Summary Customer Loans
// @Description Lists every loan belonging to a customer
// @Tags Customers
// @Produce json
// @Param customer_id path string true "Customer code"
// @Success 200 {object} []models.LoanResponse
// @Security BearerAuth
// @Router /customers/{customer_id}/loans [get]
func (h *CustomerHandler) Loans(c *gin.Context) {
	loans, err := h.loanService.FindByCustomer(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for i := range loans {
		responses = append(responses, loans[i].ToResponse())
	}
	respondData(c, http.StatusOK, responses)
}

// @Summary Customer Notifications
// @Description Lists a customer's recent notifications
// @Tags Customers
// @Produce json
// @Param customer_id path string true "Customer code"
// @Param limit query int false "Max results" default(50)
// @Success 200 {object} []models.Notification
// @Security BearerAuth
// @Router /customers/{customer_id}/notifications [get]
func (h *CustomerHandler) Notifications(c *gin.Context) {
	customer, err := h.customerService.FindByCode(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	notifications, err := h.notificationSvc.FindByCustomer(c.Request.Context(), customer.ID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, notifications)
}

// @Summary Mark Notifications Read
// @Description Marks all of a customer's notifications as read
// @Tags Customers
// @Produce json
// @Param customer_id path string true "Customer code"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers/{customer_id}/notifications/read [post]
func (h *CustomerHandler) MarkNotificationsRead(c *gin.Context) {
	customer, err := h.customerService.FindByCode(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.notificationSvc.MarkAllAsRead(c.Request.Context(), customer.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "Notificaciones marcadas como leídas"})
}

// @Summary Customer Statement PDF
// @Description Downloads a PDF statement of the customer's position
// @Tags Customers
// @Produce application/pdf
// @Param customer_id path string true "Customer code"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /customers/{customer_id}/statement [get]
func (h *CustomerHandler) Statement(c *gin.Context) {
	buf, err := h.reportService.GenerateCustomerStatementPDF(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=estado_cliente.pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
