package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prestia/prestia-api/internal/services"
)

type StatsHandler struct {
	analyticsService *services.AnalyticsService
	exportService    *services.ExportService
	reportService    *services.ReportService
}

func NewStatsHandler(
	analyticsService *services.AnalyticsService,
	exportService *services.ExportService,
	reportService *services.ReportService,
) *StatsHandler {
	return &StatsHandler{
		analyticsService: analyticsService,
		exportService:    exportService,
		reportService:    reportService,
	}
}

// @Summary Portfolio Overview
// @Description Aggregate portfolio figures: customers, loans, balances
// @Tags Stats
// @Produce json
// @Success 200 {object} repository.PortfolioOverview
// @Security BearerAuth
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.analyticsService.GetOverview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, overview)
}

// @Summary Loan Status Distribution
// @Description Loan counts grouped by status
// @Tags Stats
// @Produce json
// @Success 200 {object} []repository.StatusCount
// @Security BearerAuth
// @Router /stats/distribution [get]
func (h *StatsHandler) Distribution(c *gin.Context) {
	counts, err := h.analyticsService.GetStatusDistribution(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, counts)
}

// @Summary Export Portfolio Report
// @Description Downloads the portfolio report as csv, xlsx or pdf
// @Tags Stats
// @Produce application/octet-stream
// @Param format query string false "csv | xlsx | pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /stats/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	overview, err := h.analyticsService.GetOverview(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	dist, err := h.analyticsService.GetStatusDistribution(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var data []byte
	var filename, contentType string

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, filename, err = h.exportService.ExportXLSX(ctx, overview, dist)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, filename, err = h.exportService.ExportPDF(ctx, overview, dist)
		contentType = "application/pdf"
	case "csv":
		data, filename, err = h.exportService.ExportCSV(ctx, overview, dist)
		contentType = "text/csv"
	default:
		respondMessage(c, http.StatusBadRequest, "Formato inválido, use csv, xlsx o pdf")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Overdue Loans CSV
// @Description Downloads the collections follow-up sheet
// @Tags Stats
// @Produce text/csv
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /stats/overdue [get]
func (h *StatsHandler) OverdueCSV(c *gin.Context) {
	buf, err := h.reportService.GenerateOverdueLoansCSV(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=prestamos_vencidos.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
