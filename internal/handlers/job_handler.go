package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prestia/prestia-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// @Summary Worker Status
// @Description Background worker queue statistics (admin only)
// @Tags Jobs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	respondData(c, http.StatusOK, h.jobService.GetStatus())
}
