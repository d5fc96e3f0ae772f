package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/service"
	"github.com/quocanhngo/farmiot/pkg/metrics"
)

// MaintenanceHandler exposes operator actions
type MaintenanceHandler struct {
	livenessService *service.LivenessService
}

func NewMaintenanceHandler(livenessService *service.LivenessService) *MaintenanceHandler {
	return &MaintenanceHandler{livenessService: livenessService}
}

// CheckOffline godoc
// @Summary Mark silent devices offline
// @Description Admin only. Devices not seen for timeout_minutes are marked offline.
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param timeout_minutes query int false "Timeout (5-1440)" default(30)
// @Success 200 {object} model.CheckOfflineResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /iot/maintenance/check-offline [post]
func (h *MaintenanceHandler) CheckOffline(c *gin.Context) {
	var q model.CheckOfflineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.livenessService.Sweep(c.Request.Context(), time.Duration(q.TimeoutMinutes)*time.Minute, metrics.TriggerManual)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
