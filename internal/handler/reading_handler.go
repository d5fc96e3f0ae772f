package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/service"
)

// ReadingHandler handles telemetry endpoints
type ReadingHandler struct {
	readingService *service.ReadingService
}

func NewReadingHandler(readingService *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingService: readingService}
}

// RecordReading godoc
// @Summary Record a sensor reading
// @Description Called by devices. Not authenticated; rate limited per client IP. Marks the device online.
// @Tags Readings
// @Accept json
// @Produce json
// @Param body body model.RecordReadingRequest true "Reading"
// @Success 201 {object} model.Reading
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 429 {object} map[string]string
// @Router /iot/readings [post]
func (h *ReadingHandler) RecordReading(c *gin.Context) {
	var req model.RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reading, err := h.readingService.Record(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reading)
}

// GetDeviceReadings godoc
// @Summary List a device's readings
// @Tags Readings
// @Produce json
// @Security BearerAuth
// @Param device_id path int true "Device ID"
// @Param hours_back query int false "Window in hours (1-720)" default(24)
// @Param limit query int false "Max rows (1-1000)" default(100)
// @Success 200 {array} model.Reading
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/readings/{device_id} [get]
func (h *ReadingHandler) GetDeviceReadings(c *gin.Context) {
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}

	var q model.ReadingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	readings, err := h.readingService.List(c.Request.Context(), callerID(c), deviceID, q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, readings)
}

// GetLatestReading godoc
// @Summary Get a device's latest reading
// @Tags Readings
// @Produce json
// @Security BearerAuth
// @Param device_id path int true "Device ID"
// @Success 200 {object} model.Reading
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/readings/{device_id}/latest [get]
func (h *ReadingHandler) GetLatestReading(c *gin.Context) {
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}

	reading, err := h.readingService.Latest(c.Request.Context(), callerID(c), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reading)
}

// GetReadingStats godoc
// @Summary Summarize a device's readings
// @Description Averages per metric and temperature range over the window. Metrics no reading carried are null.
// @Tags Readings
// @Produce json
// @Security BearerAuth
// @Param device_id path int true "Device ID"
// @Param hours_back query int false "Window in hours (1-720)" default(24)
// @Success 200 {object} model.SensorDataSummary
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/readings/{device_id}/stats [get]
func (h *ReadingHandler) GetReadingStats(c *gin.Context) {
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}

	var q model.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	summary, err := h.readingService.Stats(c.Request.Context(), callerID(c), deviceID, q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetFarmReadings godoc
// @Summary List readings across a farm
// @Tags Readings
// @Produce json
// @Security BearerAuth
// @Param farm_id path int true "Farm ID"
// @Param hours_back query int false "Window in hours (1-720)" default(24)
// @Param limit query int false "Max rows (1-1000)" default(100)
// @Success 200 {array} model.Reading
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/farm/{farm_id}/readings [get]
func (h *ReadingHandler) GetFarmReadings(c *gin.Context) {
	farmID, ok := pathID(c, "farm_id")
	if !ok {
		return
	}

	var q model.ReadingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	readings, err := h.readingService.ListForFarm(c.Request.Context(), callerID(c), farmID, q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, readings)
}
