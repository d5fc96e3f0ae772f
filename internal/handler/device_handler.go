package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/service"
)

// DeviceHandler handles device registry endpoints
type DeviceHandler struct {
	deviceService *service.DeviceService
}

func NewDeviceHandler(deviceService *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// ListDevices godoc
// @Summary List devices
// @Description Paginated devices across all farms, each with its latest reading
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-100)" default(100)
// @Param online_only query bool false "Only online devices"
// @Success 200 {object} model.DeviceListResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /iot/devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	var q model.ListDevicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.deviceService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterDevice godoc
// @Summary Register a device
// @Description Register a device on a farm owned by the caller. The MQTT topic defaults to farm/{farm_id}/sensors.
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.RegisterDeviceRequest true "Device"
// @Success 201 {object} model.Device
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/devices [post]
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	device, err := h.deviceService.Register(c.Request.Context(), callerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, device)
}

// GetDevice godoc
// @Summary Get a device
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Success 200 {object} model.DeviceWithLatestReading
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/devices/{id} [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	device, err := h.deviceService.Get(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, device)
}

// UpdateDevice godoc
// @Summary Update device settings
// @Description Only the fields present in the body are changed
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Param body body model.DeviceUpdate true "Settings"
// @Success 200 {object} model.Device
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/devices/{id} [put]
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.DeviceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	device, err := h.deviceService.Update(c.Request.Context(), callerID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, device)
}

// DeleteDevice godoc
// @Summary Delete a device and its readings
// @Tags Devices
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Success 204
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/devices/{id} [delete]
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deviceService.Delete(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetFarmDevices godoc
// @Summary List a farm's devices
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param farm_id path int true "Farm ID"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-100)" default(100)
// @Success 200 {array} model.DeviceWithLatestReading
// @Failure 404 {object} model.ErrorResponse
// @Router /iot/farm/{farm_id}/devices [get]
func (h *DeviceHandler) GetFarmDevices(c *gin.Context) {
	farmID, ok := pathID(c, "farm_id")
	if !ok {
		return
	}

	var q model.FarmDevicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	devices, err := h.deviceService.ListForFarm(c.Request.Context(), callerID(c), farmID, q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, devices)
}
