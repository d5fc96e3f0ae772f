package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/farmiot/internal/middleware"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/service"
	"github.com/sirupsen/logrus"
)

// respondError maps service error kinds onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error"})
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	}
	c.JSON(status, model.ErrorResponse{Error: svcErr.Message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func callerID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.ContextUserID).(uuid.UUID)
}
