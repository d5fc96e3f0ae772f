package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/farmiot/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		body   string
	}{
		{&service.Error{Kind: service.ErrNotFound, Message: "Device not found"}, http.StatusNotFound, `{"error":"Device not found"}`},
		{&service.Error{Kind: service.ErrForbidden, Message: "Access denied"}, http.StatusForbidden, `{"error":"Access denied"}`},
		{&service.Error{Kind: service.ErrConflict, Message: "dup"}, http.StatusBadRequest, `{"error":"dup"}`},
		{&service.Error{Kind: service.ErrValidation, Message: "bad"}, http.StatusBadRequest, `{"error":"bad"}`},
		{fmt.Errorf("wrapped: %w", &service.Error{Kind: service.ErrNotFound, Message: "gone"}), http.StatusNotFound, `{"error":"gone"}`},
		{errors.New("connection reset"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.JSONEq(t, tc.body, w.Body.String())
	}
}

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for raw, want := range map[string]bool{"7": true, "0": false, "-1": false, "x": false} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := pathID(c, "id")
		assert.Equal(t, want, ok, raw)
		if !want {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	}
}
