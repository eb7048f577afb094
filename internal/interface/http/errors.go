package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-service-layer/internal/application"
	"github.com/oksasatya/go-service-layer/internal/interface/middleware"
	"github.com/oksasatya/go-service-layer/pkg/response"
	"github.com/oksasatya/go-service-layer/pkg/validation"
)

// statusFor maps a lifecycle error to its HTTP status; 0 means unrecognised.
func statusFor(err error) int {
	switch {
	case errors.Is(err, userapp.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, userapp.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, userapp.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, userapp.ErrUserInactive):
		return http.StatusForbidden
	default:
		return 0
	}
}

// respondError writes the error body for err. Unrecognised errors become 500 and are logged.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	if status := statusFor(err); status != 0 {
		response.Error(c, status, err.Error())
		return
	}
	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Error("request failed")
	}
	response.Error(c, http.StatusInternalServerError, err.Error())
}

// respondBindError writes the 400 body for a request that failed to bind.
func respondBindError(c *gin.Context, err error) {
	if validation.IsMalformed(err) {
		response.Error(c, http.StatusBadRequest, "Malformed JSON request")
		return
	}
	response.Validation(c, validation.Message(err))
}
