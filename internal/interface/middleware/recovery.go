package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/pkg/response"
)

// Recovery turns a panic into a 500 error body and logs it.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"path":       c.Request.URL.Path,
				"panic":      fmt.Sprint(recovered),
			}).Error("panic recovered")
		}
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	})
}
