package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ValidationFailed is the error phrase used for request-shape violations.
const ValidationFailed = "Validation Failed"

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func NewErrorBody(ctx *gin.Context, status int, phrase, message string) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if phrase == "" {
		phrase = http.StatusText(status)
	}
	return ErrorBody{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     phrase,
		Message:   message,
		Path:      ctx.Request.URL.Path,
	}
}

// Error aborts the request with the error body, using the status reason phrase.
func Error(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, NewErrorBody(ctx, status, "", message))
}

// Validation aborts the request with a 400 "Validation Failed" body.
func Validation(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, NewErrorBody(ctx, http.StatusBadRequest, ValidationFailed, message))
}

// Success writes data as the response body.
func Success[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}
