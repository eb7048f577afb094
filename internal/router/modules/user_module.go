package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-service-layer/internal/interface/http"
)

// UserModule wires the user lifecycle handlers:
// POST /users, GET /users/active, GET /users/search, GET /users/:id,
// PUT /users/:id/name, DELETE /users/:id.
// Routes are registered under the given RouterGroup (usually /api).
type UserModule struct {
	Handler *handlers.UserHandler
	Limiter gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, limiter gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Limiter: limiter}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	if m.Limiter != nil {
		users.Use(m.Limiter)
	}
	users.POST("", m.Handler.CreateUser)
	users.GET("/active", m.Handler.ListActive)
	users.GET("/search", m.Handler.SearchUsers)
	users.GET("/:id", m.Handler.GetUser)
	users.PUT("/:id/name", m.Handler.UpdateName)
	users.DELETE("/:id", m.Handler.Deactivate)
}
