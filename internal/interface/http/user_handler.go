package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
	"github.com/oksasatya/go-service-layer/pkg/response"
)

// UserService is the lifecycle API the handlers drive.
type UserService interface {
	CreateUser(ctx context.Context, email, name string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	UpdateUserName(ctx context.Context, id, name string) (*entity.User, error)
	DeactivateUser(ctx context.Context, id string) error
	GetAllActiveUsers(ctx context.Context) ([]*entity.User, error)
}

// UserSearcher is the read side of the search index.
type UserSearcher interface {
	Search(ctx context.Context, q string, size int) ([]*entity.User, error)
}

type UserHandler struct {
	Svc    UserService
	Search UserSearcher // nil when search is disabled
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, search UserSearcher, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Search: search, Logger: logger}
}

type createUserRequest struct {
	Name  string `json:"name" binding:"notblank"`
	Email string `json:"email" binding:"notblank,mailbox"`
}

type updateNameRequest struct {
	Name string `json:"name" binding:"notblank"`
}

type searchQuery struct {
	Q    string `form:"q" json:"query" binding:"notblank"`
	Size int    `form:"size" json:"size" binding:"omitempty,min=1,max=100"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt, Active: u.Active}
}

func toUserResponses(users []*entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(u))
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.Svc.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u))
}

// UpdateName handles PUT /users/:id/name.
func (h *UserHandler) UpdateName(c *gin.Context) {
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	u, err := h.Svc.UpdateUserName(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u))
}

// Deactivate handles DELETE /users/:id.
func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.Svc.DeactivateUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListActive handles GET /users/active.
func (h *UserHandler) ListActive(c *gin.Context) {
	users, err := h.Svc.GetAllActiveUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponses(users))
}

// SearchUsers handles GET /users/search?q=&size=.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if h.Search == nil {
		response.Success(c, http.StatusOK, []userResponse{})
		return
	}
	users, err := h.Search.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("query", q.Q).Warn("user search failed")
		}
		response.Error(c, http.StatusBadGateway, "Search is unavailable")
		return
	}
	response.Success(c, http.StatusOK, toUserResponses(users))
}
