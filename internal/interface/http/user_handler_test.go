package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/oksasatya/go-service-layer/internal/application"
	"github.com/oksasatya/go-service-layer/internal/domain/entity"
	"github.com/oksasatya/go-service-layer/internal/infrastructure/memory"
	"github.com/oksasatya/go-service-layer/pkg/validation"
)

type recordingNotifier struct {
	mu          sync.Mutex
	welcomed    []string
	deactivated []string
}

func (n *recordingNotifier) SendWelcome(_ context.Context, u *entity.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, u.Email)
}

func (n *recordingNotifier) SendDeactivation(_ context.Context, u *entity.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deactivated = append(n.deactivated, u.Email)
}

type searcherFunc func(ctx context.Context, q string, size int) ([]*entity.User, error)

func (f searcherFunc) Search(ctx context.Context, q string, size int) ([]*entity.User, error) {
	return f(ctx, q, size)
}

type env struct {
	engine   *gin.Engine
	repo     *memory.UserRepository
	notifier *recordingNotifier
}

func setup(t *testing.T, search UserSearcher) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger, _ := test.NewNullLogger()
	repo := memory.NewUserRepository()
	notifier := &recordingNotifier{}
	h := NewUserHandler(userapp.NewService(repo, notifier, logger), search, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/users", h.CreateUser)
	api.GET("/users/active", h.ListActive)
	api.GET("/users/search", h.SearchUsers)
	api.GET("/users/:id", h.GetUser)
	api.PUT("/users/:id/name", h.UpdateName)
	api.DELETE("/users/:id", h.Deactivate)
	return &env{engine: r, repo: repo, notifier: notifier}
}

func (e *env) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (e *env) create(t *testing.T, name, email string) string {
	t.Helper()
	w, body := e.do(t, http.MethodPost, "/api/users", `{"name":"`+name+`","email":"`+email+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["id"].(string)
}

func TestCreateUser(t *testing.T) {
	e := setup(t, nil)

	w, body := e.do(t, http.MethodPost, "/api/users", `{"name":"John Doe","email":"john@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "john@example.com", body["email"])
	assert.Equal(t, "John Doe", body["name"])
	assert.Equal(t, true, body["active"])
	assert.NotEmpty(t, body["createdAt"])
	assert.Equal(t, []string{"john@example.com"}, e.notifier.welcomed)
}

func TestCreateUser_DotlessDomain(t *testing.T) {
	for _, email := range []string{"john@localhost", "a@b"} {
		t.Run(email, func(t *testing.T) {
			e := setup(t, nil)
			w, body := e.do(t, http.MethodPost, "/api/users", `{"name":"J","email":"`+email+`"}`)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			assert.Equal(t, email, body["email"])
			assert.Equal(t, []string{email}, e.notifier.welcomed)
		})
	}
}

func TestCreateUser_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
		wantMsg    string
	}{
		{"duplicate", `{"name":"Other","email":"john@example.com"}`, http.StatusConflict, "Conflict", "User with email john@example.com already exists"},
		{"blank name", `{"name":"  ","email":"jane@example.com"}`, http.StatusBadRequest, "Validation Failed", "Name is required"},
		{"missing fields", `{}`, http.StatusBadRequest, "Validation Failed", "Name is required, Email is required"},
		{"bad email shape", `{"name":"Jane","email":"invalid-email"}`, http.StatusBadRequest, "Validation Failed", "Email must be valid"},
		{"passes boundary, fails service rule", `{"name":"Jane","email":"a!b@example.com"}`, http.StatusBadRequest, "Bad Request", "Invalid email format: a!b@example.com"},
		{"malformed json", `{"name":`, http.StatusBadRequest, "Bad Request", "Malformed JSON request"},
		{"empty body", ``, http.StatusBadRequest, "Bad Request", "Malformed JSON request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t, nil)
			e.create(t, "John", "john@example.com")

			w, body := e.do(t, http.MethodPost, "/api/users", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.EqualValues(t, tt.wantStatus, body["status"])
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Equal(t, "/api/users", body["path"])
			assert.Len(t, e.notifier.welcomed, 1)
		})
	}
}

func TestGetUser(t *testing.T) {
	e := setup(t, nil)
	id := e.create(t, "John", "john@example.com")

	w, body := e.do(t, http.MethodGet, "/api/users/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["id"])

	w, body = e.do(t, http.MethodGet, "/api/users/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "User not found with id: nope", body["message"])
	assert.Equal(t, "/api/users/nope", body["path"])
}

func TestUpdateName(t *testing.T) {
	e := setup(t, nil)
	id := e.create(t, "John", "john@example.com")

	w, body := e.do(t, http.MethodPut, "/api/users/"+id+"/name", `{"name":"Johnny"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Johnny", body["name"])

	w, body = e.do(t, http.MethodPut, "/api/users/"+id+"/name", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name is required", body["message"])

	w, _ = e.do(t, http.MethodPut, "/api/users/nope/name", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(t, http.MethodDelete, "/api/users/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w, body = e.do(t, http.MethodPut, "/api/users/"+id+"/name", `{"name":"Again"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", body["error"])
	assert.Equal(t, "Cannot update inactive user", body["message"])

	stored, err := e.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", stored.Name)
}

func TestDeactivate(t *testing.T) {
	e := setup(t, nil)
	id := e.create(t, "John", "john@example.com")

	w, _ := e.do(t, http.MethodDelete, "/api/users/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, []string{"john@example.com"}, e.notifier.deactivated)

	// the record is kept, only flagged inactive
	w, body := e.do(t, http.MethodGet, "/api/users/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["active"])

	w, _ = e.do(t, http.MethodDelete, "/api/users/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListActive(t *testing.T) {
	e := setup(t, nil)

	w, _ := e.do(t, http.MethodGet, "/api/users/active", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	e.create(t, "A", "a@example.com")
	b := e.create(t, "B", "b@example.com")
	e.create(t, "C", "c@example.com")
	e.do(t, http.MethodDelete, "/api/users/"+b, "")

	w, _ = e.do(t, http.MethodGet, "/api/users/active", "")
	var users []userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	for _, u := range users {
		assert.True(t, u.Active)
		assert.NotEqual(t, b, u.ID)
	}
}

func TestSearchUsers(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		e := setup(t, nil)
		w, _ := e.do(t, http.MethodGet, "/api/users/search?q=ann", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("blank query", func(t *testing.T) {
		e := setup(t, nil)
		w, body := e.do(t, http.MethodGet, "/api/users/search?q=%20", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Query is required", body["message"])
	})

	t.Run("results", func(t *testing.T) {
		var gotQ string
		var gotSize int
		e := setup(t, searcherFunc(func(_ context.Context, q string, size int) ([]*entity.User, error) {
			gotQ, gotSize = q, size
			return []*entity.User{{ID: "1", Email: "ann@example.com", Name: "Ann", Active: true}}, nil
		}))
		w, _ := e.do(t, http.MethodGet, "/api/users/search?q=ann&size=5", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ann", gotQ)
		assert.Equal(t, 5, gotSize)

		var users []userResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
		require.Len(t, users, 1)
		assert.Equal(t, "Ann", users[0].Name)
	})

	t.Run("backend failure", func(t *testing.T) {
		e := setup(t, searcherFunc(func(context.Context, string, int) ([]*entity.User, error) {
			return nil, errors.New("connection refused")
		}))
		w, body := e.do(t, http.MethodGet, "/api/users/search?q=ann", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Bad Gateway", body["error"])
	})
}

type brokenService struct{ UserService }

func (brokenService) GetAllActiveUsers(context.Context) ([]*entity.User, error) {
	return nil, errors.New("find users: connection reset")
}

func TestRespondError_Unrecognised(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	h := NewUserHandler(brokenService{}, nil, logger)
	r := gin.New()
	r.GET("/api/users/active", h.ListActive)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/active", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Equal(t, "find users: connection reset", body["message"])
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "/api/users/active", hook.LastEntry().Data["path"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(userapp.ErrUserNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(userapp.ErrDuplicateEmail))
	assert.Equal(t, http.StatusBadRequest, statusFor(userapp.ErrInvalidEmail))
	assert.Equal(t, http.StatusForbidden, statusFor(userapp.ErrUserInactive))
	assert.Zero(t, statusFor(errors.New("other")))
}
