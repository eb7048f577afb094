package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
)

// Uploader stores an object and returns where it ended up.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type ActiveUserLister interface {
	GetAllActiveUsers(ctx context.Context) ([]*entity.User, error)
}

type exportRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// ExportService writes the active users as newline-delimited JSON.
type ExportService struct {
	Users    ActiveUserLister
	Uploader Uploader
	Prefix   string
	Logger   *logrus.Logger
	now      func() time.Time
}

func NewExportService(users ActiveUserLister, uploader Uploader, prefix string, logger *logrus.Logger) *ExportService {
	return &ExportService{Users: users, Uploader: uploader, Prefix: prefix, Logger: logger, now: time.Now}
}

// ExportActiveUsers uploads one NDJSON object and returns its location and row count.
func (s *ExportService) ExportActiveUsers(ctx context.Context) (string, int, error) {
	users, err := s.Users.GetAllActiveUsers(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("list active users: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, users); err != nil {
		return "", 0, err
	}

	object := s.objectPath()
	loc, err := s.Uploader.Upload(ctx, object, "application/x-ndjson", &buf)
	if err != nil {
		return "", 0, fmt.Errorf("upload %s: %w", object, err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"object": loc, "users": len(users)}).Info("active users exported")
	}
	return loc, len(users), nil
}

func (s *ExportService) objectPath() string {
	name := "active-users-" + s.now().UTC().Format("20060102T150405Z") + ".ndjson"
	prefix := strings.Trim(s.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// WriteNDJSON writes one JSON object per user, one per line.
func WriteNDJSON(w io.Writer, users []*entity.User) error {
	enc := json.NewEncoder(w)
	for _, u := range users {
		rec := exportRecord{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt, Active: u.Active}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode user %s: %w", u.ID, err)
		}
	}
	return nil
}
