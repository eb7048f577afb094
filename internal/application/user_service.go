package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
	"github.com/oksasatya/go-service-layer/internal/domain/notification"
	repo "github.com/oksasatya/go-service-layer/internal/domain/repository"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// Service holds the user lifecycle rules: unique and well-formed emails at
// creation, name changes only while active, deactivation as a soft delete.
type Service struct {
	Repo     repo.UserRepository
	Notifier notification.Notifier
	Logger   *logrus.Logger

	now   func() time.Time
	newID func() string
}

func NewService(repo repo.UserRepository, notifier notification.Notifier, logger *logrus.Logger) *Service {
	return &Service{
		Repo:     repo,
		Notifier: notifier,
		Logger:   logger,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:    uuid.NewString,
	}
}

// CreateUser registers a new active user and sends the welcome notification.
// Uniqueness is checked before the email format.
func (s *Service) CreateUser(ctx context.Context, email, name string) (*entity.User, error) {
	exists, err := s.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, duplicateEmail(email)
	}
	if !isValidEmail(email) {
		return nil, invalidEmail(email)
	}

	u := &entity.User{
		ID:        s.newID(),
		Email:     email,
		Name:      name,
		CreatedAt: s.now(),
		Active:    true,
	}
	saved, err := s.Repo.Save(ctx, u)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, duplicateEmail(email)
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", saved.ID).Debug("user created")
	}

	s.Notifier.SendWelcome(ctx, saved)
	return saved, nil
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, userNotFound(id)
	}
	return u, nil
}

// UpdateUserName renames an active user. Inactive users are rejected without a write.
func (s *Service) UpdateUserName(ctx context.Context, id, newName string) (*entity.User, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, userInactive()
	}

	u.Name = newName
	saved, err := s.Repo.Save(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return saved, nil
}

// DeactivateUser marks the user inactive and sends the deactivation notification.
// An already inactive user is saved and notified again.
func (s *Service) DeactivateUser(ctx context.Context, id string) error {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	u.Active = false
	if _, err := s.Repo.Save(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Debug("user deactivated")
	}

	s.Notifier.SendDeactivation(ctx, u)
	return nil
}

// GetAllActiveUsers returns active users in store order. The result is never nil.
func (s *Service) GetAllActiveUsers(ctx context.Context) ([]*entity.User, error) {
	all, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*entity.User, 0, len(all))
	for _, u := range all {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

func isValidEmail(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}
