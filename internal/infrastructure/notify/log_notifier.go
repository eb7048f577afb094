// Package notify implements the user notification port.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
	"github.com/oksasatya/go-service-layer/internal/domain/notification"
)

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
	Logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, u *entity.User) {
	n.Logger.WithFields(logrus.Fields{
		"to":      u.Email,
		"name":    u.Name,
		"subject": "Welcome to our platform!",
	}).Infof("Hi %s, welcome aboard! Your account has been created.", u.Name)
}

func (n *LogNotifier) SendDeactivation(ctx context.Context, u *entity.User) {
	n.Logger.WithFields(logrus.Fields{
		"to":      u.Email,
		"name":    u.Name,
		"subject": "Account Deactivated",
	}).Infof("Hi %s, your account has been deactivated. Contact support to reactivate.", u.Name)
}

var _ notification.Notifier = (*LogNotifier)(nil)
