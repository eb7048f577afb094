package notification

import (
	"context"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
)

// Notifier sends user lifecycle messages. Calls are fire-and-forget:
// implementations handle their own failures.
type Notifier interface {
	SendWelcome(ctx context.Context, u *entity.User)
	SendDeactivation(ctx context.Context, u *entity.User)
}
