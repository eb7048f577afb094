package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
	"github.com/oksasatya/go-service-layer/internal/domain/notification"
	"github.com/oksasatya/go-service-layer/pkg/mailer"
	mailtpl "github.com/oksasatya/go-service-layer/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier hands notifications to the email worker through RabbitMQ.
// Publish failures are logged; the caller never sees them.
type QueueNotifier struct {
	Pub    Publisher
	Brand  mailtpl.Brand
	Logger *logrus.Logger
	now    func() time.Time
}

func NewQueueNotifier(pub Publisher, brand mailtpl.Brand, logger *logrus.Logger) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Brand: brand, Logger: logger, now: time.Now}
}

func (n *QueueNotifier) SendWelcome(ctx context.Context, u *entity.User) {
	n.publish(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(n.Brand, u.Name, u.Email),
	})
}

func (n *QueueNotifier) SendDeactivation(ctx context.Context, u *entity.User) {
	n.publish(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Deactivation,
		Data:     mailtpl.NewDeactivationData(n.Brand, u.Name, u.Email, mailtpl.WithTime(n.now())),
	})
}

func (n *QueueNotifier) publish(ctx context.Context, job mailer.EmailJob) {
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := n.Pub.PublishJSON(c, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{
			"to":       job.To,
			"template": job.Template,
		}).Warn("failed to enqueue email")
	}
}

var _ notification.Notifier = (*QueueNotifier)(nil)
