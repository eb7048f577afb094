package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/pkg/helpers"
	"github.com/oksasatya/go-service-layer/pkg/mailer"
	mailtpl "github.com/oksasatya/go-service-layer/pkg/mailer/templates"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Reject
	Requeue
)

var errEmptyJob = errors.New("job has no recipient")

type EmailWorker struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewEmailWorker(sender Sender, logger *logrus.Logger) *EmailWorker {
	return &EmailWorker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Handle decodes, renders and sends one queued EmailJob.
// Undecodable or unrenderable jobs and permanent send failures are rejected.
// Other send failures are requeued.
func (w *EmailWorker) Handle(ctx context.Context, body []byte) Outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email job")
		return Reject
	}
	if job.To == "" {
		w.Logger.WithError(errEmptyJob).Warn("bad email job")
		return Reject
	}

	helpers.EnsureRecipientAndEmail(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			w.Logger.WithError(err).WithField("template", job.Template).Error("render failed")
			return Reject
		}
		subject, text, html = s, t, h
		if subject == "" {
			subject = helpers.SubjectFor(job.Template)
		}
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		if mailer.IsPermanent(err) {
			w.Logger.WithError(err).WithField("to", job.To).Error("send rejected; dropping job")
			return Reject
		}
		w.Logger.WithError(err).WithField("to", job.To).Warn("send failed")
		return Requeue
	}
	w.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return Ack
}

// Run consumes deliveries until msgs is closed or ctx is done.
func (w *EmailWorker) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch w.Handle(ctx, msg.Body) {
			case Ack:
				_ = msg.Ack(false)
			case Requeue:
				_ = msg.Nack(false, true)
			default:
				_ = msg.Nack(false, false)
			}
		}
	}
}
