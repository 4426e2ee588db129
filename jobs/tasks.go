package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-cms/meridian-cms/internal/observability"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Mailer delivers a rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewSendEmailHandler returns the Asynq handler for TaskTypeSendEmail.
// A nil mailer logs the delivery instead of sending, which keeps local
// development working without an SMTP server.
func NewSendEmailHandler(logger *slog.Logger, mailer Mailer, metrics *observability.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			metrics.ObserveJob(TaskTypeSendEmail, "malformed")
			return asynq.SkipRetry
		}
		if mailer == nil {
			logger.Info("mail delivery skipped",
				slog.String("to", payload.To),
				slog.String("subject", payload.Subject))
			metrics.ObserveJob(TaskTypeSendEmail, "skipped")
			return nil
		}
		if err := mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			metrics.ObserveJob(TaskTypeSendEmail, "error")
			return err
		}
		metrics.ObserveJob(TaskTypeSendEmail, "ok")
		return nil
	}
}
