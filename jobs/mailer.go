package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// ResetMailEnqueuer queues password reset mail through the job client so
// the HTTP request never waits on mail delivery.
type ResetMailEnqueuer struct {
	client *Client
	logger *slog.Logger
	from   string
}

// NewResetMailEnqueuer constructs a ResetMailEnqueuer.
func NewResetMailEnqueuer(client *Client, logger *slog.Logger, from string) *ResetMailEnqueuer {
	return &ResetMailEnqueuer{client: client, logger: logger, from: from}
}

// SendPasswordReset enqueues a reset email carrying the one-off token.
func (e *ResetMailEnqueuer) SendPasswordReset(ctx context.Context, email, token string) error {
	payload := SendEmailPayload{
		From:    e.from,
		To:      email,
		Subject: "Password reset requested",
		Body: fmt.Sprintf(
			"A password reset was requested for your account.\n\n"+
				"Reset token: %s\n\n"+
				"The token expires shortly. If you did not request this, ignore this message.",
			token),
	}
	info, err := e.client.EnqueueSendEmail(ctx, payload)
	if err != nil {
		return err
	}
	e.logger.Info("reset mail queued", slog.String("task_id", info.ID))
	return nil
}
