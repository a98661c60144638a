package tasks

import (
	"context"
	"fmt"
	"time"

	"bhutantours/models"
	"bhutantours/services/notification"
	"bhutantours/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// MailDispatcher hands off non-critical emails such as booking confirmations.
type MailDispatcher interface {
	Dispatch(ctx context.Context, payload models.MailPayload) error
}

// Enqueuer is the part of *asynq.Client the queue dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher enqueues emails for cron's mail worker.
type QueueDispatcher struct {
	Client Enqueuer
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, payload models.MailPayload) error {
	task, opts, err := NewEmailTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build email task: %w", err)
	}
	info, err := d.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}
	utils.GetLogger().Debug("Email queued", zap.String("taskID", info.ID), zap.String("kind", payload.Kind))
	return nil
}

// DirectDispatcher sends in a detached goroutine when no queue is configured.
type DirectDispatcher struct {
	Mailer  notification.Mailer
	Timeout time.Duration
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, payload models.MailPayload) error {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if _, err := d.Mailer.Send(sendCtx, EmailFromPayload(payload)); err != nil {
			utils.GetLogger().Warn("Failed to send email", zap.String("kind", payload.Kind), zap.Error(err))
		}
	}()
	return nil
}

// EmailFromPayload converts a queued payload back into a mailer email.
func EmailFromPayload(p models.MailPayload) notification.Email {
	return notification.Email{To: p.To, Subject: p.Subject, HTML: p.HTML, Text: p.Text}
}
