package tasks

import (
	"encoding/json"
	"time"

	"bhutantours/models"

	"github.com/hibiken/asynq"
)

const TypeSendEmail = "email:send"

// NewEmailTask wraps a mail payload for the background worker.
func NewEmailTask(payload models.MailPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendEmail, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
		asynq.Queue("default"),
	}
	return task, opts, nil
}

// ParseEmailTask decodes a payload produced by NewEmailTask.
func ParseEmailTask(task *asynq.Task) (models.MailPayload, error) {
	var p models.MailPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
