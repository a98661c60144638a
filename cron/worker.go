package cron

import (
	"context"
	"fmt"
	"time"

	"bhutantours/config"
	"bhutantours/services/notification"
	"bhutantours/services/tasks"
	"bhutantours/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection shared by the worker and the enqueuing client.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisMailQueueDB,
	}
}

// InitMailWorker runs the email worker in background and returns the server
// so the caller can shut it down.
func InitMailWorker(mailer notification.Mailer) *asynq.Server {
	logger := utils.GetLogger().Named("mail-worker")

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendEmail, handleEmailTask(mailer))

	go func() {
		logger.Info("Starting mail worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("Mail worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Mail worker giving up; queued emails will wait for the next start")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleEmailTask(mailer notification.Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		p, err := tasks.ParseEmailTask(task)
		if err != nil {
			logger.Error("Invalid email task payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if p.To == "" {
			logger.Warn("Email task without recipient", zap.String("kind", p.Kind))
			return nil
		}

		res, err := mailer.Send(ctx, tasks.EmailFromPayload(p))
		if err != nil {
			logger.Warn("Failed to send queued email", zap.String("kind", p.Kind), zap.Error(err))
			return err
		}
		logger.Info("Queued email sent",
			zap.String("kind", p.Kind), zap.String("provider", res.Provider), zap.String("messageID", res.MessageID))
		return nil
	}
}
