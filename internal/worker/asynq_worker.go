package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/cortexa-affect/internal/logger"
	"github.com/cortexa-affect/internal/provider"
	"github.com/cortexa-affect/internal/queue"
	"github.com/cortexa-affect/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPasswordResetEmail, c.handlePasswordResetEmail)
}

func (c *Consumer) handlePasswordResetEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_password_reset_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePasswordResetEmailPayload(task)
	if err != nil {
		logger.Warnw("worker_password_reset_email_invalid_payload", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if c.EmailService == nil {
		logger.Warnw("worker_password_reset_email_service_missing")
		return fmt.Errorf("%w: email service not configured", asynq.SkipRetry)
	}

	err = c.EmailService.SendPasswordResetCode(ctx, payload.Email, payload.Code, payload.ExpiresInMinutes)
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrInvalidEmail) || errors.Is(err, service.ErrEmailRecipientRejected) {
		logger.Warnw("worker_password_reset_email_rejected", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	logger.Warnw("worker_password_reset_email_send_failed", "error", err)
	return err
}

// purgeStaleChallenges 清理一轮过期挑战，返回删除条数
func (c *Consumer) purgeStaleChallenges() int64 {
	if c == nil || c.Container == nil || c.PasswordResetService == nil {
		return 0
	}
	deleted, err := c.PasswordResetService.PurgeStaleChallenges()
	if err != nil {
		logger.Warnw("worker_password_reset_purge_failed", "error", err)
		return 0
	}
	if deleted > 0 {
		logger.Infow("worker_password_reset_purged", "deleted", deleted)
	}
	return deleted
}
