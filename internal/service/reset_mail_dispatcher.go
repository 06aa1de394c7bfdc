package service

import (
	"context"
	"time"

	"github.com/cortexa-affect/internal/logger"
	"github.com/cortexa-affect/internal/queue"
)

// PasswordResetMail 找回密码邮件内容
type PasswordResetMail struct {
	Email            string
	Code             string
	ExpiresInMinutes int
	ExpiresAt        time.Time
}

// ResetMailDispatcher 找回密码邮件投递
// 调用方只记录返回的错误，投递失败不影响已写入的挑战记录
type ResetMailDispatcher interface {
	DispatchPasswordResetCode(ctx context.Context, mail PasswordResetMail) error
}

// DirectResetMailDispatcher 在请求内同步发信
type DirectResetMailDispatcher struct {
	emailService *EmailService
}

// NewDirectResetMailDispatcher 创建同步投递器
func NewDirectResetMailDispatcher(emailService *EmailService) *DirectResetMailDispatcher {
	return &DirectResetMailDispatcher{emailService: emailService}
}

// DispatchPasswordResetCode 直接调用邮件服务发送
func (d *DirectResetMailDispatcher) DispatchPasswordResetCode(ctx context.Context, mail PasswordResetMail) error {
	if d == nil || d.emailService == nil {
		return ErrEmailServiceNotConfigured
	}
	return d.emailService.SendPasswordResetCode(ctx, mail.Email, mail.Code, mail.ExpiresInMinutes)
}

// QueuedResetMailDispatcher 通过 asynq 异步发信，入队失败时回退为同步发送
type QueuedResetMailDispatcher struct {
	queueClient *queue.Client
	fallback    ResetMailDispatcher
}

// NewQueuedResetMailDispatcher 创建异步投递器
func NewQueuedResetMailDispatcher(queueClient *queue.Client, fallback ResetMailDispatcher) *QueuedResetMailDispatcher {
	return &QueuedResetMailDispatcher{queueClient: queueClient, fallback: fallback}
}

// DispatchPasswordResetCode 推送邮件任务
func (d *QueuedResetMailDispatcher) DispatchPasswordResetCode(ctx context.Context, mail PasswordResetMail) error {
	if d.queueClient.Enabled() {
		err := d.queueClient.EnqueuePasswordResetEmail(queue.PasswordResetEmailPayload{
			Email:            mail.Email,
			Code:             mail.Code,
			ExpiresInMinutes: mail.ExpiresInMinutes,
		}, mail.ExpiresAt)
		if err == nil {
			return nil
		}
		logger.Warnw("password_reset_mail_enqueue_failed",
			"email", mail.Email,
			"error", err,
		)
	}
	if d.fallback == nil {
		return ErrEmailServiceNotConfigured
	}
	return d.fallback.DispatchPasswordResetCode(ctx, mail)
}

// NewResetMailDispatcher 按队列开关选择投递方式
func NewResetMailDispatcher(queueClient *queue.Client, emailService *EmailService) ResetMailDispatcher {
	direct := NewDirectResetMailDispatcher(emailService)
	if queueClient.Enabled() {
		return NewQueuedResetMailDispatcher(queueClient, direct)
	}
	return direct
}
