package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/provider"
	"github.com/cortexa-affect/internal/queue"
	"github.com/cortexa-affect/internal/service"

	"github.com/hibiken/asynq"
)

func newTestConsumer(emailCfg *config.EmailConfig) *Consumer {
	return NewConsumer(&provider.Container{
		Config:       config.Default(),
		EmailService: service.NewEmailService(emailCfg),
	})
}

func TestHandlePasswordResetEmailSendsViaLogProvider(t *testing.T) {
	consumer := newTestConsumer(&config.EmailConfig{Enabled: false})
	task, err := queue.NewPasswordResetEmailTask(queue.PasswordResetEmailPayload{
		Email:            "user@example.com",
		Code:             "123456",
		ExpiresInMinutes: 5,
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handlePasswordResetEmail(context.Background(), task); err != nil {
		t.Fatalf("expected task to succeed, got %v", err)
	}
}

func TestHandlePasswordResetEmailSkipsRetryOnBadPayload(t *testing.T) {
	consumer := newTestConsumer(nil)
	task := asynq.NewTask(queue.TaskPasswordResetEmail, []byte(`{"email":""}`))
	err := consumer.handlePasswordResetEmail(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandlePasswordResetEmailSkipsRetryOnInvalidRecipient(t *testing.T) {
	consumer := newTestConsumer(&config.EmailConfig{
		Enabled:  true,
		Provider: "smtp",
		SMTP:     config.SMTPConfig{Host: "127.0.0.1", Port: 25},
	})
	task := asynq.NewTask(queue.TaskPasswordResetEmail, []byte(`{"email":"not-an-email","code":"123456","expires_in_minutes":5}`))
	err := consumer.handlePasswordResetEmail(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestNewServiceRequiresEnabledQueue(t *testing.T) {
	if _, err := NewService(&config.QueueConfig{Enabled: false}, newTestConsumer(nil)); err == nil {
		t.Fatalf("expected error for disabled queue")
	}
}

func TestRegisterHandlesNilConsumer(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
}

func TestPurgeStaleChallengesWithoutResetService(t *testing.T) {
	consumer := newTestConsumer(nil)
	if deleted := consumer.purgeStaleChallenges(); deleted != 0 {
		t.Fatalf("expected no purge without reset service, got %d", deleted)
	}
	var nilConsumer *Consumer
	if deleted := nilConsumer.purgeStaleChallenges(); deleted != 0 {
		t.Fatalf("expected no purge for nil consumer, got %d", deleted)
	}
}
