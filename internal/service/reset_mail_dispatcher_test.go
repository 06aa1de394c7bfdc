package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/queue"
)

func TestNewResetMailDispatcherFallsBackToDirect(t *testing.T) {
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	dispatcher := NewResetMailDispatcher(queueClient, NewEmailService(nil))
	if _, ok := dispatcher.(*DirectResetMailDispatcher); !ok {
		t.Fatalf("expected direct dispatcher when queue disabled, got %T", dispatcher)
	}
	if err := dispatcher.DispatchPasswordResetCode(context.Background(), PasswordResetMail{
		Email:            "user@example.com",
		Code:             "123456",
		ExpiresInMinutes: 5,
	}); err != nil {
		t.Fatalf("dispatch via log provider failed: %v", err)
	}
}

func TestQueuedResetMailDispatcherUsesFallbackWhenQueueDisabled(t *testing.T) {
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	fallback := &capturedResetMailer{err: errors.New("boom")}
	dispatcher := NewQueuedResetMailDispatcher(queueClient, fallback)

	err = dispatcher.DispatchPasswordResetCode(context.Background(), PasswordResetMail{Email: "user@example.com", Code: "123456"})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected fallback error, got %v", err)
	}
	if len(fallback.mails) != 1 {
		t.Fatalf("expected fallback to receive the mail")
	}
}

func TestDirectResetMailDispatcherWithoutEmailService(t *testing.T) {
	dispatcher := NewDirectResetMailDispatcher(nil)
	err := dispatcher.DispatchPasswordResetCode(context.Background(), PasswordResetMail{Email: "user@example.com", Code: "123456"})
	if !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected ErrEmailServiceNotConfigured, got %v", err)
	}
}
