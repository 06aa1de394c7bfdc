package queue

import (
	"testing"
	"time"

	"github.com/cortexa-affect/internal/config"
)

func TestPasswordResetEmailTaskRoundTrip(t *testing.T) {
	task, err := NewPasswordResetEmailTask(PasswordResetEmailPayload{
		Email:            "user@example.com",
		Code:             "012345",
		ExpiresInMinutes: 5,
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskPasswordResetEmail {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParsePasswordResetEmailPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.Code != "012345" || payload.Email != "user@example.com" || payload.ExpiresInMinutes != 5 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestNewPasswordResetEmailTaskRejectsIncompletePayload(t *testing.T) {
	if _, err := NewPasswordResetEmailTask(PasswordResetEmailPayload{Email: "user@example.com"}); err == nil {
		t.Fatalf("expected error for missing code")
	}
}

func TestPasswordResetEmailOptionsIncludesDeadline(t *testing.T) {
	if got := len(PasswordResetEmailOptions(time.Time{})); got != 3 {
		t.Fatalf("expected 3 options without deadline, got %d", got)
	}
	if got := len(PasswordResetEmailOptions(time.Now().Add(5 * time.Minute))); got != 4 {
		t.Fatalf("expected 4 options with deadline, got %d", got)
	}
}

func TestDisabledClientRefusesEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	err = client.EnqueuePasswordResetEmail(PasswordResetEmailPayload{Email: "a@b.c", Code: "123456"}, time.Time{})
	if err == nil {
		t.Fatalf("expected error when queue disabled")
	}
}
