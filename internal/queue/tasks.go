package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/cortexa-affect/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPasswordResetEmail 找回密码验证码邮件任务
	TaskPasswordResetEmail = constants.TaskPasswordResetEmail
)

// PasswordResetEmailPayload 找回密码邮件任务载荷
// Code 为明文验证码，仅在队列中短暂停留，任务截止时间与验证码过期时间一致
type PasswordResetEmailPayload struct {
	Email            string `json:"email"`
	Code             string `json:"code"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// NewPasswordResetEmailTask 创建找回密码邮件任务
func NewPasswordResetEmailTask(payload PasswordResetEmailPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Code) == "" {
		return nil, errors.New("password reset email payload is incomplete")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPasswordResetEmail, body), nil
}

// ParsePasswordResetEmailPayload 解析找回密码邮件任务载荷
func ParsePasswordResetEmailPayload(task *asynq.Task) (PasswordResetEmailPayload, error) {
	var payload PasswordResetEmailPayload
	if task == nil {
		return payload, errors.New("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Code) == "" {
		return payload, errors.New("password reset email payload is incomplete")
	}
	return payload, nil
}
