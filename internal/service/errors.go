package service

import "errors"

// 找回密码流程错误
var (
	ErrInvalidEmail          = errors.New("invalid email")
	ErrResetStartFailed      = errors.New("password reset could not be started")
	ErrResetUnavailable      = errors.New("password reset unavailable")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrVerifyUnavailable     = errors.New("unable to verify code")
	ErrResetCodeInvalid      = errors.New("reset code invalid")
	ErrResetCodeUsed         = errors.New("reset code already used")
	ErrResetRateLimited      = errors.New("reset code locked")
	ErrResetCodeExpired      = errors.New("reset code expired")
	ErrResetAttemptsExceeded = errors.New("reset code attempts exceeded")
	ErrMissingResetData      = errors.New("missing reset data")
	ErrWeakPassword          = errors.New("password does not satisfy policy")
	ErrResetSessionInvalid   = errors.New("reset session invalid")
	ErrResetSessionUsed      = errors.New("reset session already used")
	ErrResetCodeNotVerified  = errors.New("reset code not verified")
	ErrResetSessionExpired   = errors.New("reset session expired")
	ErrAccountNotFound       = errors.New("account not found")
	ErrResetFailed           = errors.New("unable to reset password")
)

// 邮件错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrEmailProviderRejected     = errors.New("email provider rejected request")
	ErrEmailConfigInvalid        = errors.New("email config invalid")
)

// 验证码错误
var (
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
	ErrCaptchaVerifyFailed  = errors.New("captcha verify failed")
)
