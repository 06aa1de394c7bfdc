package public

import (
	"errors"

	"github.com/cortexa-affect/internal/http/response"
	"github.com/cortexa-affect/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest     = "Invalid request"
	msgEmailRequired      = "Email is required"
	msgSomethingWrong     = "Something went wrong"
	msgVerifyFailed       = "Unable to verify code"
	msgResetFailed        = "Unable to reset password"
	msgCaptchaRequired    = "Captcha is required"
	msgCaptchaInvalid     = "Invalid captcha"
	msgCaptchaUnavailable = "Captcha unavailable"
	msgCaptchaFailed      = "Captcha verification failed"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target   error
	code     int
	message  string
	logCause bool // 对外只返回通用文案，原因记录在日志中
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMessage string) {
	var policyErr *service.PasswordPolicyError
	if errors.As(err, &policyErr) {
		respondError(c, response.CodeBadRequest, policyErr.Message, nil)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			// 5xx 规则仍需保留原始错误用于排查
			var cause error
			if rule.code >= response.CodeInternal || rule.logCause {
				cause = err
			}
			respondError(c, rule.code, rule.message, cause)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMessage, err)
}

var forgotPasswordErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, message: "Invalid email"},
	{target: service.ErrResetStartFailed, code: response.CodeInternal, message: "Password reset could not be started"},
}

var verifyResetCodeErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidRequest, code: response.CodeBadRequest, message: msgInvalidRequest},
	{target: service.ErrResetCodeInvalid, code: response.CodeBadRequest, message: "Invalid code"},
	{target: service.ErrResetCodeUsed, code: response.CodeBadRequest, message: "Code already used"},
	{target: service.ErrResetRateLimited, code: response.CodeTooManyRequests, message: "Too many attempts. Try again later."},
	{target: service.ErrResetCodeExpired, code: response.CodeBadRequest, message: "Code expired"},
	{target: service.ErrResetAttemptsExceeded, code: response.CodeTooManyRequests, message: "Too many invalid attempts. Try again later."},
}

var resetPasswordErrorRules = []mappedHandlerError{
	{target: service.ErrMissingResetData, code: response.CodeBadRequest, message: "Missing data"},
	{target: service.ErrResetSessionInvalid, code: response.CodeBadRequest, message: "Invalid or expired session"},
	{target: service.ErrResetSessionUsed, code: response.CodeBadRequest, message: "Reset session already used"},
	{target: service.ErrResetCodeNotVerified, code: response.CodeBadRequest, message: "Code not verified"},
	{target: service.ErrResetSessionExpired, code: response.CodeBadRequest, message: "Reset session expired"},
	{target: service.ErrAccountNotFound, code: response.CodeBadRequest, message: msgResetFailed, logCause: true},
}

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, message: msgCaptchaRequired},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, message: msgCaptchaInvalid},
	{target: service.ErrCaptchaConfigInvalid, code: response.CodeInternal, message: msgCaptchaUnavailable},
}

func respondForgotPasswordError(c *gin.Context, err error) {
	respondWithMappedError(c, err, forgotPasswordErrorRules, response.CodeInternal, msgSomethingWrong)
}

func respondVerifyResetCodeError(c *gin.Context, err error) {
	respondWithMappedError(c, err, verifyResetCodeErrorRules, response.CodeInternal, msgVerifyFailed)
}

func respondResetPasswordError(c *gin.Context, err error) {
	respondWithMappedError(c, err, resetPasswordErrorRules, response.CodeInternal, msgResetFailed)
}

func respondCaptchaError(c *gin.Context, err error) {
	respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, msgCaptchaFailed)
}
