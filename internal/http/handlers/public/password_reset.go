package public

import (
	"strings"

	"github.com/cortexa-affect/internal/constants"
	handlershared "github.com/cortexa-affect/internal/http/handlers/shared"
	"github.com/cortexa-affect/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ForgotPasswordRequest 发起找回密码请求
type ForgotPasswordRequest struct {
	Email          string                               `json:"email"`
	CaptchaPayload *handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// VerifyResetCodeRequest 校验验证码请求
type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	SessionToken string `json:"sessionToken"`
}

// ForgotPassword 发起找回密码
// 无论邮箱是否注册均返回成功
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidRequest, nil)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondError(c, response.CodeBadRequest, msgEmailRequired, nil)
		return
	}

	if h.CaptchaService != nil {
		payload := req.CaptchaPayload.ToServicePayload()
		if err := h.CaptchaService.Verify(c.Request.Context(), constants.CaptchaSceneForgotPassword, payload, c.ClientIP()); err != nil {
			respondCaptchaError(c, err)
			return
		}
	}

	if err := h.PasswordResetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondForgotPasswordError(c, err)
		return
	}
	response.OK(c, nil)
}

// VerifyResetCode 校验验证码并签发重置会话令牌
func (h *Handler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidRequest, nil)
		return
	}

	token, err := h.PasswordResetService.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondVerifyResetCodeError(c, err)
		return
	}
	response.OK(c, gin.H{"sessionToken": token})
}

// ResetPassword 使用会话令牌设置新密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.PasswordResetService.ResetPassword(c.Request.Context(), req.Email, req.Password, req.SessionToken); err != nil {
		respondResetPasswordError(c, err)
		return
	}
	response.OK(c, nil)
}
