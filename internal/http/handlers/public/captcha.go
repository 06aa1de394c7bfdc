package public

import (
	"errors"

	"github.com/cortexa-affect/internal/http/response"
	"github.com/cortexa-affect/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, msgCaptchaUnavailable, service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, response.CodeBadRequest, msgCaptchaUnavailable, nil)
		default:
			respondError(c, response.CodeInternal, "Unable to generate captcha", err)
		}
		return
	}

	response.OK(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// GetCaptchaConfig 获取前端可见的验证码配置
func (h *Handler) GetCaptchaConfig(c *gin.Context) {
	response.OK(c, gin.H{
		"captcha": service.PublicCaptchaSetting(h.CaptchaService.Config()),
	})
}
