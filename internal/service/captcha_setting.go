package service

import (
	"fmt"
	"strings"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"
)

const defaultTurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// NormalizeCaptchaConfig 归一化验证码配置
func NormalizeCaptchaConfig(cfg config.CaptchaConfig) config.CaptchaConfig {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case constants.CaptchaProviderImage, constants.CaptchaProviderTurnstile, constants.CaptchaProviderNone:
		cfg.Provider = provider
	default:
		cfg.Provider = constants.CaptchaProviderNone
	}

	if cfg.Image.Length < 4 || cfg.Image.Length > 8 {
		cfg.Image.Length = 5
	}
	if cfg.Image.Width < 100 {
		cfg.Image.Width = 240
	}
	if cfg.Image.Height < 40 {
		cfg.Image.Height = 80
	}
	if cfg.Image.NoiseCount < 0 {
		cfg.Image.NoiseCount = 2
	}
	if cfg.Image.ShowLine < 0 {
		cfg.Image.ShowLine = 2
	}
	if cfg.Image.ExpireSeconds < 30 || cfg.Image.ExpireSeconds > 3600 {
		cfg.Image.ExpireSeconds = 300
	}
	if cfg.Image.MaxStore < 100 {
		cfg.Image.MaxStore = 10240
	}

	cfg.Turnstile.SiteKey = strings.TrimSpace(cfg.Turnstile.SiteKey)
	cfg.Turnstile.SecretKey = strings.TrimSpace(cfg.Turnstile.SecretKey)
	cfg.Turnstile.VerifyURL = strings.TrimSpace(cfg.Turnstile.VerifyURL)
	if cfg.Turnstile.VerifyURL == "" {
		cfg.Turnstile.VerifyURL = defaultTurnstileVerifyURL
	}
	if cfg.Turnstile.TimeoutMS < 500 || cfg.Turnstile.TimeoutMS > 10000 {
		cfg.Turnstile.TimeoutMS = 2000
	}
	return cfg
}

// ValidateCaptchaConfig 启动时校验验证码配置
func ValidateCaptchaConfig(cfg config.CaptchaConfig) error {
	normalized := NormalizeCaptchaConfig(cfg)
	if normalized.Provider == constants.CaptchaProviderNone && normalized.Scenes.ForgotPassword {
		return fmt.Errorf("%w: a captcha provider is required when a scene is enabled", ErrCaptchaConfigInvalid)
	}
	if normalized.Provider == constants.CaptchaProviderTurnstile {
		if normalized.Turnstile.SiteKey == "" {
			return fmt.Errorf("%w: turnstile site key is empty", ErrCaptchaConfigInvalid)
		}
		if normalized.Turnstile.SecretKey == "" {
			return fmt.Errorf("%w: turnstile secret key is empty", ErrCaptchaConfigInvalid)
		}
	}
	return nil
}

// IsCaptchaSceneEnabled 判断指定场景是否开启
func IsCaptchaSceneEnabled(cfg config.CaptchaConfig, scene string) bool {
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneForgotPassword:
		return cfg.Scenes.ForgotPassword
	default:
		return false
	}
}

// PublicCaptchaSetting 返回可公开下发前端的验证码配置
func PublicCaptchaSetting(cfg config.CaptchaConfig) map[string]interface{} {
	normalized := NormalizeCaptchaConfig(cfg)
	public := map[string]interface{}{
		"provider": normalized.Provider,
		"scenes": map[string]interface{}{
			constants.CaptchaSceneForgotPassword: normalized.Scenes.ForgotPassword,
		},
	}
	if normalized.Provider == constants.CaptchaProviderTurnstile {
		public["turnstile"] = map[string]interface{}{
			"site_key": normalized.Turnstile.SiteKey,
		}
	}
	return public
}
