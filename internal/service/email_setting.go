package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"
)

// NormalizeEmailConfig 归一化邮件配置并补齐默认值
func NormalizeEmailConfig(cfg config.EmailConfig) config.EmailConfig {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = constants.EmailProviderLog
	}
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.FromName = strings.TrimSpace(cfg.FromName)

	cfg.SMTP.Host = strings.TrimSpace(cfg.SMTP.Host)
	cfg.SMTP.Username = strings.TrimSpace(cfg.SMTP.Username)
	cfg.SMTP.Password = strings.TrimSpace(cfg.SMTP.Password)
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		cfg.SMTP.Port = 587
	}

	cfg.Resend.APIKey = strings.TrimSpace(cfg.Resend.APIKey)
	cfg.Resend.Endpoint = strings.TrimSpace(cfg.Resend.Endpoint)
	if cfg.Resend.Endpoint == "" {
		cfg.Resend.Endpoint = defaultResendEndpoint
	}
	if cfg.Resend.TimeoutMS <= 0 {
		cfg.Resend.TimeoutMS = 5000
	}
	return cfg
}

// ValidateEmailConfig 校验邮件配置，未启用时只检查通用字段
func ValidateEmailConfig(cfg config.EmailConfig) error {
	normalized := NormalizeEmailConfig(cfg)
	if normalized.SMTP.UseTLS && normalized.SMTP.UseSSL {
		return fmt.Errorf("%w: use_tls and use_ssl cannot both be enabled", ErrEmailConfigInvalid)
	}
	if !normalized.Enabled {
		return nil
	}
	if normalized.From != "" {
		if _, err := mail.ParseAddress(normalized.From); err != nil {
			return fmt.Errorf("%w: from address is invalid", ErrEmailConfigInvalid)
		}
	}

	switch normalized.Provider {
	case constants.EmailProviderLog:
		return nil
	case constants.EmailProviderSMTP:
		if normalized.SMTP.Host == "" {
			return fmt.Errorf("%w: smtp host is required", ErrEmailConfigInvalid)
		}
		return nil
	case constants.EmailProviderResend:
		if normalized.Resend.APIKey == "" {
			return fmt.Errorf("%w: resend api_key is required", ErrEmailConfigInvalid)
		}
		if normalized.From == "" {
			return fmt.Errorf("%w: from address is required for resend", ErrEmailConfigInvalid)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrEmailConfigInvalid, normalized.Provider)
	}
}

// MaskEmailConfig 输出可写入日志的邮件配置摘要
func MaskEmailConfig(cfg config.EmailConfig) map[string]interface{} {
	normalized := NormalizeEmailConfig(cfg)
	return map[string]interface{}{
		"enabled":        normalized.Enabled,
		"provider":       normalized.Provider,
		"from":           normalized.From,
		"smtp_host":      normalized.SMTP.Host,
		"smtp_port":      normalized.SMTP.Port,
		"smtp_username":  normalized.SMTP.Username,
		"smtp_password":  maskSecret(normalized.SMTP.Password),
		"resend_api_key": maskSecret(normalized.Resend.APIKey),
	}
}

func maskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****" + secret[len(secret)-2:]
}
