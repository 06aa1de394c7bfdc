package service

import (
	"errors"
	"testing"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"
)

func TestNormalizeEmailConfigDefaults(t *testing.T) {
	cfg := NormalizeEmailConfig(config.EmailConfig{
		Provider: "  RESEND ",
		SMTP:     config.SMTPConfig{Port: 70000},
	})
	if cfg.Provider != constants.EmailProviderResend {
		t.Fatalf("provider want resend got %s", cfg.Provider)
	}
	if cfg.SMTP.Port != 587 {
		t.Fatalf("smtp port want 587 got %d", cfg.SMTP.Port)
	}
	if cfg.Resend.Endpoint != defaultResendEndpoint || cfg.Resend.TimeoutMS != 5000 {
		t.Fatalf("resend defaults not applied: %+v", cfg.Resend)
	}
}

func TestValidateEmailConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.EmailConfig
		wantErr bool
	}{
		{name: "disabled", cfg: config.EmailConfig{Enabled: false, Provider: "smtp"}},
		{name: "tls and ssl", cfg: config.EmailConfig{SMTP: config.SMTPConfig{UseTLS: true, UseSSL: true}}, wantErr: true},
		{name: "smtp without host", cfg: config.EmailConfig{Enabled: true, Provider: "smtp"}, wantErr: true},
		{name: "smtp ok", cfg: config.EmailConfig{Enabled: true, Provider: "smtp", From: "security@cortexa.app", SMTP: config.SMTPConfig{Host: "smtp.cortexa.app"}}},
		{name: "resend without key", cfg: config.EmailConfig{Enabled: true, Provider: "resend", From: "security@cortexa.app"}, wantErr: true},
		{name: "resend ok", cfg: config.EmailConfig{Enabled: true, Provider: "resend", From: "security@cortexa.app", Resend: config.ResendConfig{APIKey: "re_123"}}},
		{name: "bad from", cfg: config.EmailConfig{Enabled: true, Provider: "log", From: "not an address"}, wantErr: true},
		{name: "unknown provider", cfg: config.EmailConfig{Enabled: true, Provider: "carrier-pigeon"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEmailConfig(tc.cfg)
			if tc.wantErr {
				if !errors.Is(err, ErrEmailConfigInvalid) {
					t.Fatalf("want ErrEmailConfigInvalid got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMaskEmailConfigHidesSecrets(t *testing.T) {
	masked := MaskEmailConfig(config.EmailConfig{
		SMTP:   config.SMTPConfig{Password: "supersecret"},
		Resend: config.ResendConfig{APIKey: "abc"},
	})
	if masked["smtp_password"] != "su****et" {
		t.Fatalf("smtp password mask mismatch: %v", masked["smtp_password"])
	}
	if masked["resend_api_key"] != "****" {
		t.Fatalf("short key should be fully masked: %v", masked["resend_api_key"])
	}
}
