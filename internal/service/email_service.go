package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"
	"github.com/cortexa-affect/internal/logger"
)

const (
	defaultResendEndpoint = "https://api.resend.com/emails"
	defaultSMTPTimeout    = 10 * time.Second
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg        *config.EmailConfig
	httpClient *http.Client
	revealCode bool
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	timeout := 5000
	if cfg != nil && cfg.Resend.TimeoutMS > 0 {
		timeout = cfg.Resend.TimeoutMS
	}
	return &EmailService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Millisecond},
	}
}

// SetHTTPClient 替换 Resend 使用的 HTTP 客户端
func (s *EmailService) SetHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

// SetRevealCode 未配置发信通道时是否在 debug 日志中输出验证码，仅供本地开发
func (s *EmailService) SetRevealCode(reveal bool) {
	s.revealCode = reveal
}

// Provider 返回当前生效的发信通道
func (s *EmailService) Provider() string {
	if s.cfg == nil || !s.cfg.Enabled {
		return constants.EmailProviderLog
	}
	switch strings.ToLower(strings.TrimSpace(s.cfg.Provider)) {
	case constants.EmailProviderSMTP:
		return constants.EmailProviderSMTP
	case constants.EmailProviderResend:
		if strings.TrimSpace(s.cfg.Resend.APIKey) == "" {
			return constants.EmailProviderLog
		}
		return constants.EmailProviderResend
	default:
		return constants.EmailProviderLog
	}
}

// SendPasswordResetCode 发送找回密码验证码
func (s *EmailService) SendPasswordResetCode(ctx context.Context, toEmail, code string, expiresInMinutes int) error {
	subject, body := buildPasswordResetContent(code, expiresInMinutes)
	if s.Provider() == constants.EmailProviderLog {
		logger.Warnw("password_reset_email_no_provider",
			"email", toEmail,
			"expires_in_minutes", expiresInMinutes,
		)
		if s.revealCode {
			logger.Debugw("password_reset_email_code", "email", toEmail, "code", code)
		}
		return nil
	}
	return s.sendTextEmail(ctx, toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(ctx context.Context, toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}
	from := strings.TrimSpace(s.cfg.From)
	if from == "" {
		from = constants.ResetMailDefaultFromAddress
	}

	switch s.Provider() {
	case constants.EmailProviderResend:
		return s.sendViaResend(ctx, buildFromAddress(from, s.cfg.FromName), toEmail, subject, body)
	case constants.EmailProviderSMTP:
		return s.sendViaSMTP(ctx, from, toEmail, subject, body)
	default:
		return ErrEmailServiceNotConfigured
	}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (s *EmailService) sendViaResend(ctx context.Context, from, toEmail, subject, body string) error {
	endpoint := strings.TrimSpace(s.cfg.Resend.Endpoint)
	if endpoint == "" {
		endpoint = defaultResendEndpoint
	}
	payload, err := json.Marshal(resendEmailRequest{
		From:    from,
		To:      []string{toEmail},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(s.cfg.Resend.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: status %d: %s", ErrEmailProviderRejected, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func (s *EmailService) sendViaSMTP(ctx context.Context, from, toEmail, subject, body string) error {
	smtpCfg := s.cfg.SMTP
	if smtpCfg.Host == "" || smtpCfg.Port == 0 {
		return ErrEmailServiceNotConfigured
	}
	msg := buildEmailMessage(buildFromAddress(from, s.cfg.FromName), toEmail, subject, body)

	addr := net.JoinHostPort(smtpCfg.Host, fmt.Sprintf("%d", smtpCfg.Port))
	var auth smtp.Auth
	if smtpCfg.Username != "" || smtpCfg.Password != "" {
		auth = smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)
	}
	timeout := defaultSMTPTimeout
	if smtpCfg.TimeoutMS > 0 {
		timeout = time.Duration(smtpCfg.TimeoutMS) * time.Millisecond
	}

	client, release, err := dialSMTP(ctx, addr, smtpCfg.Host, smtpCfg.UseSSL, timeout)
	if err != nil {
		return normalizeEmailSendError(err)
	}
	defer release()

	if smtpCfg.UseTLS && !smtpCfg.UseSSL {
		if err := client.StartTLS(&tls.Config{ServerName: smtpCfg.Host}); err != nil {
			return err
		}
	}
	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return normalizeEmailSendError(sendSMTPData(client, from, []string{toEmail}, []byte(msg)))
}

// dialSMTP 建立 SMTP 连接，整个会话受 timeout 与 ctx 截止时间约束，ctx 取消时关闭连接
func dialSMTP(ctx context.Context, addr, host string, useSSL bool, timeout time.Duration) (*smtp.Client, func(), error) {
	dialer := &net.Dialer{Timeout: timeout}
	var (
		conn net.Conn
		err  error
	)
	if useSSL {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, err
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		stop()
		_ = conn.Close()
		return nil, nil, err
	}
	return client, func() {
		stop()
		_ = client.Close()
	}, nil
}

func buildPasswordResetContent(code string, expiresInMinutes int) (string, string) {
	if expiresInMinutes <= 0 {
		expiresInMinutes = constants.ResetCodeExpireMinutes
	}
	body := fmt.Sprintf(
		"Your Cortexa Affect password reset code is %s. It expires in %d minutes. If you did not request this, please ignore the message.",
		code,
		expiresInMinutes,
	)
	return constants.ResetMailSubject, body
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func authenticateSMTP(client *smtp.Client, auth smtp.Auth) error {
	if auth == nil {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); ok {
		return client.Auth(auth)
	}
	return nil
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
