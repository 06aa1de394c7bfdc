package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cortexa-affect/internal/cache"
	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"

	"github.com/mojocn/base64Captcha"
)

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID      string `json:"captcha_id"`
	CaptchaCode    string `json:"captcha_code"`
	TurnstileToken string `json:"turnstile_token"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

type turnstileVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// CaptchaService 验证码服务
// 按场景开关决定是否需要验证码，支持图片验证码与 Turnstile
type CaptchaService struct {
	cfg        config.CaptchaConfig
	httpClient *http.Client

	mu         sync.Mutex
	imageStore base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	normalized := NormalizeCaptchaConfig(cfg)
	return &CaptchaService{
		cfg: normalized,
		httpClient: &http.Client{
			Timeout: time.Duration(normalized.Turnstile.TimeoutMS) * time.Millisecond,
		},
	}
}

// SetHTTPClient 替换 Turnstile 校验使用的 HTTP 客户端
func (s *CaptchaService) SetHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

// Config 当前生效配置
func (s *CaptchaService) Config() config.CaptchaConfig {
	if s == nil {
		return NormalizeCaptchaConfig(config.CaptchaConfig{})
	}
	return s.cfg
}

// SceneEnabled 判断场景是否需要验证码
func (s *CaptchaService) SceneEnabled(scene string) bool {
	if s == nil {
		return false
	}
	return s.cfg.Provider != constants.CaptchaProviderNone && IsCaptchaSceneEnabled(s.cfg, scene)
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if s == nil || s.cfg.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}
	image := s.cfg.Image
	driver := base64Captcha.NewDriverString(
		image.Height,
		image.Width,
		image.NoiseCount,
		image.ShowLine,
		image.Length,
		"0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.ensureImageStore())
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 按场景校验验证码
func (s *CaptchaService) Verify(ctx context.Context, scene string, payload CaptchaVerifyPayload, clientIP string) error {
	if !s.SceneEnabled(scene) {
		return nil
	}

	switch s.cfg.Provider {
	case constants.CaptchaProviderImage:
		captchaID := strings.TrimSpace(payload.CaptchaID)
		captchaCode := strings.TrimSpace(payload.CaptchaCode)
		if captchaID == "" || captchaCode == "" {
			return ErrCaptchaRequired
		}
		if !s.ensureImageStore().Verify(captchaID, captchaCode, true) {
			return ErrCaptchaInvalid
		}
		return nil
	case constants.CaptchaProviderTurnstile:
		token := strings.TrimSpace(payload.TurnstileToken)
		if token == "" {
			return ErrCaptchaRequired
		}
		return s.verifyTurnstile(ctx, token, strings.TrimSpace(clientIP))
	default:
		return ErrCaptchaConfigInvalid
	}
}

func (s *CaptchaService) verifyTurnstile(ctx context.Context, token, clientIP string) error {
	cfg := s.cfg.Turnstile
	if cfg.SecretKey == "" || cfg.VerifyURL == "" {
		return ErrCaptchaConfigInvalid
	}

	form := url.Values{}
	form.Set("secret", cfg.SecretKey)
	form.Set("response", token)
	if clientIP != "" {
		form.Set("remoteip", clientIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaVerifyFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaVerifyFailed, err)
	}
	defer resp.Body.Close()

	var result turnstileVerifyResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaVerifyFailed, decodeErr)
	}
	if !result.Success {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) ensureImageStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageStore != nil {
		return s.imageStore
	}
	ttl := time.Duration(s.cfg.Image.ExpireSeconds) * time.Second
	if client := cache.Client(); client != nil {
		s.imageStore = newRedisCaptchaStore(client, ttl)
	} else {
		s.imageStore = base64Captcha.NewMemoryStore(s.cfg.Image.MaxStore, ttl)
	}
	return s.imageStore
}
