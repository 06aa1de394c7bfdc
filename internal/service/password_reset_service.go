package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"
	"github.com/cortexa-affect/internal/logger"
	"github.com/cortexa-affect/internal/models"
	"github.com/cortexa-affect/internal/repository"
)

// PasswordResetService 找回密码三段式流程：发码、验码、改密
type PasswordResetService struct {
	cfg           config.PasswordResetConfig
	policy        config.PasswordPolicyConfig
	challengeRepo repository.PasswordResetChallengeRepository
	accounts      AccountDirectory
	mailer        ResetMailDispatcher
	clock         func() time.Time
}

// NewPasswordResetService 创建找回密码服务
func NewPasswordResetService(
	cfg *config.Config,
	challengeRepo repository.PasswordResetChallengeRepository,
	accounts AccountDirectory,
	mailer ResetMailDispatcher,
) *PasswordResetService {
	s := &PasswordResetService{
		challengeRepo: challengeRepo,
		accounts:      accounts,
		mailer:        mailer,
		policy:        EffectivePasswordPolicy(config.PasswordPolicyConfig{}),
		clock:         time.Now,
	}
	if cfg != nil {
		s.cfg = cfg.PasswordReset
		s.policy = EffectivePasswordPolicy(cfg.Security.PasswordPolicy)
	}
	return s
}

// WithClock 注入时钟
func (s *PasswordResetService) WithClock(clock func() time.Time) *PasswordResetService {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// PasswordPolicy 当前生效的密码策略
func (s *PasswordResetService) PasswordPolicy() config.PasswordPolicyConfig {
	return s.policy
}

// RequestReset 发起找回密码
// 账号不存在或已停用时同样返回 nil，调用方无法借此探测邮箱是否注册
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	account, err := s.accounts.FindAccountByEmail(ctx, normalized)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResetUnavailable, err)
	}
	if account == nil || account.Status == constants.AccountStatusDisabled {
		return nil
	}

	generated, err := GenerateResetCode()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResetUnavailable, err)
	}

	now := s.clock()
	codeMinutes := resolveCodeExpireMinutes(s.cfg)
	sessionExpiresAt := now.Add(time.Duration(resolveSessionExpireMinutes(s.cfg)) * time.Minute)
	challenge := &models.PasswordResetChallenge{
		UserID:                account.ID,
		Email:                 normalized,
		CodeHash:              generated.Hash,
		CodeSalt:              generated.Salt,
		ExpiresAt:             now.Add(time.Duration(codeMinutes) * time.Minute),
		Attempts:              0,
		SessionTokenExpiresAt: &sessionExpiresAt,
		CreatedAt:             now,
	}
	if err := s.challengeRepo.Replace(challenge); err != nil {
		return fmt.Errorf("%w: %w", ErrResetStartFailed, err)
	}

	if s.mailer != nil {
		if err := s.mailer.DispatchPasswordResetCode(ctx, PasswordResetMail{
			Email:            normalized,
			Code:             generated.Code,
			ExpiresInMinutes: codeMinutes,
			ExpiresAt:        challenge.ExpiresAt,
		}); err != nil {
			logger.Warnw("password_reset_mail_dispatch_failed",
				"account_id", account.ID,
				"error", err,
			)
		}
	}
	return nil
}

// VerifyCode 校验验证码，成功时签发一次性会话令牌
// 锁定判断先于哈希比较；已验证但未改密的挑战可再次验证，新令牌覆盖旧令牌
func (s *PasswordResetService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	trimmedCode := strings.TrimSpace(code)
	if normalized == "" || !IsResetCodeFormat(trimmedCode) {
		return "", ErrInvalidRequest
	}

	challenge, err := s.challengeRepo.GetLatestByEmail(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	if challenge == nil {
		return "", ErrResetCodeInvalid
	}

	now := s.clock()
	if challenge.IsConsumed() {
		return "", ErrResetCodeUsed
	}
	if challenge.IsLocked(now) {
		return "", ErrResetRateLimited
	}
	if challenge.IsCodeExpired(now) {
		return "", ErrResetCodeExpired
	}

	matched, err := ResetCodeMatches(trimmedCode, challenge.CodeSalt, challenge.CodeHash)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	if !matched {
		return "", s.recordFailedAttempt(challenge, now)
	}

	token, err := NewSessionToken()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	sessionExpiresAt := now.Add(time.Duration(resolveSessionExpireMinutes(s.cfg)) * time.Minute)
	updated, err := s.challengeRepo.MarkVerified(challenge.ID, now, token, sessionExpiresAt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	if !updated {
		// 并发改密已消费该挑战
		return "", ErrResetCodeUsed
	}
	return token, nil
}

func (s *PasswordResetService) recordFailedAttempt(challenge *models.PasswordResetChallenge, now time.Time) error {
	maxAttempts := resolveResetMaxAttempts(s.cfg)
	lockUntil := now.Add(time.Duration(resolveLockMinutes(s.cfg)) * time.Minute)
	updated, err := s.challengeRepo.RecordFailedAttempt(challenge.ID, maxAttempts, lockUntil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
	if updated.Attempts >= maxAttempts && updated.IsLocked(now) {
		logger.Warnw("password_reset_challenge_locked",
			"challenge_id", updated.ID,
			"account_id", updated.UserID,
			"attempts", updated.Attempts,
		)
		return ErrResetAttemptsExceeded
	}
	return ErrResetCodeInvalid
}

// ResetPassword 使用会话令牌完成改密
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, password, sessionToken string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	trimmedPassword := strings.TrimSpace(password)
	trimmedToken := strings.TrimSpace(sessionToken)
	if normalized == "" || trimmedPassword == "" || trimmedToken == "" {
		return ErrMissingResetData
	}
	if err := ValidatePassword(s.policy, trimmedPassword); err != nil {
		return err
	}

	challenge, err := s.challengeRepo.GetLatestByEmailAndSessionToken(normalized, trimmedToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResetFailed, err)
	}
	if challenge == nil {
		return ErrResetSessionInvalid
	}

	now := s.clock()
	if challenge.IsConsumed() {
		return ErrResetSessionUsed
	}
	if !challenge.IsVerifiedAt(now) {
		return ErrResetCodeNotVerified
	}
	if challenge.IsSessionExpired(now) {
		return ErrResetSessionExpired
	}

	account, err := s.accounts.FindAccountByEmail(ctx, normalized)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResetFailed, err)
	}
	if account == nil || account.Status == constants.AccountStatusDisabled {
		return ErrAccountNotFound
	}

	if err := s.accounts.UpdateAccountPassword(ctx, account.ID, trimmedPassword); err != nil {
		return fmt.Errorf("%w: %w", ErrResetFailed, err)
	}

	consumed, err := s.challengeRepo.MarkConsumed(challenge.ID, now)
	if err != nil {
		logger.Errorw("password_reset_mark_consumed_failed",
			"challenge_id", challenge.ID,
			"account_id", account.ID,
			"error", err,
		)
		return nil
	}
	if !consumed {
		logger.Warnw("password_reset_challenge_already_consumed",
			"challenge_id", challenge.ID,
			"account_id", account.ID,
		)
	}
	return nil
}

// PurgeStaleChallenges 清理超过保留期且已完全失效的挑战记录
func (s *PasswordResetService) PurgeStaleChallenges() (int64, error) {
	retention := time.Duration(resolvePurgeRetentionHours(s.cfg)) * time.Hour
	return s.challengeRepo.DeleteStale(s.clock().Add(-retention))
}

// PurgeInterval 清理周期，0 表示不清理
func (s *PasswordResetService) PurgeInterval() time.Duration {
	if s == nil || s.cfg.PurgeIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(s.cfg.PurgeIntervalMinutes) * time.Minute
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func resolveCodeExpireMinutes(cfg config.PasswordResetConfig) int {
	if cfg.CodeExpireMinutes <= 0 {
		return constants.ResetCodeExpireMinutes
	}
	return cfg.CodeExpireMinutes
}

func resolveSessionExpireMinutes(cfg config.PasswordResetConfig) int {
	if cfg.SessionExpireMinutes <= 0 {
		return constants.ResetSessionExpireMinutes
	}
	return cfg.SessionExpireMinutes
}

func resolveResetMaxAttempts(cfg config.PasswordResetConfig) int {
	if cfg.MaxAttempts <= 0 {
		return constants.ResetMaxAttempts
	}
	return cfg.MaxAttempts
}

func resolveLockMinutes(cfg config.PasswordResetConfig) int {
	if cfg.LockMinutes <= 0 {
		return constants.ResetLockMinutes
	}
	return cfg.LockMinutes
}

func resolvePurgeRetentionHours(cfg config.PasswordResetConfig) int {
	if cfg.PurgeRetentionHours <= 0 {
		return constants.ResetPurgeRetentionHours
	}
	return cfg.PurgeRetentionHours
}
