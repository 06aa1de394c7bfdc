package service

import (
	"context"
	"strings"
	"time"

	"github.com/cortexa-affect/internal/cache"
	"github.com/cortexa-affect/internal/logger"
	"github.com/cortexa-affect/internal/models"
	"github.com/cortexa-affect/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AccountDirectory 身份提供方：按邮箱查账号、更新账号密码
type AccountDirectory interface {
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAccountPassword(ctx context.Context, accountID uint, newPassword string) error
}

// LocalAccountDirectory 基于本地账号表的身份提供方
type LocalAccountDirectory struct {
	accountRepo repository.AccountRepository
	bcryptCost  int
	clock       func() time.Time
}

// NewLocalAccountDirectory 创建本地身份提供方
func NewLocalAccountDirectory(accountRepo repository.AccountRepository) *LocalAccountDirectory {
	return &LocalAccountDirectory{
		accountRepo: accountRepo,
		bcryptCost:  bcrypt.DefaultCost,
		clock:       time.Now,
	}
}

// WithBcryptCost 调整 bcrypt 成本（测试中使用 bcrypt.MinCost）
func (d *LocalAccountDirectory) WithBcryptCost(cost int) *LocalAccountDirectory {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		d.bcryptCost = cost
	}
	return d
}

// FindAccountByEmail 按规范化邮箱查找账号
func (d *LocalAccountDirectory) FindAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, nil
	}
	return d.accountRepo.GetByEmail(normalized)
}

// UpdateAccountPassword 写入新密码哈希并刷新鉴权快照
func (d *LocalAccountDirectory) UpdateAccountPassword(ctx context.Context, accountID uint, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), d.bcryptCost)
	if err != nil {
		return err
	}
	now := d.clock()
	account, err := d.accountRepo.UpdatePasswordHash(accountID, string(hashed), now)
	if err != nil {
		return err
	}
	if err := cache.SetAccountAuthState(ctx, cache.BuildAccountAuthState(account, now)); err != nil {
		logger.Warnw("account_auth_state_refresh_failed",
			"account_id", accountID,
			"error", err,
		)
	}
	return nil
}

// PasswordMatches 校验明文密码与 bcrypt 哈希
func PasswordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
