package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetChallenge 找回密码挑战记录，每个账号最多一条可用记录
type PasswordResetChallenge struct {
	ID                    string     `gorm:"primaryKey;size:36" json:"id"`              // 主键（UUID）
	UserID                uint       `gorm:"index;not null" json:"user_id"`             // 所属账号
	Email                 string     `gorm:"index;not null" json:"email"`               // 规范化邮箱
	CodeHash              string     `gorm:"not null" json:"-"`                         // 验证码 scrypt 哈希（hex）
	CodeSalt              string     `gorm:"not null" json:"-"`                         // 盐值（hex）
	ExpiresAt             time.Time  `gorm:"not null" json:"expires_at"`                // 验证码过期时间
	Attempts              int        `gorm:"not null;default:0" json:"attempts"`        // 连续失败次数
	LockedUntil           *time.Time `json:"locked_until"`                              // 锁定截止时间
	VerifiedAt            *time.Time `json:"verified_at"`                               // 验证通过时间
	SessionToken          *string    `gorm:"index;size:64" json:"-"`                    // 重置会话令牌
	SessionTokenExpiresAt *time.Time `json:"session_token_expires_at"`                  // 会话令牌过期时间
	ConsumedAt            *time.Time `json:"consumed_at"`                               // 已使用时间（终态）
	CreatedAt             time.Time  `gorm:"index;not null" json:"created_at"`          // 创建时间
}

// TableName 指定表名
func (PasswordResetChallenge) TableName() string {
	return "password_reset_challenges"
}

// BeforeCreate 生成主键
func (c *PasswordResetChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsConsumed 是否已完成改密
func (c *PasswordResetChallenge) IsConsumed() bool {
	return c != nil && c.ConsumedAt != nil
}

// IsLocked 在 now 时刻是否处于锁定期
func (c *PasswordResetChallenge) IsLocked(now time.Time) bool {
	return c != nil && c.LockedUntil != nil && c.LockedUntil.After(now)
}

// IsCodeExpired 验证码在 now 时刻是否已过期
func (c *PasswordResetChallenge) IsCodeExpired(now time.Time) bool {
	return c != nil && c.ExpiresAt.Before(now)
}

// IsVerifiedAt 在 now 时刻是否已完成验证
func (c *PasswordResetChallenge) IsVerifiedAt(now time.Time) bool {
	return c != nil && c.VerifiedAt != nil && !c.VerifiedAt.After(now)
}

// IsSessionExpired 会话令牌在 now 时刻是否已过期
func (c *PasswordResetChallenge) IsSessionExpired(now time.Time) bool {
	return c != nil && c.SessionTokenExpiresAt != nil && c.SessionTokenExpiresAt.Before(now)
}
