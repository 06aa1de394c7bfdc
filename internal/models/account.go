package models

import (
	"time"

	"gorm.io/gorm"
)

// Account 账号表（身份提供方的本地实现）
type Account struct {
	ID                uint           `gorm:"primarykey" json:"id"`               // 主键
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`  // 规范化邮箱
	PasswordHash      string         `gorm:"not null" json:"-"`                  // bcrypt 哈希
	DisplayName       string         `gorm:"default:''" json:"display_name"`     // 昵称
	Status            string         `gorm:"default:'active'" json:"status"`     // 账号状态
	TokenVersion      uint64         `gorm:"not null;default:0" json:"-"`        // 登录 Token 版本
	PasswordChangedAt *time.Time     `json:"password_changed_at"`                // 最近一次改密时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`            // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`            // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}
