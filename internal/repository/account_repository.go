package repository

import (
	"errors"
	"time"

	"github.com/cortexa-affect/internal/models"

	"gorm.io/gorm"
)

// AccountRepository 账号数据访问接口
type AccountRepository interface {
	GetByEmail(email string) (*models.Account, error)
	GetByID(id uint) (*models.Account, error)
	Create(account *models.Account) error
	UpdatePasswordHash(id uint, passwordHash string, changedAt time.Time) (*models.Account, error)
}

// GormAccountRepository GORM 实现
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号仓库
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// GetByEmail 根据规范化邮箱获取账号
func (r *GormAccountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByID 根据 ID 获取账号
func (r *GormAccountRepository) GetByID(id uint) (*models.Account, error) {
	if id == 0 {
		return nil, nil
	}
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Create 创建账号
func (r *GormAccountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// UpdatePasswordHash 更新密码哈希并使已签发的登录 Token 失效
func (r *GormAccountRepository) UpdatePasswordHash(id uint, passwordHash string, changedAt time.Time) (*models.Account, error) {
	var updated models.Account
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"password_hash":       passwordHash,
				"password_changed_at": changedAt,
				"updated_at":          changedAt,
				"token_version":       gorm.Expr("token_version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
