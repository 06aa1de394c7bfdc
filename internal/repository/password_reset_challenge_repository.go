package repository

import (
	"errors"
	"time"

	"github.com/cortexa-affect/internal/models"

	"gorm.io/gorm"
)

// PasswordResetChallengeRepository 找回密码挑战数据访问接口
type PasswordResetChallengeRepository interface {
	Replace(challenge *models.PasswordResetChallenge) error
	GetLatestByEmail(email string) (*models.PasswordResetChallenge, error)
	GetLatestByEmailAndSessionToken(email, sessionToken string) (*models.PasswordResetChallenge, error)
	RecordFailedAttempt(id string, maxAttempts int, lockUntil time.Time) (*models.PasswordResetChallenge, error)
	MarkVerified(id string, verifiedAt time.Time, sessionToken string, sessionExpiresAt time.Time) (bool, error)
	MarkConsumed(id string, consumedAt time.Time) (bool, error)
	DeleteStale(before time.Time) (int64, error)
}

// GormPasswordResetChallengeRepository GORM 实现
type GormPasswordResetChallengeRepository struct {
	db *gorm.DB
}

// NewPasswordResetChallengeRepository 创建找回密码挑战仓库
func NewPasswordResetChallengeRepository(db *gorm.DB) *GormPasswordResetChallengeRepository {
	return &GormPasswordResetChallengeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPasswordResetChallengeRepository) WithTx(tx *gorm.DB) *GormPasswordResetChallengeRepository {
	if tx == nil {
		return r
	}
	return &GormPasswordResetChallengeRepository{db: tx}
}

// Replace 在同一事务内删除账号的全部旧挑战并写入新挑战
func (r *GormPasswordResetChallengeRepository) Replace(challenge *models.PasswordResetChallenge) error {
	if challenge == nil || challenge.UserID == 0 {
		return errors.New("challenge owner is required")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", challenge.UserID).
			Delete(&models.PasswordResetChallenge{}).Error; err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
}

// GetLatestByEmail 获取邮箱对应的最新挑战
func (r *GormPasswordResetChallengeRepository) GetLatestByEmail(email string) (*models.PasswordResetChallenge, error) {
	return r.first(r.db.Where("email = ?", email))
}

// GetLatestByEmailAndSessionToken 按邮箱与会话令牌精确匹配最新挑战
func (r *GormPasswordResetChallengeRepository) GetLatestByEmailAndSessionToken(email, sessionToken string) (*models.PasswordResetChallenge, error) {
	return r.first(r.db.Where("email = ? AND session_token = ?", email, sessionToken))
}

// RecordFailedAttempt 原子递增失败次数，达到上限时写入锁定时间，返回更新后的记录
// 递增与判定在同一条 UPDATE 中完成，并发验证不会丢失计数
func (r *GormPasswordResetChallengeRepository) RecordFailedAttempt(id string, maxAttempts int, lockUntil time.Time) (*models.PasswordResetChallenge, error) {
	var updated models.PasswordResetChallenge
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PasswordResetChallenge{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_until": gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE locked_until END", maxAttempts, lockUntil),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkVerified 写入验证结果并签发会话令牌，同时清零失败次数与锁定
func (r *GormPasswordResetChallengeRepository) MarkVerified(id string, verifiedAt time.Time, sessionToken string, sessionExpiresAt time.Time) (bool, error) {
	res := r.db.Model(&models.PasswordResetChallenge{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Updates(map[string]interface{}{
			"verified_at":              verifiedAt,
			"session_token":            sessionToken,
			"session_token_expires_at": sessionExpiresAt,
			"attempts":                 0,
			"locked_until":             nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkConsumed 标记挑战已使用，并将会话令牌过期时间收敛到 consumedAt
func (r *GormPasswordResetChallengeRepository) MarkConsumed(id string, consumedAt time.Time) (bool, error) {
	res := r.db.Model(&models.PasswordResetChallenge{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Updates(map[string]interface{}{
			"consumed_at":              consumedAt,
			"session_token_expires_at": consumedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteStale 删除 before 之前创建且验证码、会话令牌与锁定均已失效的挑战
func (r *GormPasswordResetChallengeRepository) DeleteStale(before time.Time) (int64, error) {
	res := r.db.
		Where("created_at < ? AND expires_at < ?", before, before).
		Where("session_token_expires_at IS NULL OR session_token_expires_at < ?", before).
		Where("locked_until IS NULL OR locked_until < ?", before).
		Delete(&models.PasswordResetChallenge{})
	return res.RowsAffected, res.Error
}

// CountByUserID 统计账号的挑战记录数
func (r *GormPasswordResetChallengeRepository) CountByUserID(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.PasswordResetChallenge{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (r *GormPasswordResetChallengeRepository) first(query *gorm.DB) (*models.PasswordResetChallenge, error) {
	var record models.PasswordResetChallenge
	if err := query.Order("created_at desc").Order("id desc").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
