//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cortexa-affect/internal/constants"
	"github.com/cortexa-affect/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.PasswordResetChallenge{},
		&models.Account{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.MigrateSchema(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresConcurrentFailedAttemptsAreNotLost(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	account := models.Account{Email: "pg@b.com", PasswordHash: "hash", Status: constants.AccountStatusActive}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	repo := NewPasswordResetChallengeRepository(db)
	challenge := &models.PasswordResetChallenge{
		UserID:    account.ID,
		Email:     account.Email,
		CodeHash:  "hash",
		CodeSalt:  "salt",
		ExpiresAt: now.Add(5 * time.Minute),
		CreatedAt: now,
	}
	if err := repo.Replace(challenge); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.RecordFailedAttempt(challenge.ID, 5, now.Add(15*time.Minute)); err != nil {
				t.Errorf("record attempt failed: %v", err)
			}
		}()
	}
	wg.Wait()

	latest, err := repo.GetLatestByEmail(account.Email)
	if err != nil || latest == nil {
		t.Fatalf("reload challenge failed: %v", err)
	}
	if latest.Attempts != workers {
		t.Fatalf("attempts want %d got %d", workers, latest.Attempts)
	}
	if latest.LockedUntil == nil {
		t.Fatalf("challenge should be locked after exceeding max attempts")
	}
}
