package main

import (
	"flag"
	"os"
	"strings"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"
	"github.com/cortexa-affect/internal/logger"
	"github.com/cortexa-affect/internal/models"
	"github.com/cortexa-affect/internal/repository"
	"github.com/cortexa-affect/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	var email, password, displayName string
	flag.StringVar(&email, "email", envOrDefault("CX_SEED_EMAIL", "demo@cortexa.app"), "演示账号邮箱")
	flag.StringVar(&password, "password", os.Getenv("CX_SEED_PASSWORD"), "演示账号密码")
	flag.StringVar(&displayName, "name", "Demo", "演示账号昵称")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	normalized, err := service.NormalizeEmail(email)
	if err != nil {
		stdLog.Fatalf("Invalid seed email %q: %v", email, err)
	}
	password = strings.TrimSpace(password)
	if password == "" {
		stdLog.Fatalf("Seed password is required (-password or CX_SEED_PASSWORD)")
	}
	if err := service.ValidatePassword(cfg.Security.PasswordPolicy, password); err != nil {
		stdLog.Fatalf("Seed password rejected: %v", err)
	}

	repo := repository.NewAccountRepository(models.DB)
	existing, err := repo.GetByEmail(normalized)
	if err != nil {
		stdLog.Fatalf("Failed to query account: %v", err)
	}
	if existing != nil {
		logger.Infow("seed_account_exists", "account_id", existing.ID, "email", normalized)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}
	account := &models.Account{
		Email:        normalized,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		Status:       constants.AccountStatusActive,
	}
	if err := repo.Create(account); err != nil {
		stdLog.Fatalf("Failed to create account: %v", err)
	}
	logger.Infow("seed_account_created", "account_id", account.ID, "email", normalized)
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
