package provider

import (
	"github.com/cortexa-affect/internal/cache"
	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/logger"
	"github.com/cortexa-affect/internal/models"
	"github.com/cortexa-affect/internal/queue"
	"github.com/cortexa-affect/internal/repository"
	"github.com/cortexa-affect/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	AccountRepo                repository.AccountRepository
	PasswordResetChallengeRepo repository.PasswordResetChallengeRepository

	// Services
	AccountDirectory     service.AccountDirectory
	EmailService         *service.EmailService
	ResetMailDispatcher  service.ResetMailDispatcher
	CaptchaService       *service.CaptchaService
	PasswordResetService *service.PasswordResetService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}
	return NewContainerWithDB(cfg, models.DB)
}

// NewContainerWithDB 使用指定数据库连接初始化容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) *Container {
	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AccountRepo = repository.NewAccountRepository(db)
	c.PasswordResetChallengeRepo = repository.NewPasswordResetChallengeRepository(db)
}

func (c *Container) initServices() {
	if err := service.ValidateCaptchaConfig(c.Config.Captcha); err != nil {
		logger.Warnw("provider_captcha_config_invalid", "error", err)
	}
	if err := service.ValidateEmailConfig(c.Config.Email); err != nil {
		logger.Warnw("provider_email_config_invalid", "error", err)
	}
	logger.Infow("provider_email_config", "email", service.MaskEmailConfig(c.Config.Email))
	c.AccountDirectory = service.NewLocalAccountDirectory(c.AccountRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.EmailService.SetRevealCode(c.Config.Server.Mode != "release")
	c.ResetMailDispatcher = service.NewResetMailDispatcher(c.QueueClient, c.EmailService)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.PasswordResetService = service.NewPasswordResetService(
		c.Config,
		c.PasswordResetChallengeRepo,
		c.AccountDirectory,
		c.ResetMailDispatcher,
	)
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
