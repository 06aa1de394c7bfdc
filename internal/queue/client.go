package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/cortexa-affect/internal/config"
	"github.com/cortexa-affect/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 高优先级队列名称
	CriticalQueue = constants.QueueCritical

	passwordResetEmailMaxRetry = 3
	passwordResetEmailTimeout  = 30 * time.Second
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueuePasswordResetEmail 推送找回密码验证码邮件任务
func (c *Client) EnqueuePasswordResetEmail(payload PasswordResetEmailPayload, deadline time.Time) error {
	if !c.Enabled() {
		return fmt.Errorf("queue is not enabled")
	}
	task, err := NewPasswordResetEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, PasswordResetEmailOptions(deadline)...)
	return err
}

// PasswordResetEmailOptions 找回密码邮件任务的投递参数
func PasswordResetEmailOptions(deadline time.Time) []asynq.Option {
	options := []asynq.Option{
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(passwordResetEmailMaxRetry),
		asynq.Timeout(passwordResetEmailTimeout),
	}
	if !deadline.IsZero() {
		options = append(options, asynq.Deadline(deadline))
	}
	return options
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1, CriticalQueue: 2}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
