package service

import (
	"context"
	"strings"
	"time"

	"github.com/cortexa-affect/internal/cache"
	"github.com/cortexa-affect/internal/logger"

	"github.com/redis/go-redis/v9"
)

const captchaStoreTimeout = 500 * time.Millisecond

// redisCaptchaStore 基于 Redis 的图片验证码存储，多实例部署时共享答案
type redisCaptchaStore struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCaptchaStore(client *redis.Client, ttl time.Duration) *redisCaptchaStore {
	return &redisCaptchaStore{client: client, ttl: ttl}
}

func captchaStoreKey(id string) string {
	return cache.BuildKey("captcha:image:" + strings.TrimSpace(id))
}

// Set 写入答案
func (s *redisCaptchaStore) Set(id string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), captchaStoreTimeout)
	defer cancel()
	return s.client.Set(ctx, captchaStoreKey(id), value, s.ttl).Err()
}

// Get 读取答案，clear 为 true 时读取后删除
func (s *redisCaptchaStore) Get(id string, clear bool) string {
	ctx, cancel := context.WithTimeout(context.Background(), captchaStoreTimeout)
	defer cancel()
	key := captchaStoreKey(id)
	var (
		value string
		err   error
	)
	if clear {
		value, err = s.client.GetDel(ctx, key).Result()
	} else {
		value, err = s.client.Get(ctx, key).Result()
	}
	if err != nil {
		if err != redis.Nil {
			logger.Warnw("captcha_store_read_failed", "error", err)
		}
		return ""
	}
	return value
}

// Verify 校验答案（大小写不敏感）
func (s *redisCaptchaStore) Verify(id, answer string, clear bool) bool {
	stored := s.Get(id, clear)
	if stored == "" {
		return false
	}
	return strings.EqualFold(stored, strings.TrimSpace(answer))
}
