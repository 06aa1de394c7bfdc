package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	handlershared "github.com/cortexa-affect/internal/http/handlers/shared"
	"github.com/cortexa-affect/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRateLimitMessage  = "Too many requests. Try again in %d seconds."
	rateLimitUnavailableText = "Rate limit unavailable"
	maxRateLimitBodyBytes    = 64 << 10
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
// Message 可包含一个 %d，用于填充剩余等待秒数
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件，未配置 Redis 时直接放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
		if err != nil {
			abortRateLimitUnavailable(c, err)
			return
		}
		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			abortRateLimitUnavailable(c, fmt.Errorf("unexpected rate limit result: %v", result))
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			abortRateLimitUnavailable(c, fmt.Errorf("unexpected rate limit counter: %v", values[0]))
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := resolveWaitSeconds(ttlSeconds, rule.WindowSeconds)
			c.Header("Retry-After", strconv.Itoa(waitSeconds))
			handlershared.RequestLog(c).Infow("rate_limited",
				"rule", rule.Prefix,
				"count", count,
				"wait_seconds", waitSeconds,
			)
			response.AbortWithError(c, response.CodeTooManyRequests, formatRateLimitMessage(rule.Message, waitSeconds))
			return
		}

		c.Next()
	}
}

func abortRateLimitUnavailable(c *gin.Context, err error) {
	handlershared.RequestLog(c).Errorw("rate_limit_unavailable", "error", err)
	response.AbortWithError(c, response.CodeInternal, rateLimitUnavailableText)
}

func resolveWaitSeconds(ttlSeconds int64, windowSeconds int) int {
	waitSeconds := int(ttlSeconds)
	if waitSeconds < 1 {
		waitSeconds = windowSeconds
	}
	if waitSeconds < 1 {
		waitSeconds = 1
	}
	return waitSeconds
}

func formatRateLimitMessage(message string, waitSeconds int) string {
	message = strings.TrimSpace(message)
	if message == "" {
		message = defaultRateLimitMessage
	}
	if strings.Contains(message, "%d") {
		return fmt.Sprintf(message, waitSeconds)
	}
	return message
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

// replayBody 先返回已读取的前缀，再继续读取原始请求体
type replayBody struct {
	io.Reader
	io.Closer
}

// readJSONField 读取请求体中的字符串字段，读取后恢复完整请求体供后续 handler 绑定
// 超过 maxRateLimitBodyBytes 的请求体不解析，回退为仅按 IP 限流
func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	original := c.Request.Body
	body, err := io.ReadAll(io.LimitReader(original, maxRateLimitBodyBytes+1))
	c.Request.Body = replayBody{
		Reader: io.MultiReader(bytes.NewReader(body), original),
		Closer: original,
	}
	if err != nil || len(body) == 0 || len(body) > maxRateLimitBodyBytes {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if text, ok := payload[field].(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
