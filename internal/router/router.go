package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cortexa-affect/internal/cache"
	"github.com/cortexa-affect/internal/config"
	publichandlers "github.com/cortexa-affect/internal/http/handlers/public"
	"github.com/cortexa-affect/internal/http/response"
	"github.com/cortexa-affect/internal/logger"
	"github.com/cortexa-affect/internal/provider"

	"github.com/gin-gonic/gin"
)

// PasswordResetBasePath 找回密码接口前缀
const PasswordResetBasePath = "/api/v1/auth/password"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cx"
	}
	redisClient := cache.Client()
	forgotRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:password_forgot", redisPrefix),
		WindowSeconds: cfg.Security.ResetRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ResetRateLimit.MaxRequests,
		Message:       "Too many reset requests. Try again in %d seconds.",
	}
	verifyRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:password_verify", redisPrefix),
		WindowSeconds: cfg.Security.ResetRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ResetRateLimit.MaxRequests,
		Message:       "Too many attempts. Try again in %d seconds.",
	}
	if redisClient == nil {
		log.Sugar().Warnw("router_rate_limit_disabled", "reason", "redis not enabled")
	}

	// 中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(log))
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, response.CodeNotFound, "Not found")
	})

	// 找回密码接口
	password := r.Group(PasswordResetBasePath)
	password.Use(NoStoreMiddleware())
	{
		password.POST("/forgot", RateLimitMiddleware(redisClient, forgotRule, KeyByIPAndJSONField("email")), publicHandler.ForgotPassword)
		password.POST("/verify-otp", RateLimitMiddleware(redisClient, verifyRule, KeyByIPAndJSONField("email")), publicHandler.VerifyResetCode)
		password.POST("/reset", publicHandler.ResetPassword)
		password.GET("/captcha", publicHandler.GetImageCaptcha)
		password.GET("/captcha/config", publicHandler.GetCaptchaConfig)
	}

	// 健康检查
	r.GET("/healthz", publicHandler.Healthz)

	for _, item := range buildRouteCatalog(r) {
		log.Sugar().Debugw("router_route_registered", "method", item.Method, "path", item.Path)
	}
	return r
}

type routeCatalogItem struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// buildRouteCatalog 汇总已注册路由，按路径与方法排序
func buildRouteCatalog(engine *gin.Engine) []routeCatalogItem {
	if engine == nil {
		return []routeCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]routeCatalogItem, 0, len(routes))
	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == http.MethodOptions || method == http.MethodHead {
			continue
		}
		key := method + ":" + item.Path
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, routeCatalogItem{Method: method, Path: item.Path})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Path == items[j].Path {
			return items[i].Method < items[j].Method
		}
		return items[i].Path < items[j].Path
	})
	return items
}
