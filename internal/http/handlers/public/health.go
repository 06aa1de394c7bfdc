package public

import (
	"context"
	"errors"
	"time"

	"github.com/cortexa-affect/internal/cache"
	"github.com/cortexa-affect/internal/http/response"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Healthz 存活与依赖检查
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.pingDatabase(ctx); err != nil {
		respondError(c, response.CodeServiceUnavailable, "Database unavailable", err)
		return
	}
	if err := cache.Ping(ctx); err != nil {
		respondError(c, response.CodeServiceUnavailable, "Cache unavailable", err)
		return
	}
	response.OK(c, nil)
}

func (h *Handler) pingDatabase(ctx context.Context) error {
	if h.DB == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
