package public

import (
	"github.com/cortexa-affect/internal/provider"
)

// Handler 公开接口处理器入口
// 说明：找回密码流程全部接口均无需登录。
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
