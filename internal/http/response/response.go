package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 统一错误响应结构
type ErrorBody struct {
	Error     string `json:"error"`                // 提示消息
	RequestID string `json:"request_id,omitempty"` // 请求 ID
}

// OK 成功响应，data 中的字段与 ok:true 平铺输出
func OK(c *gin.Context, data gin.H) {
	body := gin.H{"ok": true}
	for key, value := range data {
		if key == "ok" {
			continue
		}
		body[key] = value
	}
	c.JSON(http.StatusOK, body)
}

// Error 错误响应，HTTP 状态码即 statusCode
func Error(c *gin.Context, statusCode int, msg string) {
	if statusCode < http.StatusBadRequest {
		statusCode = CodeInternal
	}
	c.JSON(statusCode, ErrorBody{
		Error:     msg,
		RequestID: requestID(c),
	})
}

// AbortWithError 错误响应并中断后续处理
func AbortWithError(c *gin.Context, statusCode int, msg string) {
	Error(c, statusCode, msg)
	c.Abort()
}

// TooManyRequests 429响应
func TooManyRequests(c *gin.Context, msg string) {
	Error(c, CodeTooManyRequests, msg)
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
