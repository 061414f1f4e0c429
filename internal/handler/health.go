package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
)

// Pinger 依赖连通性检查
type Pinger func(ctx context.Context) error

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler 创建健康检查处理器，checks 的键为依赖名称
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health 健康检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	data := gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	for name, ping := range h.checks {
		status := "ok"
		if ping == nil || ping(c.Request.Context()) != nil {
			status = "error"
			data["status"] = "degraded"
		}
		data[name] = status
	}
	response.Success(c, data)
}
