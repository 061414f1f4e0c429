package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
)

// pathID 解析路径中的 :id 参数
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorWithMsg(c, response.CodeInvalidFormat, "ID 格式错误")
		return 0, false
	}
	return id, true
}

// optionalQueryID 解析可选的查询参数，缺省时返回 nil
func optionalQueryID(c *gin.Context, key string) (*int64, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidFormat, key+" 格式错误")
		return nil, false
	}
	return &id, true
}

// queryInt 解析整型查询参数，缺省时使用 def
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidFormat, key+" 格式错误")
		return 0, false
	}
	return v, true
}
