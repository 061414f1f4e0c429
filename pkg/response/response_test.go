package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   int
		status int
	}{
		{CodeSuccess, http.StatusOK},
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeInvalidToken, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeRoleNotFound, http.StatusNotFound},
		{CodePermissionNotFound, http.StatusNotFound},
		{CodeEmailExists, http.StatusConflict},
		{CodeDependencyFailed, http.StatusBadGateway},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeServerError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, codeToHTTPStatus(tt.code), "code %d", tt.code)
	}
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 12345)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12345, resp.Code)
	assert.Equal(t, "未知错误", resp.Msg)
	assert.Nil(t, resp.Data)
}

func TestSuccessWithMsg(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithMsg(c, "删除员工成功", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"msg":"删除员工成功","data":null}`, w.Body.String())
}
