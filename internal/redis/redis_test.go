package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pu-ac-cn/rbac-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInit 测试 Redis 初始化
func TestInit(t *testing.T) {
	mr := miniredis.RunT(t)

	require.NoError(t, Init(&config.RedisConfig{Addr: mr.Addr()}))
	defer Close()

	assert.NotNil(t, GetClient())
	assert.NoError(t, Ping(context.Background()))
}

// TestInitUnreachable 测试连接失败
func TestInitUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	err := Init(&config.RedisConfig{Addr: addr})
	assert.Error(t, err)
	_ = Close()
}

// TestPingWithoutInit 未初始化时 Ping 返回错误
func TestPingWithoutInit(t *testing.T) {
	client = nil
	assert.Error(t, Ping(context.Background()))
	assert.NoError(t, Close())
}
