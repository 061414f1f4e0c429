package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis key 前缀
const (
	deptKeyPrefix     = "lookup:dept:"
	positionKeyPrefix = "lookup:position:"
)

// CachedOrganizationService 带 Redis 缓存的组织服务
// 只缓存部门名称，子部门集合每次实时查询
type CachedOrganizationService struct {
	inner  OrganizationService
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedOrganizationService 创建带缓存的组织服务
func NewCachedOrganizationService(inner OrganizationService, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedOrganizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOrganizationService{inner: inner, redis: client, ttl: ttl, logger: logger}
}

// GetSubDeptIDs 直接透传
func (s *CachedOrganizationService) GetSubDeptIDs(ctx context.Context, orgID int64, orgType OrgType) ([]int64, error) {
	return s.inner.GetSubDeptIDs(ctx, orgID, orgType)
}

// GetDepartment 先查缓存，未命中再查询组织服务
func (s *CachedOrganizationService) GetDepartment(ctx context.Context, deptID int64) (*Department, error) {
	key := deptKeyPrefix + strconv.FormatInt(deptID, 10)
	var dept Department
	if readCache(ctx, s.redis, key, &dept, s.logger) {
		return &dept, nil
	}

	found, err := s.inner.GetDepartment(ctx, deptID)
	if err != nil {
		return nil, err
	}
	writeCache(ctx, s.redis, key, found, s.ttl, s.logger)
	return found, nil
}

// CachedPositionService 带 Redis 缓存的职位服务
type CachedPositionService struct {
	inner  PositionService
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedPositionService 创建带缓存的职位服务
func NewCachedPositionService(inner PositionService, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedPositionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPositionService{inner: inner, redis: client, ttl: ttl, logger: logger}
}

// GetPosition 先查缓存，未命中再查询职位服务
func (s *CachedPositionService) GetPosition(ctx context.Context, positionID int64) (*Position, error) {
	key := positionKeyPrefix + strconv.FormatInt(positionID, 10)
	var pos Position
	if readCache(ctx, s.redis, key, &pos, s.logger) {
		return &pos, nil
	}

	found, err := s.inner.GetPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	writeCache(ctx, s.redis, key, found, s.ttl, s.logger)
	return found, nil
}

// readCache 缓存读取失败视为未命中
func readCache(ctx context.Context, client *redis.Client, key string, out interface{}, logger *zap.Logger) bool {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("缓存数据损坏", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func writeCache(ctx context.Context, client *redis.Client, key string, value interface{}, ttl time.Duration, logger *zap.Logger) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
}
