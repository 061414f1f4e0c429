package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/pu-ac-cn/rbac-backend/internal/lookup"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// EnrichPolicy 补全失败时的处理策略
type EnrichPolicy string

// 补全策略
const (
	PolicyLenient EnrichPolicy = "lenient" // 字段留空并记录日志
	PolicyStrict  EnrichPolicy = "strict"  // 整体失败
)

// ParseEnrichPolicy 解析补全策略，空值为 lenient
func ParseEnrichPolicy(s string) (EnrichPolicy, error) {
	switch EnrichPolicy(s) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("未知的补全策略: %s", s)
	}
}

const defaultEnrichWorkers = 8

// Enricher 查询结果补全器
// 每个字段的补全是独立任务，由有界协程池并发执行，结果按下标写回
type Enricher struct {
	orgs      lookup.OrganizationService
	positions lookup.PositionService
	policy    EnrichPolicy
	workers   int
	logger    *zap.Logger
}

// NewEnricher 创建补全器
func NewEnricher(orgs lookup.OrganizationService, positions lookup.PositionService, policy EnrichPolicy, workers int, logger *zap.Logger) *Enricher {
	if workers <= 0 {
		workers = defaultEnrichWorkers
	}
	if policy == "" {
		policy = PolicyLenient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		orgs:      orgs,
		positions: positions,
		policy:    policy,
		workers:   workers,
		logger:    logger,
	}
}

// Strict 返回使用 strict 策略的副本，写路径使用
func (e *Enricher) Strict() *Enricher {
	cp := *e
	cp.policy = PolicyStrict
	return &cp
}

// Policy 当前策略
func (e *Enricher) Policy() EnrichPolicy {
	return e.policy
}

// enrichTask 单个字段的补全任务
type enrichTask struct {
	rowID  int64  // 所属行
	field  string // 补全的字段
	entity string // 查询的实体
	refID  int64  // 查询的实体 ID
	fetch  func(ctx context.Context) error
}

// batch 一次补全过程，同一批次内相同实体只查询一次
type batch struct {
	*Enricher
	tasks []enrichTask
	group singleflight.Group
	names sync.Map
}

func (e *Enricher) newBatch() *batch {
	return &batch{Enricher: e}
}

func (b *batch) add(task enrichTask) {
	b.tasks = append(b.tasks, task)
}

// departmentName 查询部门名称
func (b *batch) departmentName(ctx context.Context, deptID int64) (string, error) {
	return b.name("dept:"+strconv.FormatInt(deptID, 10), func() (string, error) {
		dept, err := b.orgs.GetDepartment(ctx, deptID)
		if err != nil {
			return "", err
		}
		return dept.Name, nil
	})
}

// positionName 查询职位名称
func (b *batch) positionName(ctx context.Context, positionID int64) (string, error) {
	return b.name("position:"+strconv.FormatInt(positionID, 10), func() (string, error) {
		pos, err := b.positions.GetPosition(ctx, positionID)
		if err != nil {
			return "", err
		}
		return pos.Name, nil
	})
}

func (b *batch) name(key string, fetch func() (string, error)) (string, error) {
	if v, ok := b.names.Load(key); ok {
		return v.(string), nil
	}
	v, err, _ := b.group.Do(key, func() (interface{}, error) {
		if v, ok := b.names.Load(key); ok {
			return v, nil
		}
		name, err := fetch()
		if err != nil {
			return "", err
		}
		b.names.Store(key, name)
		return name, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// run 并发执行全部任务
// lenient 策略下失败的字段保持零值；strict 策略下第一个失败使整批失败
func (b *batch) run(ctx context.Context) error {
	if len(b.tasks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, task := range b.tasks {
		task := task
		g.Go(func() error {
			err := task.fetch(gctx)
			if err == nil {
				return nil
			}
			if b.policy == PolicyStrict {
				return dependencyFailure(task.entity, task.refID, err)
			}
			b.logger.Warn("补全字段失败",
				zap.Int64("row_id", task.rowID),
				zap.String("field", task.field),
				zap.String("entity", task.entity),
				zap.Int64("ref_id", task.refID),
				zap.Error(err),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// 调用方放弃请求时不返回残缺结果
	return ctx.Err()
}

// requireDepartment 写路径校验部门存在
func (e *Enricher) requireDepartment(ctx context.Context, deptID int64) error {
	if _, err := e.orgs.GetDepartment(ctx, deptID); err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			return notFound(EntityDepartment, deptID)
		}
		return dependencyFailure(EntityDepartment, deptID, err)
	}
	return nil
}

// requirePosition 写路径校验职位存在
func (e *Enricher) requirePosition(ctx context.Context, positionID int64) error {
	if _, err := e.positions.GetPosition(ctx, positionID); err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			return notFound(EntityPosition, positionID)
		}
		return dependencyFailure(EntityPosition, positionID, err)
	}
	return nil
}
