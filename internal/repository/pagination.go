// Package repository 数据访问层
package repository

import (
	"context"
	"database/sql"
	"math"

	"gorm.io/gorm"
)

// MaxPage 允许请求的最大页码
const MaxPage = 1000000

// Pagination 分页参数
type Pagination struct {
	Page     int // 页码，从 1 开始
	PageSize int // 每页数量
}

// Offset 返回分页偏移量
// 偏移量超出 int32 时截断为 math.MaxInt32，视为越过末尾
func (p *Pagination) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt32/p.PageSize {
		return math.MaxInt32
	}
	return (p.Page - 1) * p.PageSize
}

// Valid 页码和页大小均为正数
func (p *Pagination) Valid() bool {
	return p != nil && p.Page > 0 && p.PageSize > 0
}

// snapshotOptions 计数与分页查询共用同一快照
// SQLite 事务本身即串行化，不支持显式隔离级别
func snapshotOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

// paginate 在同一事务快照内统计总数并取出当前页
func paginate[T any](ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, order string, page *Pagination) ([]*T, int64, error) {
	var items []*T
	var total int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx.Model(new(T))).Count(&total).Error; err != nil {
			return err
		}

		query := scope(tx.Model(new(T))).Order(order)
		if page.Valid() {
			query = query.Offset(page.Offset()).Limit(page.PageSize)
		}
		return query.Find(&items).Error
	}, snapshotOptions(db))
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// like 构造模糊匹配参数
func like(key string) string {
	return "%" + key + "%"
}
