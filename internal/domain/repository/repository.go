// Package repository 定义数据访问层接口
package repository

import "context"

// TxKey 事务 *gorm.DB 在 context 中的键
type TxKey struct{}

// Transactor 在同一事务内执行 fn，fn 返回错误时回滚
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination 页码从 1 开始
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPagination 越界的页码与页大小回落到默认值或上限
func NewPagination(page, pageSize int) Pagination {
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return Pagination{Page: max(page, 1), PageSize: pageSize}
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

func (p Pagination) Limit() int { return p.PageSize }

// PagedResult 一页数据及总数
type PagedResult[T any] struct {
	Pagination
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func NewPagedResult[T any](items []T, total int64, page Pagination) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PagedResult[T]{Pagination: page, Items: items, Total: total}
}

// TotalPages 按页大小向上取整
func (r *PagedResult[T]) TotalPages() int {
	if r.PageSize <= 0 {
		return 0
	}
	return int((r.Total + int64(r.PageSize) - 1) / int64(r.PageSize))
}
