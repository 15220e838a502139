package repository

import "gorm.io/gorm"

// maxPageSize 单页上限，与接口层保持一致
const maxPageSize = 100

// applyPagination pageSize<=0 表示不分页（导出、内部统计）
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
