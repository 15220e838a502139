package repository

import (
	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
)

// AuthzAuditLogRepository 权限审计日志数据访问接口
type AuthzAuditLogRepository interface {
	Create(log *models.AuthzAuditLog) error
	List(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error)
}

// GormAuthzAuditLogRepository GORM 实现
type GormAuthzAuditLogRepository struct {
	db *gorm.DB
}

// NewAuthzAuditLogRepository 创建权限审计日志仓库
func NewAuthzAuditLogRepository(db *gorm.DB) *GormAuthzAuditLogRepository {
	return &GormAuthzAuditLogRepository{db: db}
}

// Create 写入一条审计记录，nil 忽略
func (r *GormAuthzAuditLogRepository) Create(log *models.AuthzAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 按操作人、目标、动作、请求 ID 与时间范围筛选，新记录在前
func (r *GormAuthzAuditLogRepository) List(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	query := r.db.Model(&models.AuthzAuditLog{}).Scopes(auditLogScope(filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]models.AuthzAuditLog, 0)
	err := applyPagination(query, filter.Page, filter.PageSize).
		Order("created_at DESC").Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func auditLogScope(filter AuthzAuditLogListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		conditions := map[string]interface{}{}
		if filter.OperatorAdminID != 0 {
			conditions["operator_admin_id"] = filter.OperatorAdminID
		}
		if filter.TargetAdminID != 0 {
			conditions["target_admin_id"] = filter.TargetAdminID
		}
		if filter.Action != "" {
			conditions["action"] = filter.Action
		}
		if filter.RequestID != "" {
			conditions["request_id"] = filter.RequestID
		}
		if len(conditions) > 0 {
			db = db.Where(conditions)
		}
		if filter.CreatedFrom != nil {
			db = db.Where("created_at >= ?", *filter.CreatedFrom)
		}
		if filter.CreatedTo != nil {
			db = db.Where("created_at <= ?", *filter.CreatedTo)
		}
		return db
	}
}
