package repository

import (
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
)

// ServicePortalRepository 服务门户数据访问接口
type ServicePortalRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ServicePortalRepository

	GetByID(id uint) (*models.ServicePortal, error)
	Create(portal *models.ServicePortal) error
	Update(portal *models.ServicePortal) error
	ReplaceItems(portalID uint, items []models.ServicePortalItem) error
	Delete(id uint) error
	List(filter ServicePortalListFilter) ([]models.ServicePortal, int64, error)
	RecordScan(id uint, at time.Time) error
	CountByActive(isActive *bool) (int64, error)
	SumScans() (int64, error)
	TopScanned(limit int) ([]ServicePortalScanRank, error)
	ServiceTypeUsage() ([]ServiceTypeUsage, error)
}

// GormServicePortalRepository GORM 实现
type GormServicePortalRepository struct {
	db *gorm.DB
}

// NewServicePortalRepository 创建服务门户仓储
func NewServicePortalRepository(db *gorm.DB) *GormServicePortalRepository {
	return &GormServicePortalRepository{db: db}
}

// Transaction 执行事务
func (r *GormServicePortalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormServicePortalRepository) WithTx(tx *gorm.DB) ServicePortalRepository {
	if tx == nil {
		return r
	}
	return &GormServicePortalRepository{db: tx}
}

func preloadPortalItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("display_order asc, id asc")
	}).Preload("Items.ServiceLink")
}

// GetByID 获取门户（含服务项，按展示顺序）
func (r *GormServicePortalRepository) GetByID(id uint) (*models.ServicePortal, error) {
	if id == 0 {
		return nil, nil
	}
	return findFirst[models.ServicePortal](preloadPortalItems(r.db).Where("id = ?", id))
}

// Create 创建门户，服务项通过 ReplaceItems 单独写入
func (r *GormServicePortalRepository) Create(portal *models.ServicePortal) error {
	return r.db.Omit("Items").Create(portal).Error
}

// Update 更新门户基础字段
func (r *GormServicePortalRepository) Update(portal *models.ServicePortal) error {
	return r.db.Omit("Items").Save(portal).Error
}

// ReplaceItems 覆盖门户的服务项
func (r *GormServicePortalRepository) ReplaceItems(portalID uint, items []models.ServicePortalItem) error {
	if portalID == 0 {
		return nil
	}
	if err := r.db.Where("portal_id = ?", portalID).Delete(&models.ServicePortalItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.ServicePortalItem, len(items))
	for i, item := range items {
		rows[i] = models.ServicePortalItem{
			PortalID:      portalID,
			ServiceLinkID: item.ServiceLinkID,
			DisplayOrder:  item.DisplayOrder,
		}
	}
	return r.db.Omit("ServiceLink").Create(&rows).Error
}

// Delete 删除门户及其服务项
func (r *GormServicePortalRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	if err := r.db.Where("portal_id = ?", id).Delete(&models.ServicePortalItem{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.ServicePortal{}, id).Error
}

// List 门户列表，按服务类型过滤时匹配任一服务项
func (r *GormServicePortalRepository) List(filter ServicePortalListFilter) ([]models.ServicePortal, int64, error) {
	query := r.db.Model(&models.ServicePortal{})
	if filter.IsActive != nil {
		query = query.Where("service_portals.is_active = ?", *filter.IsActive)
	}
	if serviceType := strings.TrimSpace(filter.ServiceType); serviceType != "" {
		sub := r.db.Model(&models.ServicePortalItem{}).
			Select("service_portal_items.portal_id").
			Joins("JOIN service_links ON service_links.id = service_portal_items.service_link_id").
			Where("service_links.service_type = ?", serviceType)
		query = query.Where("service_portals.id IN (?)", sub)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if !filter.WithImage {
		query = query.Omit("qr_code_image")
	}

	var rows []models.ServicePortal
	if err := preloadPortalItems(query).Order("service_portals.created_at desc, service_portals.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// RecordScan 原子累加扫码次数
func (r *GormServicePortalRepository) RecordScan(id uint, at time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.ServicePortal{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"scans":           gorm.Expr("scans + 1"),
		"last_scanned_at": at,
	}).Error
}

// CountByActive isActive 为空时统计全部
func (r *GormServicePortalRepository) CountByActive(isActive *bool) (int64, error) {
	query := r.db.Model(&models.ServicePortal{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumScans 全部门户的扫码总数
func (r *GormServicePortalRepository) SumScans() (int64, error) {
	var total int64
	if err := r.db.Model(&models.ServicePortal{}).Select("COALESCE(SUM(scans), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// TopScanned 扫码次数最多的门户
func (r *GormServicePortalRepository) TopScanned(limit int) ([]ServicePortalScanRank, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []ServicePortalScanRank
	err := r.db.Model(&models.ServicePortal{}).
		Select("id, name, scans, last_scanned_at").
		Order("scans desc, id asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ServiceTypeUsage 按服务类型统计门户服务项数量
func (r *GormServicePortalRepository) ServiceTypeUsage() ([]ServiceTypeUsage, error) {
	var rows []ServiceTypeUsage
	err := r.db.Model(&models.ServicePortalItem{}).
		Select("service_links.service_type AS service_type, COUNT(*) AS count").
		Joins("JOIN service_links ON service_links.id = service_portal_items.service_link_id").
		Group("service_links.service_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
