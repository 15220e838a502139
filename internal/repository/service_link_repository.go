package repository

import (
	"strings"

	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
)

// ServiceLinkRepository 门户服务数据访问接口
type ServiceLinkRepository interface {
	GetByID(id uint) (*models.ServiceLink, error)
	ListByIDs(ids []uint) ([]models.ServiceLink, error)
	Create(link *models.ServiceLink) error
	Update(link *models.ServiceLink) error
	Delete(id uint) error
	List(filter ServiceLinkListFilter) ([]models.ServiceLink, int64, error)
	ListTypes() ([]string, error)
	CountPortalUsage(id uint) (int64, error)
}

// GormServiceLinkRepository GORM 实现
type GormServiceLinkRepository struct {
	db *gorm.DB
}

// NewServiceLinkRepository 创建门户服务仓储
func NewServiceLinkRepository(db *gorm.DB) *GormServiceLinkRepository {
	return &GormServiceLinkRepository{db: db}
}

// GetByID 按ID获取服务
func (r *GormServiceLinkRepository) GetByID(id uint) (*models.ServiceLink, error) {
	if id == 0 {
		return nil, nil
	}
	return findFirst[models.ServiceLink](r.db.Where("id = ?", id))
}

// ListByIDs 批量获取服务，顺序不保证
func (r *GormServiceLinkRepository) ListByIDs(ids []uint) ([]models.ServiceLink, error) {
	if len(ids) == 0 {
		return []models.ServiceLink{}, nil
	}
	var rows []models.ServiceLink
	if err := r.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create 创建服务
func (r *GormServiceLinkRepository) Create(link *models.ServiceLink) error {
	return r.db.Create(link).Error
}

// Update 更新服务
func (r *GormServiceLinkRepository) Update(link *models.ServiceLink) error {
	return r.db.Save(link).Error
}

// Delete 物理删除服务
func (r *GormServiceLinkRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.ServiceLink{}, id).Error
}

// List 服务列表
func (r *GormServiceLinkRepository) List(filter ServiceLinkListFilter) ([]models.ServiceLink, int64, error) {
	query := r.db.Model(&models.ServiceLink{})
	if serviceType := strings.TrimSpace(filter.ServiceType); serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, args := containsCondition(r.db, keyword, "name", "description")
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ServiceLink
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListTypes 已使用的服务类型（去重、按字母序）
func (r *GormServiceLinkRepository) ListTypes() ([]string, error) {
	var types []string
	err := r.db.Model(&models.ServiceLink{}).
		Distinct("service_type").
		Order("service_type asc").
		Pluck("service_type", &types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

// CountPortalUsage 统计引用该服务的门户数量
func (r *GormServiceLinkRepository) CountPortalUsage(id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.ServicePortalItem{}).
		Where("service_link_id = ?", id).
		Distinct("portal_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
