package repository

import (
	"errors"

	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
)

// QRCodeRepository 二维码数据访问接口
type QRCodeRepository interface {
	WithTx(tx *gorm.DB) QRCodeRepository

	GetByID(id uint) (*models.QRCode, error)
	Create(qr *models.QRCode) error
	Update(qr *models.QRCode) error
	UpdateStatus(id uint, isActive bool) error
	Delete(id uint) error
	List(filter QRCodeListFilter) ([]models.QRCode, int64, error)
	CountByAffiliate(affiliateID uint) (int64, error)
}

// GormQRCodeRepository GORM 实现
type GormQRCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository 创建二维码仓储
func NewQRCodeRepository(db *gorm.DB) *GormQRCodeRepository {
	return &GormQRCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormQRCodeRepository) WithTx(tx *gorm.DB) QRCodeRepository {
	if tx == nil {
		return r
	}
	return &GormQRCodeRepository{db: tx}
}

// GetByID 按ID获取二维码（预加载所属推广方）
func (r *GormQRCodeRepository) GetByID(id uint) (*models.QRCode, error) {
	if id == 0 {
		return nil, nil
	}
	var qr models.QRCode
	if err := r.db.Preload("Affiliate").First(&qr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &qr, nil
}

// Create 创建二维码
func (r *GormQRCodeRepository) Create(qr *models.QRCode) error {
	return r.db.Omit("Affiliate").Create(qr).Error
}

// Update 更新二维码
func (r *GormQRCodeRepository) Update(qr *models.QRCode) error {
	return r.db.Omit("Affiliate").Save(qr).Error
}

// UpdateStatus 更新启用状态
func (r *GormQRCodeRepository) UpdateStatus(id uint, isActive bool) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.QRCode{}).Where("id = ?", id).Update("is_active", isActive).Error
}

// Delete 物理删除二维码
func (r *GormQRCodeRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.QRCode{}, id).Error
}

// List 查询二维码列表，列表默认不返回图片数据
func (r *GormQRCodeRepository) List(filter QRCodeListFilter) ([]models.QRCode, int64, error) {
	query := r.db.Model(&models.QRCode{})
	if filter.AffiliateID != 0 {
		query = query.Where("qr_codes.affiliate_id = ?", filter.AffiliateID)
	}
	if filter.IsActive != nil {
		query = query.Where("qr_codes.is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if !filter.WithImage {
		query = query.Omit("qr_code_image")
	}

	var rows []models.QRCode
	if err := query.Preload("Affiliate").Order("qr_codes.created_at desc, qr_codes.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByAffiliate 统计推广方名下二维码数量
func (r *GormQRCodeRepository) CountByAffiliate(affiliateID uint) (int64, error) {
	if affiliateID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.QRCode{}).Where("affiliate_id = ?", affiliateID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
