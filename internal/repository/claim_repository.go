package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClaimRepository 核销记录数据访问接口
type ClaimRepository interface {
	WithTx(tx *gorm.DB) ClaimRepository

	Create(claim *models.Claim) error
	GetByID(id uint) (*models.Claim, error)
	GetByIDForUpdate(id uint) (*models.Claim, error)
	FindByQRCodeAndPhone(qrCodeID uint, phone string, statuses []string) (*models.Claim, error)
	TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error)
	ExpireBefore(now time.Time) (int64, error)
	CountByQRCode(qrCodeID uint) (int64, error)
	List(filter ClaimListFilter) ([]models.Claim, int64, error)
}

// GormClaimRepository GORM 实现
type GormClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository 创建核销记录仓储
func NewClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimRepository) WithTx(tx *gorm.DB) ClaimRepository {
	if tx == nil {
		return r
	}
	return &GormClaimRepository{db: tx}
}

// Create 创建核销记录
func (r *GormClaimRepository) Create(claim *models.Claim) error {
	return r.db.Omit("QRCode").Create(claim).Error
}

// GetByID 按ID获取核销记录（预加载二维码）
func (r *GormClaimRepository) GetByID(id uint) (*models.Claim, error) {
	if id == 0 {
		return nil, nil
	}
	var claim models.Claim
	if err := r.db.Preload("QRCode").First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// GetByIDForUpdate 按ID获取并锁定核销记录
func (r *GormClaimRepository) GetByIDForUpdate(id uint) (*models.Claim, error) {
	if id == 0 {
		return nil, nil
	}
	var claim models.Claim
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// FindByQRCodeAndPhone 查找指定二维码 + 手机号下处于给定状态的最新核销记录
func (r *GormClaimRepository) FindByQRCodeAndPhone(qrCodeID uint, phone string, statuses []string) (*models.Claim, error) {
	if qrCodeID == 0 || strings.TrimSpace(phone) == "" || len(statuses) == 0 {
		return nil, nil
	}
	var claim models.Claim
	err := r.db.Where("qr_code_id = ? AND customer_phone = ? AND status IN ?", qrCodeID, phone, statuses).
		Order("id desc").
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// TransitionStatus 条件更新状态：仅当当前状态为 from 时更新为 to，返回是否命中
func (r *GormClaimRepository) TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error) {
	if id == 0 {
		return false, nil
	}
	values := map[string]interface{}{"status": to}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.Claim{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByQRCode 统计二维码下的核销记录数量
func (r *GormClaimRepository) CountByQRCode(qrCodeID uint) (int64, error) {
	if qrCodeID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Claim{}).Where("qr_code_id = ?", qrCodeID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 查询核销记录列表
func (r *GormClaimRepository) List(filter ClaimListFilter) ([]models.Claim, int64, error) {
	query := r.db.Model(&models.Claim{})
	if filter.QRCodeID != 0 {
		query = query.Where("claims.qr_code_id = ?", filter.QRCodeID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("claims.status = ?", status)
	}
	if phone := strings.TrimSpace(filter.Phone); phone != "" {
		condition, args := containsCondition(r.db, phone, "claims.customer_phone")
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Claim
	if err := query.Order("claims.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ExpireBefore 关联优惠券已过期且仍为 claimed 的核销记录批量标记为过期
func (r *GormClaimRepository) ExpireBefore(now time.Time) (int64, error) {
	staleCoupons := r.db.Model(&models.Coupon{}).Select("id").Where("expires_at < ?", now)
	result := r.db.Model(&models.Claim{}).
		Where("status = ? AND coupon_id IN (?)", constants.ClaimStatusClaimed, staleCoupons).
		Updates(map[string]interface{}{
			"status":     constants.ClaimStatusExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
