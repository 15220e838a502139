package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CouponRepository

	Create(coupon *models.Coupon) error
	GetByID(id uint) (*models.Coupon, error)
	FindByQRCodeAndPhone(qrCodeID uint, phone string, statuses []string) (*models.Coupon, error)
	FindLatestByCode(code, phone, status string) (*models.Coupon, error)
	TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error)
	ExpireBefore(now time.Time, statuses []string) (int64, error)
	CountByQRCode(qrCodeID uint) (int64, error)
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓储
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCouponRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Omit("QRCode").Create(coupon).Error
}

// GetByID 按ID获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// FindByQRCodeAndPhone 查找指定二维码 + 手机号下处于给定状态的最新优惠券
func (r *GormCouponRepository) FindByQRCodeAndPhone(qrCodeID uint, phone string, statuses []string) (*models.Coupon, error) {
	if qrCodeID == 0 || strings.TrimSpace(phone) == "" || len(statuses) == 0 {
		return nil, nil
	}
	var coupon models.Coupon
	err := r.db.Where("qr_code_id = ? AND customer_phone = ? AND status IN ?", qrCodeID, phone, statuses).
		Order("id desc").
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// FindLatestByCode 按券码 + 手机号 + 状态查找最新优惠券（预加载二维码）
func (r *GormCouponRepository) FindLatestByCode(code, phone, status string) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(phone) == "" {
		return nil, nil
	}
	var coupon models.Coupon
	err := r.db.Preload("QRCode").
		Where("coupon_code = ? AND customer_phone = ? AND status = ?", code, phone, status).
		Order("id desc").
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// TransitionStatus 条件更新状态：仅当当前状态为 from 时更新为 to，返回是否命中
func (r *GormCouponRepository) TransitionStatus(id uint, from, to string, updates map[string]interface{}) (bool, error) {
	if id == 0 {
		return false, nil
	}
	values := map[string]interface{}{"status": to}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.Coupon{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExpireBefore 将给定状态中已过期的优惠券批量标记为过期
func (r *GormCouponRepository) ExpireBefore(now time.Time, statuses []string) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Coupon{}).
		Where("status IN ? AND expires_at < ?", statuses, now).
		Updates(map[string]interface{}{
			"status":     constants.CouponStatusExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountByQRCode 统计二维码下的优惠券数量
func (r *GormCouponRepository) CountByQRCode(qrCodeID uint) (int64, error) {
	if qrCodeID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Coupon{}).Where("qr_code_id = ?", qrCodeID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 查询优惠券列表
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})
	if filter.QRCodeID != 0 {
		query = query.Where("coupons.qr_code_id = ?", filter.QRCodeID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("coupons.status = ?", status)
	}
	if phone := strings.TrimSpace(filter.Phone); phone != "" {
		condition, args := containsCondition(r.db, phone, "coupons.customer_phone")
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Coupon
	if err := query.Order("coupons.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
