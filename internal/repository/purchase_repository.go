package repository

import (
	"errors"

	"github.com/elevate-affiliate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseRepository 成交记录数据访问接口（只增不改）
type PurchaseRepository interface {
	WithTx(tx *gorm.DB) PurchaseRepository

	Create(purchase *models.Purchase) error
	GetByClaimID(claimID uint) (*models.Purchase, error)
	List(filter PurchaseListFilter) ([]models.Purchase, int64, error)
	SumCommissionByAffiliate(affiliateID uint) (decimal.Decimal, error)
}

// GormPurchaseRepository GORM 实现
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建成交记录仓储
func NewPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPurchaseRepository) WithTx(tx *gorm.DB) PurchaseRepository {
	if tx == nil {
		return r
	}
	return &GormPurchaseRepository{db: tx}
}

// Create 创建成交记录
func (r *GormPurchaseRepository) Create(purchase *models.Purchase) error {
	return r.db.Omit("Claim").Create(purchase).Error
}

// GetByClaimID 按核销记录获取成交记录
func (r *GormPurchaseRepository) GetByClaimID(claimID uint) (*models.Purchase, error) {
	if claimID == 0 {
		return nil, nil
	}
	var purchase models.Purchase
	if err := r.db.Where("claim_id = ?", claimID).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// List 查询成交记录列表
func (r *GormPurchaseRepository) List(filter PurchaseListFilter) ([]models.Purchase, int64, error) {
	query := r.db.Model(&models.Purchase{})
	if filter.AffiliateID != 0 {
		query = query.
			Joins("JOIN claims ON claims.id = purchases.claim_id").
			Joins("JOIN qr_codes ON qr_codes.id = claims.qr_code_id").
			Where("qr_codes.affiliate_id = ?", filter.AffiliateID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("purchases.purchased_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("purchases.purchased_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Purchase
	if err := query.Preload("Claim").Order("purchases.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumCommissionByAffiliate 汇总推广方名下所有二维码产生的佣金
func (r *GormPurchaseRepository) SumCommissionByAffiliate(affiliateID uint) (decimal.Decimal, error) {
	if affiliateID == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := r.db.Model(&models.Purchase{}).
		Joins("JOIN claims ON claims.id = purchases.claim_id").
		Joins("JOIN qr_codes ON qr_codes.id = claims.qr_code_id").
		Where("qr_codes.affiliate_id = ?", affiliateID).
		Select("COALESCE(SUM(purchases.commission_amount), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}
