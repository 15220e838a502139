package repository

import (
	"errors"
	"strings"

	"github.com/elevate-affiliate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository 佣金提现数据访问接口
type WithdrawalRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) WithdrawalRepository

	Create(withdrawal *models.CommissionWithdrawal) error
	Update(withdrawal *models.CommissionWithdrawal) error
	GetByID(id uint) (*models.CommissionWithdrawal, error)
	GetByIDForUpdate(id uint) (*models.CommissionWithdrawal, error)
	GetByIDAndAffiliate(id, affiliateID uint) (*models.CommissionWithdrawal, error)
	DeleteIfStatus(id uint, status string) (bool, error)
	List(filter WithdrawalListFilter) ([]models.CommissionWithdrawal, int64, error)
	SumAmountByAffiliate(affiliateID uint, statuses []string) (decimal.Decimal, error)
	CountByAffiliate(affiliateID uint, statuses []string) (int64, error)
	AggregateByStatus() ([]WithdrawalStatusAggregate, error)
}

// GormWithdrawalRepository GORM 实现
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository 创建提现仓储
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) WithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Transaction 执行事务
func (r *GormWithdrawalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建提现申请
func (r *GormWithdrawalRepository) Create(withdrawal *models.CommissionWithdrawal) error {
	return r.db.Omit("Affiliate").Create(withdrawal).Error
}

// Update 更新提现申请
func (r *GormWithdrawalRepository) Update(withdrawal *models.CommissionWithdrawal) error {
	return r.db.Omit("Affiliate").Save(withdrawal).Error
}

// GetByID 按ID获取提现申请（预加载推广方）
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.CommissionWithdrawal, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.CommissionWithdrawal
	if err := r.db.Preload("Affiliate").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByIDForUpdate 按ID获取并锁定提现申请
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.CommissionWithdrawal, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.CommissionWithdrawal
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByIDAndAffiliate 获取推广方自己的提现申请
func (r *GormWithdrawalRepository) GetByIDAndAffiliate(id, affiliateID uint) (*models.CommissionWithdrawal, error) {
	if id == 0 || affiliateID == 0 {
		return nil, nil
	}
	var row models.CommissionWithdrawal
	if err := r.db.Where("id = ? AND affiliate_id = ?", id, affiliateID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// DeleteIfStatus 仅在当前状态匹配时物理删除，返回是否删除
func (r *GormWithdrawalRepository) DeleteIfStatus(id uint, status string) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Where("id = ? AND status = ?", id, status).Delete(&models.CommissionWithdrawal{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 查询提现申请列表（按申请时间倒序）
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.CommissionWithdrawal, int64, error) {
	query := r.db.Model(&models.CommissionWithdrawal{})
	if filter.AffiliateID != 0 {
		query = query.Where("commission_withdrawals.affiliate_id = ?", filter.AffiliateID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("commission_withdrawals.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.CommissionWithdrawal
	if err := query.Preload("Affiliate").
		Order("commission_withdrawals.request_date desc, commission_withdrawals.id desc").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumAmountByAffiliate 汇总推广方指定状态的提现金额
func (r *GormWithdrawalRepository) SumAmountByAffiliate(affiliateID uint, statuses []string) (decimal.Decimal, error) {
	if affiliateID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := r.db.Model(&models.CommissionWithdrawal{}).
		Where("affiliate_id = ? AND status IN ?", affiliateID, statuses).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// CountByAffiliate 统计推广方指定状态的提现申请数量
func (r *GormWithdrawalRepository) CountByAffiliate(affiliateID uint, statuses []string) (int64, error) {
	if affiliateID == 0 || len(statuses) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.CommissionWithdrawal{}).
		Where("affiliate_id = ? AND status IN ?", affiliateID, statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AggregateByStatus 按状态汇总提现数量与金额
func (r *GormWithdrawalRepository) AggregateByStatus() ([]WithdrawalStatusAggregate, error) {
	var rows []struct {
		Status string          `gorm:"column:status"`
		Count  int64           `gorm:"column:count"`
		Amount decimal.Decimal `gorm:"column:amount"`
	}
	err := r.db.Model(&models.CommissionWithdrawal{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]WithdrawalStatusAggregate, 0, len(rows))
	for _, row := range rows {
		result = append(result, WithdrawalStatusAggregate{
			Status: row.Status,
			Count:  row.Count,
			Amount: row.Amount.Round(2),
		})
	}
	return result, nil
}
