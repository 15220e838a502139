package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// AffiliateListFilter 推广方列表过滤条件
type AffiliateListFilter struct {
	Page          int
	PageSize      int
	Status        string
	Keyword       string
	IncludeSystem bool
}

// QRCodeListFilter 二维码列表过滤条件
type QRCodeListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	IsActive    *bool
	WithImage   bool
}

// CouponListFilter 优惠券列表过滤条件
type CouponListFilter struct {
	Page     int
	PageSize int
	QRCodeID uint
	Status   string
	Phone    string
}

// ClaimListFilter 核销记录列表过滤条件
type ClaimListFilter struct {
	Page     int
	PageSize int
	QRCodeID uint
	Status   string
	Phone    string
}

// PurchaseListFilter 成交记录列表过滤条件
type PurchaseListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WithdrawalListFilter 提现申请列表过滤条件
type WithdrawalListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	Status      string
}

// WithdrawalStatusAggregate 按状态聚合的提现统计
type WithdrawalStatusAggregate struct {
	Status string
	Count  int64
	Amount decimal.Decimal
}

// AuthzAuditLogListFilter 权限审计日志过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	RequestID       string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// ServiceLinkListFilter 门户服务列表过滤条件
type ServiceLinkListFilter struct {
	Page        int
	PageSize    int
	ServiceType string
	IsActive    *bool
	Keyword     string
}

// ServicePortalListFilter 服务门户列表过滤条件
type ServicePortalListFilter struct {
	Page        int
	PageSize    int
	ServiceType string
	IsActive    *bool
	WithImage   bool
}

// ServicePortalScanRank 扫码次数排行
type ServicePortalScanRank struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Scans         int64      `json:"scans"`
	LastScannedAt *time.Time `json:"last_scanned_at"`
}

// ServiceTypeUsage 某类服务被门户引用的次数
type ServiceTypeUsage struct {
	ServiceType string
	Count       int64
}
