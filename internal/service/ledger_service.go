package service

import (
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	withdrawnStatuses = []string{constants.WithdrawalStatusApproved, constants.WithdrawalStatusPaid}
	pendingStatuses   = []string{constants.WithdrawalStatusPending}
)

// Balance 推广方佣金余额（每次读取时从成交与提现记录重新计算）
// 待处理提现仅作展示，不从可用余额中扣除
type Balance struct {
	TotalCommission  decimal.Decimal `json:"total_commission"`
	TotalWithdrawn   decimal.Decimal `json:"total_withdrawn"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	PendingRequests  int64           `json:"pending_requests"`
}

// LedgerService 佣金账本服务
type LedgerService struct {
	affiliateRepo  repository.AffiliateRepository
	purchaseRepo   repository.PurchaseRepository
	withdrawalRepo repository.WithdrawalRepository
}

// NewLedgerService 创建佣金账本服务
func NewLedgerService(
	affiliateRepo repository.AffiliateRepository,
	purchaseRepo repository.PurchaseRepository,
	withdrawalRepo repository.WithdrawalRepository,
) *LedgerService {
	return &LedgerService{
		affiliateRepo:  affiliateRepo,
		purchaseRepo:   purchaseRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// GetBalance 获取推广方余额
func (s *LedgerService) GetBalance(affiliateID uint) (*Balance, error) {
	affiliate, err := s.affiliateRepo.GetByID(affiliateID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrAffiliateNotFound
	}
	return computeBalance(s.purchaseRepo, s.withdrawalRepo, affiliate.ID)
}

// computeBalance 账本口径：可用余额 = 累计佣金 - 已批准/已打款提现
func computeBalance(purchaseRepo repository.PurchaseRepository, withdrawalRepo repository.WithdrawalRepository, affiliateID uint) (*Balance, error) {
	totalCommission, err := purchaseRepo.SumCommissionByAffiliate(affiliateID)
	if err != nil {
		return nil, err
	}
	totalWithdrawn, err := withdrawalRepo.SumAmountByAffiliate(affiliateID, withdrawnStatuses)
	if err != nil {
		return nil, err
	}
	pendingAmount, err := withdrawalRepo.SumAmountByAffiliate(affiliateID, pendingStatuses)
	if err != nil {
		return nil, err
	}
	pendingRequests, err := withdrawalRepo.CountByAffiliate(affiliateID, pendingStatuses)
	if err != nil {
		return nil, err
	}
	totalCommission = totalCommission.Round(2)
	totalWithdrawn = totalWithdrawn.Round(2)
	return &Balance{
		TotalCommission:  totalCommission,
		TotalWithdrawn:   totalWithdrawn,
		AvailableBalance: totalCommission.Sub(totalWithdrawn),
		PendingAmount:    pendingAmount.Round(2),
		PendingRequests:  pendingRequests,
	}, nil
}
