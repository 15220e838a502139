package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var minWithdrawalAmount = decimal.RequireFromString("0.01")

// WithdrawalService 佣金提现服务
type WithdrawalService struct {
	affiliateRepo  repository.AffiliateRepository
	purchaseRepo   repository.PurchaseRepository
	withdrawalRepo repository.WithdrawalRepository
	now            func() time.Time
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	affiliateRepo repository.AffiliateRepository,
	purchaseRepo repository.PurchaseRepository,
	withdrawalRepo repository.WithdrawalRepository,
) *WithdrawalService {
	return &WithdrawalService{
		affiliateRepo:  affiliateRepo,
		purchaseRepo:   purchaseRepo,
		withdrawalRepo: withdrawalRepo,
		now:            time.Now,
	}
}

// RequestWithdrawalInput 提现申请输入
type RequestWithdrawalInput struct {
	Amount decimal.Decimal
	UpiID  string
	Notes  string
}

// RequestWithdrawal 发起提现申请
// 锁定推广方行后在同一事务内重算余额，同一推广方的并发申请被串行化
func (s *WithdrawalService) RequestWithdrawal(affiliateID uint, input RequestWithdrawalInput) (*models.CommissionWithdrawal, error) {
	amount := input.Amount
	if !hasCentPrecision(amount) || amount.LessThan(minWithdrawalAmount) {
		return nil, ErrInvalidAmount
	}

	var withdrawal *models.CommissionWithdrawal
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		affiliate, err := s.affiliateRepo.WithTx(tx).GetByIDForUpdate(affiliateID)
		if err != nil {
			return err
		}
		if affiliate == nil || affiliate.IsSystem {
			return ErrAffiliateNotFound
		}
		if affiliate.Status != constants.AffiliateStatusActive {
			return ErrAffiliateNotActive
		}

		upiID := strings.TrimSpace(input.UpiID)
		if upiID == "" {
			upiID = strings.TrimSpace(affiliate.UpiID)
		}
		if upiID == "" {
			return fmt.Errorf("%w: 请填写 UPI 收款账号", ErrInvalidInput)
		}

		withdrawalRepo := s.withdrawalRepo.WithTx(tx)
		balance, err := computeBalance(s.purchaseRepo.WithTx(tx), withdrawalRepo, affiliate.ID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance.AvailableBalance) {
			return ErrInsufficientBalance
		}

		withdrawal = &models.CommissionWithdrawal{
			AffiliateID: affiliate.ID,
			Amount:      models.NewMoneyFromDecimal(amount),
			UpiID:       upiID,
			Status:      constants.WithdrawalStatusPending,
			Notes:       strings.TrimSpace(input.Notes),
			RequestDate: s.now(),
		}
		return withdrawalRepo.Create(withdrawal)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_requested",
		"withdrawal_id", withdrawal.ID,
		"affiliate_id", withdrawal.AffiliateID,
		"amount", withdrawal.Amount.String(),
	)
	return withdrawal, nil
}

// CancelWithdrawal 推广方撤回提现申请（仅 pending 可撤回，直接删除记录）
func (s *WithdrawalService) CancelWithdrawal(affiliateID, withdrawalID uint) error {
	withdrawal, err := s.withdrawalRepo.GetByIDAndAffiliate(withdrawalID, affiliateID)
	if err != nil {
		return err
	}
	if withdrawal == nil {
		return ErrWithdrawalNotFound
	}
	if withdrawal.Status != constants.WithdrawalStatusPending {
		return ErrWithdrawalNotPending
	}
	deleted, err := s.withdrawalRepo.DeleteIfStatus(withdrawal.ID, constants.WithdrawalStatusPending)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrWithdrawalNotPending
	}
	logger.Infow("withdrawal_cancelled", "withdrawal_id", withdrawal.ID, "affiliate_id", affiliateID)
	return nil
}

// ProcessWithdrawalInput 审核提现输入
type ProcessWithdrawalInput struct {
	Status          string
	Notes           string
	PaymentProofRef string
}

// ProcessWithdrawal 审核提现，仅 pending 可处理为 approved/rejected/failed
func (s *WithdrawalService) ProcessWithdrawal(withdrawalID uint, input ProcessWithdrawalInput, adminID uint) (*models.CommissionWithdrawal, error) {
	target := strings.TrimSpace(input.Status)
	switch target {
	case constants.WithdrawalStatusApproved,
		constants.WithdrawalStatusRejected,
		constants.WithdrawalStatusFailed:
	default:
		return nil, ErrInvalidWithdrawalStatus
	}

	var withdrawal *models.CommissionWithdrawal
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.withdrawalRepo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrWithdrawalNotFound
		}
		if current.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalNotPending
		}

		now := s.now()
		current.Status = target
		current.ProcessedDate = &now
		if adminID != 0 {
			processedBy := adminID
			current.ProcessedBy = &processedBy
		}
		if notes := strings.TrimSpace(input.Notes); notes != "" {
			current.Notes = notes
		}
		if proof := strings.TrimSpace(input.PaymentProofRef); proof != "" {
			current.PaymentProofRef = proof
		}
		if err := repo.Update(current); err != nil {
			return err
		}
		withdrawal = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_processed",
		"withdrawal_id", withdrawal.ID,
		"status", withdrawal.Status,
		"processed_by", adminID,
	)
	return withdrawal, nil
}

// RecordWithdrawalPaymentInput 打款凭证输入
type RecordWithdrawalPaymentInput struct {
	PaymentProofRef string
	Notes           string
}

// RecordWithdrawalPayment 为已批准的提现登记线下打款凭证，状态保持 approved
func (s *WithdrawalService) RecordWithdrawalPayment(withdrawalID uint, input RecordWithdrawalPaymentInput, adminID uint) (*models.CommissionWithdrawal, error) {
	proof := strings.TrimSpace(input.PaymentProofRef)
	if proof == "" {
		return nil, fmt.Errorf("%w: 请填写打款凭证", ErrInvalidInput)
	}

	var withdrawal *models.CommissionWithdrawal
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.withdrawalRepo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrWithdrawalNotFound
		}
		if current.Status != constants.WithdrawalStatusApproved {
			return ErrWithdrawalNotApproved
		}
		current.PaymentProofRef = proof
		if notes := strings.TrimSpace(input.Notes); notes != "" {
			current.Notes = notes
		}
		if err := repo.Update(current); err != nil {
			return err
		}
		withdrawal = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_payment_recorded",
		"withdrawal_id", withdrawal.ID,
		"payment_proof_ref", withdrawal.PaymentProofRef,
		"recorded_by", adminID,
	)
	return withdrawal, nil
}

// WithdrawalHistory 推广方提现记录与余额汇总
func (s *WithdrawalService) WithdrawalHistory(affiliateID uint, filter repository.WithdrawalListFilter) ([]models.CommissionWithdrawal, int64, *Balance, error) {
	filter.AffiliateID = affiliateID
	if filter.AffiliateID == 0 {
		return nil, 0, nil, ErrAffiliateNotFound
	}
	rows, total, err := s.withdrawalRepo.List(filter)
	if err != nil {
		return nil, 0, nil, err
	}
	balance, err := computeBalance(s.purchaseRepo, s.withdrawalRepo, affiliateID)
	if err != nil {
		return nil, 0, nil, err
	}
	return rows, total, balance, nil
}

// ListWithdrawals 管理端提现列表
func (s *WithdrawalService) ListWithdrawals(filter repository.WithdrawalListFilter) ([]models.CommissionWithdrawal, int64, error) {
	return s.withdrawalRepo.List(filter)
}

// WithdrawalStatusStat 按状态统计
type WithdrawalStatusStat struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// WithdrawalStats 提现状态统计（只读汇总）
func (s *WithdrawalService) WithdrawalStats() ([]WithdrawalStatusStat, error) {
	rows, err := s.withdrawalRepo.AggregateByStatus()
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]repository.WithdrawalStatusAggregate, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}
	ordered := []string{
		constants.WithdrawalStatusPending,
		constants.WithdrawalStatusApproved,
		constants.WithdrawalStatusPaid,
		constants.WithdrawalStatusRejected,
		constants.WithdrawalStatusFailed,
	}
	stats := make([]WithdrawalStatusStat, 0, len(ordered))
	for _, status := range ordered {
		row := byStatus[status]
		stats = append(stats, WithdrawalStatusStat{
			Status: status,
			Count:  row.Count,
			Amount: row.Amount.Round(2),
		})
	}
	return stats, nil
}
