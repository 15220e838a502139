package service

import (
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Split 成交拆分结果（金额均保留 2 位小数）
type Split struct {
	OriginalAmount       decimal.Decimal `json:"original_amount"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	FinalAmount          decimal.Decimal `json:"final_amount"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
}

// ComputeSplit 计算折扣与佣金，金额按两位小数四舍五入（half-up）
// 折扣先舍入再相减，保证 discount + final == original；original 原样保留
func ComputeSplit(originalAmount, discountPercentage, commissionPercentage decimal.Decimal) Split {
	original := originalAmount
	discount := original.Mul(discountPercentage).Div(hundred).Round(2)
	final := original.Sub(discount)
	commission := final.Mul(commissionPercentage).Div(hundred).Round(2)
	return Split{
		OriginalAmount:       original,
		DiscountPercentage:   discountPercentage.Round(2),
		DiscountAmount:       discount,
		FinalAmount:          final,
		CommissionPercentage: commissionPercentage.Round(2),
		CommissionAmount:     commission,
	}
}

// hasCentPrecision 金额最多两位小数
func hasCentPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// PurchaseService 成交与拆分服务
type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	claimRepo    repository.ClaimRepository
	couponRepo   repository.CouponRepository
	qrRepo       repository.QRCodeRepository
	now          func() time.Time
}

// NewPurchaseService 创建成交服务
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	claimRepo repository.ClaimRepository,
	couponRepo repository.CouponRepository,
	qrRepo repository.QRCodeRepository,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		claimRepo:    claimRepo,
		couponRepo:   couponRepo,
		qrRepo:       qrRepo,
		now:          time.Now,
	}
}

// ProcessPurchaseInput 录入成交输入
type ProcessPurchaseInput struct {
	ClaimID        uint
	OriginalAmount decimal.Decimal
	ProcessedBy    uint
}

// ProcessPurchase 录入成交：冻结二维码当前比例，并在同一事务内推进核销与优惠券状态
func (s *PurchaseService) ProcessPurchase(input ProcessPurchaseInput) (*models.Purchase, error) {
	if input.OriginalAmount.IsNegative() || !hasCentPrecision(input.OriginalAmount) {
		return nil, ErrInvalidAmount
	}

	var purchase *models.Purchase
	err := s.couponRepo.Transaction(func(tx *gorm.DB) error {
		claimRepo := s.claimRepo.WithTx(tx)
		couponRepo := s.couponRepo.WithTx(tx)

		claim, err := claimRepo.GetByIDForUpdate(input.ClaimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return ErrClaimNotFound
		}
		if claim.Status != constants.ClaimStatusClaimed {
			return ErrClaimAlreadyProcessed
		}
		qr, err := s.qrRepo.WithTx(tx).GetByID(claim.QRCodeID)
		if err != nil {
			return err
		}
		if qr == nil {
			return ErrQRCodeNotFound
		}

		now := s.now()
		split := ComputeSplit(input.OriginalAmount, qr.DiscountPercentage.Decimal, qr.CommissionPercentage.Decimal)
		purchase = &models.Purchase{
			ClaimID:              claim.ID,
			OriginalAmount:       models.NewMoneyFromDecimal(split.OriginalAmount),
			DiscountPercentage:   models.NewMoneyFromDecimal(split.DiscountPercentage),
			DiscountAmount:       models.NewMoneyFromDecimal(split.DiscountAmount),
			FinalAmount:          models.NewMoneyFromDecimal(split.FinalAmount),
			CommissionPercentage: models.NewMoneyFromDecimal(split.CommissionPercentage),
			CommissionAmount:     models.NewMoneyFromDecimal(split.CommissionAmount),
			PurchasedAt:          now,
		}
		if input.ProcessedBy != 0 {
			processedBy := input.ProcessedBy
			purchase.ProcessedBy = &processedBy
		}
		if err := s.purchaseRepo.WithTx(tx).Create(purchase); err != nil {
			if isUniqueViolation(err) {
				return ErrClaimAlreadyProcessed
			}
			return err
		}

		ok, err := claimRepo.TransitionStatus(claim.ID, constants.ClaimStatusClaimed, constants.ClaimStatusPurchased, map[string]interface{}{
			"purchased_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrClaimAlreadyProcessed
		}
		claim.Status = constants.ClaimStatusPurchased
		claim.PurchasedAt = &now
		claim.QRCode = qr
		purchase.Claim = claim

		return advanceClaimedCoupon(couponRepo, claim, now)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("purchase_processed",
		"purchase_id", purchase.ID,
		"claim_id", purchase.ClaimID,
		"original_amount", purchase.OriginalAmount.String(),
		"final_amount", purchase.FinalAmount.String(),
		"commission_amount", purchase.CommissionAmount.String(),
	)
	return purchase, nil
}

// advanceClaimedCoupon 将对应优惠券从 claimed 推进到 used（不存在时忽略）
func advanceClaimedCoupon(couponRepo repository.CouponRepository, claim *models.Claim, now time.Time) error {
	var coupon *models.Coupon
	var err error
	if claim.CouponID != nil {
		coupon, err = couponRepo.GetByID(*claim.CouponID)
	} else {
		coupon, err = couponRepo.FindByQRCodeAndPhone(claim.QRCodeID, claim.CustomerPhone, []string{constants.CouponStatusClaimed})
	}
	if err != nil {
		return err
	}
	if coupon == nil || coupon.Status != constants.CouponStatusClaimed {
		return nil
	}
	_, err = couponRepo.TransitionStatus(coupon.ID, constants.CouponStatusClaimed, constants.CouponStatusUsed, map[string]interface{}{
		"used_at": now,
	})
	return err
}

// ListPurchases 成交记录列表
func (s *PurchaseService) ListPurchases(filter repository.PurchaseListFilter) ([]models.Purchase, int64, error) {
	return s.purchaseRepo.List(filter)
}
