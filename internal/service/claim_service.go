package service

import (
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"gorm.io/gorm"
)

var activeClaimStatuses = []string{constants.ClaimStatusClaimed, constants.ClaimStatusPurchased}

// ClaimService 核销状态机服务
type ClaimService struct {
	claimRepo  repository.ClaimRepository
	couponRepo repository.CouponRepository
	now        func() time.Time
}

// NewClaimService 创建核销服务
func NewClaimService(claimRepo repository.ClaimRepository, couponRepo repository.CouponRepository) *ClaimService {
	return &ClaimService{
		claimRepo:  claimRepo,
		couponRepo: couponRepo,
		now:        time.Now,
	}
}

// ExpireStaleClaims 优惠券到期仍未成交的核销记录转为 expired，对应 claimed 优惠券一并过期
func (s *ClaimService) ExpireStaleClaims(now time.Time) (int64, error) {
	var count int64
	err := s.couponRepo.Transaction(func(tx *gorm.DB) error {
		expired, err := s.claimRepo.WithTx(tx).ExpireBefore(now)
		if err != nil {
			return err
		}
		if _, err := s.couponRepo.WithTx(tx).ExpireBefore(now, []string{constants.CouponStatusClaimed}); err != nil {
			return err
		}
		count = expired
		return nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Infow("claim_expire_sweep", "expired", count)
	}
	return count, nil
}

// CreateClaim 将已核验的优惠券转为核销记录
func (s *ClaimService) CreateClaim(couponCode, customerPhone string) (*models.Claim, error) {
	phone, err := normalizePhone(customerPhone)
	if err != nil {
		return nil, err
	}
	code, err := normalizePhone(couponCode)
	if err != nil {
		return nil, ErrCouponNotVerified
	}

	coupon, err := s.couponRepo.FindLatestByCode(code, phone, constants.CouponStatusVerified)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotVerified
	}

	now := s.now()
	if isExpired(coupon, now) {
		if _, err := s.couponRepo.TransitionStatus(coupon.ID, constants.CouponStatusVerified, constants.CouponStatusExpired, nil); err != nil {
			return nil, err
		}
		logger.Infow("coupon_expired_on_claim", "coupon_id", coupon.ID)
		return nil, ErrCouponExpired
	}

	existing, err := s.claimRepo.FindByQRCodeAndPhone(coupon.QRCodeID, coupon.CustomerPhone, activeClaimStatuses)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateActiveClaim
	}

	couponID := coupon.ID
	claim := &models.Claim{
		QRCodeID:      coupon.QRCodeID,
		CouponID:      &couponID,
		CustomerName:  coupon.CustomerName,
		CustomerPhone: coupon.CustomerPhone,
		Status:        constants.ClaimStatusClaimed,
		ClaimedAt:     now,
	}
	err = s.couponRepo.Transaction(func(tx *gorm.DB) error {
		ok, err := s.couponRepo.WithTx(tx).TransitionStatus(coupon.ID, constants.CouponStatusVerified, constants.CouponStatusClaimed, map[string]interface{}{
			"claimed_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponNotVerified
		}
		if err := s.claimRepo.WithTx(tx).Create(claim); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateActiveClaim
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("claim_created", "claim_id", claim.ID, "coupon_id", coupon.ID, "qr_code_id", claim.QRCodeID)
	return claim, nil
}

// VerifyClaim 查询待成交的核销记录
// 不存在、手机号不符、已成交或已过期统一返回 ErrClaimNotFound
func (s *ClaimService) VerifyClaim(claimID uint, customerPhone string) (*models.Claim, error) {
	phone, err := normalizePhone(customerPhone)
	if err != nil {
		return nil, ErrClaimNotFound
	}
	claim, err := s.claimRepo.GetByID(claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil || claim.CustomerPhone != phone || claim.Status != constants.ClaimStatusClaimed {
		return nil, ErrClaimNotFound
	}
	return claim, nil
}

// ListClaims 核销记录列表
func (s *ClaimService) ListClaims(filter repository.ClaimListFilter) ([]models.Claim, int64, error) {
	return s.claimRepo.List(filter)
}
