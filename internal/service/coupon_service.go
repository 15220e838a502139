package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/shopspring/decimal"
)

var activeCouponStatuses = []string{constants.CouponStatusGenerated, constants.CouponStatusVerified}

// CouponNotice 优惠券发放通知内容
type CouponNotice struct {
	CouponID           uint
	CustomerName       string
	CustomerPhone      string
	DealValue          string
	DiscountPercentage string
	ExpiresAt          time.Time
}

// CouponNotifier 优惠券通知投递方，返回是否已受理投递
type CouponNotifier interface {
	NotifyCouponIssued(ctx context.Context, notice CouponNotice) bool
}

// CouponService 优惠券发放与核验服务
type CouponService struct {
	couponRepo   repository.CouponRepository
	qrService    *QRCodeService
	systemConfig *SystemConfigService
	notifier     CouponNotifier
	now          func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(
	couponRepo repository.CouponRepository,
	qrService *QRCodeService,
	systemConfig *SystemConfigService,
	notifier CouponNotifier,
) *CouponService {
	return &CouponService{
		couponRepo:   couponRepo,
		qrService:    qrService,
		systemConfig: systemConfig,
		notifier:     notifier,
		now:          time.Now,
	}
}

// IssueCouponInput 发券输入
type IssueCouponInput struct {
	QRCodeID      *uint
	CustomerName  string
	CustomerPhone string
	DealValue     string
}

// IssueCouponResult 发券结果
type IssueCouponResult struct {
	Coupon             *models.Coupon  `json:"coupon"`
	CouponCode         string          `json:"coupon_code"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Message            string          `json:"message"`
	ExpiresAt          time.Time       `json:"expires_at"`
	IsGlobalLead       bool            `json:"is_global_lead"`
	WhatsAppQueued     bool            `json:"whatsapp_queued"`
}

// normalizePhone 去掉空格与横线，保留前导 +，其余必须为数字且至少 10 位
func normalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.NewReplacer(" ", "", "-", "").Replace(trimmed)
	prefix := ""
	if strings.HasPrefix(trimmed, "+") {
		prefix = "+"
		trimmed = strings.TrimPrefix(trimmed, "+")
	}
	if len(trimmed) < constants.CouponPhoneMinLength {
		return "", ErrInvalidPhone
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return prefix + trimmed, nil
}

// ValidPhone 判断手机号是否满足发券要求
func ValidPhone(raw string) bool {
	_, err := normalizePhone(raw)
	return err == nil
}

// IssueCoupon 扫码发券：有效二维码归属推广方，否则走全局兜底
func (s *CouponService) IssueCoupon(ctx context.Context, input IssueCouponInput) (*IssueCouponResult, error) {
	phone, err := normalizePhone(input.CustomerPhone)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, fmt.Errorf("%w: 顾客姓名不能为空", ErrInvalidInput)
	}
	dealValue := strings.TrimSpace(input.DealValue)
	if dealValue == "" {
		dealValue = constants.CouponDealValueDefault
	}

	qr, isGlobal, err := s.qrService.resolveLeadQRCode(input.QRCodeID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	existing, err := s.couponRepo.FindByQRCodeAndPhone(qr.ID, phone, activeCouponStatuses)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !isExpired(existing, now) {
			return nil, ErrDuplicateActiveCoupon
		}
		if _, err := s.couponRepo.TransitionStatus(existing.ID, existing.Status, constants.CouponStatusExpired, nil); err != nil {
			return nil, err
		}
	}

	setting, err := s.systemConfig.Get()
	if err != nil {
		logger.Warnw("system_config_read_failed", "error", err)
	}
	expiresAt := now.Add(time.Duration(setting.CouponExpiryHours) * time.Hour)
	coupon := &models.Coupon{
		QRCodeID:      qr.ID,
		CustomerName:  name,
		CustomerPhone: phone,
		CouponCode:    phone,
		DealValue:     dealValue,
		Status:        constants.CouponStatusGenerated,
		IsGlobal:      isGlobal,
		ExpiresAt:     expiresAt,
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateActiveCoupon
		}
		return nil, err
	}
	coupon.QRCode = qr

	result := &IssueCouponResult{
		Coupon:             coupon,
		CouponCode:         coupon.CouponCode,
		DiscountPercentage: qr.DiscountPercentage.Round(2),
		Message:            leadMessage(qr, isGlobal, setting),
		ExpiresAt:          expiresAt,
		IsGlobalLead:       isGlobal,
	}
	logger.Infow("coupon_issued",
		"coupon_id", coupon.ID,
		"qr_code_id", qr.ID,
		"is_global", isGlobal,
		"expires_at", expiresAt,
	)

	if s.notifier != nil {
		result.WhatsAppQueued = s.notifier.NotifyCouponIssued(ctx, CouponNotice{
			CouponID:           coupon.ID,
			CustomerName:       coupon.CustomerName,
			CustomerPhone:      coupon.CustomerPhone,
			DealValue:          coupon.DealValue,
			DiscountPercentage: formatPercentage(qr.DiscountPercentage.Decimal),
			ExpiresAt:          expiresAt,
		})
	}
	return result, nil
}

// VerifyCoupon 到店核验优惠券：券码必须等于手机号，仅 generated 可核验
func (s *CouponService) VerifyCoupon(couponCode, customerPhone string) (*models.Coupon, error) {
	code, err := normalizePhone(couponCode)
	if err != nil {
		return nil, fmt.Errorf("%w: 券码格式错误", ErrInvalidInput)
	}
	phone, err := normalizePhone(customerPhone)
	if err != nil {
		return nil, err
	}
	if code != phone {
		return nil, fmt.Errorf("%w: 券码必须与手机号一致", ErrInvalidInput)
	}

	coupon, err := s.couponRepo.FindLatestByCode(code, phone, constants.CouponStatusGenerated)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	now := s.now()
	if isExpired(coupon, now) {
		if _, err := s.couponRepo.TransitionStatus(coupon.ID, constants.CouponStatusGenerated, constants.CouponStatusExpired, nil); err != nil {
			return nil, err
		}
		logger.Infow("coupon_expired_on_verify", "coupon_id", coupon.ID)
		return nil, ErrCouponExpired
	}

	ok, err := s.couponRepo.TransitionStatus(coupon.ID, constants.CouponStatusGenerated, constants.CouponStatusVerified, map[string]interface{}{
		"verified_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCouponNotFound
	}
	coupon.Status = constants.CouponStatusVerified
	coupon.VerifiedAt = &now
	logger.Infow("coupon_verified", "coupon_id", coupon.ID, "qr_code_id", coupon.QRCodeID)
	return coupon, nil
}

// ExpireStaleCoupons 批量标记已过期的有效优惠券，供后台定时清理调用
func (s *CouponService) ExpireStaleCoupons(now time.Time) (int64, error) {
	count, err := s.couponRepo.ExpireBefore(now, activeCouponStatuses)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Infow("coupon_expire_sweep", "expired", count)
	}
	return count, nil
}

// ListCoupons 优惠券列表
func (s *CouponService) ListCoupons(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}
