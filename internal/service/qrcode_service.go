package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QRCodeService 推广二维码服务
type QRCodeService struct {
	qrRepo        repository.QRCodeRepository
	affiliateRepo repository.AffiliateRepository
	couponRepo    repository.CouponRepository
	claimRepo     repository.ClaimRepository
	systemConfig  *SystemConfigService
	globalLead    *GlobalLeadService
	encoder       QRImageEncoder
}

// NewQRCodeService 创建二维码服务
func NewQRCodeService(
	qrRepo repository.QRCodeRepository,
	affiliateRepo repository.AffiliateRepository,
	couponRepo repository.CouponRepository,
	claimRepo repository.ClaimRepository,
	systemConfig *SystemConfigService,
	globalLead *GlobalLeadService,
	encoder QRImageEncoder,
) *QRCodeService {
	return &QRCodeService{
		qrRepo:        qrRepo,
		affiliateRepo: affiliateRepo,
		couponRepo:    couponRepo,
		claimRepo:     claimRepo,
		systemConfig:  systemConfig,
		globalLead:    globalLead,
		encoder:       encoder,
	}
}

// qrCodePayload 二维码编码负载
type qrCodePayload struct {
	AffiliateID          uint   `json:"affiliateId"`
	DiscountPercentage   string `json:"discountPercentage"`
	CommissionPercentage string `json:"commissionPercentage"`
	UniqueID             string `json:"uniqueId"`
}

func buildQRCodePayload(affiliateID uint, discount, commission models.Money, uniqueID string) (string, error) {
	raw, err := json.Marshal(qrCodePayload{
		AffiliateID:          affiliateID,
		DiscountPercentage:   formatPercentage(discount.Decimal),
		CommissionPercentage: formatPercentage(commission.Decimal),
		UniqueID:             uniqueID,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// formatPercentage 百分比展示（去掉多余的 0，例如 7.50 -> 7.5）
func formatPercentage(value decimal.Decimal) string {
	return value.Round(2).String()
}

func resolvePercentage(value *float64, fallback float64) (models.Money, error) {
	percentage := fallback
	if value != nil {
		percentage = *value
	}
	if math.IsNaN(percentage) || percentage < 0 || percentage > 100 {
		return models.Money{}, ErrInvalidPercentage
	}
	return models.NewMoneyFromDecimal(percentageDecimal(percentage)), nil
}

// CreateQRCodeInput 创建二维码输入，百分比为空时取系统默认值
type CreateQRCodeInput struct {
	AffiliateID          uint
	DiscountPercentage   *float64
	CommissionPercentage *float64
}

// CreateQRCode 为推广方生成二维码
func (s *QRCodeService) CreateQRCode(input CreateQRCodeInput) (*models.QRCode, error) {
	affiliate, err := s.affiliateRepo.GetByID(input.AffiliateID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil || affiliate.IsSystem {
		return nil, ErrAffiliateNotFound
	}

	setting, err := s.systemConfig.Get()
	if err != nil {
		logger.Warnw("system_config_read_failed", "error", err)
	}
	discount, err := resolvePercentage(input.DiscountPercentage, setting.DefaultDiscountPercentage)
	if err != nil {
		return nil, err
	}
	commission, err := resolvePercentage(input.CommissionPercentage, setting.DefaultCommissionPercentage)
	if err != nil {
		return nil, err
	}
	payload, err := buildQRCodePayload(affiliate.ID, discount, commission, uuid.NewString())
	if err != nil {
		return nil, err
	}

	qr := &models.QRCode{
		AffiliateID:          affiliate.ID,
		DiscountPercentage:   discount,
		CommissionPercentage: commission,
		QRCodeData:           payload,
		IsActive:             true,
	}
	err = s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		qrRepo := s.qrRepo.WithTx(tx)
		if err := qrRepo.Create(qr); err != nil {
			return err
		}
		// 跳转地址依赖主键，落库后回填
		qr.RedirectURL = buildRedirectURL(setting.FrontendBaseURL, qr.ID)
		if s.encoder != nil {
			image, err := s.encoder.Encode(qr.RedirectURL)
			if err != nil {
				return fmt.Errorf("encode qr image failed: %w", err)
			}
			qr.QRCodeImage = image
		}
		return qrRepo.Update(qr)
	})
	if err != nil {
		return nil, err
	}
	qr.Affiliate = affiliate
	logger.Infow("qrcode_created",
		"qr_code_id", qr.ID,
		"affiliate_id", affiliate.ID,
		"discount_percentage", discount.String(),
		"commission_percentage", commission.String(),
	)
	return qr, nil
}

func buildRedirectURL(frontendBaseURL string, qrCodeID uint) string {
	base := strings.TrimRight(strings.TrimSpace(frontendBaseURL), "/")
	return base + "?qrCodeId=" + strconv.FormatUint(uint64(qrCodeID), 10)
}

// ListQRCodes 二维码列表
func (s *QRCodeService) ListQRCodes(filter repository.QRCodeListFilter) ([]models.QRCode, int64, error) {
	return s.qrRepo.List(filter)
}

// ListAffiliateQRCodes 推广方查看自己的二维码（含图片）
func (s *QRCodeService) ListAffiliateQRCodes(affiliateID uint, page, pageSize int) ([]models.QRCode, int64, error) {
	if affiliateID == 0 {
		return nil, 0, ErrAffiliateNotFound
	}
	return s.qrRepo.List(repository.QRCodeListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: affiliateID,
		WithImage:   true,
	})
}

// GetQRCode 获取二维码详情
func (s *QRCodeService) GetQRCode(id uint) (*models.QRCode, error) {
	qr, err := s.qrRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if qr == nil {
		return nil, ErrQRCodeNotFound
	}
	return qr, nil
}

// UpdateQRCodeStatus 启用/停用二维码
func (s *QRCodeService) UpdateQRCodeStatus(id uint, isActive bool) (*models.QRCode, error) {
	qr, err := s.GetQRCode(id)
	if err != nil {
		return nil, err
	}
	if qr.IsGlobal && !isActive {
		return nil, fmt.Errorf("%w: 全局二维码不可停用", ErrInvalidState)
	}
	if err := s.qrRepo.UpdateStatus(qr.ID, isActive); err != nil {
		return nil, err
	}
	qr.IsActive = isActive
	logger.Infow("qrcode_status_updated", "qr_code_id", qr.ID, "is_active", isActive)
	return qr, nil
}

// DeleteQRCode 删除二维码（存在优惠券或核销记录时禁止删除）
func (s *QRCodeService) DeleteQRCode(id uint) error {
	qr, err := s.GetQRCode(id)
	if err != nil {
		return err
	}
	if qr.IsGlobal {
		return fmt.Errorf("%w: 全局二维码不可删除", ErrInvalidState)
	}
	coupons, err := s.couponRepo.CountByQRCode(qr.ID)
	if err != nil {
		return err
	}
	claims, err := s.claimRepo.CountByQRCode(qr.ID)
	if err != nil {
		return err
	}
	if coupons > 0 || claims > 0 {
		return ErrQRCodeHasRedemptions
	}
	if err := s.qrRepo.Delete(qr.ID); err != nil {
		return err
	}
	logger.Infow("qrcode_deleted", "qr_code_id", qr.ID)
	return nil
}

// Lead 扫码线索信息
type Lead struct {
	AffiliateName      string          `json:"affiliate_name"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	QRCodeID           uint            `json:"qr_code_id"`
	IsGlobal           bool            `json:"is_global"`
	Message            string          `json:"message"`
}

// resolveLeadQRCode 解析线索来源：指定的二维码有效则归属推广方，否则走全局兜底
func (s *QRCodeService) resolveLeadQRCode(qrCodeID *uint) (*models.QRCode, bool, error) {
	if qrCodeID != nil && *qrCodeID != 0 {
		qr, err := s.qrRepo.GetByID(*qrCodeID)
		if err != nil {
			return nil, false, err
		}
		if qr != nil && qr.IsActive && !qr.IsGlobal && affiliateCanTransact(qr.Affiliate) {
			return qr, false, nil
		}
	}
	lead, err := s.globalLead.Resolve()
	if err != nil {
		return nil, false, err
	}
	return lead.QRCode, true, nil
}

func affiliateCanTransact(affiliate *models.Affiliate) bool {
	return affiliate != nil && affiliate.Status == constants.AffiliateStatusActive
}

// ResolveLead 扫码落地页解析线索
func (s *QRCodeService) ResolveLead(qrCodeID *uint) (*Lead, error) {
	qr, isGlobal, err := s.resolveLeadQRCode(qrCodeID)
	if err != nil {
		return nil, err
	}
	setting, err := s.systemConfig.Get()
	if err != nil {
		logger.Warnw("system_config_read_failed", "error", err)
	}
	lead := &Lead{
		DiscountPercentage: qr.DiscountPercentage.Round(2),
		QRCodeID:           qr.ID,
		IsGlobal:           isGlobal,
		Message:            leadMessage(qr, isGlobal, setting),
	}
	if qr.Affiliate != nil {
		lead.AffiliateName = qr.Affiliate.Name
	}
	return lead, nil
}

func leadMessage(qr *models.QRCode, isGlobal bool, setting SystemSetting) string {
	percentage := formatPercentage(qr.DiscountPercentage.Decimal)
	if !isGlobal {
		return fmt.Sprintf("Congratulations! You've been referred for a special %s%% discount!", percentage)
	}
	if message := strings.TrimSpace(setting.GlobalDiscountMessage); message != "" {
		return message
	}
	return fmt.Sprintf("Enjoy %s%% off on your visit!", percentage)
}
