package service

import (
	"fmt"
	"strings"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const globalLeadMaxRetry = 8

// QRImageEncoder 二维码图片编码器
type QRImageEncoder interface {
	Encode(payload string) (string, error)
}

// GlobalLead 全局兜底推广方及其当前启用的二维码
type GlobalLead struct {
	Affiliate *models.Affiliate
	QRCode    *models.QRCode
}

// GlobalLeadService 全局兜底线索服务
// 全局推广方与二维码通过 system_singletons 唯一键锚定，并发首用只会落地一份
type GlobalLeadService struct {
	affiliateRepo repository.AffiliateRepository
	qrRepo        repository.QRCodeRepository
	singletonRepo repository.SingletonRepository
	systemConfig  *SystemConfigService
	encoder       QRImageEncoder
	group         singleflight.Group
}

// NewGlobalLeadService 创建全局兜底线索服务
func NewGlobalLeadService(
	affiliateRepo repository.AffiliateRepository,
	qrRepo repository.QRCodeRepository,
	singletonRepo repository.SingletonRepository,
	systemConfig *SystemConfigService,
	encoder QRImageEncoder,
) *GlobalLeadService {
	return &GlobalLeadService{
		affiliateRepo: affiliateRepo,
		qrRepo:        qrRepo,
		singletonRepo: singletonRepo,
		systemConfig:  systemConfig,
		encoder:       encoder,
	}
}

// Resolve 查找或创建全局兜底线索
func (s *GlobalLeadService) Resolve() (*GlobalLead, error) {
	value, err, _ := s.group.Do("global_lead", func() (interface{}, error) {
		var lastErr error
		for i := 0; i < globalLeadMaxRetry; i++ {
			lead, err := s.findOrCreate()
			if err == nil {
				return lead, nil
			}
			if !isUniqueViolation(err) {
				return nil, err
			}
			lastErr = err
			logger.Debugw("global_lead_create_retry", "attempt", i+1, "error", err)
		}
		return nil, fmt.Errorf("resolve global lead failed: %w", lastErr)
	})
	if err != nil {
		return nil, err
	}
	return value.(*GlobalLead), nil
}

func (s *GlobalLeadService) findOrCreate() (*GlobalLead, error) {
	setting, err := s.systemConfig.Get()
	if err != nil {
		logger.Warnw("system_config_read_failed", "error", err)
	}

	var lead *GlobalLead
	err = s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		affiliateRepo := s.affiliateRepo.WithTx(tx)
		qrRepo := s.qrRepo.WithTx(tx)
		singletonRepo := s.singletonRepo.WithTx(tx)

		affiliate, err := s.ensureAffiliate(affiliateRepo, singletonRepo)
		if err != nil {
			return err
		}
		qr, err := s.ensureQRCode(qrRepo, singletonRepo, affiliate, setting)
		if err != nil {
			return err
		}
		qr.Affiliate = affiliate
		lead = &GlobalLead{Affiliate: affiliate, QRCode: qr}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *GlobalLeadService) ensureAffiliate(affiliateRepo repository.AffiliateRepository, singletonRepo repository.SingletonRepository) (*models.Affiliate, error) {
	anchor, err := singletonRepo.Get(constants.SingletonGlobalAffiliate)
	if err != nil {
		return nil, err
	}
	if anchor != nil {
		affiliate, err := affiliateRepo.GetByID(anchor.RefID)
		if err != nil {
			return nil, err
		}
		if affiliate != nil {
			return affiliate, nil
		}
	}

	// 兼容历史数据：哨兵邮箱已存在时直接锚定
	affiliate, err := affiliateRepo.GetByEmail(constants.GlobalAffiliateEmail)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		hash, err := hashPassword(uuid.NewString())
		if err != nil {
			return nil, err
		}
		affiliate = &models.Affiliate{
			Name:         constants.GlobalAffiliateName,
			Email:        constants.GlobalAffiliateEmail,
			PhoneNumber:  constants.GlobalAffiliatePhone,
			PasswordHash: hash,
			Address:      "System",
			Status:       constants.AffiliateStatusActive,
			IsSystem:     true,
		}
		if err := affiliateRepo.Create(affiliate); err != nil {
			return nil, err
		}
		logger.Infow("global_affiliate_created", "affiliate_id", affiliate.ID)
	}

	if anchor == nil {
		err = singletonRepo.Create(&models.SystemSingleton{Key: constants.SingletonGlobalAffiliate, RefID: affiliate.ID})
	} else {
		err = singletonRepo.UpdateRef(constants.SingletonGlobalAffiliate, affiliate.ID)
	}
	if err != nil {
		return nil, err
	}
	return affiliate, nil
}

func (s *GlobalLeadService) ensureQRCode(
	qrRepo repository.QRCodeRepository,
	singletonRepo repository.SingletonRepository,
	affiliate *models.Affiliate,
	setting SystemSetting,
) (*models.QRCode, error) {
	anchor, err := singletonRepo.GetForUpdate(constants.SingletonGlobalQRCode)
	if err != nil {
		return nil, err
	}
	if anchor != nil {
		qr, err := qrRepo.GetByID(anchor.RefID)
		if err != nil {
			return nil, err
		}
		if qr != nil && qr.IsActive {
			return qr, nil
		}
	}

	qr, err := s.buildGlobalQRCode(affiliate, setting)
	if err != nil {
		return nil, err
	}
	if err := qrRepo.Create(qr); err != nil {
		return nil, err
	}

	if anchor == nil {
		err = singletonRepo.Create(&models.SystemSingleton{Key: constants.SingletonGlobalQRCode, RefID: qr.ID})
	} else {
		err = singletonRepo.UpdateRef(constants.SingletonGlobalQRCode, qr.ID)
	}
	if err != nil {
		return nil, err
	}
	logger.Infow("global_qrcode_created", "qr_code_id", qr.ID, "discount_percentage", qr.DiscountPercentage.String())
	return qr, nil
}

func (s *GlobalLeadService) buildGlobalQRCode(affiliate *models.Affiliate, setting SystemSetting) (*models.QRCode, error) {
	discount := models.NewMoneyFromDecimal(percentageDecimal(setting.GlobalDiscountPercentage))
	commission := models.NewMoneyFromDecimal(percentageDecimal(0))
	payload, err := buildQRCodePayload(affiliate.ID, discount, commission, constants.GlobalQRCodeUniqueID)
	if err != nil {
		return nil, err
	}
	redirect := strings.TrimSpace(setting.FrontendBaseURL)
	qr := &models.QRCode{
		AffiliateID:          affiliate.ID,
		DiscountPercentage:   discount,
		CommissionPercentage: commission,
		QRCodeData:           payload,
		RedirectURL:          redirect,
		IsActive:             true,
		IsGlobal:             true,
	}
	if s.encoder != nil && redirect != "" {
		image, err := s.encoder.Encode(redirect)
		if err != nil {
			return nil, err
		}
		qr.QRCodeImage = image
	}
	return qr, nil
}

// UpdateGlobalSettingsInput 全局兜底优惠设置
type UpdateGlobalSettingsInput struct {
	DiscountPercentage *float64
	Message            *string
}

// UpdateGlobalSettings 更新全局兜底折扣与文案，并同步当前启用的全局二维码
// 历史成交保留成交时冻结的折扣比例，不受影响
func (s *GlobalLeadService) UpdateGlobalSettings(input UpdateGlobalSettingsInput) (SystemSetting, error) {
	if input.DiscountPercentage == nil && input.Message == nil {
		return SystemSetting{}, fmt.Errorf("%w: 未提供任何修改项", ErrInvalidInput)
	}
	patch := SystemSettingPatch{GlobalDiscountPercentage: input.DiscountPercentage}
	if input.Message != nil {
		message := strings.TrimSpace(*input.Message)
		patch.GlobalDiscountMessage = &message
	} else if input.DiscountPercentage != nil {
		message := fmt.Sprintf("Scan this QR code for a special %s%% discount!", formatPercentage(percentageDecimal(*input.DiscountPercentage)))
		patch.GlobalDiscountMessage = &message
	}

	updated, err := s.systemConfig.Update(patch)
	if err != nil {
		return SystemSetting{}, err
	}
	if input.DiscountPercentage == nil {
		return updated, nil
	}

	lead, err := s.Resolve()
	if err != nil {
		return SystemSetting{}, err
	}
	qr := lead.QRCode
	qr.DiscountPercentage = models.NewMoneyFromDecimal(percentageDecimal(updated.GlobalDiscountPercentage))
	payload, err := buildQRCodePayload(qr.AffiliateID, qr.DiscountPercentage, qr.CommissionPercentage, constants.GlobalQRCodeUniqueID)
	if err != nil {
		return SystemSetting{}, err
	}
	qr.QRCodeData = payload
	if err := s.qrRepo.Update(qr); err != nil {
		return SystemSetting{}, err
	}
	logger.Infow("global_settings_updated",
		"qr_code_id", qr.ID,
		"discount_percentage", qr.DiscountPercentage.String(),
	)
	return updated, nil
}
