package service

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"

	"github.com/shopspring/decimal"
)

const (
	systemPercentageMin          = 0
	systemPercentageMax          = 100
	systemCouponExpiryHoursMin   = 1
	systemCouponExpiryHoursMax   = 8760
	systemGlobalMessageMaxRune   = 500
	systemDefaultFrontendBaseURL = "https://elevate-coupon-landing-page.vercel.app"
	systemDefaultGlobalMessage   = "Hurry up! Get special discount on your visit!"
)

// SystemSetting 系统运行参数（settings 表 system_config）
type SystemSetting struct {
	DefaultDiscountPercentage   float64 `json:"default_discount_percentage"`
	DefaultCommissionPercentage float64 `json:"default_commission_percentage"`
	GlobalDiscountPercentage    float64 `json:"global_discount_percentage"`
	GlobalDiscountMessage       string  `json:"global_discount_message"`
	CouponExpiryHours           int     `json:"coupon_expiry_hours"`
	FrontendBaseURL             string  `json:"frontend_base_url"`
	WhatsAppEnabled             bool    `json:"whatsapp_enabled"`
	WhatsAppAPIKey              string  `json:"whatsapp_api_key"`
}

// SystemSettingPatch 系统参数补丁
type SystemSettingPatch struct {
	DefaultDiscountPercentage   *float64 `json:"default_discount_percentage"`
	DefaultCommissionPercentage *float64 `json:"default_commission_percentage"`
	GlobalDiscountPercentage    *float64 `json:"global_discount_percentage"`
	GlobalDiscountMessage       *string  `json:"global_discount_message"`
	CouponExpiryHours           *int     `json:"coupon_expiry_hours"`
	FrontendBaseURL             *string  `json:"frontend_base_url"`
	WhatsAppEnabled             *bool    `json:"whatsapp_enabled"`
	WhatsAppAPIKey              *string  `json:"whatsapp_api_key"`
}

// SystemDefaultSetting 默认系统参数，frontendBaseURL 为空时使用内置地址
func SystemDefaultSetting(frontendBaseURL string) SystemSetting {
	frontend := strings.TrimSpace(frontendBaseURL)
	if frontend == "" {
		frontend = systemDefaultFrontendBaseURL
	}
	return NormalizeSystemSetting(SystemSetting{
		DefaultDiscountPercentage:   10,
		DefaultCommissionPercentage: 5,
		GlobalDiscountPercentage:    5,
		GlobalDiscountMessage:       systemDefaultGlobalMessage,
		CouponExpiryHours:           240,
		FrontendBaseURL:             frontend,
		WhatsAppEnabled:             false,
	})
}

// NormalizeSystemSetting 归一化系统参数（百分比保留 2 位小数并截断到合法区间）
func NormalizeSystemSetting(setting SystemSetting) SystemSetting {
	setting.DefaultDiscountPercentage = clampPercentage(setting.DefaultDiscountPercentage)
	setting.DefaultCommissionPercentage = clampPercentage(setting.DefaultCommissionPercentage)
	setting.GlobalDiscountPercentage = clampPercentage(setting.GlobalDiscountPercentage)
	setting.GlobalDiscountMessage = normalizeSettingTextWithRuneLimit(setting.GlobalDiscountMessage, systemGlobalMessageMaxRune)
	if setting.CouponExpiryHours < systemCouponExpiryHoursMin {
		setting.CouponExpiryHours = 240
	}
	if setting.CouponExpiryHours > systemCouponExpiryHoursMax {
		setting.CouponExpiryHours = systemCouponExpiryHoursMax
	}
	setting.FrontendBaseURL = strings.TrimRight(strings.TrimSpace(setting.FrontendBaseURL), "/")
	setting.WhatsAppAPIKey = strings.TrimSpace(setting.WhatsAppAPIKey)
	return setting
}

// ValidateSystemSetting 校验系统参数
func ValidateSystemSetting(setting SystemSetting) error {
	for _, value := range []float64{setting.DefaultDiscountPercentage, setting.DefaultCommissionPercentage, setting.GlobalDiscountPercentage} {
		if value < systemPercentageMin || value > systemPercentageMax {
			return fmt.Errorf("%w: 百分比必须在 0-100 之间", ErrSystemConfigInvalid)
		}
	}
	if setting.CouponExpiryHours < systemCouponExpiryHoursMin || setting.CouponExpiryHours > systemCouponExpiryHoursMax {
		return fmt.Errorf("%w: 优惠券有效期需在 1-8760 小时之间", ErrSystemConfigInvalid)
	}
	if len([]rune(setting.GlobalDiscountMessage)) > systemGlobalMessageMaxRune {
		return fmt.Errorf("%w: 全局优惠文案过长", ErrSystemConfigInvalid)
	}
	parsed, err := url.Parse(setting.FrontendBaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: 前端地址必须为 http(s) 链接", ErrSystemConfigInvalid)
	}
	return nil
}

// SystemSettingToMap 转换为 settings 存储结构
func SystemSettingToMap(setting SystemSetting) map[string]interface{} {
	normalized := NormalizeSystemSetting(setting)
	return map[string]interface{}{
		"default_discount_percentage":   normalized.DefaultDiscountPercentage,
		"default_commission_percentage": normalized.DefaultCommissionPercentage,
		"global_discount_percentage":    normalized.GlobalDiscountPercentage,
		"global_discount_message":       normalized.GlobalDiscountMessage,
		"coupon_expiry_hours":           normalized.CouponExpiryHours,
		"frontend_base_url":             normalized.FrontendBaseURL,
		"whatsapp_enabled":              normalized.WhatsAppEnabled,
		"whatsapp_api_key":              normalized.WhatsAppAPIKey,
	}
}

// MaskSystemSettingForAdmin 返回脱敏后的系统参数（不下发 API Key）
func MaskSystemSettingForAdmin(setting SystemSetting) models.JSON {
	result := models.JSON(SystemSettingToMap(setting))
	delete(result, "whatsapp_api_key")
	result["has_whatsapp_api_key"] = strings.TrimSpace(setting.WhatsAppAPIKey) != ""
	return result
}

func systemSettingFromJSON(raw models.JSON, fallback SystemSetting) SystemSetting {
	next := fallback
	if raw == nil {
		return next
	}
	source := map[string]interface{}(raw)
	next.DefaultDiscountPercentage = readFloat(source, "default_discount_percentage", next.DefaultDiscountPercentage)
	next.DefaultCommissionPercentage = readFloat(source, "default_commission_percentage", next.DefaultCommissionPercentage)
	next.GlobalDiscountPercentage = readFloat(source, "global_discount_percentage", next.GlobalDiscountPercentage)
	next.GlobalDiscountMessage = readString(source, "global_discount_message", next.GlobalDiscountMessage)
	next.CouponExpiryHours = readInt(source, "coupon_expiry_hours", next.CouponExpiryHours)
	next.FrontendBaseURL = readString(source, "frontend_base_url", next.FrontendBaseURL)
	next.WhatsAppEnabled = readBool(source, "whatsapp_enabled", next.WhatsAppEnabled)
	next.WhatsAppAPIKey = readString(source, "whatsapp_api_key", next.WhatsAppAPIKey)
	return NormalizeSystemSetting(next)
}

// applySystemSettingPatch 应用补丁；API Key 传空串表示保留原值
func applySystemSettingPatch(current SystemSetting, patch SystemSettingPatch) SystemSetting {
	next := current
	if patch.DefaultDiscountPercentage != nil {
		next.DefaultDiscountPercentage = *patch.DefaultDiscountPercentage
	}
	if patch.DefaultCommissionPercentage != nil {
		next.DefaultCommissionPercentage = *patch.DefaultCommissionPercentage
	}
	if patch.GlobalDiscountPercentage != nil {
		next.GlobalDiscountPercentage = *patch.GlobalDiscountPercentage
	}
	if patch.GlobalDiscountMessage != nil {
		next.GlobalDiscountMessage = *patch.GlobalDiscountMessage
	}
	if patch.CouponExpiryHours != nil {
		next.CouponExpiryHours = *patch.CouponExpiryHours
	}
	if patch.FrontendBaseURL != nil {
		next.FrontendBaseURL = *patch.FrontendBaseURL
	}
	if patch.WhatsAppEnabled != nil {
		next.WhatsAppEnabled = *patch.WhatsAppEnabled
	}
	if patch.WhatsAppAPIKey != nil {
		if key := strings.TrimSpace(*patch.WhatsAppAPIKey); key != "" {
			next.WhatsAppAPIKey = key
		}
	}
	return next
}

// validatePatchPercentages 在截断前校验补丁中的百分比，越界直接拒绝
func validatePatchPercentages(patch SystemSettingPatch) error {
	for _, value := range []*float64{patch.DefaultDiscountPercentage, patch.DefaultCommissionPercentage, patch.GlobalDiscountPercentage} {
		if value == nil {
			continue
		}
		if *value < systemPercentageMin || *value > systemPercentageMax || math.IsNaN(*value) {
			return fmt.Errorf("%w: 百分比必须在 0-100 之间", ErrInvalidPercentage)
		}
	}
	if patch.CouponExpiryHours != nil {
		hours := *patch.CouponExpiryHours
		if hours < systemCouponExpiryHoursMin || hours > systemCouponExpiryHoursMax {
			return fmt.Errorf("%w: 优惠券有效期需在 1-8760 小时之间", ErrSystemConfigInvalid)
		}
	}
	return nil
}

// GetSystemSetting 获取系统参数（优先 settings，空时回退默认）
func (s *SettingService) GetSystemSetting(fallback SystemSetting) (SystemSetting, error) {
	if s == nil {
		return fallback, nil
	}
	value, err := s.GetByKey(constants.SettingKeySystemConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return systemSettingFromJSON(value, fallback), nil
}

// PatchSystemSetting 基于补丁更新系统参数
func (s *SettingService) PatchSystemSetting(fallback SystemSetting, patch SystemSettingPatch) (SystemSetting, error) {
	if err := validatePatchPercentages(patch); err != nil {
		return SystemSetting{}, err
	}
	current, err := s.GetSystemSetting(fallback)
	if err != nil {
		return SystemSetting{}, err
	}
	next := NormalizeSystemSetting(applySystemSettingPatch(current, patch))
	if err := ValidateSystemSetting(next); err != nil {
		return SystemSetting{}, err
	}
	if _, err := s.Update(constants.SettingKeySystemConfig, SystemSettingToMap(next)); err != nil {
		return SystemSetting{}, err
	}
	return next, nil
}

func clampPercentage(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	value = math.Round(value*100) / 100
	if value < systemPercentageMin {
		return systemPercentageMin
	}
	if value > systemPercentageMax {
		return systemPercentageMax
	}
	return value
}

func percentageDecimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}
