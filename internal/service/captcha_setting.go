package service

import (
	"fmt"
	"strings"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"
)

// CaptchaSceneSetting 验证码场景开关
// login 同时作用于管理员与推广方登录
type CaptchaSceneSetting struct {
	Login             bool `json:"login"`
	AffiliateRegister bool `json:"affiliate_register"`
	CouponIssue       bool `json:"coupon_issue"`
}

// CaptchaImageSetting 图片验证码配置
type CaptchaImageSetting struct {
	Length        int `json:"length"`
	Width         int `json:"width"`
	Height        int `json:"height"`
	NoiseCount    int `json:"noise_count"`
	ShowLine      int `json:"show_line"`
	ExpireSeconds int `json:"expire_seconds"`
	MaxStore      int `json:"max_store"`
}

// CaptchaSetting 验证码配置实体
type CaptchaSetting struct {
	Provider string              `json:"provider"`
	Scenes   CaptchaSceneSetting `json:"scenes"`
	Image    CaptchaImageSetting `json:"image"`
}

// CaptchaDefaultSetting 根据静态配置生成默认验证码设置
func CaptchaDefaultSetting(cfg config.CaptchaConfig) CaptchaSetting {
	return NormalizeCaptchaSetting(CaptchaSetting{
		Provider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		Scenes: CaptchaSceneSetting{
			Login:             cfg.Scenes.Login,
			AffiliateRegister: cfg.Scenes.AffiliateRegister,
			CouponIssue:       cfg.Scenes.CouponIssue,
		},
		Image: CaptchaImageSetting{
			Length:        cfg.Image.Length,
			Width:         cfg.Image.Width,
			Height:        cfg.Image.Height,
			NoiseCount:    cfg.Image.NoiseCount,
			ShowLine:      cfg.Image.ShowLine,
			ExpireSeconds: cfg.Image.ExpireSeconds,
			MaxStore:      cfg.Image.MaxStore,
		},
	})
}

// NormalizeCaptchaSetting 归一化验证码配置
func NormalizeCaptchaSetting(setting CaptchaSetting) CaptchaSetting {
	provider := strings.ToLower(strings.TrimSpace(setting.Provider))
	switch provider {
	case constants.CaptchaProviderImage, constants.CaptchaProviderNone:
		setting.Provider = provider
	default:
		setting.Provider = constants.CaptchaProviderNone
	}

	if setting.Image.Length < 4 || setting.Image.Length > 8 {
		setting.Image.Length = 5
	}
	if setting.Image.Width < 100 {
		setting.Image.Width = 240
	}
	if setting.Image.Height < 40 {
		setting.Image.Height = 80
	}
	if setting.Image.NoiseCount < 0 {
		setting.Image.NoiseCount = 2
	}
	if setting.Image.ShowLine < 0 {
		setting.Image.ShowLine = 2
	}
	if setting.Image.ExpireSeconds < 30 || setting.Image.ExpireSeconds > 3600 {
		setting.Image.ExpireSeconds = 300
	}
	if setting.Image.MaxStore < 100 {
		setting.Image.MaxStore = 10240
	}
	return setting
}

// ValidateCaptchaSetting 校验验证码配置
func ValidateCaptchaSetting(setting CaptchaSetting) error {
	raw := strings.ToLower(strings.TrimSpace(setting.Provider))
	if raw != constants.CaptchaProviderNone && raw != constants.CaptchaProviderImage {
		return fmt.Errorf("%w: 验证码提供方无效", ErrCaptchaConfigInvalid)
	}
	normalized := NormalizeCaptchaSetting(setting)
	if normalized.Provider == constants.CaptchaProviderNone && normalized.Scenes.anyEnabled() {
		return fmt.Errorf("%w: 已启用验证码场景时必须选择验证码提供方", ErrCaptchaConfigInvalid)
	}
	return nil
}

// CaptchaSettingToMap 将验证码设置转换为 settings 表格式
func CaptchaSettingToMap(setting CaptchaSetting) map[string]interface{} {
	normalized := NormalizeCaptchaSetting(setting)
	return map[string]interface{}{
		"provider": normalized.Provider,
		"scenes":   captchaScenesToMap(normalized.Scenes),
		"image": map[string]interface{}{
			"length":         normalized.Image.Length,
			"width":          normalized.Image.Width,
			"height":         normalized.Image.Height,
			"noise_count":    normalized.Image.NoiseCount,
			"show_line":      normalized.Image.ShowLine,
			"expire_seconds": normalized.Image.ExpireSeconds,
			"max_store":      normalized.Image.MaxStore,
		},
	}
}

// PublicCaptchaSetting 返回可公开下发前端的验证码配置
func PublicCaptchaSetting(setting CaptchaSetting) models.JSON {
	normalized := NormalizeCaptchaSetting(setting)
	return models.JSON{
		"provider": normalized.Provider,
		"scenes":   captchaScenesToMap(normalized.Scenes),
	}
}

func captchaScenesToMap(scenes CaptchaSceneSetting) map[string]interface{} {
	return map[string]interface{}{
		"login":              scenes.Login,
		"affiliate_register": scenes.AffiliateRegister,
		"coupon_issue":       scenes.CouponIssue,
	}
}

func (s CaptchaSceneSetting) anyEnabled() bool {
	return s.Login || s.AffiliateRegister || s.CouponIssue
}

// IsSceneEnabled 判断指定场景是否开启
func (s CaptchaSetting) IsSceneEnabled(scene string) bool {
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneLogin:
		return s.Scenes.Login
	case constants.CaptchaSceneAffiliateRegister:
		return s.Scenes.AffiliateRegister
	case constants.CaptchaSceneCouponIssue:
		return s.Scenes.CouponIssue
	default:
		return false
	}
}

// GetCaptchaSetting 获取验证码设置（优先 settings，空时回退配置文件）
func (s *SettingService) GetCaptchaSetting(defaultCfg config.CaptchaConfig) (CaptchaSetting, error) {
	fallback := CaptchaDefaultSetting(defaultCfg)
	value, err := s.GetByKey(constants.SettingKeyCaptchaConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return NormalizeCaptchaSetting(captchaSettingFromJSON(value, fallback)), nil
}

// SaveCaptchaSetting 校验并保存验证码设置
func (s *SettingService) SaveCaptchaSetting(setting CaptchaSetting) (CaptchaSetting, error) {
	if err := ValidateCaptchaSetting(setting); err != nil {
		return CaptchaSetting{}, err
	}
	normalized := NormalizeCaptchaSetting(setting)
	if _, err := s.Update(constants.SettingKeyCaptchaConfig, CaptchaSettingToMap(normalized)); err != nil {
		return CaptchaSetting{}, err
	}
	return normalized, nil
}

func captchaSettingFromJSON(raw models.JSON, fallback CaptchaSetting) CaptchaSetting {
	next := fallback
	if raw == nil {
		return next
	}
	next.Provider = readString(raw, "provider", next.Provider)

	if scenesMap := toStringAnyMap(raw["scenes"]); scenesMap != nil {
		next.Scenes.Login = readBool(scenesMap, "login", next.Scenes.Login)
		next.Scenes.AffiliateRegister = readBool(scenesMap, "affiliate_register", next.Scenes.AffiliateRegister)
		next.Scenes.CouponIssue = readBool(scenesMap, "coupon_issue", next.Scenes.CouponIssue)
	}
	if imageMap := toStringAnyMap(raw["image"]); imageMap != nil {
		next.Image.Length = readInt(imageMap, "length", next.Image.Length)
		next.Image.Width = readInt(imageMap, "width", next.Image.Width)
		next.Image.Height = readInt(imageMap, "height", next.Image.Height)
		next.Image.NoiseCount = readInt(imageMap, "noise_count", next.Image.NoiseCount)
		next.Image.ShowLine = readInt(imageMap, "show_line", next.Image.ShowLine)
		next.Image.ExpireSeconds = readInt(imageMap, "expire_seconds", next.Image.ExpireSeconds)
		next.Image.MaxStore = readInt(imageMap, "max_store", next.Image.MaxStore)
	}
	return next
}
