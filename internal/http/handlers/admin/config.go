package admin

import (
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateGlobalSettingsRequest 全局兜底优惠请求
type UpdateGlobalSettingsRequest struct {
	DiscountPercentage *float64 `json:"discount_percentage"`
	Message            *string  `json:"message"`
}

// GetSystemConfig 系统配置（密钥脱敏）
func (h *Handler) GetSystemConfig(c *gin.Context) {
	setting, err := h.SystemConfigService.Get()
	if err != nil {
		respondServiceError(c, err, "error.settings_fetch_failed")
		return
	}
	response.Success(c, service.MaskSystemSettingForAdmin(setting))
}

// UpdateSystemConfig 修改系统配置，全局兜底字段同步到全局二维码
func (h *Handler) UpdateSystemConfig(c *gin.Context) {
	var patch service.SystemSettingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}
	global := service.UpdateGlobalSettingsInput{
		DiscountPercentage: patch.GlobalDiscountPercentage,
		Message:            patch.GlobalDiscountMessage,
	}
	patch.GlobalDiscountPercentage = nil
	patch.GlobalDiscountMessage = nil

	setting, err := h.SystemConfigService.Update(patch)
	if err != nil {
		respondServiceError(c, err, "error.settings_save_failed")
		return
	}
	if global.DiscountPercentage != nil || global.Message != nil {
		setting, err = h.GlobalLeadService.UpdateGlobalSettings(global)
		if err != nil {
			respondServiceError(c, err, "error.settings_save_failed")
			return
		}
	}
	if principal, ok := currentAdmin(c); ok {
		logger.Infow("admin_system_config_updated", "admin_id", principal.AdminID)
	}
	response.Success(c, service.MaskSystemSettingForAdmin(setting))
}

// UpdateGlobalSettings 修改全局兜底折扣与文案
func (h *Handler) UpdateGlobalSettings(c *gin.Context) {
	var req UpdateGlobalSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	setting, err := h.GlobalLeadService.UpdateGlobalSettings(service.UpdateGlobalSettingsInput{
		DiscountPercentage: req.DiscountPercentage,
		Message:            req.Message,
	})
	if err != nil {
		respondServiceError(c, err, "error.settings_save_failed")
		return
	}
	response.Success(c, service.MaskSystemSettingForAdmin(setting))
}

// GetCaptchaConfig 验证码配置
func (h *Handler) GetCaptchaConfig(c *gin.Context) {
	setting, err := h.CaptchaService.GetSetting()
	if err != nil {
		respondServiceError(c, err, "error.settings_fetch_failed")
		return
	}
	response.Success(c, setting)
}

// UpdateCaptchaConfig 修改验证码配置
func (h *Handler) UpdateCaptchaConfig(c *gin.Context) {
	var req service.CaptchaSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	setting, err := h.CaptchaService.UpdateSetting(req)
	if err != nil {
		respondServiceError(c, err, "error.settings_save_failed")
		return
	}
	response.Success(c, setting)
}
