package public

import (
	"errors"

	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, "error.captcha_unavailable", service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, response.CodeBadRequest, "error.captcha_unavailable", nil)
		default:
			respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// GetCaptchaConfig 前台可见的验证码开关
func (h *Handler) GetCaptchaConfig(c *gin.Context) {
	setting, err := h.CaptchaService.GetPublicSetting()
	if err != nil {
		respondServiceError(c, err, "error.settings_fetch_failed")
		return
	}
	response.Success(c, setting)
}
