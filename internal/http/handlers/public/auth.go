package public

import (
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email          string                       `json:"email" binding:"required"`
	Password       string                       `json:"password" binding:"required"`
	CaptchaPayload shared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// RegisterAffiliateRequest 推广方自助注册请求
type RegisterAffiliateRequest struct {
	Name           string                       `json:"name" binding:"required"`
	Email          string                       `json:"email" binding:"required,email"`
	PhoneNumber    string                       `json:"phone_number" binding:"omitempty,phone"`
	Password       string                       `json:"password" binding:"required"`
	Address        string                       `json:"address"`
	UpiID          string                       `json:"upi_id"`
	CaptchaPayload shared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// Login 管理员与推广方共用登录入口
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondServiceError(c, err, "error.captcha_unavailable")
		return
	}

	result, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "error.login_failed")
		return
	}
	logger.Infow("auth_login_success",
		"principal_kind", result.Principal.Kind,
		"principal_id", result.Principal.ID(),
		"client_ip", c.ClientIP(),
	)
	response.Success(c, result)
}

// RegisterAffiliate 推广方注册，账号需后台审核
func (h *Handler) RegisterAffiliate(c *gin.Context) {
	var req RegisterAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneAffiliateRegister, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondServiceError(c, err, "error.captcha_unavailable")
		return
	}

	affiliate, err := h.AuthService.RegisterAffiliate(service.RegisterAffiliateInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Address:     req.Address,
		UpiID:       req.UpiID,
	})
	if err != nil {
		respondServiceError(c, err, "error.register_failed")
		return
	}
	shared.RespondSuccessMsg(c, "message.registration_pending", affiliate)
}
