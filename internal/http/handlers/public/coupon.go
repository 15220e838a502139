package public

import (
	"strconv"
	"strings"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// IssueCouponRequest 扫码领券请求
type IssueCouponRequest struct {
	QRCodeID       *uint                        `json:"qr_code_id"`
	CustomerName   string                       `json:"customer_name" binding:"required"`
	CustomerPhone  string                       `json:"customer_phone" binding:"required"`
	DealValue      string                       `json:"deal_value"`
	CaptchaPayload shared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// VerifyCouponRequest 门店验券请求
type VerifyCouponRequest struct {
	CouponCode    string `json:"coupon_code" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
}

// VerifyClaimRequest 核验核销记录请求
type VerifyClaimRequest struct {
	ClaimID       uint   `json:"claim_id" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
}

// GetLead 扫码落地页：解析二维码对应的优惠
func (h *Handler) GetLead(c *gin.Context) {
	var qrCodeID *uint
	if raw := strings.TrimSpace(c.Query("qrCodeId")); raw != "" {
		// 非法 ID 与未知二维码一样走全局兜底
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil && parsed > 0 {
			id := uint(parsed)
			qrCodeID = &id
		}
	}
	lead, err := h.QRCodeService.ResolveLead(qrCodeID)
	if err != nil {
		respondServiceError(c, err, "error.lead_resolve_failed")
		return
	}
	response.Success(c, lead)
}

// IssueCoupon 领取优惠券
func (h *Handler) IssueCoupon(c *gin.Context) {
	var req IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneCouponIssue, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondServiceError(c, err, "error.captcha_unavailable")
		return
	}
	result, err := h.CouponService.IssueCoupon(c.Request.Context(), service.IssueCouponInput{
		QRCodeID:      req.QRCodeID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DealValue:     req.DealValue,
	})
	if err != nil {
		respondServiceError(c, err, "error.coupon_issue_failed")
		return
	}
	response.SuccessWithMsg(c, result.Message, result)
}

// VerifyCoupon 门店验券
func (h *Handler) VerifyCoupon(c *gin.Context) {
	var req VerifyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	coupon, err := h.CouponService.VerifyCoupon(req.CouponCode, req.CustomerPhone)
	if err != nil {
		respondServiceError(c, err, "error.coupon_verify_failed")
		return
	}
	shared.RespondSuccessMsg(c, "message.coupon_verified", coupon)
}

// CreateClaim 已验证优惠券转为核销记录
func (h *Handler) CreateClaim(c *gin.Context) {
	var req VerifyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	claim, err := h.ClaimService.CreateClaim(req.CouponCode, req.CustomerPhone)
	if err != nil {
		respondServiceError(c, err, "error.claim_create_failed")
		return
	}
	shared.RespondSuccessMsg(c, "message.claim_created", claim)
}

// VerifyClaim 核验核销记录归属
func (h *Handler) VerifyClaim(c *gin.Context) {
	var req VerifyClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	claim, err := h.ClaimService.VerifyClaim(req.ClaimID, req.CustomerPhone)
	if err != nil {
		respondServiceError(c, err, "error.claim_verify_failed")
		return
	}
	response.Success(c, claim)
}
