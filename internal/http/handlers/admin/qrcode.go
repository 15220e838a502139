package admin

import (
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/repository"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateQRCodeRequest 创建二维码请求
type CreateQRCodeRequest struct {
	AffiliateID          uint     `json:"affiliate_id" binding:"required"`
	DiscountPercentage   *float64 `json:"discount_percentage"`
	CommissionPercentage *float64 `json:"commission_percentage"`
}

// UpdateQRCodeStatusRequest 启停二维码请求
type UpdateQRCodeStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ListQRCodes 二维码列表
func (h *Handler) ListQRCodes(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.QRCodeService.ListQRCodes(repository.QRCodeListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: shared.QueryUint(c, "affiliate_id"),
		IsActive:    shared.QueryBool(c, "is_active"),
	})
	if err != nil {
		respondServiceError(c, err, "error.qrcode_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetQRCode 二维码详情（含图片）
func (h *Handler) GetQRCode(c *gin.Context) {
	id, ok := parseID(c, "error.qrcode_id_invalid")
	if !ok {
		return
	}
	qr, err := h.QRCodeService.GetQRCode(id)
	if err != nil {
		respondServiceError(c, err, "error.qrcode_fetch_failed")
		return
	}
	response.Success(c, qr)
}

// CreateQRCode 为推广方生成二维码
func (h *Handler) CreateQRCode(c *gin.Context) {
	var req CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	qr, err := h.QRCodeService.CreateQRCode(service.CreateQRCodeInput{
		AffiliateID:          req.AffiliateID,
		DiscountPercentage:   req.DiscountPercentage,
		CommissionPercentage: req.CommissionPercentage,
	})
	if err != nil {
		respondServiceError(c, err, "error.qrcode_save_failed")
		return
	}
	response.Success(c, qr)
}

// UpdateQRCodeStatus 启停二维码
func (h *Handler) UpdateQRCodeStatus(c *gin.Context) {
	id, ok := parseID(c, "error.qrcode_id_invalid")
	if !ok {
		return
	}
	var req UpdateQRCodeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	qr, err := h.QRCodeService.UpdateQRCodeStatus(id, *req.IsActive)
	if err != nil {
		respondServiceError(c, err, "error.qrcode_save_failed")
		return
	}
	response.Success(c, qr)
}

// DeleteQRCode 删除二维码（已有发券或核销时拒绝）
func (h *Handler) DeleteQRCode(c *gin.Context) {
	id, ok := parseID(c, "error.qrcode_id_invalid")
	if !ok {
		return
	}
	if err := h.QRCodeService.DeleteQRCode(id); err != nil {
		respondServiceError(c, err, "error.qrcode_delete_failed")
		return
	}
	logger.Infow("admin_qrcode_deleted", "qr_code_id", id)
	response.Success(c, gin.H{"id": id})
}
