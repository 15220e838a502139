package admin

import (
	"strings"

	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/repository"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProcessPurchaseRequest 录入成交请求
type ProcessPurchaseRequest struct {
	ClaimID        uint            `json:"claim_id" binding:"required"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
}

// ListCoupons 优惠券列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.CouponService.ListCoupons(repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		QRCodeID: shared.QueryUint(c, "qr_code_id"),
		Status:   strings.TrimSpace(c.Query("status")),
		Phone:    strings.TrimSpace(c.Query("phone")),
	})
	if err != nil {
		respondServiceError(c, err, "error.coupon_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListClaims 核销记录列表
func (h *Handler) ListClaims(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.ClaimService.ListClaims(repository.ClaimListFilter{
		Page:     page,
		PageSize: pageSize,
		QRCodeID: shared.QueryUint(c, "qr_code_id"),
		Status:   strings.TrimSpace(c.Query("status")),
		Phone:    strings.TrimSpace(c.Query("phone")),
	})
	if err != nil {
		respondServiceError(c, err, "error.claim_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ProcessPurchase 门店录入消费金额，按冻结比例拆分
func (h *Handler) ProcessPurchase(c *gin.Context) {
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req ProcessPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	purchase, err := h.PurchaseService.ProcessPurchase(service.ProcessPurchaseInput{
		ClaimID:        req.ClaimID,
		OriginalAmount: req.OriginalAmount,
		ProcessedBy:    operator.AdminID,
	})
	if err != nil {
		respondServiceError(c, err, "error.purchase_failed")
		return
	}
	response.Success(c, purchase)
}

// ListPurchases 成交记录列表
func (h *Handler) ListPurchases(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.PurchaseService.ListPurchases(repository.PurchaseListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: shared.QueryUint(c, "affiliate_id"),
		CreatedFrom: shared.QueryDate(c, "from", false),
		CreatedTo:   shared.QueryDate(c, "to", true),
	})
	if err != nil {
		respondServiceError(c, err, "error.purchase_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
