package admin

import (
	"strings"

	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/repository"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAffiliateRequest 创建推广方请求
type CreateAffiliateRequest struct {
	Name           string   `json:"name" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	PhoneNumber    string   `json:"phone_number" binding:"omitempty,phone"`
	Password       string   `json:"password"`
	Address        string   `json:"address"`
	UpiID          string   `json:"upi_id"`
	CommissionRate *float64 `json:"commission_rate" binding:"omitempty,gte=0,lte=100"`
	Status         string   `json:"status"`
}

// UpdateAffiliateRequest 更新推广方请求
type UpdateAffiliateRequest struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email" binding:"omitempty,email"`
	PhoneNumber    *string  `json:"phone_number" binding:"omitempty,phone"`
	Address        *string  `json:"address"`
	UpiID          *string  `json:"upi_id"`
	CommissionRate *float64 `json:"commission_rate" binding:"omitempty,gte=0,lte=100"`
}

// UpdateAffiliateStatusRequest 审核推广方请求
type UpdateAffiliateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ListAffiliates 推广方列表
func (h *Handler) ListAffiliates(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.AffiliateService.ListAffiliates(repository.AffiliateListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondServiceError(c, err, "error.affiliate_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetAffiliate 推广方详情
func (h *Handler) GetAffiliate(c *gin.Context) {
	id, ok := parseID(c, "error.affiliate_id_invalid")
	if !ok {
		return
	}
	affiliate, err := h.AffiliateService.GetAffiliate(id)
	if err != nil {
		respondServiceError(c, err, "error.affiliate_fetch_failed")
		return
	}
	response.Success(c, affiliate)
}

// CreateAffiliate 后台创建推广方
func (h *Handler) CreateAffiliate(c *gin.Context) {
	var req CreateAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	affiliate, err := h.AffiliateService.CreateAffiliate(service.CreateAffiliateInput{
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Password:       req.Password,
		Address:        req.Address,
		UpiID:          req.UpiID,
		CommissionRate: req.CommissionRate,
		Status:         req.Status,
	})
	if err != nil {
		respondServiceError(c, err, "error.affiliate_save_failed")
		return
	}
	response.Success(c, affiliate)
}

// UpdateAffiliate 更新推广方资料
func (h *Handler) UpdateAffiliate(c *gin.Context) {
	id, ok := parseID(c, "error.affiliate_id_invalid")
	if !ok {
		return
	}
	var req UpdateAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	affiliate, err := h.AffiliateService.UpdateAffiliate(id, service.UpdateAffiliateInput{
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		UpiID:          req.UpiID,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		respondServiceError(c, err, "error.affiliate_save_failed")
		return
	}
	response.Success(c, affiliate)
}

// UpdateAffiliateStatus 审核/停用推广方
func (h *Handler) UpdateAffiliateStatus(c *gin.Context) {
	id, ok := parseID(c, "error.affiliate_id_invalid")
	if !ok {
		return
	}
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req UpdateAffiliateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	affiliate, err := h.AffiliateService.UpdateAffiliateStatus(id, req.Status, req.Notes, operator)
	if err != nil {
		respondServiceError(c, err, "error.affiliate_save_failed")
		return
	}
	logger.Infow("admin_affiliate_status_updated",
		"admin_id", operator.AdminID,
		"affiliate_id", affiliate.ID,
		"status", affiliate.Status,
	)
	response.Success(c, affiliate)
}

// DeleteAffiliate 删除推广方（仍有二维码时拒绝）
func (h *Handler) DeleteAffiliate(c *gin.Context) {
	id, ok := parseID(c, "error.affiliate_id_invalid")
	if !ok {
		return
	}
	if err := h.AffiliateService.DeleteAffiliate(id); err != nil {
		respondServiceError(c, err, "error.affiliate_delete_failed")
		return
	}
	response.Success(c, gin.H{"id": id})
}

// GetAffiliateBalance 推广方佣金余额
func (h *Handler) GetAffiliateBalance(c *gin.Context) {
	id, ok := parseID(c, "error.affiliate_id_invalid")
	if !ok {
		return
	}
	balance, err := h.LedgerService.GetBalance(id)
	if err != nil {
		respondServiceError(c, err, "error.balance_fetch_failed")
		return
	}
	response.Success(c, balance)
}
