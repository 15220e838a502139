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

// ProcessWithdrawalRequest 处理提现请求
type ProcessWithdrawalRequest struct {
	Status          string `json:"status" binding:"required"`
	Notes           string `json:"notes"`
	PaymentProofRef string `json:"payment_proof_ref"`
}

// ListWithdrawals 提现申请列表
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.WithdrawalService.ListWithdrawals(repository.WithdrawalListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: shared.QueryUint(c, "affiliate_id"),
		Status:      strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetWithdrawalStats 按状态统计提现
func (h *Handler) GetWithdrawalStats(c *gin.Context) {
	stats, err := h.WithdrawalService.WithdrawalStats()
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// ProcessWithdrawal 审核提现申请
func (h *Handler) ProcessWithdrawal(c *gin.Context) {
	id, ok := parseID(c, "error.withdrawal_id_invalid")
	if !ok {
		return
	}
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req ProcessWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	withdrawal, err := h.WithdrawalService.ProcessWithdrawal(id, service.ProcessWithdrawalInput{
		Status:          req.Status,
		Notes:           req.Notes,
		PaymentProofRef: req.PaymentProofRef,
	}, operator.AdminID)
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_process_failed")
		return
	}
	logger.Infow("admin_withdrawal_processed",
		"admin_id", operator.AdminID,
		"withdrawal_id", withdrawal.ID,
		"status", withdrawal.Status,
	)
	response.Success(c, withdrawal)
}

// RecordWithdrawalPaymentRequest 登记打款凭证请求
type RecordWithdrawalPaymentRequest struct {
	PaymentProofRef string `json:"payment_proof_ref" binding:"required"`
	Notes           string `json:"notes"`
}

// RecordWithdrawalPayment 为已批准的提现登记打款凭证
func (h *Handler) RecordWithdrawalPayment(c *gin.Context) {
	id, ok := parseID(c, "error.withdrawal_id_invalid")
	if !ok {
		return
	}
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req RecordWithdrawalPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	withdrawal, err := h.WithdrawalService.RecordWithdrawalPayment(id, service.RecordWithdrawalPaymentInput{
		PaymentProofRef: req.PaymentProofRef,
		Notes:           req.Notes,
	}, operator.AdminID)
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_process_failed")
		return
	}
	response.Success(c, withdrawal)
}
