package public

import (
	"strings"

	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/repository"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UpdateProfileRequest 推广方资料修改请求
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,phone"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	UpiID       *string `json:"upi_id"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// RequestWithdrawalRequest 提现申请
type RequestWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
	UpiID  string          `json:"upi_id"`
	Notes  string          `json:"notes"`
}

// GetProfile 推广方资料
func (h *Handler) GetProfile(c *gin.Context) {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return
	}
	affiliate, err := h.AuthService.GetProfile(affiliateID)
	if err != nil {
		respondServiceError(c, err, "error.profile_fetch_failed")
		return
	}
	response.Success(c, affiliate)
}

// UpdateProfile 修改推广方资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	affiliate, err := h.AuthService.UpdateProfile(affiliateID, service.UpdateProfileInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
		UpiID:       req.UpiID,
	})
	if err != nil {
		respondServiceError(c, err, "error.profile_update_failed")
		return
	}
	response.Success(c, affiliate)
}

// ChangePassword 推广方修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	principal, ok := shared.MustPrincipal(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.AuthService.ChangePassword(principal, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err, "error.password_change_failed")
		return
	}
	shared.RespondSuccessMsg(c, "message.password_changed", nil)
}

// ListMyQRCodes 推广方自己的二维码
func (h *Handler) ListMyQRCodes(c *gin.Context) {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return
	}
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.QRCodeService.ListAffiliateQRCodes(affiliateID, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "error.qrcode_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetBalance 佣金余额
func (h *Handler) GetBalance(c *gin.Context) {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return
	}
	balance, err := h.LedgerService.GetBalance(affiliateID)
	if err != nil {
		respondServiceError(c, err, "error.balance_fetch_failed")
		return
	}
	response.Success(c, balance)
}

// ListWithdrawals 提现记录与余额汇总
func (h *Handler) ListWithdrawals(c *gin.Context) {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return
	}
	page, pageSize := shared.ReadPagination(c)
	rows, total, balance, err := h.WithdrawalService.WithdrawalHistory(affiliateID, repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_fetch_failed")
		return
	}
	response.SuccessWithPage(c, gin.H{
		"withdrawals": rows,
		"balance":     balance,
	}, response.BuildPagination(page, pageSize, total))
}

// RequestWithdrawal 发起提现
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return
	}
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	withdrawal, err := h.WithdrawalService.RequestWithdrawal(affiliateID, service.RequestWithdrawalInput{
		Amount: req.Amount,
		UpiID:  req.UpiID,
		Notes:  req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "error.withdrawal_request_failed")
		return
	}
	response.Success(c, withdrawal)
}

// CancelWithdrawal 撤回待处理的提现
func (h *Handler) CancelWithdrawal(c *gin.Context) {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return
	}
	id, ok := shared.ParseIDParam(c, "id", "error.withdrawal_id_invalid")
	if !ok {
		return
	}
	if err := h.WithdrawalService.CancelWithdrawal(affiliateID, id); err != nil {
		respondServiceError(c, err, "error.withdrawal_cancel_failed")
		return
	}
	shared.RespondSuccessMsg(c, "message.withdrawal_cancelled", gin.H{"id": id})
}
