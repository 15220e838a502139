package admin

import (
	"strings"

	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/repository"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAdminRequest 新建管理员请求
type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// SetAdminRolesRequest 设置后台角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ListAdmins 管理员列表
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminService.ListAdmins()
	if err != nil {
		respondServiceError(c, err, "error.admin_fetch_failed")
		return
	}
	response.Success(c, admins)
}

// CreateAdmin 新建管理员
func (h *Handler) CreateAdmin(c *gin.Context) {
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	admin, err := h.AdminService.CreateAdmin(operator, service.CreateAdminInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, shared.RequestID(c))
	if err != nil {
		respondServiceError(c, err, "error.admin_create_failed")
		return
	}
	response.Success(c, admin)
}

// SetAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	id, ok := parseID(c, "error.admin_id_invalid")
	if !ok {
		return
	}
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	roles, err := h.AdminService.SetAdminRoles(operator, id, req.Roles, shared.RequestID(c))
	if err != nil {
		respondServiceError(c, err, "error.admin_role_update_failed")
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

// ListRoles 角色与策略
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AdminService.ListRoles()
	if err != nil {
		respondServiceError(c, err, "error.role_fetch_failed")
		return
	}
	response.Success(c, roles)
}

// ListAuditLogs 权限审计日志
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.AdminService.ListAuditLogs(repository.AuthzAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: shared.QueryUint(c, "operator_admin_id"),
		TargetAdminID:   shared.QueryUint(c, "target_admin_id"),
		Action:          strings.TrimSpace(c.Query("action")),
		RequestID:       strings.TrimSpace(c.Query("request_id")),
		CreatedFrom:     shared.QueryDate(c, "from", false),
		CreatedTo:       shared.QueryDate(c, "to", true),
	})
	if err != nil {
		respondServiceError(c, err, "error.audit_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ChangePassword 管理员修改自己的密码
func (h *Handler) ChangePassword(c *gin.Context) {
	principal, ok := currentAdmin(c)
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
	requestLog(c).Infow("admin_password_changed", "admin_id", principal.AdminID)
	shared.RespondSuccessMsg(c, "message.password_changed", nil)
}
