package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/authz"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"
)

const (
	auditActionAdminCreate = "admin_create"
	auditActionAdminRoles  = "admin_roles_set"
)

// AdminView 管理员列表视图
type AdminView struct {
	models.Admin
	Roles []string `json:"roles"`
}

// AdminService 管理员账号与后台角色服务（仅超级管理员可调用）
type AdminService struct {
	auth      *AuthService
	adminRepo repository.AdminRepository
	auditRepo repository.AuthzAuditLogRepository
	authz     *authz.Service
}

// NewAdminService 创建管理员服务
func NewAdminService(
	auth *AuthService,
	adminRepo repository.AdminRepository,
	auditRepo repository.AuthzAuditLogRepository,
	authzService *authz.Service,
) *AdminService {
	return &AdminService{
		auth:      auth,
		adminRepo: adminRepo,
		auditRepo: auditRepo,
		authz:     authzService,
	}
}

// ListAdmins 管理员列表（附带角色）
func (s *AdminService) ListAdmins() ([]AdminView, error) {
	admins, err := s.adminRepo.List()
	if err != nil {
		return nil, err
	}
	views := make([]AdminView, 0, len(admins))
	for _, admin := range admins {
		roles := []string{}
		if s.authz != nil {
			if assigned, err := s.authz.GetAdminRoles(admin.ID); err == nil {
				roles = assigned
			} else {
				logger.Warnw("admin_roles_read_failed", "admin_id", admin.ID, "error", err)
			}
		}
		views = append(views, AdminView{Admin: admin, Roles: roles})
	}
	return views, nil
}

// CreateAdminInput 创建管理员输入
type CreateAdminInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// CreateAdmin 创建管理员账号
func (s *AdminService) CreateAdmin(operator Principal, input CreateAdminInput, requestID string) (*models.Admin, error) {
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.AdminRoleAdmin
	}
	if role != constants.AdminRoleAdmin && role != constants.AdminRoleSuperAdmin {
		return nil, fmt.Errorf("%w: 管理员角色无效", ErrInvalidInput)
	}
	if err := s.auth.ensureEmailAvailable(email, 0); err != nil {
		return nil, err
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	s.recordAudit(operator, admin, auditActionAdminCreate, requestID, models.JSON{"role": role})
	logger.Infow("admin_created", "admin_id", admin.ID, "role", admin.Role, "operator_id", operator.AdminID)
	return admin, nil
}

// SetAdminRoles 覆盖设置管理员的后台角色
func (s *AdminService) SetAdminRoles(operator Principal, adminID uint, roles []string, requestID string) ([]string, error) {
	if s.authz == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	if err := s.authz.SetAdminRoles(admin.ID, roles); err != nil {
		if errors.Is(err, authz.ErrUnknownRole) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}
	assigned, err := s.authz.GetAdminRoles(admin.ID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(operator, admin, auditActionAdminRoles, requestID, models.JSON{"roles": assigned})
	return assigned, nil
}

// ListRoles 角色与策略清单
func (s *AdminService) ListRoles() ([]authz.Role, error) {
	if s.authz == nil {
		return []authz.Role{}, nil
	}
	return s.authz.ListRoles()
}

// ListAuditLogs 权限审计日志
func (s *AdminService) ListAuditLogs(filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s.auditRepo == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	return s.auditRepo.List(filter)
}

// recordAudit 审计写入失败不影响主流程
func (s *AdminService) recordAudit(operator Principal, target *models.Admin, action, requestID string, detail models.JSON) {
	if s.auditRepo == nil || operator.AdminID == 0 {
		return
	}
	targetID := target.ID
	item := &models.AuthzAuditLog{
		OperatorAdminID: operator.AdminID,
		OperatorEmail:   operator.Email,
		TargetAdminID:   &targetID,
		TargetEmail:     target.Email,
		Action:          action,
		RequestID:       strings.TrimSpace(requestID),
		DetailJSON:      detail,
		CreatedAt:       time.Now(),
	}
	if err := s.auditRepo.Create(item); err != nil {
		logger.Warnw("authz_audit_record_failed", "action", action, "error", err)
	}
}
