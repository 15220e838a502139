package service

import (
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"
)

// Capability 登录身份具备的操作能力
type Capability string

const (
	CapManageAffiliates  Capability = "manage_affiliates"
	CapManageQRCodes     Capability = "manage_qrcodes"
	CapManageRedemptions Capability = "manage_redemptions"
	CapProcessWithdrawal Capability = "process_withdrawals"
	CapViewConfig        Capability = "view_config"
	CapManageConfig      Capability = "manage_config"
	CapManageAdmins      Capability = "manage_admins"
	CapOwnProfile        Capability = "own_profile"
	CapOwnQRCodes        Capability = "own_qrcodes"
	CapOwnWithdrawals    Capability = "own_withdrawals"
)

var (
	adminCapabilities = []Capability{
		CapManageAffiliates,
		CapManageQRCodes,
		CapManageRedemptions,
		CapProcessWithdrawal,
		CapViewConfig,
	}
	superAdminExtraCapabilities = []Capability{
		CapManageConfig,
		CapManageAdmins,
	}
	affiliateCapabilities = []Capability{
		CapOwnProfile,
		CapOwnQRCodes,
		CapOwnWithdrawals,
	}
)

// Principal 已认证身份：管理员或推广方二选一
// Kind=admin 时 AdminID 有效，Kind=affiliate 时 AffiliateID 有效
type Principal struct {
	Kind         string       `json:"kind"`
	AdminID      uint         `json:"admin_id,omitempty"`
	AffiliateID  uint         `json:"affiliate_id,omitempty"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Role         string       `json:"role,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// AdminPrincipal 由管理员构建身份
func AdminPrincipal(admin *models.Admin) Principal {
	if admin == nil {
		return Principal{}
	}
	role := admin.Role
	if role == "" {
		role = constants.AdminRoleAdmin
	}
	caps := append([]Capability{}, adminCapabilities...)
	if role == constants.AdminRoleSuperAdmin {
		caps = append(caps, superAdminExtraCapabilities...)
	}
	return Principal{
		Kind:         constants.PrincipalKindAdmin,
		AdminID:      admin.ID,
		Email:        admin.Email,
		Name:         admin.Name,
		Role:         role,
		Capabilities: caps,
	}
}

// AffiliatePrincipal 由推广方构建身份
func AffiliatePrincipal(affiliate *models.Affiliate) Principal {
	if affiliate == nil {
		return Principal{}
	}
	return Principal{
		Kind:         constants.PrincipalKindAffiliate,
		AffiliateID:  affiliate.ID,
		Email:        affiliate.Email,
		Name:         affiliate.Name,
		Capabilities: append([]Capability{}, affiliateCapabilities...),
	}
}

// ID 返回当前身份对应的主键
func (p Principal) ID() uint {
	if p.IsAdmin() {
		return p.AdminID
	}
	return p.AffiliateID
}

// IsAdmin 是否管理员
func (p Principal) IsAdmin() bool {
	return p.Kind == constants.PrincipalKindAdmin && p.AdminID != 0
}

// IsAffiliate 是否推广方
func (p Principal) IsAffiliate() bool {
	return p.Kind == constants.PrincipalKindAffiliate && p.AffiliateID != 0
}

// IsSuper 是否超级管理员
func (p Principal) IsSuper() bool {
	return p.IsAdmin() && p.Role == constants.AdminRoleSuperAdmin
}

// Can 判断是否具备能力
func (p Principal) Can(capability Capability) bool {
	for _, item := range p.Capabilities {
		if item == capability {
			return true
		}
	}
	return false
}
