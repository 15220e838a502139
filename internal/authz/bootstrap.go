package authz

import (
	"errors"
	"fmt"
)

// ErrUnknownRole 角色不存在
var ErrUnknownRole = errors.New("unknown role")

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "operations",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/affiliates", Action: "*"},
				{Object: "/admin/affiliates/:id", Action: "*"},
				{Object: "/admin/affiliates/:id/status", Action: "PUT"},
				{Object: "/admin/qrcodes", Action: "*"},
				{Object: "/admin/qrcodes/:id", Action: "*"},
				{Object: "/admin/qrcodes/:id/status", Action: "PUT"},
				{Object: "/admin/purchases", Action: "POST"},
				{Object: "/admin/services", Action: "*"},
				{Object: "/admin/services/:id", Action: "*"},
				{Object: "/admin/service-portals", Action: "*"},
				{Object: "/admin/service-portals/:id", Action: "*"},
				{Object: "/admin/config/global", Action: "PUT"},
			},
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/withdrawals/:id/process", Action: "PUT"},
				{Object: "/admin/withdrawals/:id/payment", Action: "PUT"},
				{Object: "/admin/purchases", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略（幂等）
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
