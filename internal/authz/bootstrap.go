package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "operations",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/gift-requests", Action: "*"},
				{Object: "/admin/gift-requests/:request_no", Action: "*"},
				{Object: "/admin/settings", Action: "*"},
				{Object: "/admin/settings/captcha", Action: "*"},
				{Object: "/admin/settings/gifting", Action: "*"},
				{Object: "/admin/settings/gifting/overrides", Action: "*"},
				{Object: "/admin/settings/gifting/overrides/:id", Action: "*"},
				{Object: "/admin/settings/logistics", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "support",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/gift-requests", Action: "GET"},
				{Object: "/admin/gift-requests/:request_no", Action: "GET"},
				{Object: "/admin/users", Action: "GET"},
				{Object: "/admin/users/:id", Action: "*"},
				{Object: "/admin/users/batch-status", Action: "PUT"},
				{Object: "/admin/user-login-logs", Action: "GET"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行幂等
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
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return errActionRequired
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
