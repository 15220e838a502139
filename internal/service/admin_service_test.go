package service

import (
	"errors"
	"testing"
	"time"

	"github.com/elevate-affiliate/internal/authz"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/repository"
)

func setupAdminServiceTest(t *testing.T) (*AdminService, *serviceTestEnv) {
	t.Helper()
	env := newServiceTestEnv(t, "admin_service")
	authzService, err := authz.NewService(env.db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	svc := NewAdminService(
		env.auth,
		repository.NewAdminRepository(env.db),
		repository.NewAuthzAuditLogRepository(env.db),
		authzService,
	)
	return svc, env
}

func TestCreateAdminRecordsAudit(t *testing.T) {
	svc, env := setupAdminServiceTest(t)
	root := createTestAdmin(t, env, "root@example.com", constants.AdminRoleSuperAdmin)
	operator := AdminPrincipal(root)

	admin, err := svc.CreateAdmin(operator, CreateAdminInput{Name: "Ops", Email: "Ops@Example.com", Password: "Passw0rd!"}, "req-1")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if admin.Email != "ops@example.com" || admin.Role != constants.AdminRoleAdmin {
		t.Fatalf("unexpected admin: %+v", admin)
	}

	if _, err := svc.CreateAdmin(operator, CreateAdminInput{Email: "x@example.com", Password: "Passw0rd!", Role: "owner"}, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid role, got %v", err)
	}
	createTestAffiliate(t, env.db, "affiliate@example.com", constants.AffiliateStatusActive)
	if _, err := svc.CreateAdmin(operator, CreateAdminInput{Email: "affiliate@example.com", Password: "Passw0rd!"}, ""); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("admin email must not clash with affiliates, got %v", err)
	}

	logs, total, err := svc.ListAuditLogs(repository.AuthzAuditLogListFilter{Page: 1, PageSize: 10, Action: auditActionAdminCreate})
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	if total != 1 || logs[0].OperatorAdminID != root.ID || logs[0].RequestID != "req-1" {
		t.Fatalf("unexpected audit logs: %+v", logs)
	}
	if logs[0].TargetAdminID == nil || *logs[0].TargetAdminID != admin.ID {
		t.Fatalf("audit log should point at the new admin")
	}

	future := time.Now().Add(time.Hour)
	_, total, err = svc.ListAuditLogs(repository.AuthzAuditLogListFilter{Page: 1, PageSize: 10, CreatedFrom: &future})
	if err != nil || total != 0 {
		t.Fatalf("expected no logs after the future cutoff, got %d (%v)", total, err)
	}
	_, total, err = svc.ListAuditLogs(repository.AuthzAuditLogListFilter{Page: 1, PageSize: 10, RequestID: "req-1"})
	if err != nil || total != 1 {
		t.Fatalf("expected one log for request id, got %d (%v)", total, err)
	}
}

func TestSetAdminRoles(t *testing.T) {
	svc, env := setupAdminServiceTest(t)
	root := createTestAdmin(t, env, "root@example.com", constants.AdminRoleSuperAdmin)
	target := createTestAdmin(t, env, "finance@example.com", constants.AdminRoleAdmin)

	roles, err := svc.SetAdminRoles(AdminPrincipal(root), target.ID, []string{"finance"}, "req-2")
	if err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:finance" {
		t.Fatalf("unexpected roles: %v", roles)
	}
	if _, err := svc.SetAdminRoles(AdminPrincipal(root), target.ID, []string{"ghost"}, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown role should be invalid input, got %v", err)
	}
	if _, err := svc.SetAdminRoles(AdminPrincipal(root), 9999, []string{"finance"}, ""); !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("expected admin not found, got %v", err)
	}

	views, err := svc.ListAdmins()
	if err != nil {
		t.Fatalf("list admins failed: %v", err)
	}
	found := false
	for _, view := range views {
		if view.ID == target.ID {
			found = len(view.Roles) == 1 && view.Roles[0] == "finance"
		}
	}
	if !found {
		t.Fatalf("admin view should carry assigned roles: %+v", views)
	}

	builtin, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(builtin) < 3 {
		t.Fatalf("expected builtin roles, got %+v", builtin)
	}
}
