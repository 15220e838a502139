package service

import (
	"context"
	"errors"
	"testing"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/shopspring/decimal"
)

func createTestAdmin(t *testing.T, env *serviceTestEnv, email, role string) *models.Admin {
	t.Helper()
	hash, err := hashPassword("Adm1nPass!")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Name: "Admin", Email: email, PasswordHash: hash, Role: role}
	if err := env.db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestLoginResolvesPrincipalKind(t *testing.T) {
	env := newServiceTestEnv(t, "auth_login")
	admin := createTestAdmin(t, env, "root@example.com", constants.AdminRoleSuperAdmin)
	affiliate := createTestAffiliate(t, env.db, "partner@example.com", constants.AffiliateStatusActive)

	result, err := env.auth.Login(" ROOT@example.com ", "Adm1nPass!")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if !result.Principal.IsAdmin() || !result.Principal.IsSuper() || result.Principal.AdminID != admin.ID {
		t.Fatalf("unexpected admin principal: %+v", result.Principal)
	}
	if !result.Principal.Can(CapManageAdmins) || result.Principal.Can(CapOwnWithdrawals) {
		t.Fatalf("unexpected admin capabilities: %v", result.Principal.Capabilities)
	}

	result, err = env.auth.Login("partner@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("affiliate login failed: %v", err)
	}
	if !result.Principal.IsAffiliate() || result.Principal.AffiliateID != affiliate.ID || result.Principal.Can(CapManageAffiliates) {
		t.Fatalf("unexpected affiliate principal: %+v", result.Principal)
	}

	principal, err := env.auth.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if principal.ID() != affiliate.ID || !principal.IsAffiliate() {
		t.Fatalf("unexpected authenticated principal: %+v", principal)
	}

	if _, err := env.auth.Login("partner@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := env.auth.Login("nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestLoginRejectsPendingAffiliateAndSystemAccount(t *testing.T) {
	env := newServiceTestEnv(t, "auth_pending")
	createTestAffiliate(t, env.db, "pending@example.com", constants.AffiliateStatusInactive)

	_, err := env.auth.Login("pending@example.com", "Passw0rd!")
	if !errors.Is(err, ErrPrincipalNotActive) || KindOf(err) != KindUnauthorized {
		t.Fatalf("expected pending approval, got %v", err)
	}

	if _, err := env.globalLead.Resolve(); err != nil {
		t.Fatalf("resolve global lead failed: %v", err)
	}
	if _, err := env.auth.Login(constants.GlobalAffiliateEmail, "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("system affiliate must not log in, got %v", err)
	}
}

func TestAuthenticateRejectsStaleTokens(t *testing.T) {
	env := newServiceTestEnv(t, "auth_stale")
	affiliate := createTestAffiliate(t, env.db, "stale@example.com", constants.AffiliateStatusActive)
	result, err := env.auth.Login("stale@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := env.auth.ChangePassword(result.Principal, "Passw0rd!", "N3wPassw0rd!"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := env.auth.Authenticate(context.Background(), result.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("old token should be rejected after password change, got %v", err)
	}

	relogin, err := env.auth.Login("stale@example.com", "N3wPassw0rd!")
	if err != nil {
		t.Fatalf("relogin failed: %v", err)
	}
	if _, err := env.affiliates.UpdateAffiliateStatus(affiliate.ID, constants.AffiliateStatusSuspended, "fraud", Principal{}); err != nil {
		t.Fatalf("suspend affiliate failed: %v", err)
	}
	if _, err := env.auth.Authenticate(context.Background(), relogin.Token); !errors.Is(err, ErrPrincipalNotActive) {
		t.Fatalf("suspended affiliate token should be rejected, got %v", err)
	}

	if _, err := env.auth.Authenticate(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	env := newServiceTestEnv(t, "auth_change_pwd")
	admin := createTestAdmin(t, env, "pwd@example.com", constants.AdminRoleAdmin)

	err := env.auth.ChangePassword(AdminPrincipal(admin), "wrong", "N3wPassw0rd!")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if err := env.auth.ChangePassword(Principal{}, "x", "N3wPassw0rd!"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous principal must be rejected, got %v", err)
	}
}

func TestRegisterAffiliate(t *testing.T) {
	env := newServiceTestEnv(t, "auth_register")
	createTestAdmin(t, env, "taken@example.com", constants.AdminRoleAdmin)

	affiliate, err := env.auth.RegisterAffiliate(RegisterAffiliateInput{
		Name:     "New Partner",
		Email:    "New@Example.com",
		Password: "Passw0rd!",
		UpiID:    "new@upi",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if affiliate.Email != "new@example.com" || affiliate.Status != constants.AffiliateStatusInactive {
		t.Fatalf("unexpected affiliate: %+v", affiliate)
	}
	if !affiliate.CommissionRate.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected default commission rate, got %s", affiliate.CommissionRate)
	}

	_, err = env.auth.RegisterAffiliate(RegisterAffiliateInput{Name: "Dup", Email: "new@example.com", Password: "Passw0rd!"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected email exists, got %v", err)
	}
	_, err = env.auth.RegisterAffiliate(RegisterAffiliateInput{Name: "Admin clash", Email: "taken@example.com", Password: "Passw0rd!"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("emails are unique across admins and affiliates, got %v", err)
	}
	_, err = env.auth.RegisterAffiliate(RegisterAffiliateInput{Name: "Bad", Email: "not-an-email", Password: "Passw0rd!"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid email, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newServiceTestEnv(t, "auth_profile")
	affiliate := createTestAffiliate(t, env.db, "profile@example.com", constants.AffiliateStatusActive)
	createTestAffiliate(t, env.db, "occupied@example.com", constants.AffiliateStatusActive)

	upi := "changed@upi"
	updated, err := env.auth.UpdateProfile(affiliate.ID, UpdateProfileInput{UpiID: &upi})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.UpiID != upi {
		t.Fatalf("unexpected upi: %s", updated.UpiID)
	}

	occupied := "occupied@example.com"
	if _, err := env.auth.UpdateProfile(affiliate.ID, UpdateProfileInput{Email: &occupied}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected email exists, got %v", err)
	}
	blank := " "
	if _, err := env.auth.UpdateProfile(affiliate.ID, UpdateProfileInput{Name: &blank}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid name, got %v", err)
	}
}

func TestAffiliateAdministration(t *testing.T) {
	env := newServiceTestEnv(t, "affiliate_admin")
	admin := createTestAdmin(t, env, "ops@example.com", constants.AdminRoleAdmin)

	affiliate, err := env.affiliates.CreateAffiliate(CreateAffiliateInput{
		Name:           "Managed",
		Email:          "managed@example.com",
		CommissionRate: floatPtr(12.345),
	})
	if err != nil {
		t.Fatalf("create affiliate failed: %v", err)
	}
	if affiliate.Status != constants.AffiliateStatusInactive || !affiliate.CommissionRate.Equal(decimal.RequireFromString("12.35")) {
		t.Fatalf("unexpected affiliate: %+v", affiliate)
	}
	if _, err := env.auth.Login("managed@example.com", constants.DefaultAffiliatePassword); !errors.Is(err, ErrPrincipalNotActive) {
		t.Fatalf("default password should work but account is pending, got %v", err)
	}

	if _, err := env.affiliates.CreateAffiliate(CreateAffiliateInput{Name: "Bad", Email: "bad-status@example.com", Status: "vip"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid status, got %v", err)
	}

	approved, err := env.affiliates.UpdateAffiliateStatus(affiliate.ID, constants.AffiliateStatusActive, "welcome", AdminPrincipal(admin))
	if err != nil {
		t.Fatalf("approve affiliate failed: %v", err)
	}
	if approved.StatusUpdatedBy == nil || *approved.StatusUpdatedBy != admin.ID || approved.StatusNotes != "welcome" {
		t.Fatalf("unexpected status audit fields: %+v", approved)
	}
	if _, err := env.auth.Login("managed@example.com", constants.DefaultAffiliatePassword); err != nil {
		t.Fatalf("approved affiliate should log in: %v", err)
	}

	lead, err := env.globalLead.Resolve()
	if err != nil {
		t.Fatalf("resolve global lead failed: %v", err)
	}
	if _, err := env.affiliates.UpdateAffiliateStatus(lead.Affiliate.ID, constants.AffiliateStatusSuspended, "", AdminPrincipal(admin)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("global affiliate status is fixed, got %v", err)
	}
	if err := env.affiliates.DeleteAffiliate(lead.Affiliate.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("global affiliate must not be deleted, got %v", err)
	}

	rows, total, err := env.affiliates.ListAffiliates(repository.AffiliateListFilter{Page: 1, PageSize: 20, IncludeSystem: true})
	if err != nil {
		t.Fatalf("list affiliates failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].IsSystem {
		t.Fatalf("list must exclude the system affiliate, got %d", total)
	}

	if err := env.affiliates.DeleteAffiliate(affiliate.ID); err != nil {
		t.Fatalf("delete affiliate failed: %v", err)
	}
	if _, err := env.affiliates.GetAffiliate(affiliate.ID); !errors.Is(err, ErrAffiliateNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
