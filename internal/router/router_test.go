package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type routerTestEnv struct {
	engine    *gin.Engine
	container *provider.Container
}

func newRouterTestEnv(t *testing.T, name string) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	models.DB = db

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		App:    config.AppConfig{FrontendBaseURL: "https://landing.example.com"},
		JWT:    config.JWTConfig{SecretKey: "router-test-secret-with-enough-length", ExpireHours: 24, AffiliateExpireHours: 24},
		Security: config.SecurityConfig{
			LoginRateLimit: config.RateLimitConfig{WindowSeconds: 60, MaxAttempts: 3},
		},
	}
	container := provider.NewContainer(cfg)
	return &routerTestEnv{engine: SetupRouter(cfg, container), container: container}
}

func createAdmin(t *testing.T, email, role string) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Adm1nPass!"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.Admin{Name: "Admin", Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, models.DB.Create(admin).Error)
	return admin
}

func (e *routerTestEnv) call(t *testing.T, method, path, token, body string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (e *routerTestEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.StatusCode, w.Body.String())
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestHealth(t *testing.T) {
	env := newRouterTestEnv(t, "router_health")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPublicLeadNeedsNoToken(t *testing.T) {
	env := newRouterTestEnv(t, "router_lead")
	resp := env.call(t, http.MethodGet, "/api/v1/public/lead", "", "")
	require.Equal(t, 0, resp.StatusCode)
}

func TestAdminRoutesEnforceRoles(t *testing.T) {
	env := newRouterTestEnv(t, "router_rbac")
	createAdmin(t, "root@example.com", constants.AdminRoleSuperAdmin)
	finance := createAdmin(t, "finance@example.com", constants.AdminRoleAdmin)
	require.NoError(t, env.container.AuthzService.SetAdminRoles(finance.ID, []string{"finance"}))
	createAdmin(t, "plain@example.com", constants.AdminRoleAdmin)

	resp := env.call(t, http.MethodGet, "/api/v1/admin/affiliates", "", "")
	require.Equal(t, 401, resp.StatusCode)

	rootToken := env.login(t, "root@example.com", "Adm1nPass!")
	financeToken := env.login(t, "finance@example.com", "Adm1nPass!")
	plainToken := env.login(t, "plain@example.com", "Adm1nPass!")

	listed := env.call(t, http.MethodGet, "/api/v1/admin/affiliates", financeToken, "")
	require.Equal(t, 0, listed.StatusCode)
	require.Empty(t, listed.errorKind())
	denied := env.call(t, http.MethodPost, "/api/v1/admin/affiliates", financeToken, `{"name":"X","email":"x@example.com"}`)
	require.Equal(t, 403, denied.StatusCode)
	require.Equal(t, "forbidden", denied.errorKind())
	missing := env.call(t, http.MethodPut, "/api/v1/admin/withdrawals/999/payment", financeToken, `{"payment_proof_ref":"UTR1"}`)
	require.Equal(t, 404, missing.StatusCode)
	require.Equal(t, "not_found", missing.errorKind())

	// 未分配角色的普通管理员按能力集放行，但不能访问超级管理员接口
	created := env.call(t, http.MethodPost, "/api/v1/admin/affiliates", plainToken, `{"name":"X","email":"x@example.com"}`)
	require.Equal(t, 0, created.StatusCode)
	require.Equal(t, 403, env.call(t, http.MethodPut, "/api/v1/admin/config", plainToken, `{}`).StatusCode)
	require.Equal(t, 403, env.call(t, http.MethodGet, "/api/v1/admin/admins", financeToken, "").StatusCode)

	require.Equal(t, 0, env.call(t, http.MethodGet, "/api/v1/admin/admins", rootToken, "").StatusCode)
	require.Equal(t, 0, env.call(t, http.MethodGet, "/api/v1/admin/permissions/catalog", rootToken, "").StatusCode)

	// 改密接口不受角色限制
	changed := env.call(t, http.MethodPut, "/api/v1/admin/password", financeToken, `{"current_password":"Adm1nPass!","new_password":"N3wPassw0rd!"}`)
	require.Equal(t, 0, changed.StatusCode)
	require.Equal(t, 401, env.call(t, http.MethodGet, "/api/v1/admin/affiliates", financeToken, "").StatusCode)
}

func TestAffiliateRoutesRejectAdmins(t *testing.T) {
	env := newRouterTestEnv(t, "router_affiliate")
	createAdmin(t, "root@example.com", constants.AdminRoleSuperAdmin)
	rootToken := env.login(t, "root@example.com", "Adm1nPass!")

	require.Equal(t, 403, env.call(t, http.MethodGet, "/api/v1/affiliate/balance", rootToken, "").StatusCode)

	created := env.call(t, http.MethodPost, "/api/v1/admin/affiliates", rootToken,
		`{"name":"Partner","email":"partner@example.com","password":"Passw0rd!","status":"active"}`)
	require.Equal(t, 0, created.StatusCode)

	affiliateToken := env.login(t, "partner@example.com", "Passw0rd!")
	require.Equal(t, 0, env.call(t, http.MethodGet, "/api/v1/affiliate/balance", affiliateToken, "").StatusCode)
	require.Equal(t, 403, env.call(t, http.MethodGet, "/api/v1/admin/affiliates", affiliateToken, "").StatusCode)
}

func TestLoginRateLimitFallsBackWithoutRedis(t *testing.T) {
	env := newRouterTestEnv(t, "router_login_limit")
	body := `{"email":"nobody@example.com","password":"wrong"}`
	for i := 0; i < 3; i++ {
		resp := env.call(t, http.MethodPost, "/api/v1/auth/login", "", body)
		require.Equal(t, 401, resp.StatusCode)
	}
	resp := env.call(t, http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, 429, resp.StatusCode)
	require.Contains(t, resp.Msg, "Too many login attempts")
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	require.Equal(t, "affiliates", deriveAdminPermissionModule("/admin/affiliates/:id"))
	require.Equal(t, "withdrawals", deriveAdminPermissionModule("/admin/withdrawals/:id/process"))
	require.Equal(t, "system", deriveAdminPermissionModule(""))
}

func TestServicePortalRoutes(t *testing.T) {
	env := newRouterTestEnv(t, "router_service_portal")
	ops := createAdmin(t, "ops@example.com", constants.AdminRoleAdmin)
	require.NoError(t, env.container.AuthzService.SetAdminRoles(ops.ID, []string{"operations"}))
	finance := createAdmin(t, "finance@example.com", constants.AdminRoleAdmin)
	require.NoError(t, env.container.AuthzService.SetAdminRoles(finance.ID, []string{"finance"}))

	opsToken := env.login(t, "ops@example.com", "Adm1nPass!")
	financeToken := env.login(t, "finance@example.com", "Adm1nPass!")

	body := `{"name":"Menu","service_type":"link","service_data":"https://menu.example.com"}`
	require.Equal(t, 0, env.call(t, http.MethodPost, "/api/v1/admin/services", opsToken, body).StatusCode)
	require.Equal(t, 403, env.call(t, http.MethodPost, "/api/v1/admin/services", financeToken, body).StatusCode)
	require.Equal(t, 0, env.call(t, http.MethodGet, "/api/v1/admin/service-portals/stats", financeToken, "").StatusCode)

	// 扫码入口无需登录，未知门户跳转默认落地页
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/public/service-portal?qrId=41", nil))
	require.Equal(t, http.StatusFound, w.Code)
	require.NotEmpty(t, w.Header().Get("Location"))
}
