package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/provider"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type publicTestEnv struct {
	container *provider.Container
	engine    *gin.Engine
	principal *service.Principal
}

func newPublicTestEnv(t *testing.T, name string) *publicTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{
		App: config.AppConfig{FrontendBaseURL: "https://landing.example.com"},
		JWT: config.JWTConfig{SecretKey: "handler-test-secret", ExpireHours: 24, AffiliateExpireHours: 24},
	}
	env := &publicTestEnv{container: provider.NewContainer(cfg)}
	shared.RegisterValidators()

	h := New(env.container)
	r := gin.New()
	r.GET("/lead", h.GetLead)
	r.POST("/coupons", h.IssueCoupon)
	r.POST("/coupons/verify", h.VerifyCoupon)
	r.POST("/claims", h.CreateClaim)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.RegisterAffiliate)
	r.GET("/service-portal", h.ServicePortalRedirect)

	me := r.Group("/affiliate", func(c *gin.Context) {
		if env.principal != nil {
			shared.SetPrincipal(c, *env.principal)
		}
		c.Next()
	})
	me.GET("/balance", h.GetBalance)
	me.POST("/withdrawals", h.RequestWithdrawal)
	me.PUT("/profile", h.UpdateProfile)
	env.engine = r
	return env
}

func (e *publicTestEnv) do(t *testing.T, method, path string, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v (%s)", err, w.Body.String())
	}
	return resp
}

func errorKindOf(t *testing.T, resp envelope) string {
	t.Helper()
	var data struct {
		ErrorKind string `json:"error_kind"`
	}
	_ = json.Unmarshal(resp.Data, &data)
	return data.ErrorKind
}

func createActiveAffiliate(t *testing.T, env *publicTestEnv, email string) *models.Affiliate {
	t.Helper()
	affiliate, err := env.container.AffiliateService.CreateAffiliate(service.CreateAffiliateInput{
		Name:     "Partner",
		Email:    email,
		Password: "Passw0rd!",
		UpiID:    "partner@upi",
		Status:   constants.AffiliateStatusActive,
	})
	if err != nil {
		t.Fatalf("create affiliate failed: %v", err)
	}
	return affiliate
}

func TestGetLeadFallsBackToGlobal(t *testing.T) {
	env := newPublicTestEnv(t, "public_lead")

	for _, path := range []string{"/lead", "/lead?qrCodeId=abc", "/lead?qrCodeId=99999"} {
		resp := env.do(t, http.MethodGet, path, nil)
		if resp.StatusCode != 0 {
			t.Fatalf("%s: unexpected status %d (%s)", path, resp.StatusCode, resp.Msg)
		}
		var lead service.Lead
		if err := json.Unmarshal(resp.Data, &lead); err != nil {
			t.Fatalf("unmarshal lead failed: %v", err)
		}
		if !lead.IsGlobal || lead.QRCodeID == 0 {
			t.Fatalf("%s: expected global lead, got %+v", path, lead)
		}
	}
}

func TestCouponRedemptionFlow(t *testing.T) {
	env := newPublicTestEnv(t, "public_flow")
	affiliate := createActiveAffiliate(t, env, "flow@example.com")
	qr, err := env.container.QRCodeService.CreateQRCode(service.CreateQRCodeInput{AffiliateID: affiliate.ID})
	if err != nil {
		t.Fatalf("create qr code failed: %v", err)
	}

	issue := map[string]interface{}{
		"qr_code_id":     qr.ID,
		"customer_name":  "Asha",
		"customer_phone": "98765 43210",
	}
	resp := env.do(t, http.MethodPost, "/coupons", issue)
	if resp.StatusCode != 0 {
		t.Fatalf("issue coupon failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var issued struct {
		CouponCode   string `json:"coupon_code"`
		IsGlobalLead bool   `json:"is_global_lead"`
	}
	if err := json.Unmarshal(resp.Data, &issued); err != nil {
		t.Fatalf("unmarshal issue result failed: %v", err)
	}
	if issued.CouponCode != "9876543210" || issued.IsGlobalLead {
		t.Fatalf("unexpected issue result: %+v", issued)
	}

	dup := env.do(t, http.MethodPost, "/coupons", issue)
	if dup.StatusCode != 409 || errorKindOf(t, dup) != string(service.KindDuplicateActiveCoupon) {
		t.Fatalf("expected duplicate coupon conflict, got %d %s", dup.StatusCode, errorKindOf(t, dup))
	}

	mismatch := env.do(t, http.MethodPost, "/coupons/verify", map[string]string{"coupon_code": "9876543210", "customer_phone": "9000000000"})
	if mismatch.StatusCode == 0 {
		t.Fatalf("coupon code must match the phone")
	}
	verify := env.do(t, http.MethodPost, "/coupons/verify", map[string]string{"coupon_code": "9876543210", "customer_phone": "9876543210"})
	if verify.StatusCode != 0 {
		t.Fatalf("verify coupon failed: %d %s", verify.StatusCode, verify.Msg)
	}
	claim := env.do(t, http.MethodPost, "/claims", map[string]string{"coupon_code": "9876543210", "customer_phone": "9876543210"})
	if claim.StatusCode != 0 {
		t.Fatalf("create claim failed: %d %s", claim.StatusCode, claim.Msg)
	}
	again := env.do(t, http.MethodPost, "/claims", map[string]string{"coupon_code": "9876543210", "customer_phone": "9876543210"})
	if again.StatusCode == 0 {
		t.Fatalf("a coupon can be claimed only once")
	}
}

func TestIssueCouponRejectsBadInput(t *testing.T) {
	env := newPublicTestEnv(t, "public_bad_input")

	resp := env.do(t, http.MethodPost, "/coupons", map[string]string{"customer_name": "Ravi", "customer_phone": "12ab"})
	if resp.StatusCode != 400 || errorKindOf(t, resp) != string(service.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %d %s", resp.StatusCode, errorKindOf(t, resp))
	}
	missing := env.do(t, http.MethodPost, "/coupons", map[string]string{"customer_phone": "9876543210"})
	if missing.StatusCode != 400 {
		t.Fatalf("missing name should fail binding, got %d", missing.StatusCode)
	}
}

func TestLoginAndPendingRegistration(t *testing.T) {
	env := newPublicTestEnv(t, "public_login")

	reg := env.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name":         "Newbie",
		"email":        "newbie@example.com",
		"password":     "Passw0rd!",
		"phone_number": "9123456789",
	})
	if reg.StatusCode != 0 {
		t.Fatalf("register failed: %d %s", reg.StatusCode, reg.Msg)
	}
	badPhone := env.do(t, http.MethodPost, "/auth/register", map[string]string{
		"name":         "Bad",
		"email":        "bad@example.com",
		"password":     "Passw0rd!",
		"phone_number": "12",
	})
	if badPhone.StatusCode != 400 {
		t.Fatalf("phone rule should reject short numbers, got %d", badPhone.StatusCode)
	}

	pending := env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "newbie@example.com", "password": "Passw0rd!"})
	if pending.StatusCode != 401 || errorKindOf(t, pending) != string(service.KindUnauthorized) {
		t.Fatalf("pending affiliate must not log in, got %d", pending.StatusCode)
	}
	if pending.Msg != "Account pending approval" {
		t.Fatalf("unexpected pending message: %s", pending.Msg)
	}

	createActiveAffiliate(t, env, "ok@example.com")
	ok := env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "ok@example.com", "password": "Passw0rd!"})
	if ok.StatusCode != 0 {
		t.Fatalf("login failed: %d %s", ok.StatusCode, ok.Msg)
	}
	var result struct {
		Token     string            `json:"token"`
		Principal service.Principal `json:"principal"`
	}
	if err := json.Unmarshal(ok.Data, &result); err != nil {
		t.Fatalf("unmarshal login result failed: %v", err)
	}
	if result.Token == "" || result.Principal.Kind != constants.PrincipalKindAffiliate {
		t.Fatalf("unexpected login result: %+v", result)
	}
}

func TestAffiliateRoutesRequirePrincipal(t *testing.T) {
	env := newPublicTestEnv(t, "public_affiliate")

	anonymous := env.do(t, http.MethodGet, "/affiliate/balance", nil)
	if anonymous.StatusCode != 401 {
		t.Fatalf("anonymous request should be rejected, got %d", anonymous.StatusCode)
	}

	affiliate := createActiveAffiliate(t, env, "wallet@example.com")
	principal := service.AffiliatePrincipal(affiliate)
	env.principal = &principal

	balance := env.do(t, http.MethodGet, "/affiliate/balance", nil)
	if balance.StatusCode != 0 {
		t.Fatalf("balance failed: %d %s", balance.StatusCode, balance.Msg)
	}
	withdraw := env.do(t, http.MethodPost, "/affiliate/withdrawals", map[string]interface{}{"amount": "10.00"})
	if withdraw.StatusCode != 400 || errorKindOf(t, withdraw) != string(service.KindInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %d %s", withdraw.StatusCode, errorKindOf(t, withdraw))
	}

	admin := service.Principal{Kind: constants.PrincipalKindAdmin, AdminID: 1}
	env.principal = &admin
	forbidden := env.do(t, http.MethodGet, "/affiliate/balance", nil)
	if forbidden.StatusCode != 403 {
		t.Fatalf("admin principal should be forbidden on affiliate routes, got %d", forbidden.StatusCode)
	}
}
