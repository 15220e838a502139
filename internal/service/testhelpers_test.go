package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/queue"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type mockSettingRepo struct {
	mu    sync.Mutex
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

type fakeQREncoder struct {
	mu       sync.Mutex
	payloads []string
}

func (f *fakeQREncoder) Encode(payload string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return "data:image/png;base64,fake", nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []CouponNotice
}

func (r *recordingNotifier) NotifyCouponIssued(_ context.Context, notice CouponNotice) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
	return true
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

type fakeDispatcher struct {
	mu         sync.Mutex
	recipients []string
	bodies     []string
	err        error
}

func (f *fakeDispatcher) Send(_ context.Context, recipient, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipients = append(f.recipients, recipient)
	f.bodies = append(f.bodies, body)
	return f.err
}

func (f *fakeDispatcher) CountryCode() string {
	return "91"
}

type fakeTaskQueue struct {
	enabled  bool
	err      error
	payloads []queue.CouponWhatsAppPayload
}

func (f *fakeTaskQueue) Enabled() bool {
	return f.enabled
}

func (f *fakeTaskQueue) EnqueueCouponWhatsApp(payload queue.CouponWhatsAppPayload, _ ...asynq.Option) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

type serviceTestEnv struct {
	db            *gorm.DB
	cfg           *config.Config
	encoder       *fakeQREncoder
	notifier      *recordingNotifier
	systemConfig  *SystemConfigService
	auth          *AuthService
	globalLead    *GlobalLeadService
	qrCodes       *QRCodeService
	coupons       *CouponService
	claims        *ClaimService
	purchases     *PurchaseService
	ledger        *LedgerService
	withdrawals   *WithdrawalService
	affiliates    *AffiliateService
	affiliateRepo repository.AffiliateRepository
	qrRepo        repository.QRCodeRepository
	couponRepo    repository.CouponRepository
	claimRepo     repository.ClaimRepository
}

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newServiceTestEnv(t *testing.T, name string) *serviceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t, name)
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "service-test-secret", ExpireHours: 2, AffiliateExpireHours: 4},
	}

	adminRepo := repository.NewAdminRepository(db)
	affiliateRepo := repository.NewAffiliateRepository(db)
	qrRepo := repository.NewQRCodeRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	singletonRepo := repository.NewSingletonRepository(db)

	settingService := NewSettingService(repository.NewSettingRepository(db))
	systemConfig := NewSystemConfigService(settingService, SystemDefaultSetting("https://landing.example.com"))
	encoder := &fakeQREncoder{}
	notifier := &recordingNotifier{}

	auth := NewAuthService(cfg, adminRepo, affiliateRepo, systemConfig)
	globalLead := NewGlobalLeadService(affiliateRepo, qrRepo, singletonRepo, systemConfig, encoder)
	qrCodes := NewQRCodeService(qrRepo, affiliateRepo, couponRepo, claimRepo, systemConfig, globalLead, encoder)

	return &serviceTestEnv{
		db:            db,
		cfg:           cfg,
		encoder:       encoder,
		notifier:      notifier,
		systemConfig:  systemConfig,
		auth:          auth,
		globalLead:    globalLead,
		qrCodes:       qrCodes,
		coupons:       NewCouponService(couponRepo, qrCodes, systemConfig, notifier),
		claims:        NewClaimService(claimRepo, couponRepo),
		purchases:     NewPurchaseService(purchaseRepo, claimRepo, couponRepo, qrRepo),
		ledger:        NewLedgerService(affiliateRepo, purchaseRepo, withdrawalRepo),
		withdrawals:   NewWithdrawalService(affiliateRepo, purchaseRepo, withdrawalRepo),
		affiliates:    NewAffiliateService(auth, affiliateRepo, qrRepo),
		affiliateRepo: affiliateRepo,
		qrRepo:        qrRepo,
		couponRepo:    couponRepo,
		claimRepo:     claimRepo,
	}
}

func createTestAffiliate(t *testing.T, db *gorm.DB, email, status string) *models.Affiliate {
	t.Helper()
	hash, err := hashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	affiliate := &models.Affiliate{
		Name:           "Affiliate " + email,
		Email:          email,
		PhoneNumber:    "9876543210",
		PasswordHash:   hash,
		UpiID:          "affiliate@upi",
		CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Status:         status,
	}
	if err := db.Create(affiliate).Error; err != nil {
		t.Fatalf("create affiliate failed: %v", err)
	}
	return affiliate
}

func floatPtr(value float64) *float64 {
	return &value
}

func uintPtr(value uint) *uint {
	return &value
}

func createTestQRCode(t *testing.T, env *serviceTestEnv, affiliateID uint, discount, commission float64) *models.QRCode {
	t.Helper()
	qr, err := env.qrCodes.CreateQRCode(CreateQRCodeInput{
		AffiliateID:          affiliateID,
		DiscountPercentage:   floatPtr(discount),
		CommissionPercentage: floatPtr(commission),
	})
	if err != nil {
		t.Fatalf("create qr code failed: %v", err)
	}
	return qr
}

// redeemToClaim 走完 发券 -> 核验 -> 领取 流程
func redeemToClaim(t *testing.T, env *serviceTestEnv, qrCodeID uint, phone string) *models.Claim {
	t.Helper()
	if _, err := env.coupons.IssueCoupon(context.Background(), IssueCouponInput{
		QRCodeID:      uintPtr(qrCodeID),
		CustomerName:  "Customer " + phone,
		CustomerPhone: phone,
	}); err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	if _, err := env.coupons.VerifyCoupon(phone, phone); err != nil {
		t.Fatalf("verify coupon failed: %v", err)
	}
	claim, err := env.claims.CreateClaim(phone, phone)
	if err != nil {
		t.Fatalf("create claim failed: %v", err)
	}
	return claim
}

func processTestPurchase(t *testing.T, env *serviceTestEnv, claimID uint, amount string) *models.Purchase {
	t.Helper()
	purchase, err := env.purchases.ProcessPurchase(ProcessPurchaseInput{
		ClaimID:        claimID,
		OriginalAmount: decimal.RequireFromString(amount),
	})
	if err != nil {
		t.Fatalf("process purchase failed: %v", err)
	}
	return purchase
}
