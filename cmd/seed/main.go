package main

import (
	"context"
	"errors"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/provider"
	"github.com/elevate-affiliate/internal/service"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type seedAffiliate struct {
	Name       string
	Email      string
	Phone      string
	UpiID      string
	Discount   float64
	Commission float64
}

var demoAffiliates = []seedAffiliate{
	{Name: "Glow Salon", Email: "glow@example.com", Phone: "9810000001", UpiID: "glow@upi", Discount: 10, Commission: 5},
	{Name: "Fit Studio", Email: "fit@example.com", Phone: "9810000002", UpiID: "fit@upi", Discount: 15, Commission: 8},
}

const (
	demoCustomerName  = "Demo Customer"
	demoCustomerPhone = "9898989898"
	demoSaleAmount    = "1200"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Database.LogLevel); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin(cfg.App.DefaultAdminEmail, cfg.App.DefaultAdminPassword); err != nil {
		stdLog.Fatalf("Failed to create default admin: %v", err)
	}

	// 种子数据不推送 WhatsApp
	cfg.WhatsApp.Enabled = false
	cfg.Queue.Enabled = false
	c := provider.NewContainer(cfg)

	var firstQRCode *models.QRCode
	for _, item := range demoAffiliates {
		affiliate, created, err := ensureAffiliate(c, item)
		if err != nil {
			stdLog.Fatalf("Failed to seed affiliate %s: %v", item.Email, err)
		}
		if !created {
			continue
		}
		qr, err := c.QRCodeService.CreateQRCode(service.CreateQRCodeInput{
			AffiliateID:          affiliate.ID,
			DiscountPercentage:   &item.Discount,
			CommissionPercentage: &item.Commission,
		})
		if err != nil {
			stdLog.Fatalf("Failed to seed qr code for %s: %v", item.Email, err)
		}
		logger.Infow("seed_qrcode_created", "affiliate_id", affiliate.ID, "qr_code_id", qr.ID, "redirect_url", qr.RedirectURL)
		if firstQRCode == nil {
			firstQRCode = qr
		}
	}

	if _, err := c.GlobalLeadService.Resolve(); err != nil {
		stdLog.Fatalf("Failed to resolve global lead: %v", err)
	}

	if err := seedRedemption(c, firstQRCode); err != nil {
		stdLog.Fatalf("Failed to seed redemption: %v", err)
	}
	if err := seedServicePortal(c, cfg); err != nil {
		stdLog.Fatalf("Failed to seed service portal: %v", err)
	}
	stdLog.Printf("Seed completed")
}

// ensureAffiliate 已存在的推广方原样保留，返回值 created 表示本次新建
func ensureAffiliate(c *provider.Container, item seedAffiliate) (*models.Affiliate, bool, error) {
	existing, err := c.AffiliateRepo.GetByEmail(item.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		logger.Infow("seed_affiliate_exists", "email", item.Email)
		return existing, false, nil
	}
	affiliate, err := c.AffiliateService.CreateAffiliate(service.CreateAffiliateInput{
		Name:        item.Name,
		Email:       item.Email,
		PhoneNumber: item.Phone,
		UpiID:       item.UpiID,
		Status:      constants.AffiliateStatusActive,
	})
	return affiliate, err == nil, err
}

// seedRedemption 走完一次 领券 → 验券 → 核销 → 成交，为推广方产生佣金
func seedRedemption(c *provider.Container, qr *models.QRCode) error {
	if qr == nil {
		return nil
	}
	if _, err := c.CouponService.IssueCoupon(context.Background(), service.IssueCouponInput{
		QRCodeID:      &qr.ID,
		CustomerName:  demoCustomerName,
		CustomerPhone: demoCustomerPhone,
	}); err != nil {
		if errors.Is(err, service.ErrDuplicateActiveCoupon) {
			logger.Infow("seed_redemption_exists", "qr_code_id", qr.ID)
			return nil
		}
		return err
	}
	if _, err := c.CouponService.VerifyCoupon(demoCustomerPhone, demoCustomerPhone); err != nil {
		return err
	}
	claim, err := c.ClaimService.CreateClaim(demoCustomerPhone, demoCustomerPhone)
	if err != nil {
		return err
	}
	purchase, err := c.PurchaseService.ProcessPurchase(service.ProcessPurchaseInput{
		ClaimID:        claim.ID,
		OriginalAmount: decimal.RequireFromString(demoSaleAmount),
	})
	if err != nil {
		return err
	}
	logger.Infow("seed_purchase_created",
		"purchase_id", purchase.ID,
		"final_amount", purchase.FinalAmount.String(),
		"commission_amount", purchase.CommissionAmount.String(),
	)
	return nil
}

var demoServiceLinks = []struct {
	Name, Type, Data string
}{
	{Name: "Menu", Type: "link", Data: "https://example.com/menu"},
	{Name: "WhatsApp", Type: "whatsapp", Data: "https://wa.me/919810000001"},
}

// seedServicePortal 已有服务时跳过，否则创建示例服务与门户二维码
func seedServicePortal(c *provider.Container, cfg *config.Config) error {
	types, err := c.PortalService.ListServiceTypes()
	if err != nil {
		return err
	}
	if len(types) > 0 {
		logger.Infow("seed_service_portal_exists", "service_types", len(types))
		return nil
	}
	var adminID uint
	if admin, err := c.AdminRepo.GetByEmail(cfg.App.DefaultAdminEmail); err == nil && admin != nil {
		adminID = admin.ID
	}

	items := make([]service.PortalItemInput, 0, len(demoServiceLinks))
	for i, item := range demoServiceLinks {
		name, serviceType, data := item.Name, item.Type, item.Data
		link, err := c.PortalService.CreateServiceLink(adminID, service.ServiceLinkInput{
			Name:        &name,
			ServiceType: &serviceType,
			ServiceData: &data,
		})
		if err != nil {
			return err
		}
		items = append(items, service.PortalItemInput{ServiceLinkID: link.ID, DisplayOrder: i})
	}
	view, err := c.PortalService.CreateServicePortal(service.CreateServicePortalInput{
		AdminID:        adminID,
		Name:           "demo",
		FrontendURL:    cfg.App.FrontendBaseURL,
		Items:          items,
		RequestBaseURL: "http://localhost:" + cfg.Server.Port,
	})
	if err != nil {
		return err
	}
	logger.Infow("seed_service_portal_created", "service_portal_id", view.Portal.ID, "scan_url", view.ScanURL)
	return nil
}
