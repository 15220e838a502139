package provider

import (
	"github.com/elevate-affiliate/internal/authz"
	"github.com/elevate-affiliate/internal/cache"
	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/messaging"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/qrcode"
	"github.com/elevate-affiliate/internal/queue"
	"github.com/elevate-affiliate/internal/repository"
	"github.com/elevate-affiliate/internal/service"
)

const qrImageSize = 256

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	WhatsApp    *messaging.WhatsAppClient

	// Repositories
	AdminRepo         repository.AdminRepository
	AffiliateRepo     repository.AffiliateRepository
	QRCodeRepo        repository.QRCodeRepository
	CouponRepo        repository.CouponRepository
	ClaimRepo         repository.ClaimRepository
	PurchaseRepo      repository.PurchaseRepository
	WithdrawalRepo    repository.WithdrawalRepository
	SingletonRepo     repository.SingletonRepository
	SettingRepo       repository.SettingRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository
	ServiceLinkRepo   repository.ServiceLinkRepository
	ServicePortalRepo repository.ServicePortalRepository

	// Services
	AuthzService        *authz.Service
	SettingService      *service.SettingService
	SystemConfigService *service.SystemConfigService
	CaptchaService      *service.CaptchaService
	AuthService         *service.AuthService
	AdminService        *service.AdminService
	AffiliateService    *service.AffiliateService
	GlobalLeadService   *service.GlobalLeadService
	QRCodeService       *service.QRCodeService
	NotificationService *service.NotificationService
	CouponService       *service.CouponService
	ClaimService        *service.ClaimService
	PurchaseService     *service.PurchaseService
	LedgerService       *service.LedgerService
	WithdrawalService   *service.WithdrawalService
	PortalService       *service.ServicePortalService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		WhatsApp:    messaging.NewWhatsAppClient(cfg.WhatsApp),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.AffiliateRepo = repository.NewAffiliateRepository(db)
	c.QRCodeRepo = repository.NewQRCodeRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.ClaimRepo = repository.NewClaimRepository(db)
	c.PurchaseRepo = repository.NewPurchaseRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.SingletonRepo = repository.NewSingletonRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
	c.ServiceLinkRepo = repository.NewServiceLinkRepository(db)
	c.ServicePortalRepo = repository.NewServicePortalRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	fallback := service.SystemDefaultSetting(c.Config.App.FrontendBaseURL)
	fallback.WhatsAppEnabled = c.Config.WhatsApp.Enabled
	c.SystemConfigService = service.NewSystemConfigService(c.SettingService, fallback)
	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)

	encoder := qrcode.NewPNGEncoder(qrImageSize)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.AffiliateRepo, c.SystemConfigService)
	c.AdminService = service.NewAdminService(c.AuthService, c.AdminRepo, c.AuthzAuditLogRepo, c.AuthzService)
	c.AffiliateService = service.NewAffiliateService(c.AuthService, c.AffiliateRepo, c.QRCodeRepo)
	c.GlobalLeadService = service.NewGlobalLeadService(c.AffiliateRepo, c.QRCodeRepo, c.SingletonRepo, c.SystemConfigService, encoder)
	c.QRCodeService = service.NewQRCodeService(c.QRCodeRepo, c.AffiliateRepo, c.CouponRepo, c.ClaimRepo, c.SystemConfigService, c.GlobalLeadService, encoder)

	var taskQueue service.CouponTaskQueue
	if c.QueueClient != nil {
		taskQueue = c.QueueClient
	}
	c.NotificationService = service.NewNotificationService(c.SystemConfigService, c.WhatsApp, taskQueue)
	// 后台保存的网关密钥优先于配置文件
	c.WhatsApp.SetKeySource(c.NotificationService.WhatsAppAPIKey)

	c.CouponService = service.NewCouponService(c.CouponRepo, c.QRCodeService, c.SystemConfigService, c.NotificationService)
	c.ClaimService = service.NewClaimService(c.ClaimRepo, c.CouponRepo)
	c.PurchaseService = service.NewPurchaseService(c.PurchaseRepo, c.ClaimRepo, c.CouponRepo, c.QRCodeRepo)
	c.LedgerService = service.NewLedgerService(c.AffiliateRepo, c.PurchaseRepo, c.WithdrawalRepo)
	c.WithdrawalService = service.NewWithdrawalService(c.AffiliateRepo, c.PurchaseRepo, c.WithdrawalRepo)
	c.PortalService = service.NewServicePortalService(c.ServiceLinkRepo, c.ServicePortalRepo, c.SystemConfigService, encoder, c.Config.App.BackendBaseURL)

	// 启动时预热全局兜底线索，失败时首次扫码再创建
	if _, err := c.GlobalLeadService.Resolve(); err != nil {
		logger.Warnw("provider_global_lead_warmup_failed", "error", err)
	}
}
