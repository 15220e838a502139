package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elevate-affiliate/internal/authz"
	"github.com/elevate-affiliate/internal/cache"
	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"
	adminhandlers "github.com/elevate-affiliate/internal/http/handlers/admin"
	publichandlers "github.com/elevate-affiliate/internal/http/handlers/public"
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/provider"

	"github.com/gin-gonic/gin"
)

const defaultRedisPrefix = "ea"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	shared.RegisterValidators()
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = defaultRedisPrefix
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	couponRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:coupon", redisPrefix),
		WindowSeconds: cfg.Security.CouponRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CouponRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CouponRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(SecureHeadersMiddleware(cfg.Server.Mode))
	r.Use(CORSMiddleware(cfg.CORS))

	authMiddleware := PrincipalAuthMiddleware(c.AuthService)

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/register", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.RegisterAffiliate)
		}

		captcha := apiV1.Group("/captcha")
		{
			captcha.GET("/image", publicHandler.GetImageCaptcha)
			captcha.GET("/config", publicHandler.GetCaptchaConfig)
		}

		// 扫码落地页与门店核销（无需登录）
		public := apiV1.Group("/public")
		{
			public.GET("/lead", publicHandler.GetLead)
			public.POST("/coupons", RateLimitMiddleware(redisClient, couponRule, KeyByIPAndJSONField("customer_phone")), publicHandler.IssueCoupon)
			public.POST("/coupons/verify", publicHandler.VerifyCoupon)
			public.POST("/claims", publicHandler.CreateClaim)
			public.POST("/claims/verify", publicHandler.VerifyClaim)
			public.GET("/service-portal", publicHandler.ServicePortalRedirect)
		}

		// 推广方接口
		affiliate := apiV1.Group("/affiliate")
		affiliate.Use(authMiddleware, RequireKind(constants.PrincipalKindAffiliate))
		{
			affiliate.GET("/profile", publicHandler.GetProfile)
			affiliate.PUT("/profile", publicHandler.UpdateProfile)
			affiliate.PUT("/password", publicHandler.ChangePassword)
			affiliate.GET("/qrcodes", publicHandler.ListMyQRCodes)
			affiliate.GET("/balance", publicHandler.GetBalance)
			affiliate.GET("/withdrawals", publicHandler.ListWithdrawals)
			affiliate.POST("/withdrawals", publicHandler.RequestWithdrawal)
			affiliate.DELETE("/withdrawals/:id", publicHandler.CancelWithdrawal)
		}

		// 管理员接口
		adminBase := apiV1.Group("/admin")
		adminBase.Use(authMiddleware, RequireKind(constants.PrincipalKindAdmin))
		// 修改本人密码不受角色限制
		adminBase.PUT("/password", adminHandler.ChangePassword)

		admin := adminBase.Group("")
		admin.Use(AdminRBACMiddleware(c.AuthzService))
		{
			admin.GET("/affiliates", adminHandler.ListAffiliates)
			admin.POST("/affiliates", adminHandler.CreateAffiliate)
			admin.GET("/affiliates/:id", adminHandler.GetAffiliate)
			admin.PUT("/affiliates/:id", adminHandler.UpdateAffiliate)
			admin.DELETE("/affiliates/:id", adminHandler.DeleteAffiliate)
			admin.PUT("/affiliates/:id/status", adminHandler.UpdateAffiliateStatus)
			admin.GET("/affiliates/:id/balance", adminHandler.GetAffiliateBalance)

			admin.GET("/qrcodes", adminHandler.ListQRCodes)
			admin.POST("/qrcodes", adminHandler.CreateQRCode)
			admin.GET("/qrcodes/:id", adminHandler.GetQRCode)
			admin.DELETE("/qrcodes/:id", adminHandler.DeleteQRCode)
			admin.PUT("/qrcodes/:id/status", adminHandler.UpdateQRCodeStatus)

			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.GET("/claims", adminHandler.ListClaims)
			admin.POST("/purchases", adminHandler.ProcessPurchase)
			admin.GET("/purchases", adminHandler.ListPurchases)

			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.GET("/withdrawals/stats", adminHandler.GetWithdrawalStats)
			admin.PUT("/withdrawals/:id/process", adminHandler.ProcessWithdrawal)
			admin.PUT("/withdrawals/:id/payment", adminHandler.RecordWithdrawalPayment)

			admin.GET("/services", adminHandler.ListServiceLinks)
			admin.POST("/services", adminHandler.CreateServiceLink)
			admin.GET("/services/types", adminHandler.ListServiceTypes)
			admin.GET("/services/:id", adminHandler.GetServiceLink)
			admin.PUT("/services/:id", adminHandler.UpdateServiceLink)
			admin.DELETE("/services/:id", adminHandler.DeleteServiceLink)

			admin.GET("/service-portals", adminHandler.ListServicePortals)
			admin.POST("/service-portals", adminHandler.CreateServicePortal)
			admin.GET("/service-portals/stats", adminHandler.GetServicePortalStats)
			admin.GET("/service-portals/:id", adminHandler.GetServicePortal)
			admin.PUT("/service-portals/:id", adminHandler.UpdateServicePortal)
			admin.DELETE("/service-portals/:id", adminHandler.DeleteServicePortal)

			admin.GET("/config", adminHandler.GetSystemConfig)
			admin.PUT("/config/global", adminHandler.UpdateGlobalSettings)

			// 超级管理员
			super := admin.Group("")
			super.Use(RequireSuperAdmin())
			{
				super.PUT("/config", adminHandler.UpdateSystemConfig)
				super.GET("/config/captcha", adminHandler.GetCaptchaConfig)
				super.PUT("/config/captcha", adminHandler.UpdateCaptchaConfig)
				super.GET("/admins", adminHandler.ListAdmins)
				super.POST("/admins", adminHandler.CreateAdmin)
				super.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)
				super.GET("/roles", adminHandler.ListRoles)
				super.GET("/audit-logs", adminHandler.ListAuditLogs)
				super.GET("/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 列出可授权给角色的管理端接口
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
