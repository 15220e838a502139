package constants

// 推广方状态常量
const (
	AffiliateStatusInactive  = "inactive"
	AffiliateStatusActive    = "active"
	AffiliateStatusRejected  = "rejected"
	AffiliateStatusSuspended = "suspended"
)

// 优惠券状态常量（只允许前进）
const (
	CouponStatusGenerated = "generated"
	CouponStatusVerified  = "verified"
	CouponStatusClaimed   = "claimed"
	CouponStatusUsed      = "used"
	CouponStatusExpired   = "expired"
)

// 核销状态常量
const (
	ClaimStatusClaimed   = "claimed"
	ClaimStatusPurchased = "purchased"
	ClaimStatusExpired   = "expired"
)

// 提现状态常量
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusFailed   = "failed"
	WithdrawalStatusPaid     = "paid"
)

// 管理员角色常量
const (
	AdminRoleAdmin      = "admin"
	AdminRoleSuperAdmin = "superadmin"
)

// 身份类型常量
const (
	PrincipalKindAdmin     = "admin"
	PrincipalKindAffiliate = "affiliate"
)

// 全局兜底推广方常量
const (
	GlobalAffiliateEmail     = "global@system.com"
	GlobalAffiliateName      = "Global System"
	GlobalAffiliatePhone     = "0000000000"
	GlobalQRCodeUniqueID     = "global-system-default"
	SingletonGlobalAffiliate = "global_affiliate"
	SingletonGlobalQRCode    = "global_qrcode"
)

// 优惠券默认值
const (
	CouponDealValueDefault   = "standard"
	CouponPhoneMinLength     = 10
	DefaultAffiliatePassword = "affiliate123"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin             = "login"
	CaptchaSceneAffiliateRegister = "affiliate_register"
	CaptchaSceneCouponIssue       = "coupon_issue"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskCouponWhatsApp    = "coupon:whatsapp_notify"
	TaskCouponExpireSweep = "coupon:expire_sweep"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "elv"
)

// 设置键常量
const (
	SettingKeySystemConfig  = "system_config"
	SettingKeyCaptchaConfig = "captcha_config"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEnUS, LocaleZhCN}
