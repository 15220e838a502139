package i18n

var catalogs = map[string]map[string]string{
	LocaleEN: enUS,
	LocaleZH: zhCN,
}

var enUS = map[string]string{
	"success":                         "success",
	"error.bad_request":               "Invalid request parameters",
	"error.unauthorized":              "Unauthorized",
	"error.forbidden":                 "You do not have permission to perform this action",
	"error.not_found":                 "Resource not found",
	"error.internal":                  "Internal server error",
	"error.invalid_state":             "The resource is not in a valid state for this action",
	"error.invalid_input":             "Invalid input",
	"error.dependency_conflict":       "The resource is still referenced by other records",
	"error.auth_header_missing":       "Authorization header is missing",
	"error.auth_header_invalid":       "Authorization header is malformed",
	"error.token_invalid":             "Token is invalid or expired",
	"error.token_revoked":             "Token has been revoked, please log in again",
	"error.invalid_credentials":       "Invalid email or password",
	"error.account_pending":           "Account pending approval",
	"error.login_failed":              "Login failed",
	"error.login_too_many":            "Too many login attempts, please retry in %d seconds",
	"error.rate_limited":              "Too many requests, please retry in %d seconds",
	"error.rate_limit_unavailable":    "Rate limiter unavailable",
	"error.captcha_required":          "Captcha is required",
	"error.captcha_invalid":           "Captcha is invalid",
	"error.captcha_unavailable":       "Captcha is unavailable",
	"error.captcha_generate_failed":   "Failed to generate captcha",
	"error.captcha_config_invalid":    "Captcha configuration is invalid",
	"error.email_exists":              "Email already registered",
	"error.password_invalid":          "Password is incorrect or too weak",
	"error.password_min_length":       "Password must be at least %d characters",
	"error.password_require_upper":    "Password must contain an uppercase letter",
	"error.password_require_lower":    "Password must contain a lowercase letter",
	"error.password_require_number":   "Password must contain a number",
	"error.password_require_special":  "Password must contain a special character",
	"error.password_change_failed":    "Failed to change password",
	"error.register_failed":           "Registration failed",
	"error.profile_fetch_failed":      "Failed to load profile",
	"error.profile_update_failed":     "Failed to update profile",
	"error.affiliate_not_found":       "Affiliate not found",
	"error.affiliate_not_active":      "Affiliate is not active",
	"error.affiliate_has_qrcodes":     "Affiliate still owns QR codes",
	"error.affiliate_id_invalid":      "Invalid affiliate id",
	"error.affiliate_fetch_failed":    "Failed to load affiliates",
	"error.affiliate_save_failed":     "Failed to save affiliate",
	"error.affiliate_delete_failed":   "Failed to delete affiliate",
	"error.qrcode_not_found":          "QR code not found",
	"error.qrcode_inactive":           "QR code is inactive",
	"error.qrcode_has_redemptions":    "QR code has coupons or claims",
	"error.qrcode_id_invalid":         "Invalid QR code id",
	"error.qrcode_fetch_failed":       "Failed to load QR codes",
	"error.qrcode_save_failed":        "Failed to save QR code",
	"error.qrcode_delete_failed":      "Failed to delete QR code",
	"error.lead_resolve_failed":       "Failed to resolve offer",
	"error.percentage_invalid":        "Percentage must be between 0 and 100",
	"error.phone_invalid":             "Invalid phone number",
	"error.coupon_not_found":          "Coupon not found",
	"error.coupon_not_verified":       "Coupon has not been verified",
	"error.coupon_expired":            "Coupon expired",
	"error.coupon_duplicate_active":   "An active coupon already exists for this phone",
	"error.coupon_issue_failed":       "Failed to generate coupon",
	"error.coupon_verify_failed":      "Failed to verify coupon",
	"error.coupon_fetch_failed":       "Failed to load coupons",
	"error.claim_not_found":           "Claim not found",
	"error.claim_duplicate_active":    "An active claim already exists for this phone",
	"error.claim_already_processed":   "Claim already processed",
	"error.claim_create_failed":       "Failed to claim coupon",
	"error.claim_verify_failed":       "Failed to verify claim",
	"error.claim_fetch_failed":        "Failed to load claims",
	"error.amount_invalid":            "Invalid amount",
	"error.purchase_failed":           "Failed to process purchase",
	"error.purchase_fetch_failed":     "Failed to load purchases",
	"error.balance_fetch_failed":      "Failed to load balance",
	"error.insufficient_balance":      "Insufficient commission balance",
	"error.withdrawal_not_found":      "Withdrawal not found",
	"error.withdrawal_not_pending":    "Withdrawal is not pending",
	"error.withdrawal_not_approved":   "Withdrawal is not approved",
	"error.withdrawal_status_invalid": "Invalid withdrawal status",
	"error.withdrawal_id_invalid":     "Invalid withdrawal id",
	"error.withdrawal_request_failed": "Failed to request withdrawal",
	"error.withdrawal_cancel_failed":  "Failed to cancel withdrawal",
	"error.withdrawal_process_failed": "Failed to process withdrawal",
	"error.withdrawal_fetch_failed":   "Failed to load withdrawals",
	"error.admin_not_found":           "Admin not found",
	"error.admin_id_invalid":          "Invalid admin id",
	"error.admin_create_failed":       "Failed to create admin",
	"error.admin_fetch_failed":        "Failed to load admins",
	"error.admin_role_update_failed":  "Failed to update admin roles",
	"error.role_invalid":              "Unknown role",
	"error.role_fetch_failed":         "Failed to load roles",
	"error.audit_fetch_failed":        "Failed to load audit logs",
	"error.config_invalid":            "System configuration is invalid",
	"error.settings_fetch_failed":     "Failed to load settings",
	"error.settings_save_failed":      "Failed to save settings",
	"message.coupon_verified":         "Coupon verified successfully",
	"message.claim_created":           "Coupon claimed successfully",
	"message.withdrawal_cancelled":    "Withdrawal cancelled",
	"message.password_changed":        "Password changed, please log in again",
	"message.registration_pending":    "Registration successful, your account is pending approval",
	"message.deleted":                 "Deleted",
	"error.service_not_found":         "Service not found",
	"error.service_in_use":            "Service is used by service portals, deactivate it instead",
	"error.service_id_invalid":        "Invalid service id",
	"error.service_fetch_failed":      "Failed to load services",
	"error.service_save_failed":       "Failed to save service",
	"error.service_delete_failed":     "Failed to delete service",
	"error.portal_not_found":          "Service portal not found",
	"error.portal_url_invalid":        "Frontend URL must be an absolute http(s) URL",
	"error.portal_id_invalid":         "Invalid service portal id",
	"error.portal_fetch_failed":       "Failed to load service portals",
	"error.portal_save_failed":        "Failed to save service portal",
	"error.portal_delete_failed":      "Failed to delete service portal",
	"message.portal_created":          "Service portal QR code generated",
}

var zhCN = map[string]string{
	"success":                         "成功",
	"error.bad_request":               "请求参数错误",
	"error.unauthorized":              "未登录或登录已失效",
	"error.forbidden":                 "没有执行该操作的权限",
	"error.not_found":                 "资源不存在",
	"error.internal":                  "服务器内部错误",
	"error.invalid_state":             "当前状态不允许该操作",
	"error.invalid_input":             "输入不合法",
	"error.dependency_conflict":       "资源仍被其他记录引用",
	"error.auth_header_missing":       "缺少 Authorization 请求头",
	"error.auth_header_invalid":       "Authorization 请求头格式错误",
	"error.token_invalid":             "令牌无效或已过期",
	"error.token_revoked":             "令牌已失效，请重新登录",
	"error.invalid_credentials":       "邮箱或密码错误",
	"error.account_pending":           "账号待审核",
	"error.login_failed":              "登录失败",
	"error.login_too_many":            "登录尝试过多，请 %d 秒后重试",
	"error.rate_limited":              "请求过于频繁，请 %d 秒后重试",
	"error.rate_limit_unavailable":    "限流服务不可用",
	"error.captcha_required":          "请先完成验证码",
	"error.captcha_invalid":           "验证码错误",
	"error.captcha_unavailable":       "验证码不可用",
	"error.captcha_generate_failed":   "验证码生成失败",
	"error.captcha_config_invalid":    "验证码配置不合法",
	"error.email_exists":              "邮箱已被注册",
	"error.password_invalid":          "密码错误或强度不足",
	"error.password_min_length":       "密码长度至少 %d 位",
	"error.password_require_upper":    "密码需包含大写字母",
	"error.password_require_lower":    "密码需包含小写字母",
	"error.password_require_number":   "密码需包含数字",
	"error.password_require_special":  "密码需包含特殊字符",
	"error.password_change_failed":    "修改密码失败",
	"error.register_failed":           "注册失败",
	"error.profile_fetch_failed":      "获取资料失败",
	"error.profile_update_failed":     "更新资料失败",
	"error.affiliate_not_found":       "推广方不存在",
	"error.affiliate_not_active":      "推广方未启用",
	"error.affiliate_has_qrcodes":     "推广方仍有二维码",
	"error.affiliate_id_invalid":      "推广方 ID 不合法",
	"error.affiliate_fetch_failed":    "获取推广方失败",
	"error.affiliate_save_failed":     "保存推广方失败",
	"error.affiliate_delete_failed":   "删除推广方失败",
	"error.qrcode_not_found":          "二维码不存在",
	"error.qrcode_inactive":           "二维码已停用",
	"error.qrcode_has_redemptions":    "二维码已有优惠券或核销记录",
	"error.qrcode_id_invalid":         "二维码 ID 不合法",
	"error.qrcode_fetch_failed":       "获取二维码失败",
	"error.qrcode_save_failed":        "保存二维码失败",
	"error.qrcode_delete_failed":      "删除二维码失败",
	"error.lead_resolve_failed":       "获取优惠信息失败",
	"error.percentage_invalid":        "百分比需在 0 到 100 之间",
	"error.phone_invalid":             "手机号不合法",
	"error.coupon_not_found":          "优惠券不存在",
	"error.coupon_not_verified":       "优惠券尚未验证",
	"error.coupon_expired":            "优惠券已过期",
	"error.coupon_duplicate_active":   "该手机号已有有效优惠券",
	"error.coupon_issue_failed":       "生成优惠券失败",
	"error.coupon_verify_failed":      "验证优惠券失败",
	"error.coupon_fetch_failed":       "获取优惠券失败",
	"error.claim_not_found":           "核销记录不存在",
	"error.claim_duplicate_active":    "该手机号已有有效核销记录",
	"error.claim_already_processed":   "核销记录已处理",
	"error.claim_create_failed":       "核销失败",
	"error.claim_verify_failed":       "核验核销记录失败",
	"error.claim_fetch_failed":        "获取核销记录失败",
	"error.amount_invalid":            "金额不合法",
	"error.purchase_failed":           "处理成交失败",
	"error.purchase_fetch_failed":     "获取成交记录失败",
	"error.balance_fetch_failed":      "获取余额失败",
	"error.insufficient_balance":      "可提现佣金不足",
	"error.withdrawal_not_found":      "提现申请不存在",
	"error.withdrawal_not_pending":    "提现申请不是待处理状态",
	"error.withdrawal_not_approved":   "提现申请尚未批准",
	"error.withdrawal_status_invalid": "提现状态不合法",
	"error.withdrawal_id_invalid":     "提现申请 ID 不合法",
	"error.withdrawal_request_failed": "提交提现申请失败",
	"error.withdrawal_cancel_failed":  "取消提现申请失败",
	"error.withdrawal_process_failed": "处理提现申请失败",
	"error.withdrawal_fetch_failed":   "获取提现记录失败",
	"error.admin_not_found":           "管理员不存在",
	"error.admin_id_invalid":          "管理员 ID 不合法",
	"error.admin_create_failed":       "创建管理员失败",
	"error.admin_fetch_failed":        "获取管理员失败",
	"error.admin_role_update_failed":  "更新管理员角色失败",
	"error.role_invalid":              "角色不存在",
	"error.role_fetch_failed":         "获取角色失败",
	"error.audit_fetch_failed":        "获取审计日志失败",
	"error.config_invalid":            "系统配置不合法",
	"error.settings_fetch_failed":     "获取设置失败",
	"error.settings_save_failed":      "保存设置失败",
	"message.coupon_verified":         "优惠券验证成功",
	"message.claim_created":           "核销成功",
	"message.withdrawal_cancelled":    "提现申请已取消",
	"message.password_changed":        "密码已修改，请重新登录",
	"message.registration_pending":    "注册成功，账号待审核",
	"message.deleted":                 "已删除",
	"error.service_not_found":         "服务不存在",
	"error.service_in_use":            "服务仍被门户使用，请改为停用",
	"error.service_id_invalid":        "服务 ID 不合法",
	"error.service_fetch_failed":      "获取服务失败",
	"error.service_save_failed":       "保存服务失败",
	"error.service_delete_failed":     "删除服务失败",
	"error.portal_not_found":          "服务门户不存在",
	"error.portal_url_invalid":        "前端地址必须是完整的 http(s) 链接",
	"error.portal_id_invalid":         "服务门户 ID 不合法",
	"error.portal_fetch_failed":       "获取服务门户失败",
	"error.portal_save_failed":        "保存服务门户失败",
	"error.portal_delete_failed":      "删除服务门户失败",
	"message.portal_created":          "门户二维码已生成",
}
