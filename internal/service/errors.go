package service

import "errors"

// ErrorKind 业务错误分类，调用方可据此分支而无需解析文案
type ErrorKind string

const (
	KindNotFound              ErrorKind = "not_found"
	KindInvalidState          ErrorKind = "invalid_state"
	KindInvalidInput          ErrorKind = "invalid_input"
	KindDuplicateActiveCoupon ErrorKind = "duplicate_active_coupon"
	KindDuplicateActiveClaim  ErrorKind = "duplicate_active_claim"
	KindDuplicateEmail        ErrorKind = "duplicate_email"
	KindInsufficientBalance   ErrorKind = "insufficient_balance"
	KindDependencyConflict    ErrorKind = "dependency_conflict"
	KindUnauthorized          ErrorKind = "unauthorized"
	KindForbidden             ErrorKind = "forbidden"
	KindInternal              ErrorKind = "internal"
)

// 不存在
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAffiliateNotFound  = errors.New("affiliate not found")
	ErrQRCodeNotFound     = errors.New("qr code not found")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrClaimNotFound      = errors.New("claim not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrAdminNotFound      = errors.New("admin not found")

	ErrServiceLinkNotFound   = errors.New("service not found")
	ErrServicePortalNotFound = errors.New("service portal not found")
)

// 状态不允许
var (
	ErrInvalidState          = errors.New("invalid state")
	ErrAffiliateNotActive    = errors.New("affiliate is not active")
	ErrQRCodeInactive        = errors.New("qr code is inactive")
	ErrCouponNotVerified     = errors.New("coupon not verified")
	ErrCouponExpired         = errors.New("coupon expired")
	ErrClaimAlreadyProcessed = errors.New("claim already processed")
	ErrWithdrawalNotPending  = errors.New("withdrawal is not pending")
	ErrWithdrawalNotApproved = errors.New("withdrawal is not approved")
)

// 参数非法
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidPhone            = errors.New("invalid phone number")
	ErrInvalidPercentage       = errors.New("percentage must be between 0 and 100")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidWithdrawalStatus = errors.New("invalid withdrawal status")
	ErrInvalidPassword         = errors.New("invalid password")
	ErrSystemConfigInvalid     = errors.New("system config invalid")
	ErrCaptchaRequired         = errors.New("captcha required")
	ErrCaptchaInvalid          = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid    = errors.New("captcha config invalid")
	ErrInvalidPortalURL        = errors.New("frontend url must be an absolute http(s) url")
)

// 唯一性冲突
var (
	ErrDuplicateActiveCoupon = errors.New("an active coupon already exists for this phone")
	ErrDuplicateActiveClaim  = errors.New("an active claim already exists for this phone")
	ErrEmailExists           = errors.New("email already registered")
)

// 余额不足
var ErrInsufficientBalance = errors.New("insufficient commission balance")

// 依赖冲突
var (
	ErrDependencyConflict   = errors.New("dependency conflict")
	ErrAffiliateHasQRCodes  = errors.New("affiliate still owns qr codes")
	ErrQRCodeHasRedemptions = errors.New("qr code has coupons or claims")
	ErrServiceLinkInUse     = errors.New("service is used by service portals")
)

// 认证与授权
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPrincipalNotActive = errors.New("account pending approval")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid token")
)

var errorKindTable = []struct {
	kind    ErrorKind
	targets []error
}{
	{KindNotFound, []error{ErrNotFound, ErrAffiliateNotFound, ErrQRCodeNotFound, ErrCouponNotFound, ErrClaimNotFound, ErrWithdrawalNotFound, ErrAdminNotFound, ErrServiceLinkNotFound, ErrServicePortalNotFound}},
	{KindInvalidState, []error{ErrInvalidState, ErrAffiliateNotActive, ErrQRCodeInactive, ErrCouponNotVerified, ErrCouponExpired, ErrClaimAlreadyProcessed, ErrWithdrawalNotPending, ErrWithdrawalNotApproved}},
	{KindInvalidInput, []error{ErrInvalidInput, ErrInvalidPhone, ErrInvalidPercentage, ErrInvalidAmount, ErrInvalidWithdrawalStatus, ErrInvalidPassword, ErrSystemConfigInvalid, ErrCaptchaRequired, ErrCaptchaInvalid, ErrCaptchaConfigInvalid, ErrInvalidPortalURL}},
	{KindDuplicateActiveCoupon, []error{ErrDuplicateActiveCoupon}},
	{KindDuplicateActiveClaim, []error{ErrDuplicateActiveClaim}},
	{KindDuplicateEmail, []error{ErrEmailExists}},
	{KindInsufficientBalance, []error{ErrInsufficientBalance}},
	{KindDependencyConflict, []error{ErrDependencyConflict, ErrAffiliateHasQRCodes, ErrQRCodeHasRedemptions, ErrServiceLinkInUse}},
	{KindUnauthorized, []error{ErrInvalidCredentials, ErrPrincipalNotActive, ErrInvalidToken}},
	{KindForbidden, []error{ErrForbidden}},
}

// KindOf 返回错误所属分类，未识别的错误归为 internal
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, entry := range errorKindTable {
		for _, target := range entry.targets {
			if errors.Is(err, target) {
				return entry.kind
			}
		}
	}
	return KindInternal
}
