package shared

import (
	"errors"

	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/i18n"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
type MappedHandlerError struct {
	Target error
	Code   int
	Key    string
}

// localizedError 携带文案 key 与参数的业务错误（如密码策略）。
type localizedError interface {
	Key() string
	Args() []interface{}
}

// ConcatMappedHandlerErrors 合并多组映射规则，靠前的优先。
func ConcatMappedHandlerErrors(groups ...[]MappedHandlerError) []MappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// RespondWithMappedError 按规则表输出业务错误，未命中的错误记日志并按 fallback 输出。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackKey string) {
	kind := string(service.KindOf(err))
	locale := i18n.ResolveLocale(c)

	var lerr localizedError
	if errors.As(err, &lerr) && i18n.HasKey(lerr.Key()) {
		msg := i18n.Sprintf(locale, lerr.Key(), lerr.Args()...)
		response.Fail(c, response.WrapError(codeForKind(service.KindOf(err)), msg, nil).WithKind(kind))
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			response.Fail(c, response.WrapError(rule.Code, i18n.T(locale, rule.Key), nil).WithKind(kind))
			return
		}
	}
	appErr := response.WrapError(fallbackCode, i18n.T(locale, fallbackKey), err)
	if kind != string(service.KindInternal) {
		appErr.Err = nil
		appErr.Code = codeForKind(service.KindOf(err))
	}
	respond(c, appErr.WithKind(kind))
}

// RespondServiceError 使用通用业务错误规则输出。
func RespondServiceError(c *gin.Context, err error, fallbackKey string) {
	RespondWithMappedError(c, err, CommonErrorRules, response.CodeInternal, fallbackKey)
}

func codeForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindNotFound:
		return response.CodeNotFound
	case service.KindDuplicateActiveCoupon, service.KindDuplicateActiveClaim, service.KindDuplicateEmail, service.KindDependencyConflict:
		return response.CodeConflict
	case service.KindUnauthorized:
		return response.CodeUnauthorized
	case service.KindForbidden:
		return response.CodeForbidden
	case service.KindInvalidState, service.KindInvalidInput, service.KindInsufficientBalance:
		return response.CodeBadRequest
	default:
		return response.CodeInternal
	}
}

// CommonErrorRules 所有业务哨兵错误的默认映射。
var CommonErrorRules = []MappedHandlerError{
	{Target: service.ErrAffiliateNotFound, Code: response.CodeNotFound, Key: "error.affiliate_not_found"},
	{Target: service.ErrQRCodeNotFound, Code: response.CodeNotFound, Key: "error.qrcode_not_found"},
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
	{Target: service.ErrClaimNotFound, Code: response.CodeNotFound, Key: "error.claim_not_found"},
	{Target: service.ErrWithdrawalNotFound, Code: response.CodeNotFound, Key: "error.withdrawal_not_found"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
	{Target: service.ErrServiceLinkNotFound, Code: response.CodeNotFound, Key: "error.service_not_found"},
	{Target: service.ErrServicePortalNotFound, Code: response.CodeNotFound, Key: "error.portal_not_found"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},

	{Target: service.ErrAffiliateNotActive, Code: response.CodeBadRequest, Key: "error.affiliate_not_active"},
	{Target: service.ErrQRCodeInactive, Code: response.CodeBadRequest, Key: "error.qrcode_inactive"},
	{Target: service.ErrCouponNotVerified, Code: response.CodeBadRequest, Key: "error.coupon_not_verified"},
	{Target: service.ErrCouponExpired, Code: response.CodeBadRequest, Key: "error.coupon_expired"},
	{Target: service.ErrClaimAlreadyProcessed, Code: response.CodeBadRequest, Key: "error.claim_already_processed"},
	{Target: service.ErrWithdrawalNotPending, Code: response.CodeBadRequest, Key: "error.withdrawal_not_pending"},
	{Target: service.ErrWithdrawalNotApproved, Code: response.CodeBadRequest, Key: "error.withdrawal_not_approved"},
	{Target: service.ErrInvalidState, Code: response.CodeBadRequest, Key: "error.invalid_state"},

	{Target: service.ErrInvalidPhone, Code: response.CodeBadRequest, Key: "error.phone_invalid"},
	{Target: service.ErrInvalidPercentage, Code: response.CodeBadRequest, Key: "error.percentage_invalid"},
	{Target: service.ErrInvalidAmount, Code: response.CodeBadRequest, Key: "error.amount_invalid"},
	{Target: service.ErrInvalidWithdrawalStatus, Code: response.CodeBadRequest, Key: "error.withdrawal_status_invalid"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_invalid"},
	{Target: service.ErrSystemConfigInvalid, Code: response.CodeBadRequest, Key: "error.config_invalid"},
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeBadRequest, Key: "error.captcha_config_invalid"},
	{Target: service.ErrInvalidPortalURL, Code: response.CodeBadRequest, Key: "error.portal_url_invalid"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.invalid_input"},

	{Target: service.ErrDuplicateActiveCoupon, Code: response.CodeConflict, Key: "error.coupon_duplicate_active"},
	{Target: service.ErrDuplicateActiveClaim, Code: response.CodeConflict, Key: "error.claim_duplicate_active"},
	{Target: service.ErrInsufficientBalance, Code: response.CodeBadRequest, Key: "error.insufficient_balance"},

	{Target: service.ErrAffiliateHasQRCodes, Code: response.CodeConflict, Key: "error.affiliate_has_qrcodes"},
	{Target: service.ErrQRCodeHasRedemptions, Code: response.CodeConflict, Key: "error.qrcode_has_redemptions"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrServiceLinkInUse, Code: response.CodeConflict, Key: "error.service_in_use"},
	{Target: service.ErrDependencyConflict, Code: response.CodeConflict, Key: "error.dependency_conflict"},

	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrPrincipalNotActive, Code: response.CodeUnauthorized, Key: "error.account_pending"},
	{Target: service.ErrInvalidToken, Code: response.CodeUnauthorized, Key: "error.token_invalid"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
}
