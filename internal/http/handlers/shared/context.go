package shared

import (
	"strconv"

	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// PrincipalContextKey 鉴权中间件写入的身份 key
const PrincipalContextKey = "principal"

// SetPrincipal 写入当前身份。
func SetPrincipal(c *gin.Context, principal service.Principal) {
	c.Set(PrincipalContextKey, principal)
}

// CurrentPrincipal 读取当前身份，缺失时返回零值。
func CurrentPrincipal(c *gin.Context) (service.Principal, bool) {
	if c == nil {
		return service.Principal{}, false
	}
	value, ok := c.Get(PrincipalContextKey)
	if !ok {
		return service.Principal{}, false
	}
	principal, ok := value.(service.Principal)
	if !ok || (!principal.IsAdmin() && !principal.IsAffiliate()) {
		return service.Principal{}, false
	}
	return principal, true
}

// MustPrincipal 读取当前身份，缺失时直接输出 401。
func MustPrincipal(c *gin.Context) (service.Principal, bool) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.Principal{}, false
	}
	return principal, true
}

// ParseIDParam 解析路径中的正整数 ID，失败时输出 400。
func ParseIDParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	raw, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || raw == 0 {
		RespondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return uint(raw), true
}
