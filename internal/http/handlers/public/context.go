package public

import (
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"

	"github.com/gin-gonic/gin"
)

// currentAffiliateID 读取已登录推广方 ID
func currentAffiliateID(c *gin.Context) (uint, bool) {
	principal, ok := shared.MustPrincipal(c)
	if !ok {
		return 0, false
	}
	if !principal.IsAffiliate() {
		respondError(c, response.CodeForbidden, "error.forbidden", nil)
		return 0, false
	}
	return principal.AffiliateID, true
}
