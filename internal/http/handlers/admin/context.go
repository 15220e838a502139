package admin

import (
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

func currentAdmin(c *gin.Context) (service.Principal, bool) {
	return shared.MustPrincipal(c)
}

func parseID(c *gin.Context, invalidKey string) (uint, bool) {
	return shared.ParseIDParam(c, "id", invalidKey)
}
