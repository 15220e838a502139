package public

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServicePortalRedirect 门户二维码扫码入口：计数后 302 跳转，禁止缓存以保证每次扫码都被记录
func (h *Handler) ServicePortalRedirect(c *gin.Context) {
	target := h.PortalService.ResolveServicePortal(c.Query("qrId"))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Redirect(http.StatusFound, target)
}
