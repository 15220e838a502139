package shared

import (
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/i18n"

	"github.com/gin-gonic/gin"
)

// RespondSuccessMsg 返回带国际化提示语的成功响应。
func RespondSuccessMsg(c *gin.Context, key string, data interface{}) {
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), key), data)
}
