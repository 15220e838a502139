package admin

import (
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return shared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	shared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error, fallbackKey string) {
	shared.RespondServiceError(c, err, fallbackKey)
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, response.CodeBadRequest, "error.bad_request", err)
}
