package public

import (
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	shared.RespondError(c, code, key, err)
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, response.CodeBadRequest, "error.bad_request", err)
}

func respondServiceError(c *gin.Context, err error, fallbackKey string) {
	shared.RespondServiceError(c, err, fallbackKey)
}
