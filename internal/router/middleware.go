package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/authz"
	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/i18n"
	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// PrincipalAuthenticator 校验 Bearer token 并还原登录身份
type PrincipalAuthenticator interface {
	Authenticate(ctx context.Context, token string) (service.Principal, error)
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Authorization",
			"Accept-Language",
			"X-Locale",
			"X-Request-ID",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// SecureHeadersMiddleware 安全响应头（release 模式下强制 HTTPS 跳转）
func SecureHeadersMiddleware(mode string) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        mode == gin.ReleaseMode,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})
	return func(c *gin.Context) {
		// HTTPS 跳转时 Process 已写出响应并返回错误
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", shared.RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if principal, ok := shared.CurrentPrincipal(c); ok {
			entry = entry.With("principal_kind", principal.Kind, "principal_id", principal.ID())
		}
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Fail(c, response.WrapError(response.CodeUnauthorized, msg, nil).WithKind(string(service.KindUnauthorized)))
	c.Abort()
}

func abortForbidden(c *gin.Context) {
	msg := i18n.T(i18n.ResolveLocale(c), "error.forbidden")
	response.Fail(c, response.WrapError(response.CodeForbidden, msg, nil).WithKind(string(service.KindForbidden)))
	c.Abort()
}

// PrincipalAuthMiddleware Bearer token 鉴权，成功后把身份写入上下文
func PrincipalAuthMiddleware(authService PrincipalAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}

		principal, err := authService.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, service.ErrPrincipalNotActive) {
				abortUnauthorized(c, "error.account_pending")
				return
			}
			if !errors.Is(err, service.ErrInvalidToken) {
				shared.RequestLog(c).Warnw("principal_auth_failed", "error", err)
			}
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		shared.SetPrincipal(c, principal)
		c.Next()
	}
}

// RequireKind 限定登录身份类型（admin / affiliate）
func RequireKind(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := shared.CurrentPrincipal(c)
		if !ok {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if principal.Kind != kind || principal.ID() == 0 {
			abortForbidden(c)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin 仅超级管理员可访问
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := shared.CurrentPrincipal(c)
		if !ok {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !principal.IsSuper() {
			abortForbidden(c)
			return
		}
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
// 超级管理员直接放行；未分配角色的普通管理员按能力集放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := shared.CurrentPrincipal(c)
		if !ok || !principal.IsAdmin() {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if principal.IsSuper() {
			c.Next()
			return
		}
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		roles, err := authzService.GetAdminRoles(principal.AdminID)
		if err != nil {
			logger.Errorw("admin_rbac_roles_failed", "admin_id", principal.AdminID, "error", err)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if len(roles) == 0 {
			c.Next()
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(principal.AdminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", principal.AdminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", principal.AdminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			abortForbidden(c)
			return
		}
		c.Next()
	}
}
