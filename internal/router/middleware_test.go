package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	principal service.Principal
	err       error
	tokens    []string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (service.Principal, error) {
	s.tokens = append(s.tokens, token)
	return s.principal, s.err
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// errorKind 失败响应 data 中的 error_kind，成功响应的数组或对象都返回空串
func (e envelope) errorKind() string {
	var data struct {
		ErrorKind string `json:"error_kind"`
	}
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return ""
	}
	return data.ErrorKind
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestResolveAllowedOrigin(t *testing.T) {
	require.Equal(t, "*", resolveAllowedOrigin("https://example.com", []string{"*"}, false))
	require.Equal(t, "https://example.com", resolveAllowedOrigin("https://example.com", []string{"*"}, true))
	require.Equal(t, "https://a.example.com", resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false))
	require.Equal(t, "", resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false))
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": shared.RequestID(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "req-123", w.Header().Get(requestIDHeader))
	require.Contains(t, w.Body.String(), `"request_id":"req-123"`)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NotEmpty(t, w2.Header().Get(requestIDHeader))
}

func TestSecureHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SecureHeadersMiddleware(gin.DebugMode))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestPrincipalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := &stubAuthenticator{principal: service.Principal{Kind: constants.PrincipalKindAffiliate, AffiliateID: 7}}

	r := gin.New()
	r.Use(PrincipalAuthMiddleware(auth))
	r.GET("/me", func(c *gin.Context) {
		principal, _ := shared.CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "msg": principal.Kind})
	})

	_, resp := serve(t, r, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, 401, resp.StatusCode)
	require.Equal(t, "Authorization header is missing", resp.Msg)
	require.Equal(t, string(service.KindUnauthorized), resp.errorKind())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	_, resp = serve(t, r, req)
	require.Equal(t, 401, resp.StatusCode)
	require.Empty(t, auth.tokens)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	_, resp = serve(t, r, req)
	require.Equal(t, 0, resp.StatusCode)
	require.Equal(t, constants.PrincipalKindAffiliate, resp.Msg)
	require.Equal(t, []string{"good-token"}, auth.tokens)

	auth.err = service.ErrPrincipalNotActive
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	_, resp = serve(t, r, req)
	require.Equal(t, 401, resp.StatusCode)
	require.Equal(t, "Account pending approval", resp.Msg)
}

func TestRequireKindAndSuperAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var current *service.Principal

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if current != nil {
			shared.SetPrincipal(c, *current)
		}
		c.Next()
	})
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status_code": 0}) }
	r.GET("/affiliate", RequireKind(constants.PrincipalKindAffiliate), ok)
	r.GET("/super", RequireKind(constants.PrincipalKindAdmin), RequireSuperAdmin(), ok)

	_, resp := serve(t, r, httptest.NewRequest(http.MethodGet, "/affiliate", nil))
	require.Equal(t, 401, resp.StatusCode)

	current = &service.Principal{Kind: constants.PrincipalKindAdmin, AdminID: 1, Role: constants.AdminRoleAdmin}
	_, resp = serve(t, r, httptest.NewRequest(http.MethodGet, "/affiliate", nil))
	require.Equal(t, 403, resp.StatusCode)
	require.Equal(t, string(service.KindForbidden), resp.errorKind())
	_, resp = serve(t, r, httptest.NewRequest(http.MethodGet, "/super", nil))
	require.Equal(t, 403, resp.StatusCode)

	current = &service.Principal{Kind: constants.PrincipalKindAdmin, AdminID: 1, Role: constants.AdminRoleSuperAdmin}
	_, resp = serve(t, r, httptest.NewRequest(http.MethodGet, "/super", nil))
	require.Equal(t, 0, resp.StatusCode)
}
