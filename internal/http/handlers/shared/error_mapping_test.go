package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

func serveError(t *testing.T, err error, header map[string]string) (int, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		RespondServiceError(c, err, "error.internal")
	})
	req := httptest.NewRequest(http.MethodGet, "/err", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
		Data       struct {
			ErrorKind string `json:"error_kind"`
		} `json:"data"`
	}
	if e := json.Unmarshal(w.Body.Bytes(), &resp); e != nil {
		t.Fatalf("unmarshal response failed: %v", e)
	}
	return resp.StatusCode, resp.Msg, resp.Data.ErrorKind
}

func TestRespondServiceErrorMapsKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		kind service.ErrorKind
	}{
		{"not found", service.ErrQRCodeNotFound, response.CodeNotFound, service.KindNotFound},
		{"duplicate coupon", service.ErrDuplicateActiveCoupon, response.CodeConflict, service.KindDuplicateActiveCoupon},
		{"insufficient", service.ErrInsufficientBalance, response.CodeBadRequest, service.KindInsufficientBalance},
		{"wrapped dependency", fmt.Errorf("delete: %w", service.ErrQRCodeHasRedemptions), response.CodeConflict, service.KindDependencyConflict},
		{"duplicate email", service.ErrEmailExists, response.CodeConflict, service.KindDuplicateEmail},
		{"withdrawal not approved", service.ErrWithdrawalNotApproved, response.CodeBadRequest, service.KindInvalidState},
		{"unknown", errors.New("db down"), response.CodeInternal, service.KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, kind := serveError(t, tc.err, nil)
			if code != tc.code || kind != string(tc.kind) {
				t.Fatalf("want %d/%s got %d/%s", tc.code, tc.kind, code, kind)
			}
		})
	}
}

func TestRespondServiceErrorLocalizes(t *testing.T) {
	_, en, _ := serveError(t, service.ErrInsufficientBalance, nil)
	_, zh, _ := serveError(t, service.ErrInsufficientBalance, map[string]string{"X-Locale": "zh-CN"})
	if en == "" || zh == "" || en == zh {
		t.Fatalf("expected distinct localized messages, got %q and %q", en, zh)
	}
}
