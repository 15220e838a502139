package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	require.Equal(t, "test@example.com|1.2.3.4", key)

	body, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Test@Example.com", "request body should be restored after reading field")
}

func newLimitedEngine(client *redis.Client, rule RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/coupons", RateLimitMiddleware(client, rule, KeyByIPAndJSONField("customer_phone")), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})
	return r
}

func postCoupon(t *testing.T, r *gin.Engine, phone string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/coupons", strings.NewReader(`{"customer_phone":"`+phone+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.StatusCode, resp.Msg
}

func TestRateLimitMiddlewareWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rule := RateLimitRule{Prefix: "test:rate:coupon", WindowSeconds: 60, MaxRequests: 2, BlockSeconds: 300}
	r := newLimitedEngine(client, rule)

	for i := 0; i < 2; i++ {
		code, _ := postCoupon(t, r, "9876543210")
		require.Equal(t, 0, code)
	}
	code, msg := postCoupon(t, r, "9876543210")
	require.Equal(t, 429, code)
	require.Contains(t, msg, "300")
	require.True(t, mr.Exists("test:rate:coupon:9876543210|10.0.0.1:blocked"))

	// 其它手机号不受影响
	code, _ = postCoupon(t, r, "9123456789")
	require.Equal(t, 0, code)

	// 计数窗口过期后仍处于封禁期
	mr.FastForward(90 * time.Second)
	code, _ = postCoupon(t, r, "9876543210")
	require.Equal(t, 429, code)

	mr.FastForward(300 * time.Second)
	code, _ = postCoupon(t, r, "9876543210")
	require.Equal(t, 0, code)
}

func TestRateLimitMiddlewareRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	r := newLimitedEngine(client, RateLimitRule{WindowSeconds: 60, MaxRequests: 1})
	code, _ := postCoupon(t, r, "9876543210")
	require.Equal(t, 500, code)
}

func TestRateLimitMiddlewareFallsBackToLocalLimiter(t *testing.T) {
	r := newLimitedEngine(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 2})

	for i := 0; i < 2; i++ {
		code, _ := postCoupon(t, r, "9876543210")
		require.Equal(t, 0, code)
	}
	code, msg := postCoupon(t, r, "9876543210")
	require.Equal(t, 429, code)
	require.Contains(t, msg, "retry in")
}

func TestRateLimitMiddlewareDisabledRule(t *testing.T) {
	r := newLimitedEngine(nil, RateLimitRule{})
	for i := 0; i < 5; i++ {
		code, _ := postCoupon(t, r, "9876543210")
		require.Equal(t, 0, code)
	}
}

func TestLocalLimiterBlockSeconds(t *testing.T) {
	limiter := newLocalLimiter(RateLimitRule{WindowSeconds: 60, MaxRequests: 1, BlockSeconds: 120})
	now := time.Unix(1_700_000_000, 0)

	limited, _ := limiter.take("k", now)
	require.False(t, limited)
	limited, wait := limiter.take("k", now.Add(time.Second))
	require.True(t, limited)
	require.Equal(t, 120, wait)

	limited, wait = limiter.take("k", now.Add(61*time.Second))
	require.True(t, limited)
	require.Equal(t, 60, wait)

	limited, _ = limiter.take("k", now.Add(122*time.Second))
	require.False(t, limited)
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}
