package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLocaleContext(target string, headers map[string]string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		target  string
		headers map[string]string
		want    string
	}{
		{"default", "/", nil, LocaleEN},
		{"query", "/?lang=zh-CN", map[string]string{"Accept-Language": "en-US"}, LocaleZH},
		{"header", "/", map[string]string{"X-Locale": "zh"}, LocaleZH},
		{"accept language", "/", map[string]string{"Accept-Language": "fr-FR;q=0.9, zh-TW;q=0.8"}, LocaleZH},
		{"unsupported", "/?lang=fr", nil, LocaleEN},
		{"weighted accept language", "/", map[string]string{"Accept-Language": "zh;q=0.5, en-GB;q=0.9"}, LocaleEN},
		{"malformed accept language", "/", map[string]string{"Accept-Language": ";;;"}, LocaleEN},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveLocale(newLocaleContext(tc.target, tc.headers)); got != tc.want {
				t.Fatalf("locale want %s got %s", tc.want, got)
			}
		})
	}
	if got := ResolveLocale(nil); got != LocaleEN {
		t.Fatalf("nil context should fall back to english, got %s", got)
	}
}

func TestTranslateFallbacks(t *testing.T) {
	if got := T(LocaleZH, "error.coupon_expired"); got != "优惠券已过期" {
		t.Fatalf("unexpected zh message: %s", got)
	}
	if got := T("de-DE", "error.coupon_expired"); got != "Coupon expired" {
		t.Fatalf("unknown locale should fall back to english, got %s", got)
	}
	if got := T(LocaleEN, "error.does_not_exist"); got != "error.does_not_exist" {
		t.Fatalf("missing key should echo the key, got %s", got)
	}
	if got := Sprintf(LocaleEN, "error.password_min_length", 8); got != "Password must be at least 8 characters" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range enUS {
		if _, ok := zhCN[key]; !ok {
			t.Fatalf("zh-CN catalog missing key %s", key)
		}
	}
	for key := range zhCN {
		if _, ok := enUS[key]; !ok {
			t.Fatalf("en-US catalog missing key %s", key)
		}
	}
}
