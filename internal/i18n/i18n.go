package i18n

import (
	"fmt"
	"strings"

	"github.com/elevate-affiliate/internal/constants"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleZH = constants.LocaleZhCN
	LocaleEN = constants.LocaleEnUS

	localeQueryKey  = "lang"
	localeHeaderKey = "X-Locale"
)

// ResolveLocale 解析请求语言：query > X-Locale > Accept-Language，默认英文
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return LocaleEN
	}
	if locale, ok := matchLocale(c.Query(localeQueryKey)); ok {
		return locale
	}
	if locale, ok := matchLocale(c.GetHeader(localeHeaderKey)); ok {
		return locale
	}
	if locale, ok := matchAcceptLanguage(c.GetHeader("Accept-Language")); ok {
		return locale
	}
	return LocaleEN
}

// matchAcceptLanguage 按 q 值从高到低取第一个受支持的基础语言
func matchAcceptLanguage(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return "", false
	}
	for _, tag := range tags {
		base, _ := tag.Base()
		if locale, ok := matchLocale(base.String()); ok {
			return locale, true
		}
	}
	return "", false
}

func matchLocale(raw string) (string, bool) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return "", false
	}
	for _, supported := range constants.SupportedLocales {
		if strings.ToLower(supported) == tag {
			return supported, true
		}
	}
	switch {
	case strings.HasPrefix(tag, "zh"):
		return LocaleZH, true
	case strings.HasPrefix(tag, "en"):
		return LocaleEN, true
	}
	return "", false
}

// T 查找文案，缺失时依次回退英文与 key 本身
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[LocaleEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf 查找文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	msg := T(locale, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// HasKey 判断英文目录中是否存在 key
func HasKey(key string) bool {
	_, ok := catalogs[LocaleEN][key]
	return ok
}
