package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// KEYS[1] 计数 key，KEYS[2] 封禁 key；ARGV 依次为窗口秒数、上限、封禁秒数
var rateLimitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {tonumber(ARGV[2]) + 1, blocked}
end
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) and tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], "1", "EX", ARGV[3])
	return {current, tonumber(ARGV[3])}
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware 频率限制中间件
// client 为空时退化为进程内令牌桶，仅对单实例部署有效
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if !rule.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	var local *localLimiter
	if client == nil {
		local = newLocalLimiter(rule)
	}

	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		var (
			limited     bool
			waitSeconds int
		)
		if local != nil {
			limited, waitSeconds = local.take(key, time.Now())
		} else {
			count, ttl, err := runRateLimitScript(c, client, key, rule)
			if err != nil {
				shared.RequestLog(c).Warnw("rate_limit_script_failed", "key", key, "error", err)
				msg := i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable")
				response.Error(c, response.CodeInternal, msg)
				c.Abort()
				return
			}
			limited = count > int64(rule.MaxRequests)
			waitSeconds = int(ttl)
		}
		if !limited {
			c.Next()
			return
		}

		if waitSeconds < 1 {
			waitSeconds = rule.WindowSeconds
		}
		if waitSeconds < 1 {
			waitSeconds = 1
		}
		msgKey := strings.TrimSpace(rule.MessageKey)
		if msgKey == "" {
			msgKey = "error.rate_limited"
		}
		msg := i18n.Sprintf(i18n.ResolveLocale(c), msgKey, waitSeconds)
		response.Error(c, response.CodeTooManyRequests, msg)
		c.Abort()
	}
}

func runRateLimitScript(c *gin.Context, client *redis.Client, key string, rule RateLimitRule) (int64, int64, error) {
	keys := []string{key, key + ":blocked"}
	result, err := rateLimitScript.Run(c.Request.Context(), client, keys, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit result: %v", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit count: %v", values[0])
	}
	ttl, _ := toInt64(values[1])
	return count, ttl, nil
}

type localEntry struct {
	limiter      *rate.Limiter
	blockedUntil time.Time
	lastSeen     time.Time
}

// localLimiter 进程内限流：窗口内最多 MaxRequests 次，超限后按 BlockSeconds 封禁
type localLimiter struct {
	mu      sync.Mutex
	rule    RateLimitRule
	limit   rate.Limit
	entries map[string]*localEntry
	maxIdle time.Duration
}

func newLocalLimiter(rule RateLimitRule) *localLimiter {
	window := time.Duration(rule.WindowSeconds) * time.Second
	return &localLimiter{
		rule:    rule,
		limit:   rate.Limit(float64(rule.MaxRequests) / window.Seconds()),
		entries: make(map[string]*localEntry),
		maxIdle: 2*window + time.Duration(rule.BlockSeconds)*time.Second,
	}
}

func (l *localLimiter) take(key string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) > 10000 {
		l.evict(now)
	}
	entry, ok := l.entries[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.limit, l.rule.MaxRequests)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	if now.Before(entry.blockedUntil) {
		return true, ceilSeconds(entry.blockedUntil.Sub(now))
	}
	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return true, l.rule.WindowSeconds
	}
	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return false, 0
	}
	reservation.CancelAt(now)
	if l.rule.BlockSeconds > 0 {
		entry.blockedUntil = now.Add(time.Duration(l.rule.BlockSeconds) * time.Second)
		return true, l.rule.BlockSeconds
	}
	return true, ceilSeconds(delay)
}

func (l *localLimiter) evict(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.maxIdle {
			delete(l.entries, key)
		}
	}
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
