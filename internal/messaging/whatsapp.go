package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/logger"
)

const (
	defaultCountryCode = "91"
	defaultTimeout     = 5 * time.Second
	maxErrorBodyBytes  = 512
)

// ErrDispatchFailed 消息网关返回非 2xx
var ErrDispatchFailed = errors.New("whatsapp dispatch failed")

// Dispatcher 消息发送接口
type Dispatcher interface {
	Send(ctx context.Context, recipient, body string) error
}

// WhatsAppClient Twilio 兼容的 WhatsApp 消息网关客户端
// 未启用或未配置网关地址时仅记录日志
type WhatsAppClient struct {
	enabled     bool
	apiURL      string
	apiKey      string
	sender      string
	countryCode string
	keySource   func() string
	httpClient  *http.Client
}

// NewWhatsAppClient 创建 WhatsApp 客户端
func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	countryCode := strings.TrimPrefix(strings.TrimSpace(cfg.DefaultCountryCode), "+")
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	return &WhatsAppClient{
		enabled:     cfg.Enabled,
		apiURL:      strings.TrimSpace(cfg.APIURL),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		sender:      strings.TrimSpace(cfg.Sender),
		countryCode: countryCode,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Live 是否真实发送
func (c *WhatsAppClient) Live() bool {
	return c != nil && c.enabled && c.apiURL != ""
}

// CountryCode 默认国家区号（不含 +）
func (c *WhatsAppClient) CountryCode() string {
	if c == nil || c.countryCode == "" {
		return defaultCountryCode
	}
	return c.countryCode
}

// SetKeySource 设置运行时密钥来源，返回非空时覆盖文件配置的密钥
func (c *WhatsAppClient) SetKeySource(fn func() string) {
	if c == nil {
		return
	}
	c.keySource = fn
}

// Send 发送消息
func (c *WhatsAppClient) Send(ctx context.Context, recipient, body string) error {
	if c == nil {
		return nil
	}
	recipient = NormalizeRecipient(recipient, c.CountryCode())
	if !c.Live() {
		logger.Infow("whatsapp_mock_dispatch", "recipient", recipient, "body_length", len(body))
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+c.sender)
	form.Set("To", "whatsapp:"+recipient)
	form.Set("Body", body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%w: status=%d body=%s", ErrDispatchFailed, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	logger.Infow("whatsapp_dispatched", "recipient", recipient)
	return nil
}

// authorize "sid:token" 形式使用 Basic 认证，否则使用 Bearer
func (c *WhatsAppClient) authorize(req *http.Request) {
	key := c.apiKey
	if c.keySource != nil {
		if override := strings.TrimSpace(c.keySource()); override != "" {
			key = override
		}
	}
	if key == "" {
		return
	}
	if user, pass, ok := strings.Cut(key, ":"); ok {
		req.SetBasicAuth(user, pass)
		return
	}
	req.Header.Set("Authorization", "Bearer "+key)
}

// NormalizeRecipient 已带 + 前缀的号码保持不变，否则补上默认区号
func NormalizeRecipient(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	return "+" + countryCode + phone
}
