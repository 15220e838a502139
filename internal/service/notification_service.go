package service

import (
	"context"
	"fmt"
	"time"

	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/messaging"
	"github.com/elevate-affiliate/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	couponExpiryDateLayout  = "Mon Jan 02 2006"
	detachedDispatchTimeout = 15 * time.Second
)

// WhatsAppDispatcher WhatsApp 消息投递方
type WhatsAppDispatcher interface {
	Send(ctx context.Context, recipient, body string) error
	CountryCode() string
}

// CouponTaskQueue 优惠券通知任务队列
type CouponTaskQueue interface {
	Enabled() bool
	EnqueueCouponWhatsApp(payload queue.CouponWhatsAppPayload, opts ...asynq.Option) error
}

// NotificationService 优惠券 WhatsApp 通知服务
// 投递失败只记录日志，不影响发券结果
type NotificationService struct {
	systemConfig *SystemConfigService
	dispatcher   WhatsAppDispatcher
	queue        CouponTaskQueue
	detached     func(fn func())
}

// NewNotificationService 创建通知服务
func NewNotificationService(systemConfig *SystemConfigService, dispatcher WhatsAppDispatcher, taskQueue CouponTaskQueue) *NotificationService {
	return &NotificationService{
		systemConfig: systemConfig,
		dispatcher:   dispatcher,
		queue:        taskQueue,
		detached:     func(fn func()) { go fn() },
	}
}

// BuildCouponWhatsAppMessage 生成优惠券通知正文
func BuildCouponWhatsAppMessage(notice CouponNotice) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYour unique coupon code is %s. Your deal value is %s, You can avail %s%% discount on your visit.\n\nHurry up! This offer expires on %s.\n\nThank you!",
		notice.CustomerName,
		notice.CustomerPhone,
		notice.DealValue,
		notice.DiscountPercentage,
		notice.ExpiresAt.Format(couponExpiryDateLayout),
	)
}

// NotifyCouponIssued 投递优惠券通知，返回是否已受理
func (s *NotificationService) NotifyCouponIssued(ctx context.Context, notice CouponNotice) bool {
	if s == nil || s.dispatcher == nil {
		return false
	}
	if !s.whatsAppEnabled() {
		return false
	}

	payload := queue.CouponWhatsAppPayload{
		CouponID:  notice.CouponID,
		Recipient: messaging.NormalizeRecipient(notice.CustomerPhone, s.dispatcher.CountryCode()),
		Body:      BuildCouponWhatsAppMessage(notice),
	}

	if s.queue != nil && s.queue.Enabled() {
		if err := s.queue.EnqueueCouponWhatsApp(payload); err != nil {
			logger.Warnw("coupon_whatsapp_enqueue_failed", "coupon_id", notice.CouponID, "error", err)
			return false
		}
		return true
	}

	s.detached(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), detachedDispatchTimeout)
		defer cancel()
		if err := s.Deliver(sendCtx, payload); err != nil {
			logger.Warnw("coupon_whatsapp_send_failed", "coupon_id", payload.CouponID, "error", err)
		}
	})
	return true
}

// Deliver 实际发送（队列消费者与直发路径共用）
func (s *NotificationService) Deliver(ctx context.Context, payload queue.CouponWhatsAppPayload) error {
	if s == nil || s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Send(ctx, payload.Recipient, payload.Body)
}

func (s *NotificationService) whatsAppEnabled() bool {
	if s.systemConfig == nil {
		return false
	}
	setting, err := s.systemConfig.Get()
	if err != nil {
		logger.Warnw("system_config_read_failed", "error", err)
	}
	return setting.WhatsAppEnabled
}

// WhatsAppAPIKey 运行时配置的网关密钥
func (s *NotificationService) WhatsAppAPIKey() string {
	if s == nil || s.systemConfig == nil {
		return ""
	}
	setting, err := s.systemConfig.Get()
	if err != nil {
		return ""
	}
	return setting.WhatsAppAPIKey
}
