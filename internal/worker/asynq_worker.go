package worker

import (
	"context"
	"time"

	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/provider"
	"github.com/elevate-affiliate/internal/queue"

	"github.com/hibiken/asynq"
)

// CouponDeliverer 优惠券通知实际发送方
type CouponDeliverer interface {
	Deliver(ctx context.Context, payload queue.CouponWhatsAppPayload) error
}

// CouponSweeper 过期优惠券清扫方
type CouponSweeper interface {
	ExpireStaleCoupons(now time.Time) (int64, error)
}

// ClaimSweeper 过期核销记录清扫方
type ClaimSweeper interface {
	ExpireStaleClaims(now time.Time) (int64, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	Deliverer    CouponDeliverer
	Sweeper      CouponSweeper
	ClaimSweeper ClaimSweeper
	now          func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{now: time.Now}
	if c == nil {
		return consumer
	}
	if c.NotificationService != nil {
		consumer.Deliverer = c.NotificationService
	}
	if c.CouponService != nil {
		consumer.Sweeper = c.CouponService
	}
	if c.ClaimService != nil {
		consumer.ClaimSweeper = c.ClaimService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCouponWhatsApp, c.handleCouponWhatsApp)
	mux.HandleFunc(queue.TaskCouponExpireSweep, c.handleCouponExpireSweep)
}

func (c *Consumer) handleCouponWhatsApp(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_coupon_whatsapp_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCouponWhatsAppPayload(task)
	if err != nil {
		logger.Warnw("worker_coupon_whatsapp_unmarshal_failed", "error", err)
		// 载荷损坏重试也无法恢复
		return asynq.SkipRetry
	}
	if payload.Recipient == "" || payload.Body == "" {
		logger.Debugw("worker_coupon_whatsapp_skip_invalid_payload", "coupon_id", payload.CouponID)
		return nil
	}
	if c.Deliverer == nil {
		logger.Warnw("worker_coupon_whatsapp_skip_deliverer_nil", "coupon_id", payload.CouponID)
		return nil
	}
	if err := c.Deliverer.Deliver(ctx, payload); err != nil {
		logger.Warnw("worker_coupon_whatsapp_send_failed",
			"coupon_id", payload.CouponID,
			"recipient", payload.Recipient,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleCouponExpireSweep(_ context.Context, _ *asynq.Task) error {
	return c.sweepExpiredCoupons()
}

func (c *Consumer) sweepExpiredCoupons() error {
	if c == nil {
		return nil
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	at := now()
	if c.Sweeper != nil {
		if _, err := c.Sweeper.ExpireStaleCoupons(at); err != nil {
			logger.Warnw("worker_coupon_expire_sweep_failed", "error", err)
			return err
		}
	}
	if c.ClaimSweeper != nil {
		if _, err := c.ClaimSweeper.ExpireStaleClaims(at); err != nil {
			logger.Warnw("worker_claim_expire_sweep_failed", "error", err)
			return err
		}
	}
	return nil
}
