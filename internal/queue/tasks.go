package queue

import (
	"encoding/json"

	"github.com/elevate-affiliate/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCouponWhatsApp 优惠券 WhatsApp 通知任务
	TaskCouponWhatsApp = constants.TaskCouponWhatsApp
	// TaskCouponExpireSweep 优惠券过期清扫任务
	TaskCouponExpireSweep = constants.TaskCouponExpireSweep
)

// CouponWhatsAppPayload 优惠券通知任务载荷（消息正文在入队时生成）
type CouponWhatsAppPayload struct {
	CouponID  uint   `json:"coupon_id"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// NewCouponWhatsAppTask 创建优惠券通知任务
func NewCouponWhatsAppTask(payload CouponWhatsAppPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCouponWhatsApp, body), nil
}

// NewCouponExpireSweepTask 创建过期清扫任务
func NewCouponExpireSweepTask() *asynq.Task {
	return asynq.NewTask(TaskCouponExpireSweep, nil)
}

// ParseCouponWhatsAppPayload 解析优惠券通知任务载荷
func ParseCouponWhatsAppPayload(task *asynq.Task) (CouponWhatsAppPayload, error) {
	var payload CouponWhatsAppPayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
