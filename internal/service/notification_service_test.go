package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/elevate-affiliate/internal/queue"
)

func newNotificationTestService(t *testing.T, enabled bool, dispatcher *fakeDispatcher, taskQueue CouponTaskQueue) *NotificationService {
	t.Helper()
	fallback := SystemDefaultSetting("")
	fallback.WhatsAppEnabled = enabled
	systemConfig := NewSystemConfigService(NewSettingService(newMockSettingRepo()), fallback)
	return NewNotificationService(systemConfig, dispatcher, taskQueue)
}

func sampleCouponNotice() CouponNotice {
	return CouponNotice{
		CouponID:           11,
		CustomerName:       "Asha",
		CustomerPhone:      "9876543210",
		DealValue:          "standard",
		DiscountPercentage: "12.5",
		ExpiresAt:          time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildCouponWhatsAppMessage(t *testing.T) {
	got := BuildCouponWhatsAppMessage(sampleCouponNotice())
	want := "Hello Asha,\n\nYour unique coupon code is 9876543210. Your deal value is standard, You can avail 12.5% discount on your visit.\n\nHurry up! This offer expires on Thu Mar 05 2026.\n\nThank you!"
	if got != want {
		t.Fatalf("unexpected message:\n%s", got)
	}
}

func TestNotifyCouponIssuedDisabled(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	taskQueue := &fakeTaskQueue{enabled: true}
	svc := newNotificationTestService(t, false, dispatcher, taskQueue)

	if svc.NotifyCouponIssued(context.Background(), sampleCouponNotice()) {
		t.Fatalf("disabled whatsapp must not accept notifications")
	}
	if len(taskQueue.payloads) != 0 || len(dispatcher.recipients) != 0 {
		t.Fatalf("nothing should be dispatched")
	}
}

func TestNotifyCouponIssuedEnqueues(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	taskQueue := &fakeTaskQueue{enabled: true}
	svc := newNotificationTestService(t, true, dispatcher, taskQueue)

	if !svc.NotifyCouponIssued(context.Background(), sampleCouponNotice()) {
		t.Fatalf("expected notification to be queued")
	}
	if len(taskQueue.payloads) != 1 {
		t.Fatalf("expected one queued payload, got %d", len(taskQueue.payloads))
	}
	payload := taskQueue.payloads[0]
	if payload.Recipient != "+919876543210" || payload.CouponID != 11 || !strings.Contains(payload.Body, "9876543210") {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(dispatcher.recipients) != 0 {
		t.Fatalf("queued path must not send inline")
	}

	taskQueue.err = errors.New("redis down")
	if svc.NotifyCouponIssued(context.Background(), sampleCouponNotice()) {
		t.Fatalf("enqueue failure should report not accepted")
	}
}

func TestNotifyCouponIssuedDetachedWithoutQueue(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("gateway down")}
	svc := newNotificationTestService(t, true, dispatcher, &fakeTaskQueue{enabled: false})
	var ran bool
	svc.detached = func(fn func()) {
		ran = true
		fn()
	}

	notice := sampleCouponNotice()
	notice.CustomerPhone = "+447700900123"
	if !svc.NotifyCouponIssued(context.Background(), notice) {
		t.Fatalf("detached dispatch should be accepted even if sending fails later")
	}
	if !ran || len(dispatcher.recipients) != 1 || dispatcher.recipients[0] != "+447700900123" {
		t.Fatalf("unexpected dispatch: %v", dispatcher.recipients)
	}
}

func TestDeliverUsesDispatcher(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := newNotificationTestService(t, true, dispatcher, nil)
	if err := svc.Deliver(context.Background(), queue.CouponWhatsAppPayload{Recipient: "+911234567890", Body: "hi"}); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if len(dispatcher.bodies) != 1 || dispatcher.bodies[0] != "hi" {
		t.Fatalf("unexpected bodies: %v", dispatcher.bodies)
	}

	var nilService *NotificationService
	if nilService.NotifyCouponIssued(context.Background(), sampleCouponNotice()) {
		t.Fatalf("nil service must not accept notifications")
	}
}

func TestWhatsAppAPIKeyFollowsSystemConfig(t *testing.T) {
	svc := newNotificationTestService(t, true, &fakeDispatcher{}, nil)
	if svc.WhatsAppAPIKey() != "" {
		t.Fatalf("expected empty key by default")
	}
	key := "AC1:secret"
	if _, err := svc.systemConfig.Update(SystemSettingPatch{WhatsAppAPIKey: &key}); err != nil {
		t.Fatalf("update system config failed: %v", err)
	}
	if svc.WhatsAppAPIKey() != key {
		t.Fatalf("expected runtime key, got %q", svc.WhatsAppAPIKey())
	}
}
