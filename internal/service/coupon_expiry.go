package service

import (
	"time"

	"github.com/elevate-affiliate/internal/models"
)

// isExpired 惰性过期判断：只在读取时比较，不依赖定时器
func isExpired(coupon *models.Coupon, now time.Time) bool {
	if coupon == nil || coupon.ExpiresAt.IsZero() {
		return false
	}
	return now.After(coupon.ExpiresAt)
}
