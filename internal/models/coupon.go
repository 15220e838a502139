package models

import "time"

// Coupon 顾客优惠券（券码即手机号）
type Coupon struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                                      // 主键
	QRCodeID      uint       `gorm:"not null;index:idx_coupon_qr_phone" json:"qr_code_id"`                      // 来源二维码
	CustomerName  string     `gorm:"type:varchar(120);not null" json:"customer_name"`                           // 顾客姓名
	CustomerPhone string     `gorm:"type:varchar(32);not null;index:idx_coupon_qr_phone" json:"customer_phone"` // 顾客手机号
	CouponCode    string     `gorm:"type:varchar(32);not null;index" json:"coupon_code"`                        // 券码
	DealValue     string     `gorm:"type:varchar(120);not null;default:'standard'" json:"deal_value"`           // 权益说明
	Status        string     `gorm:"type:varchar(20);not null;index" json:"status"`                             // generated/verified/claimed/used/expired
	IsGlobal      bool       `gorm:"not null;default:false" json:"is_global"`                                   // 是否来自全局兜底码
	ExpiresAt     time.Time  `gorm:"index" json:"expires_at"`                                                   // 过期时间
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`                                                     // 核验时间
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`                                                      // 领取时间
	UsedAt        *time.Time `json:"used_at,omitempty"`                                                         // 使用时间
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                                                   // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                                                // 更新时间

	QRCode *QRCode `gorm:"foreignKey:QRCodeID" json:"qr_code,omitempty"` // 来源二维码
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
