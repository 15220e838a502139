package models

import "time"

// Claim 顾客到店核销记录
type Claim struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                                     // 主键
	QRCodeID      uint       `gorm:"not null;index:idx_claim_qr_phone" json:"qr_code_id"`                      // 来源二维码
	CouponID      *uint      `gorm:"index" json:"coupon_id,omitempty"`                                         // 关联优惠券
	CustomerName  string     `gorm:"type:varchar(120);not null" json:"customer_name"`                          // 顾客姓名
	CustomerPhone string     `gorm:"type:varchar(32);not null;index:idx_claim_qr_phone" json:"customer_phone"` // 顾客手机号
	Status        string     `gorm:"type:varchar(20);not null;index" json:"status"`                            // claimed/purchased/expired
	ClaimedAt     time.Time  `gorm:"index" json:"claimed_at"`                                                  // 领取时间
	PurchasedAt   *time.Time `json:"purchased_at,omitempty"`                                                   // 成交时间
	CreatedAt     time.Time  `json:"created_at"`                                                               // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                                               // 更新时间

	QRCode *QRCode `gorm:"foreignKey:QRCodeID" json:"qr_code,omitempty"` // 来源二维码
}

// TableName 指定表名
func (Claim) TableName() string {
	return "claims"
}
