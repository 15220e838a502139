package models

import "time"

// Purchase 成交记录（创建后不可变）
type Purchase struct {
	ID                   uint      `gorm:"primarykey" json:"id"`                                               // 主键
	ClaimID              uint      `gorm:"not null;uniqueIndex" json:"claim_id"`                               // 核销记录（一对一）
	OriginalAmount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"`       // 原价
	DiscountPercentage   Money     `gorm:"type:decimal(10,2);not null;default:0" json:"discount_percentage"`   // 成交时折扣比例快照
	DiscountAmount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`       // 折扣金额
	FinalAmount          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"final_amount"`          // 实付金额
	CommissionPercentage Money     `gorm:"type:decimal(10,2);not null;default:0" json:"commission_percentage"` // 成交时佣金比例快照
	CommissionAmount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`     // 佣金金额
	ProcessedBy          *uint     `gorm:"index" json:"processed_by,omitempty"`                                // 录入管理员
	PurchasedAt          time.Time `gorm:"index" json:"purchased_at"`                                          // 成交时间
	CreatedAt            time.Time `json:"created_at"`                                                         // 创建时间

	Claim *Claim `gorm:"foreignKey:ClaimID" json:"claim,omitempty"` // 核销记录
}

// TableName 指定表名
func (Purchase) TableName() string {
	return "purchases"
}
