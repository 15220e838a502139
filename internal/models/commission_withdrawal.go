package models

import "time"

// CommissionWithdrawal 佣金提现申请
type CommissionWithdrawal struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                  // 主键
	AffiliateID     uint       `gorm:"not null;index" json:"affiliate_id"`                    // 推广方
	Amount          Money      `gorm:"type:decimal(20,2);not null" json:"amount"`             // 提现金额
	UpiID           string     `gorm:"type:varchar(120);not null" json:"upi_id"`              // 收款 UPI
	Status          string     `gorm:"type:varchar(20);not null;index" json:"status"`         // pending/approved/rejected/failed/paid
	Notes           string     `gorm:"type:varchar(1000)" json:"notes"`                       // 备注
	RequestDate     time.Time  `gorm:"index" json:"request_date"`                             // 申请时间
	ProcessedDate   *time.Time `json:"processed_date,omitempty"`                              // 处理时间
	ProcessedBy     *uint      `gorm:"index" json:"processed_by,omitempty"`                   // 处理管理员
	PaymentProofRef string     `gorm:"type:varchar(1000)" json:"payment_proof_ref,omitempty"` // 打款凭证引用
	CreatedAt       time.Time  `json:"created_at"`                                            // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                            // 更新时间

	Affiliate *Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 推广方
}

// TableName 指定表名
func (CommissionWithdrawal) TableName() string {
	return "commission_withdrawals"
}
