package models

import "time"

// QRCode 推广二维码
type QRCode struct {
	ID                   uint      `gorm:"primarykey" json:"id"`                                               // 主键
	AffiliateID          uint      `gorm:"not null;index" json:"affiliate_id"`                                 // 所属推广方
	DiscountPercentage   Money     `gorm:"type:decimal(10,2);not null;default:0" json:"discount_percentage"`   // 顾客折扣（百分比）
	CommissionPercentage Money     `gorm:"type:decimal(10,2);not null;default:0" json:"commission_percentage"` // 推广佣金（百分比）
	QRCodeData           string    `gorm:"type:text" json:"qr_code_data"`                                      // 编码负载（JSON）
	QRCodeImage          string    `gorm:"type:text" json:"qr_code_image,omitempty"`                           // 图片 data URI
	RedirectURL          string    `gorm:"type:varchar(1000)" json:"redirect_url"`                             // 扫码跳转地址
	IsActive             bool      `gorm:"not null;default:true;index" json:"is_active"`                       // 是否启用
	IsGlobal             bool      `gorm:"not null;default:false;index" json:"is_global"`                      // 是否全局兜底码
	CreatedAt            time.Time `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt            time.Time `json:"updated_at"`                                                         // 更新时间

	Affiliate *Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 所属推广方
}

// TableName 指定表名
func (QRCode) TableName() string {
	return "qr_codes"
}
