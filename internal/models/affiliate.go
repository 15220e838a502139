package models

import (
	"time"
)

// Affiliate 推广合作方
type Affiliate struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                         // 主键
	Name            string     `gorm:"type:varchar(120);not null" json:"name"`                       // 名称
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`          // 登录邮箱（小写，唯一）
	PhoneNumber     string     `gorm:"type:varchar(32)" json:"phone_number"`                         // 联系电话
	PasswordHash    string     `gorm:"not null" json:"-"`                                            // 密码哈希
	Address         string     `gorm:"type:varchar(500)" json:"address"`                             // 地址
	UpiID           string     `gorm:"type:varchar(120)" json:"upi_id"`                              // 默认收款 UPI
	CommissionRate  Money      `gorm:"type:decimal(10,2);not null;default:0" json:"commission_rate"` // 默认佣金比例（百分比）
	Status          string     `gorm:"type:varchar(20);not null;index" json:"status"`                // inactive/active/rejected/suspended
	StatusNotes     string     `gorm:"type:varchar(500)" json:"status_notes"`                        // 状态备注
	StatusUpdatedAt *time.Time `json:"status_updated_at,omitempty"`                                  // 状态变更时间
	StatusUpdatedBy *uint      `json:"status_updated_by,omitempty"`                                  // 状态变更管理员
	IsSystem        bool       `gorm:"not null;default:false;index" json:"is_system"`                // 是否系统保留（全局）账号
	TokenVersion    uint64     `gorm:"not null;default:0" json:"-"`                                  // Token 版本
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`                                      // 最后登录时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (Affiliate) TableName() string {
	return "affiliates"
}
