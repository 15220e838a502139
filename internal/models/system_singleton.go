package models

import "time"

// SystemSingleton 系统单例锚点（key 唯一，指向被锚定的记录）
type SystemSingleton struct {
	Key       string    `gorm:"type:varchar(64);primarykey" json:"key"` // 锚点键
	RefID     uint      `gorm:"not null" json:"ref_id"`                 // 被锚定记录ID
	CreatedAt time.Time `json:"created_at"`                             // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (SystemSingleton) TableName() string {
	return "system_singletons"
}
