package models

import "time"

// Setting 系统设置表（键值对存储，system_config / captcha_config 等）
type Setting struct {
	Key       string    `gorm:"type:varchar(64);primarykey" json:"key"` // 配置键
	ValueJSON JSON      `gorm:"type:json" json:"value"`                 // 配置值
	UpdatedAt time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
