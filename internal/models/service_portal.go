package models

import "time"

// ServiceLink 服务门户中的单个服务（外链、联系方式等）
type ServiceLink struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	ServiceType string    `gorm:"type:varchar(50);not null;index" json:"service_type"`
	ServiceData string    `gorm:"type:varchar(1000);not null" json:"service_data"` // 跳转时携带的值，通常是链接
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ServiceLink) TableName() string {
	return "service_links"
}

// ServicePortal 服务门户二维码，扫码经后端计数后跳转到前端门户页
type ServicePortal struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UniqueID      string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"unique_id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name"`
	Description   string     `gorm:"type:text" json:"description"`
	FrontendURL   string     `gorm:"type:varchar(1000);not null" json:"frontend_url"`
	ScanURL       string     `gorm:"type:varchar(1000)" json:"scan_url"`
	QRCodeImage   string     `gorm:"type:text" json:"qr_code_image,omitempty"`
	Scans         int64      `gorm:"not null;default:0;index" json:"scans"`
	IsActive      bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedBy     uint       `gorm:"not null;index" json:"created_by"`
	LastScannedAt *time.Time `json:"last_scanned_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Items []ServicePortalItem `gorm:"foreignKey:PortalID" json:"items,omitempty"`
}

// TableName 指定表名
func (ServicePortal) TableName() string {
	return "service_portals"
}

// ServicePortalItem 门户与服务的关联，按 DisplayOrder 升序展示
type ServicePortalItem struct {
	ID            uint `gorm:"primarykey" json:"id"`
	PortalID      uint `gorm:"not null;uniqueIndex:idx_portal_item" json:"portal_id"`
	ServiceLinkID uint `gorm:"not null;uniqueIndex:idx_portal_item;index" json:"service_link_id"`
	DisplayOrder  int  `gorm:"not null;default:0" json:"display_order"`

	ServiceLink *ServiceLink `gorm:"foreignKey:ServiceLinkID" json:"service,omitempty"`
}

// TableName 指定表名
func (ServicePortalItem) TableName() string {
	return "service_portal_items"
}
