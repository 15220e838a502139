package admin

import "github.com/elevate-affiliate/internal/provider"

// Handler 管理端接口：推广方与二维码维护、成交登记、提现审核、系统配置
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
