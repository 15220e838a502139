package public

import "github.com/elevate-affiliate/internal/provider"

// Handler 无需登录的扫码、领券、核销接口，以及推广方自助接口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
