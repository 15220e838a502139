package admin

import (
	"strings"

	"github.com/elevate-affiliate/internal/http/handlers/shared"
	"github.com/elevate-affiliate/internal/http/response"
	"github.com/elevate-affiliate/internal/repository"
	"github.com/elevate-affiliate/internal/service"

	"github.com/gin-gonic/gin"
)

// ServiceLinkRequest 服务创建/更新请求
type ServiceLinkRequest struct {
	Name        *string `json:"name"`
	ServiceType *string `json:"service_type"`
	ServiceData *string `json:"service_data"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r ServiceLinkRequest) input() service.ServiceLinkInput {
	return service.ServiceLinkInput{
		Name:        r.Name,
		ServiceType: r.ServiceType,
		ServiceData: r.ServiceData,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}

// PortalItemRequest 门户服务项
type PortalItemRequest struct {
	ServiceID    uint `json:"service_id" binding:"required"`
	DisplayOrder int  `json:"display_order"`
}

// CreateServicePortalRequest 创建门户请求
type CreateServicePortalRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	FrontendURL string              `json:"frontend_url" binding:"required"`
	Services    []PortalItemRequest `json:"services" binding:"required,min=1,dive"`
}

// UpdateServicePortalRequest 更新门户请求，services 省略时保持不变
type UpdateServicePortalRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	FrontendURL *string             `json:"frontend_url"`
	Services    []PortalItemRequest `json:"services" binding:"omitempty,dive"`
	IsActive    *bool               `json:"is_active"`
}

func portalItems(items []PortalItemRequest) []service.PortalItemInput {
	if items == nil {
		return nil
	}
	result := make([]service.PortalItemInput, len(items))
	for i, item := range items {
		result[i] = service.PortalItemInput{ServiceLinkID: item.ServiceID, DisplayOrder: item.DisplayOrder}
	}
	return result
}

// requestBaseURL 未配置后端地址时由请求推断，兼容反向代理头
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); forwarded != "" {
		scheme = strings.ToLower(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}

// ListServiceLinks 服务列表
func (h *Handler) ListServiceLinks(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.PortalService.ListServiceLinks(repository.ServiceLinkListFilter{
		Page:        page,
		PageSize:    pageSize,
		ServiceType: c.Query("service_type"),
		IsActive:    shared.QueryBool(c, "is_active"),
		Keyword:     c.Query("keyword"),
	})
	if err != nil {
		respondServiceError(c, err, "error.service_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListServiceTypes 服务类型
func (h *Handler) ListServiceTypes(c *gin.Context) {
	types, err := h.PortalService.ListServiceTypes()
	if err != nil {
		respondServiceError(c, err, "error.service_fetch_failed")
		return
	}
	response.Success(c, types)
}

// GetServiceLink 服务详情
func (h *Handler) GetServiceLink(c *gin.Context) {
	id, ok := parseID(c, "error.service_id_invalid")
	if !ok {
		return
	}
	link, err := h.PortalService.GetServiceLink(id)
	if err != nil {
		respondServiceError(c, err, "error.service_fetch_failed")
		return
	}
	response.Success(c, link)
}

// CreateServiceLink 新增服务
func (h *Handler) CreateServiceLink(c *gin.Context) {
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req ServiceLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	link, err := h.PortalService.CreateServiceLink(operator.AdminID, req.input())
	if err != nil {
		respondServiceError(c, err, "error.service_save_failed")
		return
	}
	response.Success(c, link)
}

// UpdateServiceLink 更新服务
func (h *Handler) UpdateServiceLink(c *gin.Context) {
	id, ok := parseID(c, "error.service_id_invalid")
	if !ok {
		return
	}
	var req ServiceLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	link, err := h.PortalService.UpdateServiceLink(id, req.input())
	if err != nil {
		respondServiceError(c, err, "error.service_save_failed")
		return
	}
	response.Success(c, link)
}

// DeleteServiceLink 删除服务（被门户引用时拒绝）
func (h *Handler) DeleteServiceLink(c *gin.Context) {
	id, ok := parseID(c, "error.service_id_invalid")
	if !ok {
		return
	}
	if err := h.PortalService.DeleteServiceLink(id); err != nil {
		respondServiceError(c, err, "error.service_delete_failed")
		return
	}
	response.Success(c, gin.H{"id": id})
}

// ListServicePortals 门户列表
func (h *Handler) ListServicePortals(c *gin.Context) {
	page, pageSize := shared.ReadPagination(c)
	rows, total, err := h.PortalService.ListServicePortals(repository.ServicePortalListFilter{
		Page:        page,
		PageSize:    pageSize,
		ServiceType: c.Query("service_type"),
		IsActive:    shared.QueryBool(c, "is_active"),
	})
	if err != nil {
		respondServiceError(c, err, "error.portal_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetServicePortalStats 门户统计
func (h *Handler) GetServicePortalStats(c *gin.Context) {
	stats, err := h.PortalService.GetServicePortalStats()
	if err != nil {
		respondServiceError(c, err, "error.portal_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// GetServicePortal 门户详情（含图片与最终跳转地址）
func (h *Handler) GetServicePortal(c *gin.Context) {
	id, ok := parseID(c, "error.portal_id_invalid")
	if !ok {
		return
	}
	view, err := h.PortalService.GetServicePortal(id)
	if err != nil {
		respondServiceError(c, err, "error.portal_fetch_failed")
		return
	}
	response.Success(c, view)
}

// CreateServicePortal 创建门户二维码
func (h *Handler) CreateServicePortal(c *gin.Context) {
	operator, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req CreateServicePortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.PortalService.CreateServicePortal(service.CreateServicePortalInput{
		AdminID:        operator.AdminID,
		Name:           req.Name,
		Description:    req.Description,
		FrontendURL:    req.FrontendURL,
		Items:          portalItems(req.Services),
		RequestBaseURL: requestBaseURL(c),
	})
	if err != nil {
		respondServiceError(c, err, "error.portal_save_failed")
		return
	}
	shared.RespondSuccessMsg(c, "message.portal_created", view)
}

// UpdateServicePortal 更新门户
func (h *Handler) UpdateServicePortal(c *gin.Context) {
	id, ok := parseID(c, "error.portal_id_invalid")
	if !ok {
		return
	}
	var req UpdateServicePortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.PortalService.UpdateServicePortal(id, service.UpdateServicePortalInput{
		Name:           req.Name,
		Description:    req.Description,
		FrontendURL:    req.FrontendURL,
		Items:          portalItems(req.Services),
		IsActive:       req.IsActive,
		RequestBaseURL: requestBaseURL(c),
	})
	if err != nil {
		respondServiceError(c, err, "error.portal_save_failed")
		return
	}
	response.Success(c, view)
}

// DeleteServicePortal 删除门户
func (h *Handler) DeleteServicePortal(c *gin.Context) {
	id, ok := parseID(c, "error.portal_id_invalid")
	if !ok {
		return
	}
	if err := h.PortalService.DeleteServicePortal(id); err != nil {
		respondServiceError(c, err, "error.portal_delete_failed")
		return
	}
	response.Success(c, gin.H{"id": id})
}
