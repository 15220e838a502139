package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elevate-affiliate/internal/logger"
	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServicePortalScanPath 门户二维码指向的后端计数入口
const ServicePortalScanPath = "/api/v1/public/service-portal"

const topScannedLimit = 5

// ServicePortalService 服务门户：服务目录维护、门户二维码与扫码跳转
type ServicePortalService struct {
	linkRepo       repository.ServiceLinkRepository
	portalRepo     repository.ServicePortalRepository
	systemConfig   *SystemConfigService
	encoder        QRImageEncoder
	backendBaseURL string
	now            func() time.Time
}

// NewServicePortalService 创建服务门户服务，backendBaseURL 为空时使用请求来源地址
func NewServicePortalService(
	linkRepo repository.ServiceLinkRepository,
	portalRepo repository.ServicePortalRepository,
	systemConfig *SystemConfigService,
	encoder QRImageEncoder,
	backendBaseURL string,
) *ServicePortalService {
	return &ServicePortalService{
		linkRepo:       linkRepo,
		portalRepo:     portalRepo,
		systemConfig:   systemConfig,
		encoder:        encoder,
		backendBaseURL: strings.TrimSpace(backendBaseURL),
		now:            time.Now,
	}
}

// ServiceLinkInput 服务创建/更新输入，更新时 nil 字段保持不变
type ServiceLinkInput struct {
	Name        *string
	ServiceType *string
	ServiceData *string
	Description *string
	IsActive    *bool
}

func requiredText(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed, trimmed != ""
}

// CreateServiceLink 新增服务
func (s *ServicePortalService) CreateServiceLink(adminID uint, input ServiceLinkInput) (*models.ServiceLink, error) {
	name, okName := requiredText(input.Name)
	serviceType, okType := requiredText(input.ServiceType)
	data, okData := requiredText(input.ServiceData)
	if !okName || !okType || !okData {
		return nil, fmt.Errorf("%w: 名称、类型与服务内容必填", ErrInvalidInput)
	}
	link := &models.ServiceLink{
		Name:        name,
		ServiceType: serviceType,
		ServiceData: data,
		IsActive:    true,
		CreatedBy:   adminID,
	}
	if input.Description != nil {
		link.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}
	if err := s.linkRepo.Create(link); err != nil {
		return nil, err
	}
	logger.Infow("service_link_created", "service_link_id", link.ID, "service_type", link.ServiceType, "admin_id", adminID)
	return link, nil
}

// UpdateServiceLink 更新服务
func (s *ServicePortalService) UpdateServiceLink(id uint, input ServiceLinkInput) (*models.ServiceLink, error) {
	link, err := s.GetServiceLink(id)
	if err != nil {
		return nil, err
	}
	for _, field := range []struct {
		value  *string
		target *string
	}{
		{input.Name, &link.Name},
		{input.ServiceType, &link.ServiceType},
		{input.ServiceData, &link.ServiceData},
	} {
		if field.value == nil {
			continue
		}
		text, ok := requiredText(field.value)
		if !ok {
			return nil, fmt.Errorf("%w: 名称、类型与服务内容不能为空", ErrInvalidInput)
		}
		*field.target = text
	}
	if input.Description != nil {
		link.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}
	if err := s.linkRepo.Update(link); err != nil {
		return nil, err
	}
	logger.Infow("service_link_updated", "service_link_id", link.ID, "is_active", link.IsActive)
	return link, nil
}

// GetServiceLink 获取服务
func (s *ServicePortalService) GetServiceLink(id uint) (*models.ServiceLink, error) {
	link, err := s.linkRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrServiceLinkNotFound
	}
	return link, nil
}

// ListServiceLinks 服务列表
func (s *ServicePortalService) ListServiceLinks(filter repository.ServiceLinkListFilter) ([]models.ServiceLink, int64, error) {
	return s.linkRepo.List(filter)
}

// ListServiceTypes 已有服务类型
func (s *ServicePortalService) ListServiceTypes() ([]string, error) {
	return s.linkRepo.ListTypes()
}

// DeleteServiceLink 删除服务，仍被门户引用时拒绝（应改为停用）
func (s *ServicePortalService) DeleteServiceLink(id uint) error {
	link, err := s.GetServiceLink(id)
	if err != nil {
		return err
	}
	used, err := s.linkRepo.CountPortalUsage(link.ID)
	if err != nil {
		return err
	}
	if used > 0 {
		return ErrServiceLinkInUse
	}
	if err := s.linkRepo.Delete(link.ID); err != nil {
		return err
	}
	logger.Infow("service_link_deleted", "service_link_id", link.ID)
	return nil
}

// PortalItemInput 门户服务项
type PortalItemInput struct {
	ServiceLinkID uint
	DisplayOrder  int
}

// CreateServicePortalInput 创建门户输入；RequestBaseURL 在未配置后端地址时使用
type CreateServicePortalInput struct {
	AdminID        uint
	Name           string
	Description    string
	FrontendURL    string
	Items          []PortalItemInput
	RequestBaseURL string
}

// UpdateServicePortalInput 更新门户输入，nil 字段保持不变
type UpdateServicePortalInput struct {
	Name           *string
	Description    *string
	FrontendURL    *string
	Items          []PortalItemInput
	IsActive       *bool
	RequestBaseURL string
}

// ServicePortalView 门户详情及扫码后的最终跳转地址
type ServicePortalView struct {
	Portal      *models.ServicePortal `json:"portal"`
	ScanURL     string                `json:"scan_url"`
	RedirectURL string                `json:"redirect_url"`
}

func normalizeFrontendURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.ParseRequestURI(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", ErrInvalidPortalURL
	}
	return trimmed, nil
}

// validateItems 服务项至少一个、不可重复且必须存在
func (s *ServicePortalService) validateItems(items []PortalItemInput) ([]models.ServicePortalItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: 至少选择一个服务", ErrInvalidInput)
	}
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ServiceLinkID == 0 {
			return nil, fmt.Errorf("%w: 服务 ID 必填", ErrInvalidInput)
		}
		if _, dup := seen[item.ServiceLinkID]; dup {
			return nil, fmt.Errorf("%w: 服务 %d 重复", ErrInvalidInput, item.ServiceLinkID)
		}
		seen[item.ServiceLinkID] = struct{}{}
		ids = append(ids, item.ServiceLinkID)
	}
	links, err := s.linkRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(links) != len(ids) {
		return nil, ErrServiceLinkNotFound
	}
	rows := make([]models.ServicePortalItem, len(items))
	for i, item := range items {
		rows[i] = models.ServicePortalItem{ServiceLinkID: item.ServiceLinkID, DisplayOrder: item.DisplayOrder}
	}
	return rows, nil
}

func (s *ServicePortalService) scanURL(requestBaseURL string, portalID uint) string {
	base := s.backendBaseURL
	if base == "" {
		base = strings.TrimSpace(requestBaseURL)
	}
	return strings.TrimRight(base, "/") + ServicePortalScanPath + "?qrId=" + strconv.FormatUint(uint64(portalID), 10)
}

// refreshImage 扫码地址变化或图片缺失时重新生成二维码
func (s *ServicePortalService) refreshImage(portal *models.ServicePortal, requestBaseURL string) error {
	target := s.scanURL(requestBaseURL, portal.ID)
	if target == portal.ScanURL && portal.QRCodeImage != "" {
		return nil
	}
	portal.ScanURL = target
	if s.encoder == nil {
		return nil
	}
	image, err := s.encoder.Encode(target)
	if err != nil {
		return fmt.Errorf("encode service portal image failed: %w", err)
	}
	portal.QRCodeImage = image
	return nil
}

// CreateServicePortal 创建门户并生成二维码
func (s *ServicePortalService) CreateServicePortal(input CreateServicePortalInput) (*ServicePortalView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 门户名称必填", ErrInvalidInput)
	}
	frontendURL, err := normalizeFrontendURL(input.FrontendURL)
	if err != nil {
		return nil, err
	}
	items, err := s.validateItems(input.Items)
	if err != nil {
		return nil, err
	}

	portal := &models.ServicePortal{
		UniqueID:    uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		FrontendURL: frontendURL,
		IsActive:    true,
		CreatedBy:   input.AdminID,
	}
	err = s.portalRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.portalRepo.WithTx(tx)
		if err := repo.Create(portal); err != nil {
			return err
		}
		if err := repo.ReplaceItems(portal.ID, items); err != nil {
			return err
		}
		// 扫码地址依赖主键，落库后回填
		if err := s.refreshImage(portal, input.RequestBaseURL); err != nil {
			return err
		}
		return repo.Update(portal)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("service_portal_created", "service_portal_id", portal.ID, "items", len(items), "admin_id", input.AdminID)
	return s.GetServicePortal(portal.ID)
}

// UpdateServicePortal 更新门户
func (s *ServicePortalService) UpdateServicePortal(id uint, input UpdateServicePortalInput) (*ServicePortalView, error) {
	portal, err := s.portalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if portal == nil {
		return nil, ErrServicePortalNotFound
	}
	if input.Name != nil {
		name, ok := requiredText(input.Name)
		if !ok {
			return nil, fmt.Errorf("%w: 门户名称必填", ErrInvalidInput)
		}
		portal.Name = name
	}
	if input.Description != nil {
		portal.Description = strings.TrimSpace(*input.Description)
	}
	if input.FrontendURL != nil {
		frontendURL, err := normalizeFrontendURL(*input.FrontendURL)
		if err != nil {
			return nil, err
		}
		portal.FrontendURL = frontendURL
	}
	if input.IsActive != nil {
		portal.IsActive = *input.IsActive
	}
	var items []models.ServicePortalItem
	if input.Items != nil {
		if items, err = s.validateItems(input.Items); err != nil {
			return nil, err
		}
	}

	err = s.portalRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.portalRepo.WithTx(tx)
		if input.Items != nil {
			if err := repo.ReplaceItems(portal.ID, items); err != nil {
				return err
			}
		}
		if err := s.refreshImage(portal, input.RequestBaseURL); err != nil {
			return err
		}
		return repo.Update(portal)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("service_portal_updated", "service_portal_id", portal.ID, "is_active", portal.IsActive, "items_replaced", input.Items != nil)
	return s.GetServicePortal(portal.ID)
}

// GetServicePortal 门户详情
func (s *ServicePortalService) GetServicePortal(id uint) (*ServicePortalView, error) {
	portal, err := s.portalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if portal == nil {
		return nil, ErrServicePortalNotFound
	}
	return &ServicePortalView{
		Portal:      portal,
		ScanURL:     portal.ScanURL,
		RedirectURL: buildPortalRedirect(portal),
	}, nil
}

// ListServicePortals 门户列表
func (s *ServicePortalService) ListServicePortals(filter repository.ServicePortalListFilter) ([]models.ServicePortal, int64, error) {
	return s.portalRepo.List(filter)
}

// DeleteServicePortal 删除门户
func (s *ServicePortalService) DeleteServicePortal(id uint) error {
	portal, err := s.portalRepo.GetByID(id)
	if err != nil {
		return err
	}
	if portal == nil {
		return ErrServicePortalNotFound
	}
	err = s.portalRepo.Transaction(func(tx *gorm.DB) error {
		return s.portalRepo.WithTx(tx).Delete(portal.ID)
	})
	if err != nil {
		return err
	}
	logger.Infow("service_portal_deleted", "service_portal_id", portal.ID)
	return nil
}

// ServicePortalStats 门户统计
type ServicePortalStats struct {
	Total                int64                              `json:"total"`
	Active               int64                              `json:"active"`
	Inactive             int64                              `json:"inactive"`
	TotalScans           int64                              `json:"total_scans"`
	TopScanned           []repository.ServicePortalScanRank `json:"top_scanned"`
	ServiceTypeBreakdown map[string]int64                   `json:"service_type_breakdown"`
}

// GetServicePortalStats 汇总门户数量、扫码量与服务类型分布
func (s *ServicePortalService) GetServicePortalStats() (*ServicePortalStats, error) {
	active := true
	inactive := false
	stats := &ServicePortalStats{ServiceTypeBreakdown: map[string]int64{}}

	var err error
	if stats.Total, err = s.portalRepo.CountByActive(nil); err != nil {
		return nil, err
	}
	if stats.Active, err = s.portalRepo.CountByActive(&active); err != nil {
		return nil, err
	}
	if stats.Inactive, err = s.portalRepo.CountByActive(&inactive); err != nil {
		return nil, err
	}
	if stats.TotalScans, err = s.portalRepo.SumScans(); err != nil {
		return nil, err
	}
	if stats.TopScanned, err = s.portalRepo.TopScanned(topScannedLimit); err != nil {
		return nil, err
	}

	types, err := s.linkRepo.ListTypes()
	if err != nil {
		return nil, err
	}
	for _, serviceType := range types {
		stats.ServiceTypeBreakdown[serviceType] = 0
	}
	usage, err := s.portalRepo.ServiceTypeUsage()
	if err != nil {
		return nil, err
	}
	for _, row := range usage {
		stats.ServiceTypeBreakdown[row.ServiceType] = row.Count
	}
	return stats, nil
}

// ResolveServicePortal 扫码入口：记录扫码并返回跳转地址
// 门户不存在、已停用或没有可用服务时跳转到默认落地页
func (s *ServicePortalService) ResolveServicePortal(rawID string) string {
	fallback := s.fallbackURL()
	id, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id == 0 {
		return fallback
	}
	portal, err := s.portalRepo.GetByID(uint(id))
	if err != nil {
		logger.Warnw("service_portal_resolve_failed", "service_portal_id", id, "error", err)
		return fallback
	}
	if portal == nil || !portal.IsActive {
		return fallback
	}
	if err := s.portalRepo.RecordScan(portal.ID, s.now()); err != nil {
		logger.Warnw("service_portal_scan_record_failed", "service_portal_id", portal.ID, "error", err)
	}
	target := buildPortalRedirect(portal)
	if target == "" {
		return fallback
	}
	return target
}

func (s *ServicePortalService) fallbackURL() string {
	setting, err := s.systemConfig.Get()
	if err != nil {
		logger.Warnw("system_config_read_failed", "error", err)
	}
	return strings.TrimSpace(setting.FrontendBaseURL)
}

// buildPortalRedirect 拼接 {frontend}/{name}?service_<name>=<data>&...，仅包含启用的服务
// 无可用服务时返回空串
func buildPortalRedirect(portal *models.ServicePortal) string {
	if portal == nil {
		return ""
	}
	var query strings.Builder
	for _, item := range portal.Items {
		link := item.ServiceLink
		if link == nil || !link.IsActive {
			continue
		}
		if query.Len() == 0 {
			query.WriteByte('?')
		} else {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape("service_" + link.Name))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(link.ServiceData))
	}
	if query.Len() == 0 {
		return ""
	}
	base := strings.TrimRight(portal.FrontendURL, "/")
	return base + "/" + url.PathEscape(portal.Name) + query.String()
}
