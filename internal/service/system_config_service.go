package service

import (
	"sync"
	"time"
)

// SystemConfigService 系统参数读取服务
// 读取结果在进程内短暂缓存，后台保存时主动失效
type SystemConfigService struct {
	settingService *SettingService
	fallback       SystemSetting
	cacheTTL       time.Duration

	mu       sync.RWMutex
	cached   SystemSetting
	cachedAt time.Time
}

// NewSystemConfigService 创建系统参数服务
func NewSystemConfigService(settingService *SettingService, fallback SystemSetting) *SystemConfigService {
	return &SystemConfigService{
		settingService: settingService,
		fallback:       NormalizeSystemSetting(fallback),
		cacheTTL:       15 * time.Second,
	}
}

// Get 获取当前系统参数
func (s *SystemConfigService) Get() (SystemSetting, error) {
	if s == nil {
		return SystemDefaultSetting(""), nil
	}
	now := time.Now()
	s.mu.RLock()
	if !s.cachedAt.IsZero() && now.Sub(s.cachedAt) <= s.cacheTTL {
		cached := s.cached
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	setting, err := s.settingService.GetSystemSetting(s.fallback)
	if err != nil {
		return s.fallback, err
	}

	s.mu.Lock()
	s.cached = setting
	s.cachedAt = now
	s.mu.Unlock()
	return setting, nil
}

// Update 按补丁更新系统参数
func (s *SystemConfigService) Update(patch SystemSettingPatch) (SystemSetting, error) {
	updated, err := s.settingService.PatchSystemSetting(s.fallback, patch)
	if err != nil {
		return SystemSetting{}, err
	}
	s.mu.Lock()
	s.cached = updated
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return updated, nil
}

// InvalidateCache 失效本地缓存
func (s *SystemConfigService) InvalidateCache() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedAt = time.Time{}
}
