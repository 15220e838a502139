package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elevate-affiliate/internal/models"
	"github.com/elevate-affiliate/internal/repository"

	"github.com/spf13/cast"
)

// SettingService settings 表读写，值以 JSON 存储
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey 未保存过的键返回 nil, nil
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil || setting == nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// Update 设置值（入库前按键归一化）
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	normalized := normalizeSettingValueByKey(key, value)

	setting, err := s.repo.Upsert(key, normalized)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// parseSettingInt 后台提交的 JSON 数字、字符串都接受，空串视为非法
func parseSettingInt(value interface{}) (int, error) {
	value, err := trimSettingScalar(value)
	if err != nil {
		return 0, err
	}
	return cast.ToIntE(value)
}

func parseSettingFloat(value interface{}) (float64, error) {
	value, err := trimSettingScalar(value)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(value)
}

func trimSettingScalar(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.New("empty setting value")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, errors.New("empty setting value")
		}
		return trimmed, nil
	case bool:
		return nil, fmt.Errorf("unsupported setting value %v", v)
	}
	return value, nil
}
