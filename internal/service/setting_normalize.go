package service

import (
	"strings"

	"github.com/elevate-affiliate/internal/config"
	"github.com/elevate-affiliate/internal/constants"
	"github.com/elevate-affiliate/internal/models"
)

// normalizeSettingValueByKey 按设置键执行归一化，避免非法值入库。
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeySystemConfig:
		setting := systemSettingFromJSON(models.JSON(value), SystemDefaultSetting(""))
		return models.JSON(SystemSettingToMap(setting))
	case constants.SettingKeyCaptchaConfig:
		setting := captchaSettingFromJSON(models.JSON(value), CaptchaDefaultSetting(config.CaptchaConfig{}))
		return models.JSON(CaptchaSettingToMap(setting))
	default:
		return models.JSON(value)
	}
}

func normalizeSettingText(raw interface{}) string {
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func normalizeSettingTextWithRuneLimit(raw interface{}, maxRuneCount int) string {
	text := normalizeSettingText(raw)
	if text == "" || maxRuneCount <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxRuneCount {
		return text
	}
	return string(runes[:maxRuneCount])
}

func parseSettingBool(raw interface{}) bool {
	switch value := raw.(type) {
	case bool:
		return value
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	case string:
		normalized := strings.ToLower(strings.TrimSpace(value))
		return normalized == "1" || normalized == "true" || normalized == "yes" || normalized == "on"
	default:
		return false
	}
}

func toStringAnyMap(raw interface{}) map[string]interface{} {
	switch value := raw.(type) {
	case map[string]interface{}:
		return value
	case models.JSON:
		return map[string]interface{}(value)
	default:
		return nil
	}
}

func readString(source map[string]interface{}, key, fallback string) string {
	raw, ok := source[key]
	if !ok {
		return fallback
	}
	text, ok := raw.(string)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(text)
}

func readBool(source map[string]interface{}, key string, fallback bool) bool {
	raw, ok := source[key]
	if !ok {
		return fallback
	}
	return parseSettingBool(raw)
}

func readInt(source map[string]interface{}, key string, fallback int) int {
	raw, ok := source[key]
	if !ok {
		return fallback
	}
	parsed, err := parseSettingInt(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func readFloat(source map[string]interface{}, key string, fallback float64) float64 {
	raw, ok := source[key]
	if !ok {
		return fallback
	}
	parsed, err := parseSettingFloat(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
