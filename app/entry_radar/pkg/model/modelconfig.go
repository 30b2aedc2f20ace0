package model

import (
	"fmt"
	"strings"
)

// fixedSamplingPrefixes 这些模型不支持调整 temperature
var fixedSamplingPrefixes = []string{"gpt-5", "o1", "o3", "o4"}

// ModelConfig 单次调用使用的模型配置。按值传递，会话覆盖通过 Merge 产生新值。
type ModelConfig struct {
	APIKey      string   `json:"-"`
	BaseURL     string   `json:"base_url,omitempty"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature,omitempty"`
}

// Configured 是否配置了 API Key
func (c ModelConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// SupportsTemperature 当前模型是否支持采样控制
func (c ModelConfig) SupportsTemperature() bool {
	m := strings.ToLower(strings.TrimSpace(c.Model))
	for _, p := range fixedSamplingPrefixes {
		if strings.HasPrefix(m, p) {
			return false
		}
	}
	return true
}

// EffectiveTemperature 实际发送的 temperature，不支持或未设置时为 nil
func (c ModelConfig) EffectiveTemperature() *float32 {
	if c.Temperature == nil || !c.SupportsTemperature() {
		return nil
	}
	t := *c.Temperature
	return &t
}

// Merge 用 override 中的非空字段覆盖当前配置
func (c ModelConfig) Merge(override ModelConfig) ModelConfig {
	out := c
	if v := strings.TrimSpace(override.APIKey); v != "" {
		out.APIKey = v
	}
	if v := strings.TrimSpace(override.BaseURL); v != "" {
		out.BaseURL = v
	}
	if v := strings.TrimSpace(override.Model); v != "" {
		out.Model = v
	}
	if override.Temperature != nil {
		t := *override.Temperature
		out.Temperature = &t
	}
	return out
}

// RedactedKey 脱敏后的 API Key
func (c ModelConfig) RedactedKey() string {
	k := strings.TrimSpace(c.APIKey)
	switch {
	case k == "":
		return ""
	case len(k) <= 8:
		return "****"
	default:
		return k[:3] + "****" + k[len(k)-4:]
	}
}

// String 不输出明文 Key，可安全写入日志
func (c ModelConfig) String() string {
	temp := "default"
	if t := c.EffectiveTemperature(); t != nil {
		temp = fmt.Sprintf("%.2f", *t)
	}
	base := c.BaseURL
	if base == "" {
		base = "default"
	}
	return fmt.Sprintf("model=%s base_url=%s temperature=%s api_key=%s", c.Model, base, temp, c.RedactedKey())
}
