package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// 环境变量名
const (
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvBaseURL     = "OPENAI_BASE_URL"
	EnvModel       = "AMEA_OPENAI_MODEL"
	EnvTemperature = "AMEA_OPENAI_TEMPERATURE"
)

// DefaultModel 未配置模型时使用的模型
const DefaultModel = "gpt-5-nano"

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Report      ReportConfig      `yaml:"report"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"`
	// Timeout 单次调用超时（秒），0 表示使用默认值
	Timeout int `yaml:"timeout"`
}

// SearchConfig 搜索相关配置，Provider 为空时不检索市场信号
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	MaxResults int           `yaml:"max_results"`
	Tavily     TavilyConfig  `yaml:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// ModelConfig 转换为模型调用配置
func (c LLMConfig) ModelConfig() dm.ModelConfig {
	mc := dm.ModelConfig{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Model:   c.Model,
	}
	if c.Temperature != nil {
		t := *c.Temperature
		mc.Temperature = &t
	}
	return mc
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
	// Markets 同时分析的市场数量，<=1 表示按顺序逐个处理
	Markets int `yaml:"markets"`
}

// ReportConfig 报告生成相关配置
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	// FallbackBrief 公司简报调用失败时是否使用基于输入生成的兜底简报
	FallbackBrief bool `yaml:"fallback_brief"`
}

// LoadConfig 从指定路径加载配置，并叠加 .env 与环境变量
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	LoadDotEnv()
	if err := ApplyEnv(&cfg.LLM); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// Default 无配置文件时的默认配置（仍读取环境变量）
func Default() (*Config, error) {
	cfg := &Config{}
	LoadDotEnv()
	if err := ApplyEnv(&cfg.LLM); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadDotEnv 尝试加载当前目录及上级目录的 .env，文件不存在时忽略
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// ApplyEnv 用环境变量覆盖 LLM 配置
func ApplyEnv(c *LLMConfig) error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		c.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTemperature)); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTemperature, v, err)
		}
		f := float32(t)
		c.Temperature = &f
	}
	return nil
}

// ApplyDefaults 为未配置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	if c.Concurrency.Markets <= 0 {
		c.Concurrency.Markets = 1
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "output"
	}
}
