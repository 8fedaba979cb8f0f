package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 看板服务配置
type Config struct {
	Server   ServerConfig  `yaml:"server" json:"server"`
	Refresh  RefreshConfig `yaml:"refresh" json:"refresh"`
	Fixtures FixtureConfig `yaml:"fixtures" json:"fixtures"`
	Alerts   AlertConfig   `yaml:"alerts" json:"alerts"`
	Log      LogConfig     `yaml:"log" json:"log"`
	Metrics  MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServerConfig 控制台 HTTP 服务
type ServerConfig struct {
	Listen            string `yaml:"listen" json:"listen"`
	DBPath            string `yaml:"db_path" json:"db_path"`                         // SQLite：告警规则/告警记录/导出记录
	ArtifactDir       string `yaml:"artifact_dir" json:"artifact_dir"`               // Badger：导出产物
	ArtifactTTLMinute int    `yaml:"artifact_ttl_minutes" json:"artifact_ttl_minutes"` // 导出产物保留时长（分钟）
}

// RefreshConfig 刷新周期（毫秒）
type RefreshConfig struct {
	ViewPeriodMS  int `yaml:"view_period_ms" json:"view_period_ms"`
	ClockPeriodMS int `yaml:"clock_period_ms" json:"clock_period_ms"`
}

// FixtureConfig 模拟数据
type FixtureConfig struct {
	Seed     int64    `yaml:"seed" json:"seed"` // 0 = 随机
	Symbols  []string `yaml:"symbols" json:"symbols"`
	Location string   `yaml:"location" json:"location"` // IANA 时区，例如 Asia/Shanghai
}

// AlertConfig 告警评估与通知
type AlertConfig struct {
	Enabled         bool   `yaml:"enabled" json:"enabled"`
	LarkWebhook     string `yaml:"lark_webhook" json:"lark_webhook"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	CooldownSeconds int    `yaml:"cooldown_seconds" json:"cooldown_seconds"` // 同一规则两次触发的最小间隔
}

// LogConfig 日志
type LogConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress"`
	JSON       bool   `yaml:"json" json:"json"`
}

// MetricsConfig prometheus + pprof 监听地址，空表示不启用
type MetricsConfig struct {
	Listen string `yaml:"listen" json:"listen"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:            ":8080",
			DBPath:            "data/opsboard.db",
			ArtifactDir:       "data/artifacts",
			ArtifactTTLMinute: 60,
		},
		Refresh: RefreshConfig{ViewPeriodMS: 3000, ClockPeriodMS: 1000},
		Fixtures: FixtureConfig{
			Symbols:  []string{"BTCUSDT", "ETHUSDT", "DOTUSDT", "LINKUSDT"},
			Location: "Local",
		},
		Alerts: AlertConfig{Enabled: true, TimeoutSeconds: 5, CooldownSeconds: 60},
		Log: LogConfig{
			Level:      "info",
			File:       "logs/opsboard.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）；filePath 为空时只使用默认值与环境变量
func Load(filePath string) (*Config, error) {
	cfg := Default()
	if filePath != "" {
		if err := loadConfigFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Listen = getEnv("OPSBOARD_LISTEN", cfg.Server.Listen)
	cfg.Server.DBPath = getEnv("OPSBOARD_DB", cfg.Server.DBPath)
	cfg.Server.ArtifactDir = getEnv("OPSBOARD_ARTIFACT_DIR", cfg.Server.ArtifactDir)
	cfg.Server.ArtifactTTLMinute = parseIntEnv("OPSBOARD_ARTIFACT_TTL_MINUTES", cfg.Server.ArtifactTTLMinute)
	cfg.Refresh.ViewPeriodMS = parseIntEnv("OPSBOARD_VIEW_PERIOD_MS", cfg.Refresh.ViewPeriodMS)
	cfg.Refresh.ClockPeriodMS = parseIntEnv("OPSBOARD_CLOCK_PERIOD_MS", cfg.Refresh.ClockPeriodMS)
	cfg.Fixtures.Seed = int64(parseIntEnv("OPSBOARD_SEED", int(cfg.Fixtures.Seed)))
	if v := getEnv("OPSBOARD_SYMBOLS", ""); v != "" {
		cfg.Fixtures.Symbols = strings.Split(v, ",")
	}
	cfg.Fixtures.Location = getEnv("OPSBOARD_LOCATION", cfg.Fixtures.Location)
	cfg.Alerts.Enabled = parseBoolEnv("OPSBOARD_ALERTS_ENABLED", cfg.Alerts.Enabled)
	cfg.Alerts.LarkWebhook = getEnv("OPSBOARD_LARK_WEBHOOK", cfg.Alerts.LarkWebhook)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Metrics.Listen = getEnv("OPSBOARD_METRICS_LISTEN", cfg.Metrics.Listen)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Listen) == "" {
		return fmt.Errorf("server.listen 不能为空")
	}
	if strings.TrimSpace(c.Server.DBPath) == "" {
		return fmt.Errorf("server.db_path 不能为空")
	}
	if c.Refresh.ViewPeriodMS < 0 || c.Refresh.ClockPeriodMS < 0 {
		return fmt.Errorf("refresh 周期不能为负数")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("fixtures.location 无效: %w", err)
	}
	return nil
}

// ViewPeriod 视图刷新周期（0 表示使用默认值）
func (c *Config) ViewPeriod() time.Duration {
	return time.Duration(c.Refresh.ViewPeriodMS) * time.Millisecond
}

// ClockPeriod 时钟组件刷新周期
func (c *Config) ClockPeriod() time.Duration {
	return time.Duration(c.Refresh.ClockPeriodMS) * time.Millisecond
}

// ArtifactTTL 导出产物保留时长
func (c *Config) ArtifactTTL() time.Duration {
	return time.Duration(c.Server.ArtifactTTLMinute) * time.Minute
}

// Location 解析时区
func (c *Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Fixtures.Location) {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(c.Fixtures.Location)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
