package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertLevel 告警级别
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical" // 严重
	AlertWarning  AlertLevel = "warning"  // 警告
)

// Label 中文标签
func (l AlertLevel) Label() string {
	if l == AlertCritical {
		return "严重"
	}
	return "警告"
}

// AlertStatus 告警处理状态
type AlertStatus string

const (
	AlertPending  AlertStatus = "pending"
	AlertHandling AlertStatus = "handling"
	AlertHandled  AlertStatus = "handled"
)

// Valid 是否为合法状态
func (s AlertStatus) Valid() bool {
	return s == AlertPending || s == AlertHandling || s == AlertHandled
}

// AlertRule 告警规则
type AlertRule struct {
	ID              int64           `json:"id"`
	Pair            string          `json:"pair"`
	Threshold       decimal.Decimal `json:"threshold"` // USDT
	IntervalSeconds int             `json:"interval_seconds"`
	NotifyChannel   string          `json:"notify_channel"` // lark / log
	Enabled         bool            `json:"enabled"`
	LastTriggeredAt *time.Time      `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Interval 监控周期
func (r AlertRule) Interval() time.Duration {
	if r.IntervalSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(r.IntervalSeconds) * time.Second
}

// AlertEvent 告警记录
type AlertEvent struct {
	ID           string          `json:"id"`
	RuleID       int64           `json:"rule_id"`
	Time         time.Time       `json:"time"`
	Pair         string          `json:"pair"`
	Level        AlertLevel      `json:"level"`
	TriggerValue decimal.Decimal `json:"trigger_value"`
	Threshold    decimal.Decimal `json:"threshold"`
	Status       AlertStatus     `json:"status"`
	Handler      string          `json:"handler,omitempty"`
	HandledAt    *time.Time      `json:"handled_at,omitempty"`
	Remark       string          `json:"remark,omitempty"`
}

func (e AlertEvent) Attrs() Attrs {
	return Attrs{Time: e.Time, Symbol: e.Pair}
}
