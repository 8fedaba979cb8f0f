package server

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExportRun struct {
	ID         int64      `json:"id"`
	Preset     string     `json:"preset"`
	Format     string     `json:"format"`
	Selection  *string    `json:"selection,omitempty"` // 筛选条件 JSON
	Filename   *string    `json:"filename,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	OK         *bool      `json:"ok,omitempty"`
	Error      *string    `json:"error,omitempty"`
	Bytes      *int64     `json:"bytes,omitempty"`
}

type alertRuleRequest struct {
	Pair            string          `json:"pair"`
	Threshold       decimal.Decimal `json:"threshold"`
	IntervalSeconds int             `json:"interval_seconds"`
	NotifyChannel   string          `json:"notify_channel"`
	Enabled         *bool           `json:"enabled,omitempty"`
}

type alertEventHandleRequest struct {
	Status  string `json:"status"`
	Handler string `json:"handler"`
	Remark  string `json:"remark"`
}

// listResponse 列表接口：空结果返回 [] 并带 empty 标记
type listResponse struct {
	Items any  `json:"items"`
	Empty bool `json:"empty"`
}
