package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountGroup 账户组
type AccountGroup string

const (
	GroupMaker AccountGroup = "maker"
	GroupTaker AccountGroup = "taker"
)

// ParseAccountGroup 解析账户组，空串/ALL 返回 ""（不限）
func ParseAccountGroup(s string) (AccountGroup, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", true
	case "maker":
		return GroupMaker, true
	case "taker":
		return GroupTaker, true
	}
	return "", false
}

// BalanceRecord 账户余额
type BalanceRecord struct {
	UID       string          `json:"uid"`
	Group     AccountGroup    `json:"group"`
	Asset     string          `json:"asset"`
	Free      decimal.Decimal `json:"free"`
	Locked    decimal.Decimal `json:"locked"`
	Total     decimal.Decimal `json:"total"`     // free + locked
	Valuation decimal.Decimal `json:"valuation"` // USDT 估值
	ChangePct decimal.Decimal `json:"change_pct"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (b BalanceRecord) Attrs() Attrs {
	return Attrs{Time: b.UpdatedAt, UID: b.UID, Group: b.Group, Asset: b.Asset}
}

// TransferRecord 划转记录，Amount 为正表示转入，为负表示转出
type TransferRecord struct {
	UID      string          `json:"uid"`
	Group    AccountGroup    `json:"group"`
	Exchange string          `json:"exchange"`
	Asset    string          `json:"asset"`
	Amount   decimal.Decimal `json:"amount"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"` // USDT
	Time     time.Time       `json:"time"`
}

// Direction in / out
func (t TransferRecord) Direction() string {
	if t.Amount.IsNegative() {
		return "out"
	}
	return "in"
}

func (t TransferRecord) Attrs() Attrs {
	return Attrs{Time: t.Time, UID: t.UID, Group: t.Group, Asset: t.Asset, Exchange: t.Exchange}
}

// GroupSummary 账户组概览（Maker/Taker 余额与总盈亏）
type GroupSummary struct {
	MakerBalance   decimal.Decimal `json:"maker_balance"`
	MakerChange    decimal.Decimal `json:"maker_change"` // 百分比
	TakerBalance   decimal.Decimal `json:"taker_balance"`
	TakerChange    decimal.Decimal `json:"taker_change"`
	TotalPnL       decimal.Decimal `json:"total_pnl"`
	TotalPnLChange decimal.Decimal `json:"total_pnl_change"`
}
