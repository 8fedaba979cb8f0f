package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Attrs 记录上可用于筛选/分组的维度；空值表示该记录不携带此维度
type Attrs struct {
	Time     time.Time
	Symbol   string
	Exchange string
	UID      string
	Group    AccountGroup
	Asset    string
}

// Record 可筛选记录
type Record interface {
	Attrs() Attrs
}

// NormalizeSymbol 统一交易对写法：BTC/USDT、btc-usdt -> BTCUSDT
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("/", "", "-", "", "_", "").Replace(s)
}

// DisplayPair BTCUSDT -> BTC/USDT（仅识别 USDT 计价）
func DisplayPair(symbol string) string {
	s := NormalizeSymbol(symbol)
	if strings.HasSuffix(s, "USDT") && len(s) > 4 {
		return s[:len(s)-4] + "/USDT"
	}
	return s
}

// OrderBookLevel 盘口档位
type OrderBookLevel struct {
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Total       decimal.Decimal `json:"total"` // 累计
	MakerOrders int             `json:"maker_orders"`
	TakerOrders int             `json:"taker_orders"`
	Timestamp   time.Time       `json:"timestamp"`
}

// OrderBook 订单簿快照
type OrderBook struct {
	Symbol string           `json:"symbol"`
	Asks   []OrderBookLevel `json:"asks"`
	Bids   []OrderBookLevel `json:"bids"`
}

// DailyReportRow 日报行（按币种的 Maker/Taker 对照）
type DailyReportRow struct {
	Asset        string          `json:"assets"`
	MakerBalance decimal.Decimal `json:"maker_balance"`
	MakerChange  decimal.Decimal `json:"maker_change"`
	MakerNetIn   decimal.Decimal `json:"maker_net_in"`
	TakerBalance decimal.Decimal `json:"taker_balance"`
	TakerChange  decimal.Decimal `json:"taker_change"`
	TakerNetIn   decimal.Decimal `json:"taker_net_in"`
	Diff         decimal.Decimal `json:"diff"`
	Price        decimal.Decimal `json:"price"`
	PnL          decimal.Decimal `json:"pnl"`
}

func (r DailyReportRow) Attrs() Attrs {
	return Attrs{Asset: r.Asset}
}

// PairPnL 单个币对在某账户组下的盈亏
type PairPnL struct {
	Pair  string          `json:"pair"`
	Group AccountGroup    `json:"group"`
	PnL   decimal.Decimal `json:"pnl"`
	Time  time.Time       `json:"time"`
}

func (p PairPnL) Attrs() Attrs {
	return Attrs{Time: p.Time, Symbol: p.Pair, Group: p.Group}
}

// Point 类目轴数据点
type Point struct {
	X string          `json:"x"`
	Y decimal.Decimal `json:"y"`
}

// Series 图表序列
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// TimePoint 时间轴数据点
type TimePoint struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// TimeSeries 时间序列
type TimeSeries struct {
	Name   string      `json:"name"`
	Points []TimePoint `json:"points"`
}
