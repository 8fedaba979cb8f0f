package aggregate

import (
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TradeStats 单个 UID 的成交统计
type TradeStats struct {
	UID        string          `json:"uid"`
	Trades     int             `json:"trades"`
	Wins       int             `json:"wins"`
	TotalPnL   decimal.Decimal `json:"total_pnl"`
	WinRate    decimal.Decimal `json:"win_rate"` // 百分比，保留 1 位小数
	Commission decimal.Decimal `json:"commission_usdt"`
	Volume     decimal.Decimal `json:"volume"` // 成交额合计
}

// TotalPnLString 总盈亏，保留 2 位小数
func (s TradeStats) TotalPnLString() string {
	return s.TotalPnL.StringFixed(2)
}

// WinRateString 例如 "66.7%"
func (s TradeStats) WinRateString() string {
	return s.WinRate.StringFixed(1) + "%"
}

// WinRate 盈利笔数 / 总笔数，百分比，四舍五入到 1 位小数
func WinRate(wins, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(wins)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(1)
}

// StatsByUID 按 UID 汇总成交（UID 首次出现顺序）
func StatsByUID(trades []domain.TradeRecord) []TradeStats {
	index := map[string]int{}
	var out []TradeStats
	for _, t := range trades {
		i, ok := index[t.UID]
		if !ok {
			i = len(out)
			index[t.UID] = i
			out = append(out, TradeStats{UID: t.UID})
		}
		s := &out[i]
		s.Trades++
		if t.Profitable() {
			s.Wins++
		}
		s.TotalPnL = s.TotalPnL.Add(t.RealizedPnL)
		s.Commission = s.Commission.Add(t.CommissionUSDTAmount)
		s.Volume = s.Volume.Add(t.QuoteQty)
	}
	for i := range out {
		out[i].WinRate = WinRate(out[i].Wins, out[i].Trades)
	}
	return out
}

// Overall 全部成交的汇总（UID 为空）
func Overall(trades []domain.TradeRecord) TradeStats {
	s := TradeStats{Trades: len(trades)}
	for _, t := range trades {
		if t.Profitable() {
			s.Wins++
		}
		s.TotalPnL = s.TotalPnL.Add(t.RealizedPnL)
		s.Commission = s.Commission.Add(t.CommissionUSDTAmount)
		s.Volume = s.Volume.Add(t.QuoteQty)
	}
	s.WinRate = WinRate(s.Wins, s.Trades)
	return s
}

// VolumeBySymbolExchange 成交额：交易对 × 交易所
func VolumeBySymbolExchange(trades []domain.TradeRecord) []domain.Series {
	groups := GroupBy(trades,
		func(t domain.TradeRecord) Pair { return Pair{A: t.Exchange, B: t.Symbol} },
		func(t domain.TradeRecord) decimal.Decimal { return t.QuoteQty })
	return Flatten(groups, func(k Pair) (string, string) { return k.A, k.B }, nil)
}

// PnLBySymbolUID 盈亏：交易对 × UID
func PnLBySymbolUID(trades []domain.TradeRecord) []domain.Series {
	groups := GroupBy(trades,
		func(t domain.TradeRecord) Pair { return Pair{A: t.UID, B: t.Symbol} },
		func(t domain.TradeRecord) decimal.Decimal { return t.RealizedPnL })
	return Flatten(groups, func(k Pair) (string, string) { return k.A, k.B }, nil)
}

// DailyPnLByUID 盈亏：日期桶 × UID
func DailyPnLByUID(trades []domain.TradeRecord, loc *time.Location) []domain.Series {
	groups := GroupBy(trades,
		func(t domain.TradeRecord) Pair {
			return Pair{A: t.UID, B: Bucket(t.Time, 24*time.Hour, loc).Format("2006-01-02")}
		},
		func(t domain.TradeRecord) decimal.Decimal { return t.RealizedPnL })
	return SortX(Flatten(groups, func(k Pair) (string, string) { return k.A, k.B }, nil))
}

// CommissionByAsset 手续费（USDT）按手续费币种
func CommissionByAsset(trades []domain.TradeRecord) domain.Series {
	groups := GroupBy(trades,
		func(t domain.TradeRecord) string { return t.CommissionAsset },
		func(t domain.TradeRecord) decimal.Decimal { return t.CommissionUSDTAmount })
	return ToSeries("commission", groups, func(k string) string { return k }, nil)
}

// PnLByPairGroup 分币对盈亏：账户组 × 币对，并追加净盈亏序列
func PnLByPairGroup(rows []domain.PairPnL) []domain.Series {
	groups := GroupBy(rows,
		func(p domain.PairPnL) Pair { return Pair{A: string(p.Group), B: p.Pair} },
		func(p domain.PairPnL) decimal.Decimal { return p.PnL })
	series := Flatten(groups, func(k Pair) (string, string) { return k.A, k.B }, nil)
	net := ToSeries("net", GroupBy(rows,
		func(p domain.PairPnL) string { return p.Pair },
		func(p domain.PairPnL) decimal.Decimal { return p.PnL }),
		func(k string) string { return k }, nil)
	return append(series, net)
}
