package fixture

import (
	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

type staticDaily struct {
	asset                             string
	makerBal, makerChange, makerNetIn string
	takerBal, takerChange, takerNetIn string
}

var staticDailyRows = []staticDaily{
	{"BTC", "12.3456", "0.1234", "0.5678", "11.2345", "-0.1234", "-0.5678"},
	{"ETH", "45.6789", "-1.2345", "-2.3456", "44.5678", "1.2345", "2.3456"},
	{"USDT", "130000.00", "1200.50", "5000.00", "100000.00", "-800.25", "-3000.00"},
}

// DailyReport 日报：按币种对照 Maker/Taker 余额、变化与净流入
// diff = (maker 变化 + taker 变化)，pnl = diff * price
func (g *Generator) DailyReport() []domain.DailyReportRow {
	out := make([]domain.DailyReportRow, 0, len(staticDailyRows))
	for _, s := range staticDailyRows {
		mc, tc := mustDec(s.makerChange), mustDec(s.takerChange)
		price := AssetPrice(s.asset)
		diff := mc.Add(tc)
		out = append(out, domain.DailyReportRow{
			Asset:        s.asset,
			MakerBalance: mustDec(s.makerBal),
			MakerChange:  mc,
			MakerNetIn:   mustDec(s.makerNetIn),
			TakerBalance: mustDec(s.takerBal),
			TakerChange:  tc,
			TakerNetIn:   mustDec(s.takerNetIn),
			Diff:         diff,
			Price:        price,
			PnL:          diff.Mul(price).Round(2),
		})
	}
	return out
}

// ReportPairPnL 分币对盈亏（Maker/Taker 两组，固定数值）
func (g *Generator) ReportPairPnL() []domain.PairPnL {
	pairs := []string{"BTC/USDT", "ETH/USDT", "DOT/USDT", "LINK/USDT"}
	maker := []int64{320, 302, 301, 334}
	taker := []int64{-120, -132, -101, -134}
	now := g.Now()
	out := make([]domain.PairPnL, 0, len(pairs)*2)
	for i, p := range pairs {
		out = append(out,
			domain.PairPnL{Pair: p, Group: domain.GroupMaker, PnL: decimal.NewFromInt(maker[i]), Time: now},
			domain.PairPnL{Pair: p, Group: domain.GroupTaker, PnL: decimal.NewFromInt(taker[i]), Time: now},
		)
	}
	return out
}

// NetValueTrend 近 7 天账户组净值走势
func (g *Generator) NetValueTrend() []domain.TimeSeries {
	today := g.startOfDay(g.Now())
	build := func(name string, min, span float64) domain.TimeSeries {
		s := domain.TimeSeries{Name: name}
		for day := 6; day >= 0; day-- {
			s.Points = append(s.Points, domain.TimePoint{
				Time:  today.AddDate(0, 0, -day),
				Value: g.between(min, span, 2),
			})
		}
		return s
	}
	return []domain.TimeSeries{
		build("Maker净值", 500000, 50000),
		build("Taker净值", 400000, 40000),
	}
}
