package fixture

import (
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

// 资产 USDT 参考价
var assetPrices = map[string]decimal.Decimal{
	"BTC":  decimal.NewFromInt(45100),
	"ETH":  decimal.NewFromInt(2700),
	"USDT": decimal.NewFromInt(1),
	"BNB":  decimal.NewFromInt(300),
}

// AssetPrice 资产参考价（未知资产为 0）
func AssetPrice(asset string) decimal.Decimal {
	return assetPrices[asset]
}

type staticBalance struct {
	uid, asset, free, locked, change string
}

var staticBalances = []staticBalance{
	{MakerUID, "BTC", "12.3456", "0.0000", "1.2"},
	{MakerUID, "ETH", "45.6789", "1.2345", "-0.5"},
	{MakerUID, "USDT", "125000.00", "5000.00", "0.1"},
	{TakerUID, "BTC", "11.2345", "0.1000", "-0.8"},
	{TakerUID, "ETH", "44.5678", "0.0000", "0.3"},
	{TakerUID, "USDT", "98000.00", "2000.00", "-0.2"},
}

// Balances 账户余额（Maker/Taker 两个 UID）
func (g *Generator) Balances() []domain.BalanceRecord {
	now := g.Now()
	out := make([]domain.BalanceRecord, 0, len(staticBalances))
	for _, s := range staticBalances {
		free, locked := mustDec(s.free), mustDec(s.locked)
		total := free.Add(locked)
		out = append(out, domain.BalanceRecord{
			UID:       s.uid,
			Group:     groupOf(s.uid),
			Asset:     s.asset,
			Free:      free,
			Locked:    locked,
			Total:     total,
			Valuation: total.Mul(AssetPrice(s.asset)).Round(2),
			ChangePct: mustDec(s.change),
			UpdatedAt: now,
		})
	}
	return out
}

var transferAssets = []string{"BTC", "ETH", "USDT"}

// Transfers 近 7 天划转（每天每个 UID 一笔转入、一笔转出）
func (g *Generator) Transfers() []domain.TransferRecord {
	today := g.startOfDay(g.Now())
	var out []domain.TransferRecord
	for day := 6; day >= 0; day-- {
		ts := today.AddDate(0, 0, -day).Add(10 * time.Hour)
		for _, uid := range []string{MakerUID, TakerUID} {
			asset := transferAssets[g.intn(len(transferAssets))]
			price := AssetPrice(asset)
			// 转入 5000~15000 USDT，转出 4000~12000 USDT
			inValue := g.between(5000, 10000, 2)
			outValue := g.between(4000, 8000, 2).Neg()
			for i, v := range []decimal.Decimal{inValue, outValue} {
				exchange := "Binance"
				if i == 1 {
					exchange = "Other"
				}
				out = append(out, domain.TransferRecord{
					UID:      uid,
					Group:    groupOf(uid),
					Exchange: exchange,
					Asset:    asset,
					Amount:   v.Div(price).Round(6),
					Price:    price,
					Value:    v,
					Time:     ts.Add(time.Duration(i) * time.Hour),
				})
			}
		}
	}
	return out
}

// BalanceTrend 近 7 天各资产余额走势（USDT）
func (g *Generator) BalanceTrend() []domain.TimeSeries {
	ranges := []struct {
		asset     string
		min, span float64
	}{
		{"BTC", 50000, 10000},
		{"ETH", 20000, 5000},
		{"USDT", 100000, 20000},
	}
	today := g.startOfDay(g.Now())
	out := make([]domain.TimeSeries, 0, len(ranges))
	for _, r := range ranges {
		s := domain.TimeSeries{Name: r.asset}
		for day := 6; day >= 0; day-- {
			s.Points = append(s.Points, domain.TimePoint{
				Time:  today.AddDate(0, 0, -day),
				Value: g.between(r.min, r.span, 2),
			})
		}
		out = append(out, s)
	}
	return out
}

// GroupSummary 账户组概览
func (g *Generator) GroupSummary() domain.GroupSummary {
	return domain.GroupSummary{
		MakerBalance:   mustDec("123456789.12"),
		MakerChange:    mustDec("1.23"),
		TakerBalance:   mustDec("987654321.98"),
		TakerChange:    mustDec("-0.45"),
		TotalPnL:       mustDec("123456.78"),
		TotalPnLChange: mustDec("0.78"),
	}
}
