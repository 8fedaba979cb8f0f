package fixture

import (
	"fmt"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

// SeedAlertRules 初始告警规则（首次启动写入存储）
func SeedAlertRules() []domain.AlertRule {
	return []domain.AlertRule{
		{Pair: "BTC/USDT", Threshold: decimal.NewFromInt(1000), IntervalSeconds: 3, NotifyChannel: "lark", Enabled: true},
		{Pair: "ETH/USDT", Threshold: decimal.NewFromInt(500), IntervalSeconds: 3, NotifyChannel: "lark", Enabled: true},
	}
}

// AlertEvents 示例告警记录
func (g *Generator) AlertEvents() []domain.AlertEvent {
	now := g.Now()
	handled := now.Add(-150 * time.Second)
	return []domain.AlertEvent{
		{
			ID:           "fixture-1",
			Time:         now.Add(-3 * time.Minute),
			Pair:         "BTC/USDT",
			Level:        domain.AlertCritical,
			TriggerValue: mustDec("-1500"),
			Threshold:    decimal.NewFromInt(1000),
			Status:       domain.AlertHandled,
			Handler:      "张三",
			HandledAt:    &handled,
			Remark:       "风险解除",
		},
		{
			ID:           "fixture-2",
			Time:         now.Add(-5*time.Minute - 45*time.Second),
			Pair:         "ETH/USDT",
			Level:        domain.AlertWarning,
			TriggerValue: mustDec("-800"),
			Threshold:    decimal.NewFromInt(500),
			Status:       domain.AlertHandling,
			Handler:      "李四",
			Remark:       "处理中",
		},
	}
}

// AlertTrend 近 24 小时每小时告警次数
func (g *Generator) AlertTrend() domain.TimeSeries {
	hour := g.Now().Truncate(time.Hour)
	s := domain.TimeSeries{Name: "告警次数"}
	for i := 23; i >= 0; i-- {
		s.Points = append(s.Points, domain.TimePoint{
			Time:  hour.Add(-time.Duration(i) * time.Hour),
			Value: decimal.NewFromInt(int64(g.intn(10))),
		})
	}
	return s
}

// PairPnL 各币对在 Maker/Taker 账户组下的实时盈亏（告警评估输入）
func (g *Generator) PairPnL() []domain.PairPnL {
	now := g.Now()
	var out []domain.PairPnL
	for _, sym := range g.symbols {
		for _, group := range []domain.AccountGroup{domain.GroupMaker, domain.GroupTaker} {
			out = append(out, domain.PairPnL{
				Pair:  domain.DisplayPair(sym),
				Group: group,
				PnL:   g.between(-2000, 3000, 2),
				Time:  now,
			})
		}
	}
	return out
}

// PnLTrend 最近 20 个点（间隔 3 秒）的 Maker/Taker 盈亏曲线
func (g *Generator) PnLTrend() []domain.TimeSeries {
	now := g.Now()
	out := make([]domain.TimeSeries, 0, 2)
	for _, name := range []string{"Maker", "Taker"} {
		s := domain.TimeSeries{Name: name}
		for i := 19; i >= 0; i-- {
			s.Points = append(s.Points, domain.TimePoint{
				Time:  now.Add(-time.Duration(i*3) * time.Second),
				Value: g.between(0, 1000, 2),
			})
		}
		out = append(out, s)
	}
	return out
}

// AlertSummary 告警摘要文案，例如 "[严重] BTC/USDT 盈亏-1500 USDT"
func AlertSummary(e domain.AlertEvent) string {
	return fmt.Sprintf("[%s] %s 盈亏%s USDT", e.Level.Label(), e.Pair, e.TriggerValue.String())
}
