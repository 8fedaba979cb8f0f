package views

import (
	"context"
	"sort"
	"time"

	"github.com/betbot/opsboard/internal/aggregate"
	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/fixture"
	"github.com/betbot/opsboard/internal/refresh"
	"github.com/shopspring/decimal"
)

// 视图名
const (
	Dashboard = "dashboard"
	Accounts  = "accounts"
	Orders    = "orders"
	Trades    = "trades"
	Report    = "report"
	Alerts    = "alerts"
	Fees      = "fees"
	OrderBook = "orderbook"
	Clock     = "clock"
)

const (
	randomTradeCount   = 20
	recentAlertsLimit  = 5
	alertSourceTimeout = 2 * time.Second
)

// AlertSource 告警规则与告警记录来源（控制台由 SQLite 提供）
type AlertSource interface {
	ListAlertRules(ctx context.Context) ([]domain.AlertRule, error)
	// ListAlertEvents 按 sel 的时间区间与币对过滤后的最近 limit 条记录
	ListAlertEvents(ctx context.Context, sel filter.Selection, limit int) ([]domain.AlertEvent, error)
}

// Deps 页面依赖
type Deps struct {
	Fixtures    *fixture.Generator
	Alerts      AlertSource // 为空时使用模拟告警
	ViewPeriod  time.Duration
	ClockPeriod time.Duration
}

// NewDefaultRegistry 注册全部看板页面
func NewDefaultRegistry(d Deps) *Registry {
	clock := d.ClockPeriod
	if clock <= 0 {
		clock = refresh.ClockPeriod
	}
	p := pages{Deps: d}
	r := NewRegistry()
	r.Register(Page{Name: Dashboard, Period: d.ViewPeriod, Build: p.dashboard})
	r.Register(Page{Name: Accounts, Period: d.ViewPeriod, Build: p.accounts})
	r.Register(Page{Name: Orders, Period: d.ViewPeriod, Build: p.orders})
	r.Register(Page{Name: Trades, Period: d.ViewPeriod, Build: p.trades})
	r.Register(Page{Name: Report, Period: d.ViewPeriod, Build: p.report})
	r.Register(Page{Name: Alerts, Period: d.ViewPeriod, Build: p.alerts})
	r.Register(Page{Name: Fees, Period: d.ViewPeriod, Build: p.fees})
	r.Register(Page{Name: OrderBook, Period: d.ViewPeriod, Build: p.orderBook})
	r.Register(Page{Name: Clock, Period: clock, Build: buildClock})
	return r
}

type pages struct {
	Deps
}

// DashboardData 首页
type DashboardData struct {
	Summary      domain.GroupSummary    `json:"summary"`
	PairPnL      []domain.Series        `json:"pair_pnl"`
	PnLTrend     []domain.TimeSeries    `json:"pnl_trend"`
	Stats        []aggregate.TradeStats `json:"stats"`
	RecentAlerts []domain.AlertEvent    `json:"recent_alerts"`
	Empty        bool                   `json:"empty"`
}

func (p pages) dashboard(sel filter.Selection, _ time.Time) any {
	g := p.Fixtures
	pairs := filter.Apply(g.PairPnL(), sel)
	trades := filter.Apply(g.Trades(), sel)
	events := filter.Apply(p.alertEvents(sel), sel)
	SortEventsNewestFirst(events)
	if len(events) > recentAlertsLimit {
		events = events[:recentAlertsLimit]
	}
	return DashboardData{
		Summary:      g.GroupSummary(),
		PairPnL:      aggregate.PnLByPairGroup(pairs),
		PnLTrend:     g.PnLTrend(),
		Stats:        nonNil(aggregate.StatsByUID(trades)),
		RecentAlerts: nonNil(events),
		Empty:        len(pairs) == 0 && len(trades) == 0,
	}
}

// AccountsData 账户页
type AccountsData struct {
	Balances  []domain.BalanceRecord  `json:"balances"`
	Transfers []domain.TransferRecord `json:"transfers"`
	Trend     []domain.TimeSeries     `json:"trend"`
	Empty     bool                    `json:"empty"`
}

func (p pages) accounts(sel filter.Selection, _ time.Time) any {
	g := p.Fixtures
	balances := filter.Apply(g.Balances(), sel)
	transfers := filter.Apply(g.Transfers(), sel)
	return AccountsData{
		Balances:  nonNil(balances),
		Transfers: nonNil(transfers),
		Trend:     g.BalanceTrend(),
		Empty:     len(balances) == 0 && len(transfers) == 0,
	}
}

// OrdersData 当前委托
type OrdersData struct {
	Orders     []domain.OrderRecord `json:"orders"`
	Cancelable int                  `json:"cancelable"`
	Empty      bool                 `json:"empty"`
}

func (p pages) orders(sel filter.Selection, _ time.Time) any {
	orders := filter.Apply(p.Fixtures.Orders(), sel)
	n := 0
	for _, o := range orders {
		if o.Cancelable() {
			n++
		}
	}
	return OrdersData{Orders: nonNil(orders), Cancelable: n, Empty: len(orders) == 0}
}

// TradesData 成交历史与统计
type TradesData struct {
	Trades       []domain.TradeRecord   `json:"trades"`
	Stats        []aggregate.TradeStats `json:"stats"`
	Overall      aggregate.TradeStats   `json:"overall"`
	Volume       []domain.Series        `json:"volume"`
	PnLBySymbol  []domain.Series        `json:"pnl_by_symbol"`
	DailyPnL     []domain.Series        `json:"daily_pnl"`
	Commission   domain.Series          `json:"commission"`
	Distribution domain.Series          `json:"pnl_distribution"`
	Empty        bool                   `json:"empty"`
}

// TradeRecords 成交记录全集：固定历史成交 + 最近 24 小时的随机成交
func TradeRecords(g *fixture.Generator) []domain.TradeRecord {
	return append(g.Trades(), g.RandomTrades(randomTradeCount, 24*time.Hour)...)
}

// BuildTrades 按筛选条件汇总成交
func BuildTrades(trades []domain.TradeRecord, sel filter.Selection, loc *time.Location) TradesData {
	trades = filter.Apply(trades, sel)
	dist := aggregate.ToSeries("distribution", aggregate.PnLDistribution(trades),
		func(k string) string { return k }, aggregate.CountOf[string])
	return TradesData{
		Trades:       nonNil(trades),
		Stats:        nonNil(aggregate.StatsByUID(trades)),
		Overall:      aggregate.Overall(trades),
		Volume:       nonNil(aggregate.VolumeBySymbolExchange(trades)),
		PnLBySymbol:  nonNil(aggregate.PnLBySymbolUID(trades)),
		DailyPnL:     nonNil(aggregate.DailyPnLByUID(trades, loc)),
		Commission:   aggregate.CommissionByAsset(trades),
		Distribution: dist,
		Empty:        len(trades) == 0,
	}
}

func (p pages) trades(sel filter.Selection, _ time.Time) any {
	return BuildTrades(TradeRecords(p.Fixtures), sel, p.Fixtures.Location())
}

// ReportData 报表页
type ReportData struct {
	Daily    []domain.DailyReportRow `json:"daily"`
	PairPnL  []domain.Series         `json:"pair_pnl"`
	NetValue []domain.TimeSeries     `json:"net_value"`
	Empty    bool                    `json:"empty"`
}

func (p pages) report(sel filter.Selection, _ time.Time) any {
	g := p.Fixtures
	daily := filter.Apply(g.DailyReport(), sel)
	pairs := filter.Apply(g.ReportPairPnL(), sel)
	return ReportData{
		Daily:    nonNil(daily),
		PairPnL:  aggregate.PnLByPairGroup(pairs),
		NetValue: g.NetValueTrend(),
		Empty:    len(daily) == 0 && len(pairs) == 0,
	}
}

// AlertStats 告警统计
type AlertStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Handling int `json:"handling"`
	Handled  int `json:"handled"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
}

// AlertStatsOf 统计告警记录
func AlertStatsOf(events []domain.AlertEvent) AlertStats {
	s := AlertStats{Total: len(events)}
	for _, e := range events {
		switch e.Status {
		case domain.AlertPending:
			s.Pending++
		case domain.AlertHandling:
			s.Handling++
		case domain.AlertHandled:
			s.Handled++
		}
		switch e.Level {
		case domain.AlertCritical:
			s.Critical++
		case domain.AlertWarning:
			s.Warning++
		}
	}
	return s
}

// AlertsData 告警页
type AlertsData struct {
	Rules  []domain.AlertRule  `json:"rules"`
	Events []domain.AlertEvent `json:"events"`
	Stats  AlertStats          `json:"stats"`
	Trend  domain.TimeSeries   `json:"trend"`
	Empty  bool                `json:"empty"`
}

func (p pages) alertRules() []domain.AlertRule {
	if p.Alerts == nil {
		return fixture.SeedAlertRules()
	}
	ctx, cancel := context.WithTimeout(context.Background(), alertSourceTimeout)
	defer cancel()
	rules, err := p.Alerts.ListAlertRules(ctx)
	if err != nil {
		log.Warnf("list alert rules: %v", err)
		return nil
	}
	return rules
}

func (p pages) alertEvents(sel filter.Selection) []domain.AlertEvent {
	if p.Alerts == nil {
		return p.Fixtures.AlertEvents()
	}
	ctx, cancel := context.WithTimeout(context.Background(), alertSourceTimeout)
	defer cancel()
	events, err := p.Alerts.ListAlertEvents(ctx, sel, 200)
	if err != nil {
		log.Warnf("list alert events: %v", err)
		return nil
	}
	return events
}

func (p pages) alerts(sel filter.Selection, _ time.Time) any {
	rules := p.alertRules()
	if len(sel.Symbols) > 0 {
		kept := rules[:0:0]
		for _, r := range rules {
			if sel.Matches(domain.Attrs{Symbol: r.Pair}) {
				kept = append(kept, r)
			}
		}
		rules = kept
	}
	events := filter.Apply(p.alertEvents(sel), sel)
	return AlertsData{
		Rules:  nonNil(rules),
		Events: nonNil(events),
		Stats:  AlertStatsOf(events),
		Trend:  p.Fixtures.AlertTrend(),
		Empty:  len(events) == 0,
	}
}

// FeesData 手续费明细
type FeesData struct {
	Symbol string             `json:"symbol"`
	Fees   []domain.FeeRecord `json:"fees"`
	Total  decimal.Decimal    `json:"total_usdt"`
	Empty  bool               `json:"empty"`
}

func (p pages) fees(sel filter.Selection, _ time.Time) any {
	fees := filter.Apply(p.Fixtures.Fees(0), sel)
	total := aggregate.Sum(fees, func(f domain.FeeRecord) decimal.Decimal { return f.USDTAmount })
	return FeesData{
		Symbol: sel.Symbol(fixture.DefaultSymbols[0]),
		Fees:   nonNil(fees),
		Total:  total,
		Empty:  len(fees) == 0,
	}
}

func (p pages) orderBook(sel filter.Selection, _ time.Time) any {
	return p.Fixtures.OrderBook(sel.Symbol(fixture.DefaultSymbols[0]), fixture.DefaultDepth)
}

// ClockData 时钟组件
type ClockData struct {
	Now  time.Time `json:"now"`
	Text string    `json:"text"`
}

func buildClock(_ filter.Selection, now time.Time) any {
	return ClockData{Now: now, Text: now.Format("2006-01-02 15:04:05")}
}

// SortEventsNewestFirst 告警记录按时间倒序
func SortEventsNewestFirst(events []domain.AlertEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time.After(events[j].Time) })
}

// nonNil 空结果序列化为 [] 而不是 null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
