package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/betbot/opsboard/internal/aggregate"
	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/fixture"
	"github.com/betbot/opsboard/internal/views"
)

const maxOrderBookDepth = 200

// selection 解析查询参数中的筛选条件，失败时写 400
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (filter.Selection, bool) {
	sel, err := filter.FromQuery(r.URL.Query(), s.cfg.Location)
	if err != nil {
		writeError(w, 400, fmt.Sprintf("bad selection: %v", err))
		return sel, false
	}
	return sel, true
}

// viewSnapshot 生成视图快照；同一视图 + 同一筛选条件在一个刷新周期内复用
func (s *Server) viewSnapshot(name string, sel filter.Selection) views.Snapshot {
	sel = sel.Normalize()
	key := name
	if b, err := json.Marshal(sel); err == nil {
		key += "|" + string(b)
	}
	var ttl time.Duration
	if name == views.Clock {
		ttl = s.cfg.ClockPeriod
		if ttl <= 0 {
			ttl = time.Second
		}
	}
	return s.snapshots.GetOrLoad(key, ttl, func() views.Snapshot {
		snap, err := s.views.Build(name, sel, s.cfg.Now())
		if err != nil {
			// 只会在路由引用了未注册的视图时出现
			log.Errorf("build view %s: %v", name, err)
		}
		return snap
	})
}

func (s *Server) pageData(w http.ResponseWriter, r *http.Request, name string) (any, bool) {
	sel, ok := s.selection(w, r)
	if !ok {
		return nil, false
	}
	return s.viewSnapshot(name, sel).Data, true
}

func (s *Server) handleViewsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, s.views.Names())
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, s.viewSnapshot(views.Clock, filter.Selection{}).Data)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	writeJSON(w, 200, s.viewSnapshot(views.Dashboard, sel))
}

func (s *Server) accountsData(w http.ResponseWriter, r *http.Request) (views.AccountsData, bool) {
	data, ok := s.pageData(w, r, views.Accounts)
	if !ok {
		return views.AccountsData{}, false
	}
	return data.(views.AccountsData), true
}

func (s *Server) handleAccountBalances(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.accountsData(w, r); ok {
		writeJSON(w, 200, listResponse{Items: d.Balances, Empty: len(d.Balances) == 0})
	}
}

func (s *Server) handleAccountTransfers(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.accountsData(w, r); ok {
		writeJSON(w, 200, listResponse{Items: d.Transfers, Empty: len(d.Transfers) == 0})
	}
}

func (s *Server) handleAccountTrend(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.accountsData(w, r); ok {
		writeJSON(w, 200, d.Trend)
	}
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	data, ok := s.pageData(w, r, views.Orders)
	if !ok {
		return
	}
	d := data.(views.OrdersData)
	writeJSON(w, 200, map[string]any{"items": d.Orders, "cancelable": d.Cancelable, "empty": d.Empty})
}

func (s *Server) tradesData(w http.ResponseWriter, r *http.Request) (views.TradesData, bool) {
	data, ok := s.pageData(w, r, views.Trades)
	if !ok {
		return views.TradesData{}, false
	}
	return data.(views.TradesData), true
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.tradesData(w, r); ok {
		writeJSON(w, 200, listResponse{Items: d.Trades, Empty: d.Empty})
	}
}

// tradeStatsRow 统计行附带展示文本（总盈亏 2 位小数，胜率 1 位小数 + %）
type tradeStatsRow struct {
	aggregate.TradeStats
	TotalPnLText string `json:"total_pnl_text"`
	WinRateText  string `json:"win_rate_text"`
}

func statsRow(st aggregate.TradeStats) tradeStatsRow {
	return tradeStatsRow{TradeStats: st, TotalPnLText: st.TotalPnLString(), WinRateText: st.WinRateString()}
}

func (s *Server) handleTradeStats(w http.ResponseWriter, r *http.Request) {
	d, ok := s.tradesData(w, r)
	if !ok {
		return
	}
	rows := make([]tradeStatsRow, 0, len(d.Stats))
	for _, st := range d.Stats {
		rows = append(rows, statsRow(st))
	}
	writeJSON(w, 200, map[string]any{
		"items":      rows,
		"overall":    statsRow(d.Overall),
		"volume":     d.Volume,
		"pnl":        d.PnLBySymbol,
		"daily_pnl":  d.DailyPnL,
		"commission": d.Commission,
		"empty":      d.Empty,
	})
}

func (s *Server) handleTradePnLDistribution(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.tradesData(w, r); ok {
		writeJSON(w, 200, d.Distribution)
	}
}

func (s *Server) reportData(w http.ResponseWriter, r *http.Request) (views.ReportData, bool) {
	data, ok := s.pageData(w, r, views.Report)
	if !ok {
		return views.ReportData{}, false
	}
	return data.(views.ReportData), true
}

func (s *Server) handleReportDaily(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.reportData(w, r); ok {
		writeJSON(w, 200, listResponse{Items: d.Daily, Empty: len(d.Daily) == 0})
	}
}

func (s *Server) handleReportPairPnL(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.reportData(w, r); ok {
		writeJSON(w, 200, d.PairPnL)
	}
}

func (s *Server) handleReportNetValue(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.reportData(w, r); ok {
		writeJSON(w, 200, d.NetValue)
	}
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	if symbol := strings.TrimSpace(pathParam(r, "symbol")); symbol != "" {
		sel.Symbols = []string{symbol}
	}
	writeJSON(w, 200, s.viewSnapshot(views.Fees, sel).Data)
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	symbol := domain.NormalizeSymbol(pathParam(r, "symbol"))
	if symbol == "" {
		writeError(w, 400, "symbol is required")
		return
	}
	depth := fixture.DefaultDepth
	if v := strings.TrimSpace(r.URL.Query().Get("depth")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxOrderBookDepth {
			writeError(w, 400, fmt.Sprintf("depth must be 1..%d", maxOrderBookDepth))
			return
		}
		depth = n
	}
	writeJSON(w, 200, s.gen.OrderBook(symbol, depth))
}
