package fixture

import (
	"testing"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator(seed int64) *Generator {
	now := time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC)
	return New(Options{Seed: seed, Now: func() time.Time { return now }, Location: time.UTC})
}

func TestTradesStatic(t *testing.T) {
	g := fixedGenerator(1)
	trades := g.Trades()
	require.Len(t, trades, 7)

	assert.Equal(t, int64(698759), trades[0].TradeID)
	assert.Equal(t, time.UnixMilli(1569514978020).UTC(), trades[0].Time)
	assert.True(t, trades[6].Time.Equal(g.Now()))
	for _, tr := range trades {
		assert.Equal(t, domain.OrderStatusFilled, tr.Status)
		assert.NotEmpty(t, tr.UID)
	}
	// 每次调用都是新副本
	trades[0].Symbol = "MUTATED"
	assert.Equal(t, "BTCUSDT", g.Trades()[0].Symbol)
}

func TestRandomTradesDeterministic(t *testing.T) {
	a := fixedGenerator(42).RandomTrades(50, time.Hour)
	b := fixedGenerator(42).RandomTrades(50, time.Hour)
	require.Len(t, a, 50)
	for i := range a {
		assert.True(t, a[i].RealizedPnL.Equal(b[i].RealizedPnL))
		assert.Equal(t, a[i].Symbol, b[i].Symbol)
		if i > 0 {
			assert.False(t, a[i].Time.Before(a[i-1].Time))
		}
	}
}

func TestOrdersCancelable(t *testing.T) {
	orders := fixedGenerator(1).Orders()
	require.Len(t, orders, 4)
	got := map[domain.OrderStatus]bool{}
	for _, o := range orders {
		got[o.Status] = o.Cancelable()
	}
	assert.True(t, got[domain.OrderStatusNew])
	assert.True(t, got[domain.OrderStatusPartiallyFilled])
	assert.False(t, got[domain.OrderStatusFilled])
	assert.False(t, got[domain.OrderStatusCanceled])
}

func TestFees(t *testing.T) {
	fees := fixedGenerator(7).Fees(0)
	require.Len(t, fees, 5)
	for i, f := range fees {
		assert.True(t, f.USDTAmount.Equal(f.Amount.Mul(f.AssetPrice).Round(2)))
		assert.True(t, f.Amount.LessThanOrEqual(decimal.RequireFromString("0.1")))
		if i > 0 {
			assert.False(t, f.Time.After(fees[i-1].Time))
		}
	}
}

func TestOrderBookLadder(t *testing.T) {
	book := fixedGenerator(3).OrderBook("BTC/USDT", 0)
	require.Len(t, book.Asks, DefaultDepth)
	require.Len(t, book.Bids, DefaultDepth)
	assert.Equal(t, "BTCUSDT", book.Symbol)
	assert.Equal(t, "42010", book.Asks[0].Price.String())
	assert.Equal(t, "41990", book.Bids[0].Price.String())
	assert.Equal(t, "42200", book.Asks[DefaultDepth-1].Price.String())
	for i := 1; i < len(book.Asks); i++ {
		assert.False(t, book.Asks[i].Total.LessThan(book.Asks[i-1].Total))
	}
}

func TestBalancesValuation(t *testing.T) {
	for _, b := range fixedGenerator(1).Balances() {
		assert.True(t, b.Total.Equal(b.Free.Add(b.Locked)))
		assert.True(t, b.Valuation.Equal(b.Total.Mul(AssetPrice(b.Asset)).Round(2)))
	}
}

func TestTrendsLength(t *testing.T) {
	g := fixedGenerator(1)
	for _, s := range g.PnLTrend() {
		require.Len(t, s.Points, 20)
		assert.Equal(t, 3*time.Second, s.Points[1].Time.Sub(s.Points[0].Time))
	}
	for _, s := range g.BalanceTrend() {
		require.Len(t, s.Points, 7)
	}
	assert.Len(t, g.AlertTrend().Points, 24)
	assert.Len(t, g.Transfers(), 7*2*2)
}

func TestAlertSummary(t *testing.T) {
	events := fixedGenerator(1).AlertEvents()
	assert.Equal(t, "[严重] BTC/USDT 盈亏-1500 USDT", AlertSummary(events[0]))
}
