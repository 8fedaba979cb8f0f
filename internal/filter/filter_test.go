package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC)

func testTrades() []domain.TradeRecord {
	g := fixture.New(fixture.Options{Seed: 9, Now: func() time.Time { return testNow }, Location: time.UTC})
	return append(g.Trades(), g.RandomTrades(200, 48*time.Hour)...)
}

func selections() []Selection {
	return []Selection{
		{},
		{Symbols: []string{All}},
		{Symbols: []string{"BTCUSDT"}},
		{Symbols: []string{"eth/usdt"}, UIDs: []string{fixture.TakerUID}},
		{UIDs: []string{fixture.MakerUID}, AccountGroup: domain.GroupMaker},
		{AccountGroup: domain.GroupTaker, Exchanges: []string{"Other"}},
		{From: testNow.Add(-24 * time.Hour), To: testNow},
		{From: testNow.Add(-6 * time.Hour), Symbols: []string{"BTCUSDT", "DOTUSDT"}, UIDs: []string{"ALL"}},
		{To: testNow.Add(-time.Hour), UIDs: []string{"nobody"}},
	}
}

func TestApplySubsetAndIdempotent(t *testing.T) {
	trades := testTrades()
	ids := map[int64]bool{}
	for _, tr := range trades {
		ids[tr.TradeID] = true
	}
	for i, sel := range selections() {
		once := Apply(trades, sel)
		for _, tr := range once {
			require.Truef(t, ids[tr.TradeID], "selection %d produced a record not in the input", i)
			require.True(t, sel.Normalize().Matches(tr.Attrs()))
		}
		twice := Apply(once, sel)
		require.Equalf(t, once, twice, "selection %d not idempotent", i)
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	trades := testTrades()
	out := Apply(trades, Selection{Symbols: []string{"BTCUSDT"}})
	require.NotEmpty(t, out)
	pos := map[int64]int{}
	for i, tr := range trades {
		pos[tr.TradeID] = i
	}
	for i := 1; i < len(out); i++ {
		assert.Less(t, pos[out[i-1].TradeID], pos[out[i].TradeID])
	}
}

func TestAllMatchesEverything(t *testing.T) {
	trades := testTrades()
	assert.Len(t, Apply(trades, Selection{}), len(trades))
	assert.Len(t, Apply(trades, Selection{Symbols: []string{"ALL"}, UIDs: []string{"ALL"}}), len(trades))
}

func TestDateRangeIsExclusive(t *testing.T) {
	at := testNow.Add(-time.Hour)
	rec := domain.TradeRecord{TradeID: 1, Symbol: "BTCUSDT", Time: at}
	in := []domain.TradeRecord{rec}

	assert.Empty(t, Apply(in, Selection{From: at}))
	assert.Empty(t, Apply(in, Selection{To: at}))
	assert.Len(t, Apply(in, Selection{From: at.Add(-time.Nanosecond), To: at.Add(time.Nanosecond)}), 1)
}

func TestMissingDimensionIsNotApplicable(t *testing.T) {
	g := fixture.New(fixture.Options{Seed: 1, Now: func() time.Time { return testNow }})
	orders := g.Orders()
	// 委托不携带 UID：UID 条件不影响委托
	assert.Len(t, Apply(orders, Selection{UIDs: []string{fixture.MakerUID}}), len(orders))
	assert.Len(t, Apply(orders, Selection{Symbols: []string{"ETHUSDT"}}), 2)
}

func TestExchangeIgnoresCase(t *testing.T) {
	trades := testTrades()
	want := Apply(trades, Selection{Exchanges: []string{"Binance"}})
	require.NotEmpty(t, want)

	q := url.Values{}
	q.Set("exchange", "binance")
	sel, err := FromQuery(q, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, want, Apply(trades, sel))

	sel, err = FromQuery(url.Values{"exchange": {"all"}}, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, sel.Exchanges)
}

func TestEmptyResult(t *testing.T) {
	out := Apply(testTrades(), Selection{Symbols: []string{"XRPUSDT"}})
	assert.Empty(t, out)
}

func TestFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("from", "2024-03-14")
	q.Set("to", "2024-03-15")
	q.Add("symbol", "BTC/USDT,ethusdt")
	q.Add("uid", fixture.MakerUID)
	q.Set("group", "Maker")

	sel, err := FromQuery(q, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), sel.From)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), sel.To)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, sel.Symbols)
	assert.Equal(t, []string{fixture.MakerUID}, sel.UIDs)
	assert.Equal(t, domain.GroupMaker, sel.AccountGroup)

	// 展示用的结束时间保持调用方给出的日期
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), RequestedTo(q, time.UTC))
	assert.True(t, RequestedTo(url.Values{}, time.UTC).IsZero())
	assert.True(t, RequestedTo(url.Values{"to": {"soon"}}, time.UTC).IsZero())

	q = url.Values{}
	q.Set("symbol", "ALL")
	sel, err = FromQuery(q, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, sel.Symbols)

	for _, bad := range []url.Values{
		{"from": {"yesterday"}},
		{"group": {"vip"}},
		{"from": {"2024-03-15"}, "to": {"2024-03-01"}},
	} {
		_, err := FromQuery(bad, time.UTC)
		assert.Error(t, err)
	}
}
