package views

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	g := fixture.New(fixture.Options{Seed: 1, Now: func() time.Time { return now }, Location: time.UTC})
	return NewDefaultRegistry(Deps{Fixtures: g})
}

func TestUnknownView(t *testing.T) {
	r := testRegistry()
	_, err := r.Build("nope", filter.Selection{}, time.Now())
	assert.True(t, errors.Is(err, ErrUnknownView))
	_, err = r.Open(context.Background(), "nope", filter.Selection{})
	assert.True(t, errors.Is(err, ErrUnknownView))
}

func TestEveryPageBuilds(t *testing.T) {
	r := testRegistry()
	names := r.Names()
	assert.Len(t, names, 9)
	for _, name := range names {
		snap, err := r.Build(name, filter.Selection{}, time.Now())
		require.NoError(t, err, name)
		_, err = json.Marshal(snap)
		require.NoError(t, err, name)
	}
}

func TestEmptySelectionRendersEmptyArrays(t *testing.T) {
	r := testRegistry()
	snap, err := r.Build(Trades, filter.Selection{UIDs: []string{"nobody"}}, time.Now())
	require.NoError(t, err)
	data := snap.Data.(TradesData)
	assert.True(t, data.Empty)

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"trades":[]`)
}

func TestTradesSelectionByUID(t *testing.T) {
	r := testRegistry()
	snap, err := r.Build(Trades, filter.Selection{UIDs: []string{fixture.MakerUID}}, time.Now())
	require.NoError(t, err)
	data := snap.Data.(TradesData)
	require.NotEmpty(t, data.Trades)
	for _, tr := range data.Trades {
		assert.Equal(t, fixture.MakerUID, tr.UID)
	}
	require.Len(t, data.Stats, 1)
	assert.Equal(t, len(data.Trades), data.Overall.Trades)
}

func TestOpenAppliesImmediately(t *testing.T) {
	r := testRegistry()
	v, err := r.Open(context.Background(), Clock, filter.Selection{})
	require.NoError(t, err)
	defer v.Close()

	snap := v.Snapshot()
	assert.Equal(t, uint64(1), snap.Seq)
	assert.Equal(t, Clock, snap.View)
	select {
	case s := <-v.Updates():
		assert.Equal(t, uint64(1), s.Seq)
	default:
		t.Fatal("expected first snapshot on Updates")
	}
}

func TestSelectRestartsWithNewSelection(t *testing.T) {
	r := NewRegistry()
	var seen atomic.Value
	r.Register(Page{Name: "spy", Period: 5 * time.Millisecond, Build: func(sel filter.Selection, _ time.Time) any {
		seen.Store(sel.Symbol(""))
		return sel.Symbol("")
	}})
	v, err := r.Open(context.Background(), "spy", filter.Selection{Symbols: []string{"BTCUSDT"}})
	require.NoError(t, err)
	defer v.Close()
	assert.Equal(t, "BTCUSDT", v.Snapshot().Data)

	v.Select(filter.Selection{Symbols: []string{"eth/usdt"}})
	// 新任务的第一次 tick 在 Select 返回前完成
	assert.Equal(t, "ETHUSDT", v.Snapshot().Data)
	assert.Equal(t, []string{"ETHUSDT"}, v.Selection().Symbols)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, "ETHUSDT", seen.Load())
}

func TestCloseStopsApply(t *testing.T) {
	r := NewRegistry()
	var builds atomic.Int64
	r.Register(Page{Name: "spy", Period: 2 * time.Millisecond, Build: func(filter.Selection, time.Time) any {
		return builds.Add(1)
	}})
	v, err := r.Open(context.Background(), "spy", filter.Selection{})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	v.Close()
	v.Close()
	after := builds.Load()
	seq := v.Snapshot().Seq
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, builds.Load())

	v.Apply(Snapshot{Data: "late"})
	v.Select(filter.Selection{})
	assert.Equal(t, seq, v.Snapshot().Seq)

	for range v.Updates() {
	}
}

func TestUpdatesLatestWins(t *testing.T) {
	r := NewRegistry()
	r.Register(Page{Name: "static", Period: time.Hour, Build: func(filter.Selection, time.Time) any { return 0 }})
	v, err := r.Open(context.Background(), "static", filter.Selection{})
	require.NoError(t, err)
	defer v.Close()

	v.Apply(Snapshot{Data: 1})
	v.Apply(Snapshot{Data: 2})
	s := <-v.Updates()
	assert.Equal(t, 2, s.Data)
	assert.Equal(t, uint64(3), s.Seq)
}

type stubAlerts struct{}

func (stubAlerts) ListAlertRules(context.Context) ([]domain.AlertRule, error) {
	return fixture.SeedAlertRules(), nil
}

func (stubAlerts) ListAlertEvents(context.Context, filter.Selection, int) ([]domain.AlertEvent, error) {
	return []domain.AlertEvent{
		{ID: "a", Pair: "BTC/USDT", Level: domain.AlertCritical, Status: domain.AlertPending, Time: time.Now()},
		{ID: "b", Pair: "ETH/USDT", Level: domain.AlertWarning, Status: domain.AlertHandled, Time: time.Now()},
	}, nil
}

func TestAlertsPageUsesSource(t *testing.T) {
	g := fixture.New(fixture.Options{Seed: 3})
	r := NewDefaultRegistry(Deps{Fixtures: g, Alerts: stubAlerts{}})
	snap, err := r.Build(Alerts, filter.Selection{Symbols: []string{"BTCUSDT"}}, time.Now())
	require.NoError(t, err)
	data := snap.Data.(AlertsData)
	require.Len(t, data.Events, 1)
	assert.Equal(t, AlertStats{Total: 1, Pending: 1, Critical: 1}, data.Stats)
	for _, rule := range data.Rules {
		assert.Equal(t, "BTC/USDT", rule.Pair)
	}
}
