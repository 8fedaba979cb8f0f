package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/opsboard/internal/aggregate"
	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/views"
)

func sampleSnapshot(seq uint64) views.Snapshot {
	return views.Snapshot{
		View: views.Dashboard,
		Seq:  seq,
		At:   time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		Data: views.DashboardData{
			Summary: domain.GroupSummary{
				MakerBalance: decimal.NewFromInt(1000),
				MakerChange:  decimal.NewFromFloat(1.5),
				TakerBalance: decimal.NewFromInt(800),
				TakerChange:  decimal.NewFromFloat(-2.25),
				TotalPnL:     decimal.NewFromInt(-42),
			},
			PairPnL: []domain.Series{{
				Name:   "A组",
				Points: []domain.Point{{X: "BTC/USDT", Y: decimal.NewFromFloat(12.5)}},
			}},
			Stats: []aggregate.TradeStats{{
				UID:      "uid-maker-1",
				Trades:   4,
				Wins:     3,
				TotalPnL: decimal.NewFromFloat(33.333),
				WinRate:  decimal.NewFromInt(75),
			}},
			RecentAlerts: []domain.AlertEvent{{
				ID:           "e1",
				Time:         time.Date(2024, 3, 15, 11, 30, 0, 0, time.UTC),
				Pair:         "ETH/USDT",
				Level:        domain.AlertCritical,
				TriggerValue: decimal.NewFromInt(-300),
				Threshold:    decimal.NewFromInt(200),
				Status:       domain.AlertPending,
			}},
		},
	}
}

func TestViewBeforeFirstSnapshot(t *testing.T) {
	m := newModel("看板", make(chan views.Snapshot))
	assert.Contains(t, m.View(), "正在加载")
}

func TestUpdateAppliesSnapshot(t *testing.T) {
	ch := make(chan views.Snapshot, 1)
	m := newModel("看板", ch)

	next, cmd := m.Update(updateMsg{snapshot: sampleSnapshot(3)})
	require.NotNil(t, cmd, "应继续等待下一次更新")
	got := next.(model)
	require.NotNil(t, got.snapshot)
	assert.Equal(t, uint64(3), got.snapshot.Seq)

	out := got.View()
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "uid-maker-1")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "33.33")
	assert.Contains(t, out, "BTC/USDT")
	assert.Contains(t, out, "ETH/USDT")
	assert.Contains(t, out, "严重")
}

func TestWaitForUpdateKeepsLatest(t *testing.T) {
	ch := make(chan views.Snapshot, 3)
	ch <- sampleSnapshot(1)
	ch <- sampleSnapshot(2)
	ch <- sampleSnapshot(5)
	m := newModel("看板", ch)

	msg := m.waitForUpdate()()
	upd, ok := msg.(updateMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(5), upd.snapshot.Seq)
}

func TestClosedChannelQuits(t *testing.T) {
	ch := make(chan views.Snapshot)
	close(ch)
	m := newModel("看板", ch)

	msg := m.waitForUpdate()()
	require.IsType(t, closedMsg{}, msg)

	next, cmd := m.Update(msg)
	assert.True(t, next.(model).closed)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeysAndWindowSize(t *testing.T) {
	m := newModel("看板", make(chan views.Snapshot))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, next.(model).width)
	assert.Equal(t, 40, next.(model).height)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}

func TestEmptyDashboardRendersPlaceholders(t *testing.T) {
	m := newModel("看板", make(chan views.Snapshot))
	next, _ := m.Update(updateMsg{snapshot: views.Snapshot{View: views.Dashboard, Data: views.DashboardData{Empty: true}}})
	out := next.(model).View()
	assert.Contains(t, out, "暂无数据")
	assert.Contains(t, out, "暂无告警")
}
