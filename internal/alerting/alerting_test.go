package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	rules  []domain.AlertRule
	events []domain.AlertEvent
}

func (m *memStore) ListAlertRules(context.Context) ([]domain.AlertRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AlertRule(nil), m.rules...), nil
}

func (m *memStore) InsertAlertEvent(_ context.Context, e domain.AlertEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) MarkRuleTriggered(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == id {
			t := at
			m.rules[i].LastTriggeredAt = &t
		}
	}
	return nil
}

type spyNotifier struct {
	channel string
	err     error
	got     []domain.AlertEvent
}

func (s *spyNotifier) Channel() string { return s.channel }

func (s *spyNotifier) Notify(_ context.Context, e domain.AlertEvent) error {
	s.got = append(s.got, e)
	return s.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLevel(t *testing.T) {
	th := dec("1000")
	_, ok := Level(dec("999.99"), th)
	assert.False(t, ok)

	lvl, ok := Level(dec("-1000"), th)
	require.True(t, ok)
	assert.Equal(t, domain.AlertWarning, lvl)

	lvl, _ = Level(dec("1499.99"), th)
	assert.Equal(t, domain.AlertWarning, lvl)

	lvl, _ = Level(dec("-1500"), th)
	assert.Equal(t, domain.AlertCritical, lvl)

	_, ok = Level(dec("5"), decimal.Zero)
	assert.False(t, ok)
}

func TestEvaluateFiresAndCoolsDown(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	store := &memStore{rules: []domain.AlertRule{
		{ID: 1, Pair: "BTC/USDT", Threshold: dec("1000"), IntervalSeconds: 3, NotifyChannel: ChannelLark, Enabled: true},
		{ID: 2, Pair: "ETH/USDT", Threshold: dec("500"), IntervalSeconds: 3, NotifyChannel: ChannelLark, Enabled: false},
	}}
	lark := &spyNotifier{channel: ChannelLark}
	e := NewEngine(store, Options{Cooldown: time.Minute, Notifiers: []Notifier{lark}, Now: func() time.Time { return now }})

	snapshot := []domain.PairPnL{
		{Pair: "BTC/USDT", Group: domain.GroupMaker, PnL: dec("200")},
		{Pair: "BTC/USDT", Group: domain.GroupTaker, PnL: dec("-1600")},
		{Pair: "ETH/USDT", Group: domain.GroupMaker, PnL: dec("-900")},
	}
	fired, err := e.Evaluate(context.Background(), snapshot)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	ev := fired[0]
	assert.Equal(t, int64(1), ev.RuleID)
	assert.Equal(t, domain.AlertCritical, ev.Level)
	assert.True(t, ev.TriggerValue.Equal(dec("-1600")))
	assert.Equal(t, domain.AlertPending, ev.Status)
	assert.Len(t, ev.ID, 36)
	assert.Len(t, lark.got, 1)
	require.NotNil(t, store.rules[0].LastTriggeredAt)

	// 冷却期内不重复触发
	now = now.Add(30 * time.Second)
	fired, err = e.Evaluate(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Empty(t, fired)

	now = now.Add(31 * time.Second)
	fired, err = e.Evaluate(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Len(t, fired, 1)
	assert.Len(t, store.events, 2)
}

func TestNotifyFailureKeepsEvent(t *testing.T) {
	store := &memStore{rules: []domain.AlertRule{
		{ID: 7, Pair: "BTC/USDT", Threshold: dec("100"), NotifyChannel: ChannelLark, Enabled: true},
	}}
	lark := &spyNotifier{channel: ChannelLark, err: errors.New("down")}
	e := NewEngine(store, Options{Notifiers: []Notifier{lark}})
	fired, err := e.Evaluate(context.Background(), []domain.PairPnL{{Pair: "BTCUSDT", PnL: dec("150")}})
	require.NoError(t, err)
	assert.Len(t, fired, 1)
	assert.Len(t, store.events, 1)
}

func TestLarkNotifier(t *testing.T) {
	var got larkMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"code":0,"msg":"success"}`))
	}))
	defer srv.Close()

	n := NewLarkNotifier(LarkOptions{Webhook: srv.URL})
	ev := domain.AlertEvent{Pair: "BTC/USDT", Level: domain.AlertCritical, TriggerValue: dec("-1500"), Threshold: dec("1000"), Time: time.Now()}
	require.NoError(t, n.Notify(context.Background(), ev))
	assert.Equal(t, "text", got.MsgType)
	assert.Contains(t, got.Content.Text, "[严重] BTC/USDT 盈亏-1500 USDT")
}

func TestLarkNotifierErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":19021,"msg":"sign match fail"}`))
	}))
	defer srv.Close()

	n := NewLarkNotifier(LarkOptions{Webhook: srv.URL})
	err := n.Notify(context.Background(), domain.AlertEvent{Pair: "BTC/USDT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "19021")

	assert.Error(t, NewLarkNotifier(LarkOptions{}).Notify(context.Background(), domain.AlertEvent{}))
}
