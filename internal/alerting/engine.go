// Package alerting 按告警规则评估各币对盈亏并发送通知。
package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// criticalRatio |盈亏| 达到阈值的 1.5 倍为严重告警
var criticalRatio = decimal.RequireFromString("1.5")

// Store 规则与告警记录存储
type Store interface {
	ListAlertRules(ctx context.Context) ([]domain.AlertRule, error)
	InsertAlertEvent(ctx context.Context, e domain.AlertEvent) error
	MarkRuleTriggered(ctx context.Context, ruleID int64, at time.Time) error
}

// Options 引擎配置
type Options struct {
	Cooldown  time.Duration // 同一规则两次触发的最小间隔，与规则自身的监控间隔取较大值
	Notifiers []Notifier
	Now       func() time.Time
}

// Engine 告警评估引擎
type Engine struct {
	store     Store
	cooldown  time.Duration
	notifiers map[string]Notifier
	fallback  Notifier
	now       func() time.Time
	log       *logrus.Entry

	mu sync.Mutex // 串行化评估，避免同一规则被并发触发两次
}

func NewEngine(store Store, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		store:     store,
		cooldown:  opts.Cooldown,
		notifiers: make(map[string]Notifier),
		fallback:  NewLogNotifier(),
		now:       now,
		log:       logrus.WithField("module", "alerting"),
	}
	for _, n := range opts.Notifiers {
		e.notifiers[n.Channel()] = n
	}
	return e
}

// Level 根据盈亏与阈值判定告警级别；未触发返回 false
func Level(pnl, threshold decimal.Decimal) (domain.AlertLevel, bool) {
	abs := pnl.Abs()
	if threshold.Sign() <= 0 || abs.LessThan(threshold) {
		return "", false
	}
	if abs.GreaterThanOrEqual(threshold.Mul(criticalRatio)) {
		return domain.AlertCritical, true
	}
	return domain.AlertWarning, true
}

// worst 规则所监控币对中 |盈亏| 最大的一条
func worst(rule domain.AlertRule, snapshot []domain.PairPnL) (domain.PairPnL, bool) {
	want := domain.NormalizeSymbol(rule.Pair)
	var best domain.PairPnL
	found := false
	for _, p := range snapshot {
		if domain.NormalizeSymbol(p.Pair) != want {
			continue
		}
		if !found || p.PnL.Abs().GreaterThan(best.PnL.Abs()) {
			best, found = p, true
		}
	}
	return best, found
}

func (e *Engine) coolingDown(rule domain.AlertRule, now time.Time) bool {
	if rule.LastTriggeredAt == nil {
		return false
	}
	wait := rule.Interval()
	if e.cooldown > wait {
		wait = e.cooldown
	}
	return now.Sub(*rule.LastTriggeredAt) < wait
}

// Evaluate 用一份盈亏快照评估全部启用的规则，返回本次产生的告警记录。
// 通知失败只记录日志，不影响告警记录的写入。
func (e *Engine) Evaluate(ctx context.Context, snapshot []domain.PairPnL) ([]domain.AlertEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rules, err := e.store.ListAlertRules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list alert rules")
	}
	now := e.now()
	var fired []domain.AlertEvent
	for _, rule := range rules {
		if !rule.Enabled || e.coolingDown(rule, now) {
			continue
		}
		p, ok := worst(rule, snapshot)
		if !ok {
			continue
		}
		level, ok := Level(p.PnL, rule.Threshold)
		if !ok {
			continue
		}
		ev := domain.AlertEvent{
			ID:           uuid.NewString(),
			RuleID:       rule.ID,
			Time:         now,
			Pair:         rule.Pair,
			Level:        level,
			TriggerValue: p.PnL,
			Threshold:    rule.Threshold,
			Status:       domain.AlertPending,
		}
		if err := e.store.InsertAlertEvent(ctx, ev); err != nil {
			return fired, errors.Wrapf(err, "insert alert event for rule %d", rule.ID)
		}
		if err := e.store.MarkRuleTriggered(ctx, rule.ID, now); err != nil {
			return fired, errors.Wrapf(err, "mark rule %d triggered", rule.ID)
		}
		e.notify(ctx, rule.NotifyChannel, ev)
		fired = append(fired, ev)
	}
	return fired, nil
}

func (e *Engine) notify(ctx context.Context, channel string, ev domain.AlertEvent) {
	n, ok := e.notifiers[channel]
	if !ok {
		n = e.fallback
	}
	if err := n.Notify(ctx, ev); err != nil {
		metrics.AlertNotifications.WithLabelValues(n.Channel(), "error").Inc()
		e.log.WithField("channel", n.Channel()).Warnf("notify alert %s: %v", ev.ID, err)
		if n != e.fallback {
			_ = e.fallback.Notify(ctx, ev)
		}
		return
	}
	metrics.AlertNotifications.WithLabelValues(n.Channel(), "ok").Inc()
}
