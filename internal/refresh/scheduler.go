// Package refresh 提供与视图生命周期绑定的周期刷新任务。
//
// Start 立即产出一次快照，之后按固定周期重新生成并整体替换；
// Stop 返回后 apply 回调不会再被调用。
package refresh

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/betbot/opsboard/internal/metrics"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "refresh")

const (
	DefaultPeriod = 3 * time.Second
	ClockPeriod   = time.Second
)

// Task 一个周期刷新任务
type Task struct {
	Name   string
	Period time.Duration // <= 0 使用 DefaultPeriod

	// Tick 生成并应用一次快照（不可失败）
	Tick func(now time.Time)
}

// Handle 周期任务句柄
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop 取消任务并等待进行中的 tick 结束（幂等）。
// 不要在 Tick 回调内部调用 Stop，否则会死锁。
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
	<-h.done
}

// Done 任务退出后关闭
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start 同步执行第一次 tick，随后在独立 goroutine 中按周期执行。
// ctx 取消与 Stop 等价。
func Start(ctx context.Context, task Task) *Handle {
	if ctx == nil {
		ctx = context.Background()
	}
	period := task.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	metrics.ActiveViews.WithLabelValues(task.Name).Inc()
	runTick(ctx, task, time.Now())

	go func() {
		defer close(h.done)
		defer metrics.ActiveViews.WithLabelValues(task.Name).Dec()

		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				runTick(ctx, task, now)
			}
		}
	}()
	return h
}

func runTick(ctx context.Context, task Task, now time.Time) {
	// ticker 与取消同时就绪时 select 随机选择，这里再确认一次
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.RefreshPanics.WithLabelValues(task.Name).Inc()
			log.WithField("view", task.Name).Errorf("refresh tick panic: %v\n%s", r, debug.Stack())
		}
	}()
	task.Tick(now)
	metrics.RefreshTicks.WithLabelValues(task.Name).Inc()
}

// String 调试输出
func (t Task) String() string {
	return fmt.Sprintf("%s@%s", t.Name, t.Period)
}
