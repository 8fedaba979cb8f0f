package shutdown

import (
	"context"
	"sync"
	"time"

	"github.com/betbot/opsboard/pkg/logger"
)

// Handler 关闭处理函数；ctx 携带整体关闭超时
type Handler func(ctx context.Context) error

type entry struct {
	name string
	fn   Handler
}

// Manager 优雅关闭管理器
type Manager struct {
	mu        sync.Mutex
	callbacks []entry
	done      bool
}

// NewManager 创建新的关闭管理器
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调
func (m *Manager) OnShutdown(name string, handler Handler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, entry{name: name, fn: handler})
}

// Shutdown 并发执行所有关闭回调（阻塞调用），重复调用无效。
// ctx 应该是一个带超时的 context，避免无限等待；返回 false 表示超时。
func (m *Manager) Shutdown(ctx context.Context) bool {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return true
	}
	m.done = true
	callbacks := m.callbacks
	m.mu.Unlock()

	if len(callbacks) == 0 {
		logger.Info("没有注册的关闭回调")
		return true
	}

	logger.Infof("开始优雅关闭，共 %d 个回调", len(callbacks))

	var wg sync.WaitGroup
	wg.Add(len(callbacks))
	for _, cb := range callbacks {
		go func(e entry) {
			defer wg.Done()
			start := time.Now()
			if err := e.fn(ctx); err != nil {
				logger.Warnf("关闭 %s 失败: %v", e.name, err)
				return
			}
			logger.Infof("已关闭 %s (%s)", e.name, time.Since(start).Round(time.Millisecond))
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("所有关闭回调已完成")
		return true
	case <-ctx.Done():
		logger.Warnf("关闭超时: %v", ctx.Err())
		return false
	}
}
