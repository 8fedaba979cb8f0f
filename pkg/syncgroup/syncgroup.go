package syncgroup

import (
	"context"
	"fmt"
	"sync"
)

// SyncGroup 管理一组相互依赖的 goroutine：任一成员退出即取消共享 context，
// Wait 等待全部退出并返回第一个错误。典型用法是 websocket 的读/写两个泵。
type SyncGroup struct {
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu      sync.Mutex
	err     error
	errName string
	running int
}

// New 创建 SyncGroup，返回的 context 在任一成员退出或父 context 取消时结束
func New(parent context.Context) (*SyncGroup, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &SyncGroup{cancel: cancel}, ctx
}

// Go 启动一个命名成员。成员 panic 会被转为错误，不会打断其他成员的退出流程。
func (g *SyncGroup) Go(name string, fn func() error) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.running++
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panic: %v", name, r)
			}
			g.finish(name, err)
			g.wg.Done()
		}()
		err = fn()
	}()
}

func (g *SyncGroup) finish(name string, err error) {
	g.mu.Lock()
	g.running--
	if err != nil && g.err == nil {
		g.err = err
		g.errName = name
	}
	g.mu.Unlock()
	// 任一成员退出都结束整组
	g.cancel()
}

// Running 当前仍在运行的成员数
func (g *SyncGroup) Running() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Wait 等待所有成员退出，返回第一个非 nil 错误
func (g *SyncGroup) Wait() error {
	g.wg.Wait()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", g.errName, g.err)
}
