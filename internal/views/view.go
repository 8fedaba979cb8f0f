// Package views 管理看板各页面的视图状态。
//
// 每个 View 持有当前筛选条件与最近一次快照，通过 refresh 包的周期任务刷新；
// 筛选条件变化时旧任务先被拆除再按新条件重建，Close 之后不会再有快照写入。
package views

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/refresh"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "views")

// ErrUnknownView 未注册的视图名
var ErrUnknownView = errors.New("views: unknown view")

// BuildFunc 按筛选条件生成一份页面数据（不可失败）
type BuildFunc func(sel filter.Selection, now time.Time) any

// Page 一个可注册的页面
type Page struct {
	Name   string
	Period time.Duration // <= 0 使用 refresh.DefaultPeriod
	Build  BuildFunc
}

// Snapshot 视图快照
type Snapshot struct {
	View      string           `json:"view"`
	Seq       uint64           `json:"seq"`
	At        time.Time        `json:"at"`
	Selection filter.Selection `json:"selection"`
	Data      any              `json:"data"`
}

// Registry 视图注册表
type Registry struct {
	mu    sync.RWMutex
	pages map[string]Page
}

func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]Page)}
}

// Register 注册页面，同名覆盖
func (r *Registry) Register(p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[p.Name] = p
}

func (r *Registry) page(name string) (Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pages[name]
	if !ok || p.Build == nil {
		return Page{}, errors.Wrapf(ErrUnknownView, "%q", name)
	}
	return p, nil
}

// Has 是否已注册
func (r *Registry) Has(name string) bool {
	_, err := r.page(name)
	return err == nil
}

// Names 已注册视图名（排序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build 一次性生成快照（REST 接口使用，不启动周期任务）
func (r *Registry) Build(name string, sel filter.Selection, now time.Time) (Snapshot, error) {
	p, err := r.page(name)
	if err != nil {
		return Snapshot{}, err
	}
	sel = sel.Normalize()
	return Snapshot{View: name, Seq: 1, At: now, Selection: sel, Data: p.Build(sel, now)}, nil
}

// Open 打开视图：立即生成第一份快照并开始周期刷新。
// ctx 取消等价于 Close 中的任务拆除，但调用方仍应调用 Close 释放通道。
func (r *Registry) Open(ctx context.Context, name string, sel filter.Selection) (*View, error) {
	p, err := r.page(name)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	v := &View{
		page:    p,
		ctx:     ctx,
		updates: make(chan Snapshot, 1),
	}
	v.Select(sel)
	return v, nil
}

// View 单个视图的状态持有者
type View struct {
	page Page
	ctx  context.Context

	// lifeMu 串行化 Select/Close 对周期任务的替换
	lifeMu sync.Mutex
	handle *refresh.Handle

	mu      sync.Mutex
	sel     filter.Selection
	snap    Snapshot
	seq     uint64
	closed  bool
	updates chan Snapshot
}

// Name 视图名
func (v *View) Name() string { return v.page.Name }

// Apply 整体替换当前快照，并以“最新优先”方式通知订阅者。Close 之后调用无效。
func (v *View) Apply(s Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.seq++
	s.View = v.page.Name
	s.Seq = v.seq
	v.snap = s

	// 订阅者跟不上时丢弃旧快照
	select {
	case <-v.updates:
	default:
	}
	v.updates <- s
}

// Snapshot 当前快照
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Selection 当前筛选条件
func (v *View) Selection() filter.Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel
}

// Updates 快照通知通道，Close 后关闭
func (v *View) Updates() <-chan Snapshot {
	return v.updates
}

// Select 替换筛选条件并重建周期任务。
// 旧任务在新任务启动前完全停止，任何一次 tick 都不会使用过期的筛选条件。
func (v *View) Select(sel filter.Selection) {
	sel = sel.Normalize()

	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()

	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return
	}

	v.handle.Stop()

	v.mu.Lock()
	v.sel = sel
	v.mu.Unlock()

	build := v.page.Build
	v.handle = refresh.Start(v.ctx, refresh.Task{
		Name:   v.page.Name,
		Period: v.page.Period,
		Tick: func(now time.Time) {
			v.Apply(Snapshot{At: now, Selection: sel, Data: build(sel, now)})
		},
	})
	log.WithField("view", v.page.Name).Debugf("selection applied: %+v", sel)
}

// Close 拆除周期任务并关闭通知通道（幂等）
func (v *View) Close() {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()

	v.handle.Stop()
	v.handle = nil

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	close(v.updates)
}
