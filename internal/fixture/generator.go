// Package fixture 生成看板使用的模拟数据。
//
// 每次调用都构造一份全新的记录集，不保留任何状态；随机源和时钟可注入，
// 同一 seed + 同一时钟得到同一结果。
package fixture

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// 默认 UID（Maker 账户组 / Taker 账户组）
const (
	MakerUID = "123456"
	TakerUID = "123457"
)

// DefaultSymbols 看板默认关注的交易对
var DefaultSymbols = []string{"BTCUSDT", "ETHUSDT", "DOTUSDT", "LINKUSDT"}

// Options 生成器配置
type Options struct {
	Seed     int64            // 0 表示使用当前时间
	Now      func() time.Time // 时钟（测试注入）
	Location *time.Location   // 时间分桶所在时区
	Symbols  []string
}

// Generator 模拟数据生成器（并发安全）
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand

	now     func() time.Time
	loc     *time.Location
	symbols []string
}

// New 创建生成器
func New(opts Options) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	return &Generator{
		rnd:     rand.New(rand.NewSource(seed)),
		now:     now,
		loc:     loc,
		symbols: append([]string(nil), symbols...),
	}
}

// Now 当前时间（生成器时钟）
func (g *Generator) Now() time.Time {
	return g.now().In(g.loc)
}

// Location 分桶时区
func (g *Generator) Location() *time.Location {
	return g.loc
}

// Symbols 关注的交易对
func (g *Generator) Symbols() []string {
	return append([]string(nil), g.symbols...)
}

func (g *Generator) float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

// between 返回 [min, min+span) 区间内、保留 places 位小数的随机数
func (g *Generator) between(min, span float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(g.float64()*span + min).Round(places)
}

// mustDec 解析固定字面量
func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// startOfDay 当天零点（生成器时区）
func (g *Generator) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(g.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, g.loc)
}
