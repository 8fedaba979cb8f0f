package fixture

import (
	"sort"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

const DefaultDepth = 20

var feeAssetPrices = []struct {
	asset string
	price decimal.Decimal
}{
	{"BNB", decimal.NewFromInt(300)},
	{"USDT", decimal.NewFromInt(1)},
	{"BTC", decimal.NewFromInt(42000)},
}

// Fees 手续费明细：n 笔（默认 5），数量 0~0.1，按时间倒序
func (g *Generator) Fees(n int) []domain.FeeRecord {
	if n <= 0 {
		n = 5
	}
	now := g.Now()
	out := make([]domain.FeeRecord, 0, n)
	for i := 0; i < n; i++ {
		fa := feeAssetPrices[g.intn(len(feeAssetPrices))]
		amount := g.between(0, 0.1, 6)
		out = append(out, domain.FeeRecord{
			Asset:      fa.asset,
			Amount:     amount,
			AssetPrice: fa.price,
			USDTAmount: amount.Mul(fa.price).Round(2),
			Time:       now.Add(-time.Duration(i) * time.Second),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out
}

// OrderBook 以 basePrice 为中心、步长 10 的盘口
func (g *Generator) OrderBook(symbol string, depth int) domain.OrderBook {
	if depth <= 0 {
		depth = DefaultDepth
	}
	base := decimal.NewFromInt(42000)
	if p, ok := basePrices[domain.NormalizeSymbol(symbol)]; ok {
		base = decimal.NewFromFloat(p)
	}
	step := decimal.NewFromInt(10)
	now := g.Now()
	book := domain.OrderBook{
		Symbol: domain.NormalizeSymbol(symbol),
		Asks:   make([]domain.OrderBookLevel, 0, depth),
		Bids:   make([]domain.OrderBookLevel, 0, depth),
	}
	var askTotal, bidTotal decimal.Decimal
	for i := 0; i < depth; i++ {
		offset := step.Mul(decimal.NewFromInt(int64(i + 1)))
		ask := g.level(base.Add(offset), now)
		askTotal = askTotal.Add(ask.Amount)
		ask.Total = askTotal
		book.Asks = append(book.Asks, ask)

		bid := g.level(base.Sub(offset), now)
		bidTotal = bidTotal.Add(bid.Amount)
		bid.Total = bidTotal
		book.Bids = append(book.Bids, bid)
	}
	return book
}

func (g *Generator) level(price decimal.Decimal, ts time.Time) domain.OrderBookLevel {
	orders := func() int {
		if g.float64() > 0.7 {
			return g.intn(5)
		}
		return 0
	}
	return domain.OrderBookLevel{
		Price:       price.Round(2),
		Amount:      g.between(0, 2, 4),
		MakerOrders: orders(),
		TakerOrders: orders(),
		Timestamp:   ts,
	}
}
