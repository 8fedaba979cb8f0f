package fixture

import (
	"time"

	"github.com/betbot/opsboard/internal/domain"
)

type staticOrder struct {
	id               int64
	symbol, exchange string
	side             domain.Side
	posSide          domain.PositionSide
	typ              domain.OrderType
	price, orig, exe string
	status           domain.OrderStatus
	ago              time.Duration
	reduceOnly       bool
	priceProtect     bool
}

var staticOrders = []staticOrder{
	{123456, "BTCUSDT", "Binance", domain.SideBuy, domain.PositionLong, domain.OrderTypeLimit,
		"7825.35", "0.005", "0.000", domain.OrderStatusNew, 5 * time.Minute, false, false},
	{123457, "ETHUSDT", "Binance", domain.SideSell, domain.PositionShort, domain.OrderTypeStopMarket,
		"2345.67", "0.15", "0.05", domain.OrderStatusPartiallyFilled, 3 * time.Minute, true, true},
	{123458, "BTCUSDT", "Other", domain.SideSell, domain.PositionShort, domain.OrderTypeTakeProfitMarket,
		"7845.23", "0.003", "0.003", domain.OrderStatusFilled, time.Minute, false, false},
	{123459, "ETHUSDT", "Other", domain.SideBuy, domain.PositionLong, domain.OrderTypeTrailingStopMarket,
		"2352.18", "0.12", "0.00", domain.OrderStatusCanceled, 0, false, true},
}

// Orders 当前委托（4 笔，覆盖 NEW/PARTIALLY_FILLED/FILLED/CANCELED）
func (g *Generator) Orders() []domain.OrderRecord {
	now := g.Now()
	out := make([]domain.OrderRecord, 0, len(staticOrders))
	for _, s := range staticOrders {
		out = append(out, domain.OrderRecord{
			OrderID:      s.id,
			Symbol:       s.symbol,
			Exchange:     s.exchange,
			Side:         s.side,
			PositionSide: s.posSide,
			Type:         s.typ,
			Price:        mustDec(s.price),
			OrigQty:      mustDec(s.orig),
			ExecutedQty:  mustDec(s.exe),
			Status:       s.status,
			Time:         now.Add(-s.ago),
			ReduceOnly:   s.reduceOnly,
			WorkingType:  "CONTRACT_PRICE",
			PriceProtect: s.priceProtect,
		})
	}
	return out
}
