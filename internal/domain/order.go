package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side 买卖方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// PositionSide 持仓方向
type PositionSide string

const (
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
	PositionBoth  PositionSide = "BOTH"
)

// OrderType 订单类型（合约订单类型全集）
type OrderType string

const (
	OrderTypeLimit              OrderType = "LIMIT"
	OrderTypeMarket             OrderType = "MARKET"
	OrderTypeStop               OrderType = "STOP"
	OrderTypeStopMarket         OrderType = "STOP_MARKET"
	OrderTypeTakeProfit         OrderType = "TAKE_PROFIT"
	OrderTypeTakeProfitMarket   OrderType = "TAKE_PROFIT_MARKET"
	OrderTypeTrailingStopMarket OrderType = "TRAILING_STOP_MARKET"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

// IsFinal 最终状态（已成交/已撤销/已过期）
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusFilled || s == OrderStatusCanceled || s == OrderStatusExpired
}

// OrderRecord 委托记录
type OrderRecord struct {
	OrderID      int64           `json:"order_id"`
	Symbol       string          `json:"symbol"`
	Exchange     string          `json:"exchange"`
	Side         Side            `json:"side"`
	PositionSide PositionSide    `json:"position_side"`
	Type         OrderType       `json:"type"`
	Price        decimal.Decimal `json:"price"`
	OrigQty      decimal.Decimal `json:"orig_qty"`     // 委托数量
	ExecutedQty  decimal.Decimal `json:"executed_qty"` // 已成交数量
	Status       OrderStatus     `json:"status"`
	Time         time.Time       `json:"time"`
	ReduceOnly   bool            `json:"reduce_only"`
	WorkingType  string          `json:"working_type"` // CONTRACT_PRICE / MARK_PRICE
	PriceProtect bool            `json:"price_protect"`
}

// Cancelable 是否允许撤单（FILLED/CANCELED 不可撤）
func (o OrderRecord) Cancelable() bool {
	return o.Status != OrderStatusFilled && o.Status != OrderStatusCanceled
}

// FillRatio 成交比例（0~1）
func (o OrderRecord) FillRatio() decimal.Decimal {
	if o.OrigQty.IsZero() {
		return decimal.Zero
	}
	return o.ExecutedQty.Div(o.OrigQty)
}

func (o OrderRecord) Attrs() Attrs {
	return Attrs{Time: o.Time, Symbol: o.Symbol, Exchange: o.Exchange}
}
