package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord 成交记录
// 一笔成交对应一个委托（OrderID），手续费统一折算为 USDT 便于汇总。
type TradeRecord struct {
	TradeID              int64           `json:"trade_id"`
	OrderID              int64           `json:"order_id"`
	UID                  string          `json:"uid"`
	Group                AccountGroup    `json:"group"`
	Symbol               string          `json:"symbol"`
	Exchange             string          `json:"exchange"`
	Side                 Side            `json:"side"`
	PositionSide         PositionSide    `json:"position_side"`
	Type                 OrderType       `json:"type"`
	Status               OrderStatus     `json:"status"`
	Price                decimal.Decimal `json:"price"`
	Qty                  decimal.Decimal `json:"qty"`
	QuoteQty             decimal.Decimal `json:"quote_qty"` // 成交额
	Commission           decimal.Decimal `json:"commission"`
	CommissionAsset      string          `json:"commission_asset"`
	CommissionUSDTPrice  decimal.Decimal `json:"commission_usdt_price"`
	CommissionUSDTAmount decimal.Decimal `json:"commission_usdt_amount"`
	RealizedPnL          decimal.Decimal `json:"realized_pnl"`
	Maker                bool            `json:"maker"`
	Buyer                bool            `json:"buyer"`
	Time                 time.Time       `json:"time"`
}

// Role Maker/Taker
func (t TradeRecord) Role() string {
	if t.Maker {
		return "Maker"
	}
	return "Taker"
}

// Profitable 实现盈亏为正
func (t TradeRecord) Profitable() bool {
	return t.RealizedPnL.IsPositive()
}

func (t TradeRecord) Attrs() Attrs {
	return Attrs{Time: t.Time, Symbol: t.Symbol, Exchange: t.Exchange, UID: t.UID, Group: t.Group}
}

// FeeRecord 手续费明细
type FeeRecord struct {
	Asset      string          `json:"fee_asset"`
	Amount     decimal.Decimal `json:"fee_amount"`
	AssetPrice decimal.Decimal `json:"fee_asset_price"`
	USDTAmount decimal.Decimal `json:"fee_usdt_amount"`
	Time       time.Time       `json:"time"`
}

func (f FeeRecord) Attrs() Attrs {
	return Attrs{Time: f.Time, Asset: f.Asset}
}
