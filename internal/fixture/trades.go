package fixture

import (
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

type staticTrade struct {
	id, orderID      int64
	uid              string
	symbol, exchange string
	side             domain.Side
	posSide          domain.PositionSide
	typ              domain.OrderType
	price, qty, quo  string
	commission       string
	commissionAsset  string
	commissionPrice  string
	commissionAmount string
	pnl              string
	maker, buyer     bool
	ago              time.Duration // 相对当前时间；< 0 表示使用 fixed
	fixed            int64         // 毫秒时间戳
}

var staticTrades = []staticTrade{
	{698759, 25851813, MakerUID, "BTCUSDT", "Binance", domain.SideSell, domain.PositionShort, domain.OrderTypeLimit,
		"7819.01", "0.002", "15.63802", "-0.07819010", "BNB", "250.35", "-19.57", "-0.91539999", false, false, -1, 1569514978020},
	{698760, 25851814, MakerUID, "BTCUSDT", "Binance", domain.SideBuy, domain.PositionLong, domain.OrderTypeMarket,
		"7825.35", "0.005", "39.12675", "-0.03912675", "USDT", "1", "-0.03912675", "0.52345", false, true, 2 * time.Hour, 0},
	{698761, 25851815, TakerUID, "ETHUSDT", "Binance", domain.SideSell, domain.PositionShort, domain.OrderTypeLimit,
		"2345.67", "0.15", "351.85050", "-0.00135", "BNB", "245.78", "-0.33180", "1.25678", true, false, time.Hour, 0},
	{698762, 25851816, TakerUID, "ETHUSDT", "Other", domain.SideBuy, domain.PositionLong, domain.OrderTypeMarket,
		"2348.92", "0.25", "587.23000", "-0.58723", "USDT", "1", "-0.58723", "-0.75234", false, true, 30 * time.Minute, 0},
	{698763, 25851817, MakerUID, "BTCUSDT", "Other", domain.SideBuy, domain.PositionLong, domain.OrderTypeTrailingStopMarket,
		"7832.45", "0.008", "62.65960", "-0.00024", "BNB", "248.92", "-0.05974", "0.89234", false, true, 15 * time.Minute, 0},
	{698764, 25851818, MakerUID, "BTCUSDT", "Binance", domain.SideSell, domain.PositionShort, domain.OrderTypeTakeProfitMarket,
		"7845.23", "0.003", "23.53569", "-0.02353569", "USDT", "1", "-0.02353569", "1.12453", false, false, 5 * time.Minute, 0},
	{698765, 25851819, TakerUID, "ETHUSDT", "Other", domain.SideSell, domain.PositionShort, domain.OrderTypeStopMarket,
		"2352.18", "0.12", "282.26160", "-0.00108", "BNB", "251.45", "-0.27156", "-0.45678", false, false, 0, 0},
}

func groupOf(uid string) domain.AccountGroup {
	if uid == TakerUID {
		return domain.GroupTaker
	}
	return domain.GroupMaker
}

// Trades 固定成交记录（7 笔，时间相对当前时钟）
func (g *Generator) Trades() []domain.TradeRecord {
	now := g.Now()
	out := make([]domain.TradeRecord, 0, len(staticTrades))
	for _, s := range staticTrades {
		ts := now.Add(-s.ago)
		if s.ago < 0 {
			ts = time.UnixMilli(s.fixed).In(g.loc)
		}
		out = append(out, domain.TradeRecord{
			TradeID:              s.id,
			OrderID:              s.orderID,
			UID:                  s.uid,
			Group:                groupOf(s.uid),
			Symbol:               s.symbol,
			Exchange:             s.exchange,
			Side:                 s.side,
			PositionSide:         s.posSide,
			Type:                 s.typ,
			Status:               domain.OrderStatusFilled,
			Price:                mustDec(s.price),
			Qty:                  mustDec(s.qty),
			QuoteQty:             mustDec(s.quo),
			Commission:           mustDec(s.commission),
			CommissionAsset:      s.commissionAsset,
			CommissionUSDTPrice:  mustDec(s.commissionPrice),
			CommissionUSDTAmount: mustDec(s.commissionAmount),
			RealizedPnL:          mustDec(s.pnl),
			Maker:                s.maker,
			Buyer:                s.buyer,
			Time:                 ts,
		})
	}
	return out
}

var basePrices = map[string]float64{
	"BTCUSDT":  42000,
	"ETHUSDT":  2300,
	"DOTUSDT":  7,
	"LINKUSDT": 15,
}

// RandomTrades 随机成交记录：n 笔，时间均匀分布在过去 window 内，按时间升序
func (g *Generator) RandomTrades(n int, window time.Duration) []domain.TradeRecord {
	if n <= 0 {
		return nil
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	now := g.Now()
	step := window / time.Duration(n)
	out := make([]domain.TradeRecord, 0, n)
	for i := 0; i < n; i++ {
		symbol := g.symbols[g.intn(len(g.symbols))]
		base, ok := basePrices[symbol]
		if !ok {
			base = 100
		}
		uid := MakerUID
		if g.intn(2) == 1 {
			uid = TakerUID
		}
		side, posSide := domain.SideBuy, domain.PositionLong
		if g.intn(2) == 1 {
			side, posSide = domain.SideSell, domain.PositionShort
		}
		price := g.between(base*0.99, base*0.02, 2)
		qty := g.between(0.001, 1, 4)
		quote := price.Mul(qty).Round(5)
		commAsset, commPrice := "USDT", decimal.NewFromInt(1)
		if g.intn(2) == 1 {
			commAsset, commPrice = "BNB", g.between(240, 20, 2)
		}
		commUSDT := quote.Mul(decimal.RequireFromString("0.0004")).Neg().Round(8)
		commission := commUSDT
		if commAsset != "USDT" {
			commission = commUSDT.Div(commPrice).Round(8)
		}
		exchange := "Binance"
		if g.intn(3) == 0 {
			exchange = "Other"
		}
		out = append(out, domain.TradeRecord{
			TradeID:              700000 + int64(i),
			OrderID:              26000000 + int64(i),
			UID:                  uid,
			Group:                groupOf(uid),
			Symbol:               symbol,
			Exchange:             exchange,
			Side:                 side,
			PositionSide:         posSide,
			Type:                 domain.OrderTypeLimit,
			Status:               domain.OrderStatusFilled,
			Price:                price,
			Qty:                  qty,
			QuoteQty:             quote,
			Commission:           commission,
			CommissionAsset:      commAsset,
			CommissionUSDTPrice:  commPrice,
			CommissionUSDTAmount: commUSDT,
			RealizedPnL:          g.between(-1500, 3000, 2),
			Maker:                g.intn(2) == 1,
			Buyer:                side == domain.SideBuy,
			Time:                 now.Add(-window + time.Duration(i)*step),
		})
	}
	return out
}
