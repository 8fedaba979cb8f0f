package export

import (
	"io"
	"strconv"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/pkg/errors"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	DailyHeaders = []string{
		"assets", "makerBalance", "makerChange", "makerNetIn",
		"takerBalance", "takerChange", "takerNetIn", "diff", "price", "pnl",
	}
	TradeHeaders = []string{
		"symbol", "uid", "tradeId", "orderId", "orderSide", "orderType",
		"price", "quantity", "quoteQty", "fee", "feeCurrency", "time",
	}
	FeeHeaders = []string{"feeAsset", "feeAmount", "feeAssetPrice", "feeUsdtAmount", "time"}
)

// DailySheet 日报表
func DailySheet(rows []domain.DailyReportRow) Sheet {
	s := Sheet{Name: "daily_summary", Headers: DailyHeaders}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{
			r.Asset,
			r.MakerBalance.String(), r.MakerChange.String(), r.MakerNetIn.String(),
			r.TakerBalance.String(), r.TakerChange.String(), r.TakerNetIn.String(),
			r.Diff.String(), r.Price.String(), r.PnL.String(),
		})
	}
	return s
}

// TradeSheet 成交记录表
func TradeSheet(trades []domain.TradeRecord, loc *time.Location) Sheet {
	if loc == nil {
		loc = time.Local
	}
	s := Sheet{Name: "trade_history", Headers: TradeHeaders}
	for _, t := range trades {
		s.Rows = append(s.Rows, []string{
			t.Symbol,
			t.UID,
			strconv.FormatInt(t.TradeID, 10),
			strconv.FormatInt(t.OrderID, 10),
			string(t.Side),
			string(t.Type),
			t.Price.String(),
			t.Qty.String(),
			t.QuoteQty.String(),
			t.Commission.String(),
			t.CommissionAsset,
			t.Time.In(loc).Format(timeLayout),
		})
	}
	return s
}

// FeeSheet 手续费汇总表
func FeeSheet(fees []domain.FeeRecord, loc *time.Location) Sheet {
	if loc == nil {
		loc = time.Local
	}
	s := Sheet{Name: "fee_summary", Headers: FeeHeaders}
	for _, f := range fees {
		s.Rows = append(s.Rows, []string{
			f.Asset,
			f.Amount.StringFixed(6),
			f.AssetPrice.StringFixed(2),
			f.USDTAmount.StringFixed(2),
			f.Time.In(loc).Format(timeLayout),
		})
	}
	return s
}

// Preset 预置导出
type Preset string

const (
	PresetDailyReport  Preset = "daily_report"
	PresetTradeHistory Preset = "trade_history"
	PresetFullReport   Preset = "full_report"
)

// Valid 是否为已知的预置导出
func (p Preset) Valid() bool {
	switch p {
	case PresetDailyReport, PresetTradeHistory, PresetFullReport:
		return true
	}
	return false
}

// Sheets 预置导出包含的表数量
func (p Preset) Sheets() int {
	if p == PresetFullReport {
		return 3
	}
	return 1
}

// Data 预置导出所需的数据
type Data struct {
	Daily  []domain.DailyReportRow
	Trades []domain.TradeRecord
	Fees   []domain.FeeRecord
	From   time.Time // 成交记录区间（文件名使用）
	To     time.Time // 调用方请求的结束时间，而非过滤用的开区间上界
	At     time.Time // 导出时间
	Loc    *time.Location
}

// Build 生成预置导出的文件名（不含扩展名）与表
func (p Preset) Build(d Data) (string, []Sheet, error) {
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	if d.Loc != nil {
		at = at.In(d.Loc)
	}
	switch p {
	case PresetDailyReport:
		return "daily_report_" + Stamp(at), []Sheet{DailySheet(d.Daily)}, nil
	case PresetTradeHistory:
		from, to := d.From, d.To
		if from.IsZero() {
			from = at
		}
		if to.IsZero() {
			to = at
		}
		if d.Loc != nil {
			from, to = from.In(d.Loc), to.In(d.Loc)
		}
		return "trade_history_" + Stamp(from) + "_" + Stamp(to), []Sheet{TradeSheet(d.Trades, d.Loc)}, nil
	case PresetFullReport:
		return "full_report_" + Stamp(at), []Sheet{
			DailySheet(d.Daily),
			TradeSheet(d.Trades, d.Loc),
			FeeSheet(d.Fees, d.Loc),
		}, nil
	}
	return "", nil, errors.Errorf("unknown export preset %q", string(p))
}

// Write 按格式写出；CSV 只支持单表
func Write(w io.Writer, f Format, sheets []Sheet, at time.Time) error {
	switch f {
	case FormatCSV:
		if len(sheets) != 1 {
			return errors.Errorf("csv export needs exactly one sheet, got %d", len(sheets))
		}
		return WriteCSV(w, sheets[0].Headers, sheets[0].Rows)
	case FormatZIP:
		return WriteZIP(w, sheets, at)
	case FormatXLSX:
		return WriteXLSX(w, sheets)
	}
	return errors.Errorf("unknown export format %q", string(f))
}
