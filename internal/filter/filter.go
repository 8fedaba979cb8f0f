package filter

import (
	"net/url"
	"strings"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// All 表示不限
const All = "ALL"

// Selection 当前视图的筛选条件；各条件之间为 AND
type Selection struct {
	From         time.Time           `json:"from,omitempty"` // 开区间，零值不限
	To           time.Time           `json:"to,omitempty"`
	Symbols      []string            `json:"symbols,omitempty"`
	UIDs         []string            `json:"uids,omitempty"`
	Assets       []string            `json:"assets,omitempty"`
	Exchanges    []string            `json:"exchanges,omitempty"`
	AccountGroup domain.AccountGroup `json:"account_group,omitempty"`
}

// Normalize 规范化：去空白、去重，含 ALL 的维度视为不限
func (s Selection) Normalize() Selection {
	s.Symbols = normalizeList(s.Symbols, domain.NormalizeSymbol)
	s.UIDs = normalizeList(s.UIDs, strings.TrimSpace)
	s.Assets = normalizeList(s.Assets, func(v string) string { return strings.ToUpper(strings.TrimSpace(v)) })
	s.Exchanges = normalizeList(s.Exchanges, strings.TrimSpace)
	return s
}

func normalizeList(in []string, norm func(string) string) []string {
	vals := lo.Filter(lo.Map(in, func(v string, _ int) string { return norm(v) }), func(v string, _ int) bool { return v != "" })
	if len(vals) == 0 || lo.ContainsBy(vals, func(v string) bool { return strings.EqualFold(v, All) }) {
		return nil
	}
	return lo.Uniq(vals)
}

// Symbol 第一个交易对（单交易对组件使用），未指定返回 def
func (s Selection) Symbol(def string) string {
	if len(s.Symbols) == 0 {
		return def
	}
	return s.Symbols[0]
}

// Matches 单条记录是否满足全部条件。
// 记录不携带某个维度（空值）时，该维度条件视为不适用。
func (s Selection) Matches(a domain.Attrs) bool {
	if !a.Time.IsZero() {
		if !s.From.IsZero() && !a.Time.After(s.From) {
			return false
		}
		if !s.To.IsZero() && !a.Time.Before(s.To) {
			return false
		}
	}
	if a.Symbol != "" && len(s.Symbols) > 0 && !lo.Contains(s.Symbols, domain.NormalizeSymbol(a.Symbol)) {
		return false
	}
	if a.UID != "" && len(s.UIDs) > 0 && !lo.Contains(s.UIDs, a.UID) {
		return false
	}
	if a.Asset != "" && len(s.Assets) > 0 && !lo.Contains(s.Assets, strings.ToUpper(a.Asset)) {
		return false
	}
	// 交易所名称大小写不敏感（Binance / binance）
	if a.Exchange != "" && len(s.Exchanges) > 0 && !lo.ContainsBy(s.Exchanges, func(v string) bool { return strings.EqualFold(v, a.Exchange) }) {
		return false
	}
	if a.Group != "" && s.AccountGroup != "" && a.Group != s.AccountGroup {
		return false
	}
	return true
}

// Apply 返回满足条件的子集，保持原有顺序，不修改输入
func Apply[T domain.Record](records []T, sel Selection) []T {
	sel = sel.Normalize()
	return lo.Filter(records, func(r T, _ int) bool { return sel.Matches(r.Attrs()) })
}

// FromQuery 从 URL 查询参数解析筛选条件。
// 支持 from/to（RFC3339 或 2006-01-02）、symbol、uid、asset、exchange（可重复或逗号分隔）、group。
func FromQuery(q url.Values, loc *time.Location) (Selection, error) {
	if loc == nil {
		loc = time.Local
	}
	var sel Selection
	var err error
	if sel.From, err = parseTime(q.Get("from"), loc, false); err != nil {
		return Selection{}, errors.Wrap(err, "from")
	}
	if sel.To, err = parseTime(q.Get("to"), loc, true); err != nil {
		return Selection{}, errors.Wrap(err, "to")
	}
	if !sel.From.IsZero() && !sel.To.IsZero() && sel.To.Before(sel.From) {
		return Selection{}, errors.New("to is before from")
	}
	sel.Symbols = splitValues(q["symbol"])
	sel.UIDs = splitValues(q["uid"])
	sel.Assets = splitValues(q["asset"])
	sel.Exchanges = splitValues(q["exchange"])
	group, ok := domain.ParseAccountGroup(q.Get("group"))
	if !ok {
		return Selection{}, errors.Errorf("unknown account group %q", q.Get("group"))
	}
	sel.AccountGroup = group
	return sel.Normalize(), nil
}

// RequestedTo 查询参数中 to 的原始取值（日期格式取当天零点，不做当天结束的换算），
// 用于导出文件名等展示场景；缺失或无法解析时返回零值
func RequestedTo(q url.Values, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t, err := parseTime(q.Get("to"), loc, false)
	if err != nil {
		return time.Time{}
	}
	return t
}

func splitValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

// parseTime 日期格式的 to 取当天结束（次日零点），使 [from, to] 按天选择时包含当天
func parseTime(v string, loc *time.Location, endOfDay bool) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid time %q", v)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
