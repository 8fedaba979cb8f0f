package aggregate

import (
	"sort"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Flatten 把二维键的分组展开为图表序列。
// split 把键拆为（序列名, X 轴类目）；序列与类目均按首次出现排序，
// 缺失的点补 0，使各序列长度一致。
func Flatten[K comparable](groups []Group[K], split func(K) (series, x string), reduce func(Group[K]) decimal.Decimal) []domain.Series {
	if reduce == nil {
		reduce = func(g Group[K]) decimal.Decimal { return g.Sum }
	}
	var (
		seriesOrder []string
		xOrder      []string
		seenSeries  = map[string]bool{}
		seenX       = map[string]bool{}
		cells       = map[[2]string]decimal.Decimal{}
	)
	for _, g := range groups {
		s, x := split(g.Key)
		if !seenSeries[s] {
			seenSeries[s] = true
			seriesOrder = append(seriesOrder, s)
		}
		if !seenX[x] {
			seenX[x] = true
			xOrder = append(xOrder, x)
		}
		cell := [2]string{s, x}
		cells[cell] = cells[cell].Add(reduce(g))
	}
	out := make([]domain.Series, 0, len(seriesOrder))
	for _, s := range seriesOrder {
		series := domain.Series{Name: s, Points: make([]domain.Point, 0, len(xOrder))}
		for _, x := range xOrder {
			series.Points = append(series.Points, domain.Point{X: x, Y: cells[[2]string{s, x}]})
		}
		out = append(out, series)
	}
	return out
}

// SortX 按 X 轴类目升序重排各序列的点，序列顺序不变。
// 日期类目（2006-01-02）按字典序即为时间顺序。
func SortX(series []domain.Series) []domain.Series {
	for i := range series {
		pts := series[i].Points
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
	}
	return series
}

// ToSeries 一维分组转单个序列
func ToSeries[K comparable](name string, groups []Group[K], label func(K) string, reduce func(Group[K]) decimal.Decimal) domain.Series {
	if reduce == nil {
		reduce = func(g Group[K]) decimal.Decimal { return g.Sum }
	}
	s := domain.Series{Name: name, Points: make([]domain.Point, 0, len(groups))}
	for _, g := range groups {
		s.Points = append(s.Points, domain.Point{X: label(g.Key), Y: reduce(g)})
	}
	return s
}

// CountOf 以计数作为数值
func CountOf[K comparable](g Group[K]) decimal.Decimal {
	return decimal.NewFromInt(int64(g.Count))
}

// SeriesTotal 序列所有点之和
func SeriesTotal(series []domain.Series) decimal.Decimal {
	total := decimal.Zero
	for _, s := range series {
		for _, p := range s.Points {
			total = total.Add(p.Y)
		}
	}
	return total
}
