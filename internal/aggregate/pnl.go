package aggregate

import (
	"github.com/betbot/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

// PnL 分布桶，按从负到正排列
const (
	BucketLE1000N = "<=-1000"
	Bucket1000N   = "-1000~-500"
	Bucket500N    = "-500~-100"
	Bucket100N    = "-100~0"
	BucketZero    = "0"
	Bucket100     = "0~100"
	Bucket500     = "100~500"
	Bucket1000    = "500~1000"
	BucketGT1000  = ">1000"
)

var PnLBuckets = []string{
	BucketLE1000N, Bucket1000N, Bucket500N, Bucket100N, BucketZero, Bucket100, Bucket500, Bucket1000, BucketGT1000,
}

var (
	n1000 = decimal.NewFromInt(-1000)
	n500  = decimal.NewFromInt(-500)
	n100  = decimal.NewFromInt(-100)
	p100  = decimal.NewFromInt(100)
	p500  = decimal.NewFromInt(500)
	p1000 = decimal.NewFromInt(1000)
)

// PnLBucket 盈亏分桶。边界值归入较低（更负）的桶，0 单独成桶：
//
//	v <= -1000         "<=-1000"
//	-1000 < v <= -500  "-1000~-500"
//	-500 < v <= -100   "-500~-100"
//	-100 < v < 0       "-100~0"
//	v == 0             "0"
//	0 < v <= 100       "0~100"
//	100 < v <= 500     "100~500"
//	500 < v <= 1000    "500~1000"
//	v > 1000           ">1000"
func PnLBucket(v decimal.Decimal) string {
	switch {
	case v.LessThanOrEqual(n1000):
		return BucketLE1000N
	case v.LessThanOrEqual(n500):
		return Bucket1000N
	case v.LessThanOrEqual(n100):
		return Bucket500N
	case v.IsNegative():
		return Bucket100N
	case v.IsZero():
		return BucketZero
	case v.LessThanOrEqual(p100):
		return Bucket100
	case v.LessThanOrEqual(p500):
		return Bucket500
	case v.LessThanOrEqual(p1000):
		return Bucket1000
	default:
		return BucketGT1000
	}
}

// PnLDistribution 成交盈亏分布；所有桶都会输出（含 0 计数），按桶顺序排列
func PnLDistribution(trades []domain.TradeRecord) []Group[string] {
	counted := CountBy(trades, func(t domain.TradeRecord) string { return PnLBucket(t.RealizedPnL) })
	byKey := make(map[string]Group[string], len(counted))
	for _, g := range counted {
		byKey[g.Key] = g
	}
	out := make([]Group[string], 0, len(PnLBuckets))
	for _, b := range PnLBuckets {
		g, ok := byKey[b]
		if !ok {
			g = Group[string]{Key: b}
		}
		out = append(out, g)
	}
	return out
}
