// Package aggregate 把筛选后的记录归并为按键汇总的结果与图表序列。
//
// 所有函数都是单次遍历：先累加到以复合键（字段元组）为键的累加器，
// 再按键首次出现的顺序展开。
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"
)

// Group 单个键的汇总
type Group[K comparable] struct {
	Key   K               `json:"key"`
	Sum   decimal.Decimal `json:"sum"`
	Count int             `json:"count"`
}

// GroupBy 按 key 分组并对 value 求和，同时计数；结果按键首次出现顺序排列
func GroupBy[T any, K comparable](records []T, key func(T) K, value func(T) decimal.Decimal) []Group[K] {
	index := make(map[K]int)
	var out []Group[K]
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Group[K]{Key: k})
		}
		if value != nil {
			out[i].Sum = out[i].Sum.Add(value(r))
		}
		out[i].Count++
	}
	return out
}

// CountBy 只计数（直方图）
func CountBy[T any, K comparable](records []T, key func(T) K) []Group[K] {
	return GroupBy(records, key, nil)
}

// Sum 全集求和
func Sum[T any](records []T, value func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(value(r))
	}
	return total
}

// Pair 二元复合键
type Pair struct {
	A string
	B string
}

// Bucket 把时间截断到桶起点；>= 24h 统一按 loc 所在时区的自然日对齐
func Bucket(t time.Time, size time.Duration, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	if size >= 24*time.Hour {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if size <= 0 {
		return t
	}
	return t.Truncate(size)
}
