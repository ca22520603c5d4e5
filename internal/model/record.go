package model

import "time"

// Record 交易所返回的订单/成交记录，字段保持交易所原样
type Record map[string]any

// Without 返回去掉指定字段的浅拷贝，原记录不变
func (r Record) Without(keys ...string) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Balances 交易所返回的账户余额：币种 -> {free, used, total}，
// 顶层还带有 free/used/total/info/timestamp/datetime 等汇总字段
type Balances map[string]any

var balanceEnvelope = []string{"free", "used", "total", "info", "timestamp", "datetime"}

// ParseBalances 去掉顶层的汇总字段，只保留各币种的余额
func ParseBalances(b Balances) Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	for _, k := range balanceEnvelope {
		delete(out, k)
	}
	return out
}

// Clone 深拷贝，每个交易配置拿到独立的一份
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		if asset, ok := v.(map[string]any); ok {
			cp := make(map[string]any, len(asset))
			for ak, av := range asset {
				cp[ak] = av
			}
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// DateFromDays 当前 UTC 时间往前推 days 天，ISO-8601 微秒精度
func DateFromDays(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, -days).Format("2006-01-02T15:04:05.000000Z07:00")
}
