package utils

import (
	"strings"
)

// FormatSymbol 将 BTCUSDT / btc-usdt 这类写法转换为 BTC/USDT，已经带 / 的原样返回（转大写）
func FormatSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.ReplaceAll(s, "-", "/")
	s = strings.ReplaceAll(s, "_", "/")
	if strings.Contains(s, "/") {
		return s
	}

	// 后缀 quote 币种列表，长的放前面，避免 USDT 被当成 USD
	quotes := []string{"USDT", "USDC", "FDUSD", "BUSD", "USD", "BTC", "ETH"}

	for _, q := range quotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q) + "/" + q
		}
	}
	// 没匹配到就返回原始值
	return s
}
