package model

import (
	"fmt"
	"strings"
)

// Market 交易对的市场元数据
type Market struct {
	Symbol          string `json:"symbol"` // BTC/USDT
	Base            string `json:"base"`
	Quote           string `json:"quote"`
	AmountPrecision int    `json:"amount_precision"` // 数量小数位
	PricePrecision  int    `json:"price_precision"`  // 价格小数位
}

// SplitSymbol "BTC/USDT" -> ("BTC", "USDT")
func SplitSymbol(symbol string) (base, quote string, err error) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: invalid symbol %q, expected like BTC/USDT", ErrConfiguration, symbol)
	}
	return parts[0], parts[1], nil
}
