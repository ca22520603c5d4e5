package model

import (
	"fmt"
	"strings"
)

type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return "", fmt.Errorf("%w: invalid side %q", ErrConfiguration, s)
	}
}

// AmountCalculation 下单数量的计算方式
type AmountCalculation int

const (
	// 基础币可用余额的百分比
	FixedBaseFromPercentage AmountCalculation = iota
	// 计价币可用余额的百分比
	FixedQuoteFromPercentage
	// 固定基础币数量
	FixedBase
	// 固定计价币金额
	FixedQuote
)

var calculationNames = map[AmountCalculation]string{
	FixedBaseFromPercentage:  "fixed_base_from_percentage",
	FixedQuoteFromPercentage: "fixed_quote_from_percentage",
	FixedBase:                "fixed_base",
	FixedQuote:               "fixed_quote",
}

func (c AmountCalculation) String() string {
	if name, ok := calculationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("AmountCalculation(%d)", int(c))
}

func (c AmountCalculation) Valid() bool {
	_, ok := calculationNames[c]
	return ok
}

// IsPercentage 数量是否按余额比例计算
func (c AmountCalculation) IsPercentage() bool {
	return c == FixedBaseFromPercentage || c == FixedQuoteFromPercentage
}

func ParseAmountCalculation(s string) (AmountCalculation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, n := range calculationNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown quantity calculation %q", ErrConfiguration, s)
}

// AmountKind 数量的单位：基础币或计价币
type AmountKind int

const (
	AmountBase AmountKind = iota
	AmountQuote
)

func (k AmountKind) String() string {
	switch k {
	case AmountBase:
		return "base"
	case AmountQuote:
		return "quote"
	default:
		return fmt.Sprintf("AmountKind(%d)", int(k))
	}
}

// TradeMode 执行引擎的交易模式
type TradeMode int

const (
	Live TradeMode = iota
	Sandbox
)

func (m TradeMode) String() string {
	if m == Sandbox {
		return "sandbox"
	}
	return "live"
}
