package trade

import (
	"fmt"

	"tradebridge/internal/model"

	"github.com/shopspring/decimal"
)

// ResolveAmount 根据计算方式把配置的数量换算成实际下单数量。
// 百分比模式不做 [0,1] 的范围检查，范围由 Spec 校验负责。
func ResolveAmount(calc model.AmountCalculation, amount decimal.Decimal, base, quote decimal.NullDecimal) (decimal.Decimal, model.AmountKind, error) {
	switch calc {
	case model.FixedBaseFromPercentage:
		if !base.Valid {
			return decimal.Zero, 0, fmt.Errorf("%w: %s requires a base balance, refresh state first", model.ErrConfiguration, calc)
		}
		return base.Decimal.Mul(amount), model.AmountBase, nil
	case model.FixedQuoteFromPercentage:
		if !quote.Valid {
			return decimal.Zero, 0, fmt.Errorf("%w: %s requires a quote balance, refresh state first", model.ErrConfiguration, calc)
		}
		return quote.Decimal.Mul(amount), model.AmountQuote, nil
	case model.FixedBase:
		return amount, model.AmountBase, nil
	case model.FixedQuote:
		return amount, model.AmountQuote, nil
	default:
		return decimal.Zero, 0, fmt.Errorf("%w: invalid amount/amount type %s", model.ErrConfiguration, calc)
	}
}
