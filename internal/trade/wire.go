package trade

import (
	"fmt"

	"tradebridge/internal/model"
)

// 执行引擎接收的整数参数。每个枚举都在这里穷举映射，新增取值必须同步修改。

func SideCode(side model.OrderSide) (int32, error) {
	switch side {
	case model.Buy:
		return 0, nil
	case model.Sell:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: invalid side %q", model.ErrConfiguration, side)
	}
}

func AmountKindCode(kind model.AmountKind) (int32, error) {
	switch kind {
	case model.AmountBase:
		return 0, nil
	case model.AmountQuote:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: invalid amount kind %s", model.ErrConfiguration, kind)
	}
}

func TradeModeCode(mode model.TradeMode) int32 {
	switch mode {
	case model.Sandbox:
		return 1
	default:
		return 0
	}
}

func ModeOf(sandbox bool) model.TradeMode {
	if sandbox {
		return model.Sandbox
	}
	return model.Live
}
