package engine

import (
	"fmt"

	"tradebridge/internal/model"
	"tradebridge/internal/trade"

	"github.com/shopspring/decimal"
)

// Call 一次已经解析好参数的引擎调用
type Call struct {
	Args           OrderArgs
	PricePrecision int32
}

// NewCall 根据交易配置计算下单数量、方向和模式。市场数据未配置时返回 ErrConfiguration。
func NewCall(cfg *trade.Config) (Call, error) {
	amountPrecision, ok := cfg.AmountPrecision()
	if !ok {
		return Call{}, fmt.Errorf("%w: market data for %s not configured", model.ErrConfiguration, cfg.Symbol)
	}
	pricePrecision, _ := cfg.PricePrecision()

	amount, kind, err := trade.ResolveAmount(cfg.Calculation, cfg.Amount, cfg.BaseBalance, cfg.QuoteBalance)
	if err != nil {
		return Call{}, err
	}
	side, err := trade.SideCode(cfg.Side)
	if err != nil {
		return Call{}, err
	}
	kindCode, err := trade.AmountKindCode(kind)
	if err != nil {
		return Call{}, err
	}
	if cfg.Base == "" || cfg.Quote == "" {
		return Call{}, fmt.Errorf("%w: symbol %q has no base/quote", model.ErrConfiguration, cfg.Symbol)
	}

	return Call{
		Args: OrderArgs{
			Symbol:          cfg.Base + cfg.Quote,
			Side:            side,
			AmountKind:      kindCode,
			Amount:          amount.String(),
			AmountPrecision: int32(amountPrecision),
			Mode:            trade.TradeModeCode(trade.ModeOf(cfg.Sandbox)),
		},
		PricePrecision: int32(pricePrecision),
	}, nil
}

// Place 按盘口价下单
func (c Call) Place(e Engine) (int32, error) {
	status, err := e.PlaceOrder(c.Args)
	return checkStatus(status, err)
}

// PlaceCustom 按指定价格下单
func (c Call) PlaceCustom(e Engine, price decimal.Decimal) (int32, error) {
	status, err := e.TradeCustomPrice(c.Args, price.String(), c.PricePrecision)
	return checkStatus(status, err)
}

func checkStatus(status int32, err error) (int32, error) {
	if err != nil {
		return status, err
	}
	if status == 0 {
		return status, fmt.Errorf("%w: %w", model.ErrForeignCall, model.ErrOrderRejected)
	}
	return status, nil
}
