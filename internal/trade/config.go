package trade

import (
	"fmt"

	"tradebridge/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Config 单个交易的配置和从交易所同步回来的状态
type Config struct {
	Symbol      string
	Base        string
	Quote       string
	Calculation model.AmountCalculation
	Amount      decimal.Decimal
	Side        model.OrderSide
	Sandbox     bool

	Market       *model.Market
	BaseBalance  decimal.NullDecimal
	QuoteBalance decimal.NullDecimal
	Orders       []model.Record
	Trades       []model.Record
}

func NewConfig(spec Spec, sandbox bool) *Config {
	return &Config{
		Symbol:      spec.Symbol,
		Calculation: spec.Calculation,
		Amount:      spec.Amount,
		Side:        spec.Side,
		Sandbox:     sandbox,
		Orders:      []model.Record{},
		Trades:      []model.Record{},
	}
}

// AmountPrecision 市场数据未配置时 ok 为 false
func (c *Config) AmountPrecision() (p int, ok bool) {
	if c.Market == nil {
		return 0, false
	}
	return c.Market.AmountPrecision, true
}

func (c *Config) PricePrecision() (p int, ok bool) {
	if c.Market == nil {
		return 0, false
	}
	return c.Market.PricePrecision, true
}

func (c *Config) deriveAssets() {
	if c.Symbol == "" {
		return
	}
	base, quote, err := model.SplitSymbol(c.Symbol)
	if err != nil {
		return
	}
	c.Base, c.Quote = base, quote
}

func (c *Config) ConfigureMarketData(market *model.Market) {
	c.Market = market
	c.deriveAssets()
}

// SetBalances 只更新 base/quote 两个币种的可用余额，余额里没有的币种保持原值
func (c *Config) SetBalances(balances model.Balances) error {
	if c.Base == "" && c.Quote == "" {
		c.deriveAssets()
	}
	if v, ok, err := freeBalance(balances, c.Base); err != nil {
		return err
	} else if ok {
		c.BaseBalance = decimal.NewNullDecimal(v)
	}
	if v, ok, err := freeBalance(balances, c.Quote); err != nil {
		return err
	} else if ok {
		c.QuoteBalance = decimal.NewNullDecimal(v)
	}
	return nil
}

func freeBalance(balances model.Balances, asset string) (decimal.Decimal, bool, error) {
	if asset == "" {
		return decimal.Zero, false, nil
	}
	entry, ok := balances[asset].(map[string]any)
	if !ok {
		return decimal.Zero, false, nil
	}
	raw, ok := entry["free"]
	if !ok || raw == nil {
		return decimal.Zero, false, nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("balance %s: %w", asset, err)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("balance %s: %w", asset, err)
	}
	return v, true, nil
}

func stripInfo(records []model.Record) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Without("info"))
	}
	return out
}

// SetOrders 整体替换，不做合并
func (c *Config) SetOrders(records ...model.Record) {
	c.Orders = stripInfo(records)
}

func (c *Config) SetTrades(records ...model.Record) {
	c.Trades = stripInfo(records)
}

// State 当前配置的只读快照
type State struct {
	Symbol    string                      `json:"symbol"`
	Base      map[string]*decimal.Decimal `json:"base"`
	Quote     map[string]*decimal.Decimal `json:"quote"`
	Orders    []model.Record              `json:"orders"`
	Trades    []model.Record              `json:"trades"`
	Precision map[string]*int             `json:"precision"`
}

func (c *Config) State() State {
	st := State{
		Symbol:    c.Symbol,
		Base:      map[string]*decimal.Decimal{c.Base: nullable(c.BaseBalance)},
		Quote:     map[string]*decimal.Decimal{c.Quote: nullable(c.QuoteBalance)},
		Orders:    append(make([]model.Record, 0, len(c.Orders)), c.Orders...),
		Trades:    append(make([]model.Record, 0, len(c.Trades)), c.Trades...),
		Precision: map[string]*int{"amount": nil, "price": nil},
	}
	if p, ok := c.AmountPrecision(); ok {
		st.Precision["amount"] = &p
	}
	if p, ok := c.PricePrecision(); ok {
		st.Precision["price"] = &p
	}
	return st
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
