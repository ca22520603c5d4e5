package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradebridge/conf"
	"tradebridge/internal/model"
	"tradebridge/internal/trade"

	goexmodel "github.com/nntaoli-project/goex/v2/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse8601(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 123456000, time.UTC).UnixMilli()

	for _, s := range []string{
		"2024-03-01T12:30:00.123456Z",
		"2024-03-01T12:30:00.123456+00:00",
		"2024-03-01T12:30:00.123456+0000",
	} {
		got, err := parse8601(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := parse8601("yesterday")
	assert.Error(t, err)
}

func TestParse8601_DateFromDays(t *testing.T) {
	now := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	got, err := parse8601(model.DateFromDays(now, 5))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), got)
}

func TestCall_Timeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	_, _, err := call(context.Background(), 20*time.Millisecond, func() (int, []byte, error) {
		<-block
		return 1, nil, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCall_PassesErrorThrough(t *testing.T) {
	boom := errors.New("503 service unavailable")
	_, _, err := call(context.Background(), time.Second, func() (string, []byte, error) {
		return "", nil, boom
	})
	assert.Same(t, boom, err)
}

func TestSimulatedExchange_Balance(t *testing.T) {
	ex := NewSimulatedExchange()
	ex.SetBalance("BTC", decimal.RequireFromString("0.5"), decimal.RequireFromString("0.1"))

	b, err := ex.FetchBalance(context.Background())
	require.NoError(t, err)
	for _, k := range []string{"free", "used", "total", "info", "timestamp", "datetime", "BTC"} {
		assert.Contains(t, b, k)
	}
	assert.Equal(t, map[string]any{"free": "0.5", "used": "0.1", "total": "0.6"}, b["BTC"])
}

func TestSimulatedExchange_FetchSinceAndFailures(t *testing.T) {
	ex := NewSimulatedExchange()
	ex.AddOrder("BTC/USDT", model.Record{"id": "old", "timestamp": int64(1000)})
	ex.AddOrder("BTC/USDT", model.Record{"id": "new", "timestamp": int64(5000)})
	ex.AddTrade("BTC/USDT", model.Record{"price": "1"})

	orders, err := ex.FetchOrders(context.Background(), "BTC/USDT", 2000, nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "new", orders[0]["id"])

	trades, err := ex.FetchMyTrades(context.Background(), "BTC/USDT", 0, nil)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.NotEmpty(t, trades[0]["id"])
	assert.Equal(t, "BTC/USDT", trades[0]["symbol"])

	boom := errors.New("network down")
	ex.FailOn("FetchMyTrades", boom)
	_, err = ex.FetchMyTrades(context.Background(), "BTC/USDT", 0, nil)
	assert.Same(t, boom, err)

	assert.Equal(t, []string{
		"FetchOrders BTC/USDT",
		"FetchMyTrades BTC/USDT",
		"FetchMyTrades BTC/USDT",
	}, ex.Calls())
}

func TestSimulatedExchange_Market(t *testing.T) {
	ex := NewSimulatedExchange()
	ex.AddMarket("ETH/USDT", 4, 2)

	m, err := ex.Market("ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, "ETH", m.Base)
	assert.Equal(t, 4, m.AmountPrecision)

	_, err = ex.Market("DOGE/USDT")
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestNew(t *testing.T) {
	ex, err := New(conf.ExchangeConfig{Name: "simulated"})
	require.NoError(t, err)
	assert.IsType(t, &SimulatedExchange{}, ex)

	_, err = New(conf.ExchangeConfig{Name: "kraken"})
	assert.Error(t, err)
}

func TestGoexExchange_Offline(t *testing.T) {
	ex, err := NewGoexExchange(conf.ExchangeConfig{Name: "okx", ApiKey: "k", SecretKey: "s", Password: "p"})
	require.NoError(t, err)

	_, err = ex.Market("BTC/USDT")
	assert.ErrorIs(t, err, model.ErrConfiguration)

	opts := ex.optionParams(1700000000000, map[string]string{"timestamp": "1", "limit": "100"})
	require.Len(t, opts, 2)
	assert.Equal(t, goexmodel.OptionParameter{Key: "begin", Value: "1700000000000"}, opts[0])
	assert.Equal(t, goexmodel.OptionParameter{Key: "limit", Value: "100"}, opts[1])

	assert.NoError(t, ex.Close(context.Background()))

	_, err = NewGoexExchange(conf.ExchangeConfig{Name: "binance"})
	assert.Error(t, err)
}

type fakePub struct {
	pairs map[string]goexmodel.CurrencyPair
}

func (f *fakePub) GetExchangeInfo() (map[string]goexmodel.CurrencyPair, []byte, error) {
	return f.pairs, []byte(`{}`), nil
}

func (f *fakePub) NewCurrencyPair(baseSym, quoteSym string, opts ...goexmodel.OptionParameter) (goexmodel.CurrencyPair, error) {
	return goexmodel.CurrencyPair{BaseSymbol: baseSym, QuoteSymbol: quoteSym}, nil
}

type fakePrv struct {
	accounts map[string]goexmodel.Account
	pending  []goexmodel.Order
	history  []goexmodel.Order
	err      error

	pairs []goexmodel.CurrencyPair
	opts  [][]goexmodel.OptionParameter
}

func (f *fakePrv) GetAccount(coin string) (map[string]goexmodel.Account, []byte, error) {
	return f.accounts, []byte(`{"code":"0"}`), f.err
}

func (f *fakePrv) GetPendingOrders(pair goexmodel.CurrencyPair, opts ...goexmodel.OptionParameter) ([]goexmodel.Order, []byte, error) {
	f.pairs = append(f.pairs, pair)
	f.opts = append(f.opts, opts)
	return f.pending, nil, f.err
}

func (f *fakePrv) GetHistoryOrders(pair goexmodel.CurrencyPair, opts ...goexmodel.OptionParameter) ([]goexmodel.Order, []byte, error) {
	f.pairs = append(f.pairs, pair)
	f.opts = append(f.opts, opts)
	return f.history, nil, f.err
}

func newFakeGoex(prv *fakePrv) *GoexExchange {
	pub := &fakePub{pairs: map[string]goexmodel.CurrencyPair{
		"BTC-USDT": {BaseSymbol: "BTC", QuoteSymbol: "USDT", QtyPrecision: 8, PricePrecision: 1},
		"ETH-USDT": {BaseSymbol: "ETH", QuoteSymbol: "USDT", QtyPrecision: 6, PricePrecision: 2},
		"broken":   {},
	}}
	return newGoexExchange("okx", pub, prv, "begin", 1)
}

func TestGoexExchange_LoadMarkets(t *testing.T) {
	ex := newFakeGoex(&fakePrv{})
	require.NoError(t, ex.LoadMarkets(context.Background()))

	m, err := ex.Market("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, model.Market{Symbol: "BTC/USDT", Base: "BTC", Quote: "USDT", AmountPrecision: 8, PricePrecision: 1}, *m)

	m, err = ex.Market("ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, 6, m.AmountPrecision)
	assert.Equal(t, 2, m.PricePrecision)

	_, err = ex.Market("broken")
	assert.ErrorIs(t, err, model.ErrConfiguration, "pairs without base/quote are skipped")
}

func TestGoexExchange_FetchBalance(t *testing.T) {
	ex := newFakeGoex(&fakePrv{accounts: map[string]goexmodel.Account{
		"BTC":  {Coin: "BTC", Balance: 0.6, AvailableBalance: 0.5, FrozenBalance: 0.1},
		"USDT": {Coin: "USDT", Balance: 1000, AvailableBalance: 1000},
	}})

	b, err := ex.FetchBalance(context.Background())
	require.NoError(t, err)
	for _, k := range []string{"free", "used", "total", "info", "timestamp", "datetime"} {
		assert.Contains(t, b, k)
	}
	assert.Equal(t, map[string]any{"free": 0.5, "used": 0.1, "total": 0.6}, b["BTC"])
	assert.Equal(t, 0.5, b["free"].(map[string]any)["BTC"])

	cfg := trade.NewConfig(trade.Spec{Key: "k", Symbol: "BTC/USDT", Calculation: model.FixedBase, Amount: decimal.NewFromInt(1), Side: model.Buy}, false)
	require.NoError(t, cfg.SetBalances(model.ParseBalances(b)))
	require.True(t, cfg.BaseBalance.Valid)
	assert.True(t, cfg.BaseBalance.Decimal.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, cfg.QuoteBalance.Decimal.Equal(decimal.NewFromInt(1000)))
}

func TestGoexExchange_FetchBalanceError(t *testing.T) {
	boom := errors.New("50113 invalid sign")
	ex := newFakeGoex(&fakePrv{err: boom})
	_, err := ex.FetchBalance(context.Background())
	assert.Same(t, boom, err)
}

func TestGoexExchange_FetchOrders(t *testing.T) {
	prv := &fakePrv{
		pending: []goexmodel.Order{
			{Id: "p1", Qty: 1, Price: 10, CreatedAt: 5000},
		},
		history: []goexmodel.Order{
			{Id: "p1", Qty: 1, Price: 10, CreatedAt: 5000},
			{Id: "h1", Qty: 2, ExecutedQty: 2, PriceAvg: 9, CreatedAt: 4000},
			{Id: "old", Qty: 1, ExecutedQty: 1, CreatedAt: 1000},
		},
	}
	ex := newFakeGoex(prv)
	require.NoError(t, ex.LoadMarkets(context.Background()))

	orders, err := ex.FetchOrders(context.Background(), "BTC/USDT", 2000, map[string]string{"timestamp": "1"})
	require.NoError(t, err)

	var ids []any
	for _, o := range orders {
		ids = append(ids, o["id"])
		assert.Equal(t, "BTC/USDT", o["symbol"])
		assert.Contains(t, o, "info")
	}
	assert.Equal(t, []any{"p1", "h1"}, ids, "deduplicated by id, older than since dropped")

	require.Len(t, prv.pairs, 2)
	assert.Equal(t, "BTC", prv.pairs[0].BaseSymbol)
	assert.Equal(t, []goexmodel.OptionParameter{{Key: "begin", Value: "2000"}}, prv.opts[0])
}

func TestGoexExchange_FetchMyTrades(t *testing.T) {
	prv := &fakePrv{history: []goexmodel.Order{
		{Id: "filled", Qty: 2, ExecutedQty: 1.5, PriceAvg: 10, CreatedAt: 5000},
		{Id: "cancelled", Qty: 2, ExecutedQty: 0, CreatedAt: 5000},
		{Id: "old", Qty: 1, ExecutedQty: 1, PriceAvg: 10, CreatedAt: 1000},
	}}
	ex := newFakeGoex(prv)

	// 未加载市场时由 goex 自己构造交易对
	trades, err := ex.FetchMyTrades(context.Background(), "ETH/USDT", 2000, nil)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "filled", trades[0]["order"])
	assert.Equal(t, 15.0, trades[0]["cost"])
	assert.Equal(t, "ETH", prv.pairs[0].BaseSymbol)

	_, err = ex.FetchMyTrades(context.Background(), "ETHUSDT", 0, nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestTradeRecord(t *testing.T) {
	o := goexmodel.Order{Id: "42", Qty: 2, ExecutedQty: 1.5, PriceAvg: 10, CreatedAt: 1700000000000}
	r := tradeRecord("BTC/USDT", o)
	assert.Equal(t, "42", r["order"])
	assert.Equal(t, 1.5, r["amount"])
	assert.Equal(t, 15.0, r["cost"])
	assert.Contains(t, r, "info")

	or := orderRecord("BTC/USDT", o)
	assert.Equal(t, 0.5, or["remaining"])
}
