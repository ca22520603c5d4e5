package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"tradebridge/conf"
	"tradebridge/internal/model"
	"tradebridge/pkg/logger"

	goexv2 "github.com/nntaoli-project/goex/v2"
	goexmodel "github.com/nntaoli-project/goex/v2/model"
	"github.com/nntaoli-project/goex/v2/options"
)

// 用到的 goex 公共接口
type pubAPI interface {
	GetExchangeInfo() (map[string]goexmodel.CurrencyPair, []byte, error)
	NewCurrencyPair(baseSym, quoteSym string, opts ...goexmodel.OptionParameter) (goexmodel.CurrencyPair, error)
}

// 用到的 goex 私有接口
type prvAPI interface {
	GetAccount(coin string) (map[string]goexmodel.Account, []byte, error)
	GetPendingOrders(pair goexmodel.CurrencyPair, opts ...goexmodel.OptionParameter) ([]goexmodel.Order, []byte, error)
	GetHistoryOrders(pair goexmodel.CurrencyPair, opts ...goexmodel.OptionParameter) ([]goexmodel.Order, []byte, error)
}

// GoexExchange 通过 goex 访问 okx 现货账户
type GoexExchange struct {
	name     string
	pub      pubAPI
	prv      prvAPI
	sinceKey string
	timeout  time.Duration

	mu      sync.RWMutex
	markets map[string]*model.Market
	pairs   map[string]goexmodel.CurrencyPair
}

func NewGoexExchange(cfg conf.ExchangeConfig) (*GoexExchange, error) {
	opts := []options.ApiOption{
		options.WithApiKey(cfg.ApiKey),
		options.WithApiSecretKey(cfg.SecretKey),
		options.WithPassphrase(cfg.Password),
	}

	name := strings.ToLower(cfg.Name)
	switch name {
	case "okx":
		if cfg.Simulated {
			// okx 模拟盘需要使用模拟交易下创建的 apikey
			goexv2.DefaultHttpCli.SetHeaders("x-simulated-trading", "1")
		}
		pub := goexv2.OKx.Spot
		return newGoexExchange(name, pub, pub.NewPrvApi(opts...), "begin", cfg.TimeoutSeconds), nil
	default:
		return nil, fmt.Errorf("unsupported goex exchange: %s", cfg.Name)
	}
}

func newGoexExchange(name string, pub pubAPI, prv prvAPI, sinceKey string, timeoutSeconds int) *GoexExchange {
	return &GoexExchange{
		name:     name,
		pub:      pub,
		prv:      prv,
		sinceKey: sinceKey,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
		markets:  make(map[string]*model.Market),
		pairs:    make(map[string]goexmodel.CurrencyPair),
	}
}

// LoadMarkets 加载所有可交易币对，下单和查询订单时需要用到 CurrencyPair
func (e *GoexExchange) LoadMarkets(ctx context.Context) error {
	info, _, err := call(ctx, e.timeout, func() (map[string]goexmodel.CurrencyPair, []byte, error) {
		return e.pub.GetExchangeInfo()
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, pair := range info {
		if pair.BaseSymbol == "" || pair.QuoteSymbol == "" {
			continue
		}
		symbol := pair.BaseSymbol + "/" + pair.QuoteSymbol
		e.pairs[symbol] = pair
		e.markets[symbol] = &model.Market{
			Symbol:          symbol,
			Base:            pair.BaseSymbol,
			Quote:           pair.QuoteSymbol,
			AmountPrecision: pair.QtyPrecision,
			PricePrecision:  pair.PricePrecision,
		}
	}
	logger.Infof("[%s] loaded %d markets", e.name, len(e.markets))
	return nil
}

func (e *GoexExchange) Market(symbol string) (*model.Market, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.markets[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: market %s not found on %s", model.ErrConfiguration, symbol, e.name)
	}
	cp := *m
	return &cp, nil
}

func (e *GoexExchange) pair(symbol string) (goexmodel.CurrencyPair, error) {
	e.mu.RLock()
	pair, ok := e.pairs[symbol]
	e.mu.RUnlock()
	if ok {
		return pair, nil
	}
	// 未加载市场时交给 goex 自己查找
	base, quote, err := model.SplitSymbol(symbol)
	if err != nil {
		return goexmodel.CurrencyPair{}, err
	}
	return e.pub.NewCurrencyPair(base, quote)
}

func (e *GoexExchange) FetchBalance(ctx context.Context) (model.Balances, error) {
	accounts, raw, err := call(ctx, e.timeout, func() (map[string]goexmodel.Account, []byte, error) {
		return e.prv.GetAccount("")
	})
	if err != nil {
		return nil, err
	}

	now := msec()
	free := map[string]any{}
	used := map[string]any{}
	total := map[string]any{}
	balances := model.Balances{
		"info":      string(raw),
		"timestamp": now,
		"datetime":  iso8601(now),
	}
	for coin, acc := range accounts {
		if acc.Coin != "" {
			coin = acc.Coin
		}
		free[coin] = acc.AvailableBalance
		used[coin] = acc.FrozenBalance
		total[coin] = acc.Balance
		balances[coin] = map[string]any{
			"free":  acc.AvailableBalance,
			"used":  acc.FrozenBalance,
			"total": acc.Balance,
		}
	}
	balances["free"] = free
	balances["used"] = used
	balances["total"] = total
	return balances, nil
}

func (e *GoexExchange) optionParams(since int64, params map[string]string) []goexmodel.OptionParameter {
	var opts []goexmodel.OptionParameter
	if since > 0 {
		opts = append(opts, goexmodel.OptionParameter{Key: e.sinceKey, Value: strconv.FormatInt(since, 10)})
	}
	for k, v := range params {
		// goex 签名时会自己带上 timestamp
		if k == "timestamp" {
			continue
		}
		opts = append(opts, goexmodel.OptionParameter{Key: k, Value: v})
	}
	return opts
}

// FetchOrders 挂单 + 历史订单，按订单 id 去重
func (e *GoexExchange) FetchOrders(ctx context.Context, symbol string, since int64, params map[string]string) ([]model.Record, error) {
	pair, err := e.pair(symbol)
	if err != nil {
		return nil, err
	}
	opts := e.optionParams(since, params)

	pending, _, err := call(ctx, e.timeout, func() ([]goexmodel.Order, []byte, error) {
		return e.prv.GetPendingOrders(pair, opts...)
	})
	if err != nil {
		return nil, err
	}
	history, _, err := call(ctx, e.timeout, func() ([]goexmodel.Order, []byte, error) {
		return e.prv.GetHistoryOrders(pair, opts...)
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(pending)+len(history))
	records := make([]model.Record, 0, len(pending)+len(history))
	for _, o := range append(pending, history...) {
		if _, ok := seen[o.Id]; ok {
			continue
		}
		seen[o.Id] = struct{}{}
		if since > 0 && o.CreatedAt > 0 && o.CreatedAt < since {
			continue
		}
		records = append(records, orderRecord(symbol, o))
	}
	return records, nil
}

// FetchMyTrades goex 没有成交明细接口，用有成交量的历史订单代替
func (e *GoexExchange) FetchMyTrades(ctx context.Context, symbol string, since int64, params map[string]string) ([]model.Record, error) {
	pair, err := e.pair(symbol)
	if err != nil {
		return nil, err
	}
	opts := e.optionParams(since, params)
	history, _, err := call(ctx, e.timeout, func() ([]goexmodel.Order, []byte, error) {
		return e.prv.GetHistoryOrders(pair, opts...)
	})
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(history))
	for _, o := range history {
		if o.ExecutedQty <= 0 {
			continue
		}
		if since > 0 && o.CreatedAt > 0 && o.CreatedAt < since {
			continue
		}
		records = append(records, tradeRecord(symbol, o))
	}
	return records, nil
}

func (e *GoexExchange) Parse8601(iso string) (int64, error) {
	return parse8601(iso)
}

func (e *GoexExchange) Msec() int64 {
	return msec()
}

// Close goex 复用全局 http 客户端，没有需要释放的连接，下次请求照常进行
func (e *GoexExchange) Close(ctx context.Context) error {
	return nil
}

func orderRecord(symbol string, o goexmodel.Order) model.Record {
	return model.Record{
		"id":            o.Id,
		"clientOrderId": o.CId,
		"symbol":        symbol,
		"side":          fmt.Sprint(o.Side),
		"type":          fmt.Sprint(o.OrderTy),
		"status":        o.Status.String(),
		"price":         o.Price,
		"amount":        o.Qty,
		"filled":        o.ExecutedQty,
		"remaining":     o.Qty - o.ExecutedQty,
		"average":       o.PriceAvg,
		"timestamp":     o.CreatedAt,
		"datetime":      iso8601(o.CreatedAt),
		"info":          o,
	}
}

func tradeRecord(symbol string, o goexmodel.Order) model.Record {
	return model.Record{
		"id":        o.Id,
		"order":     o.Id,
		"symbol":    symbol,
		"side":      fmt.Sprint(o.Side),
		"type":      fmt.Sprint(o.OrderTy),
		"price":     o.PriceAvg,
		"amount":    o.ExecutedQty,
		"cost":      o.PriceAvg * o.ExecutedQty,
		"timestamp": o.CreatedAt,
		"datetime":  iso8601(o.CreatedAt),
		"info":      o,
	}
}
