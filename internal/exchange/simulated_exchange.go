package exchange

import (
	"context"
	"fmt"
	"sync"

	"tradebridge/internal/model"
	"tradebridge/utils/uuid"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// SimulatedExchange 内存交易所，适合本地联调和测试
type SimulatedExchange struct {
	mu       sync.Mutex
	markets  map[string]*model.Market
	balances map[string]simBalance
	orders   map[string][]model.Record
	trades   map[string][]model.Record
	failures map[string]error
	calls    []string
	closes   int
}

type simBalance struct {
	free decimal.Decimal
	used decimal.Decimal
}

func NewSimulatedExchange() *SimulatedExchange {
	return &SimulatedExchange{
		markets:  make(map[string]*model.Market),
		balances: make(map[string]simBalance),
		orders:   make(map[string][]model.Record),
		trades:   make(map[string][]model.Record),
		failures: make(map[string]error),
	}
}

// AddMarket 设置交易对精度
func (s *SimulatedExchange) AddMarket(symbol string, amountPrecision, pricePrecision int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, quote, _ := model.SplitSymbol(symbol)
	s.markets[symbol] = &model.Market{
		Symbol:          symbol,
		Base:            base,
		Quote:           quote,
		AmountPrecision: amountPrecision,
		PricePrecision:  pricePrecision,
	}
}

func (s *SimulatedExchange) SetBalance(asset string, free, used decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[asset] = simBalance{free: free, used: used}
}

// AddOrder 记录一条订单，没有 id 时自动生成
func (s *SimulatedExchange) AddOrder(symbol string, r model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[symbol] = append(s.orders[symbol], withID(symbol, r))
}

func (s *SimulatedExchange) AddTrade(symbol string, r model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades[symbol] = append(s.trades[symbol], withID(symbol, r))
}

// FailOn 让某个方法返回指定错误，err 为 nil 时恢复
func (s *SimulatedExchange) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Calls 按调用顺序返回 "方法 symbol"
func (s *SimulatedExchange) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *SimulatedExchange) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func withID(symbol string, r model.Record) model.Record {
	out := r.Without()
	if _, ok := out["id"]; !ok {
		out["id"] = uuid.GenUUID()
	}
	if _, ok := out["symbol"]; !ok {
		out["symbol"] = symbol
	}
	return out
}

// record 必须在持有锁时调用
func (s *SimulatedExchange) record(method, symbol string) error {
	if symbol != "" {
		s.calls = append(s.calls, method+" "+symbol)
	} else {
		s.calls = append(s.calls, method)
	}
	return s.failures[method]
}

func (s *SimulatedExchange) LoadMarkets(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record("LoadMarkets", "")
}

func (s *SimulatedExchange) Market(symbol string) (*model.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markets[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: market %s not found on simulated", model.ErrConfiguration, symbol)
	}
	cp := *m
	return &cp, nil
}

func (s *SimulatedExchange) FetchBalance(ctx context.Context) (model.Balances, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FetchBalance", ""); err != nil {
		return nil, err
	}

	now := msec()
	free := map[string]any{}
	used := map[string]any{}
	total := map[string]any{}
	balances := model.Balances{
		"info":      map[string]any{"source": "simulated"},
		"timestamp": now,
		"datetime":  iso8601(now),
	}
	for asset, b := range s.balances {
		t := b.free.Add(b.used)
		free[asset], used[asset], total[asset] = b.free.String(), b.used.String(), t.String()
		balances[asset] = map[string]any{
			"free":  b.free.String(),
			"used":  b.used.String(),
			"total": t.String(),
		}
	}
	balances["free"] = free
	balances["used"] = used
	balances["total"] = total
	return balances, nil
}

func (s *SimulatedExchange) FetchOrders(ctx context.Context, symbol string, since int64, params map[string]string) ([]model.Record, error) {
	return s.fetch(ctx, "FetchOrders", s.orders, symbol, since)
}

func (s *SimulatedExchange) FetchMyTrades(ctx context.Context, symbol string, since int64, params map[string]string) ([]model.Record, error) {
	return s.fetch(ctx, "FetchMyTrades", s.trades, symbol, since)
}

func (s *SimulatedExchange) fetch(ctx context.Context, method string, src map[string][]model.Record, symbol string, since int64) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(method, symbol); err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, len(src[symbol]))
	for _, r := range src[symbol] {
		if ts, err := cast.ToInt64E(r["timestamp"]); err == nil && ts > 0 && ts < since {
			continue
		}
		out = append(out, r.Without())
	}
	return out, nil
}

func (s *SimulatedExchange) Parse8601(iso string) (int64, error) {
	return parse8601(iso)
}

func (s *SimulatedExchange) Msec() int64 {
	return msec()
}

func (s *SimulatedExchange) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return s.record("Close", "")
}
