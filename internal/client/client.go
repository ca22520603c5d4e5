package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tradebridge/internal/engine"
	"tradebridge/internal/exchange"
	"tradebridge/internal/model"
	"tradebridge/internal/trade"
	"tradebridge/pkg/logger"
	"tradebridge/pkg/recorder"
	"tradebridge/utils/uuid"
)

// Option 客户端可选配置
type Option func(*options)

type options struct {
	recorder   recorder.Recorder
	ledgerSize int
	nodeID     int64
}

// WithRecorder 每次调用执行引擎后写一条审计记录
func WithRecorder(r recorder.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

func WithLedgerSize(size int) Option {
	return func(o *options) { o.ledgerSize = size }
}

// WithNodeID 刷新批次 id 使用的雪花节点号
func WithNodeID(id int64) Option {
	return func(o *options) { o.nodeID = id }
}

// core 两种客户端共用的交易配置表、余额和下单逻辑。
// mu 只保护内存里的状态，网络请求和引擎调用都在锁外进行。
type core struct {
	exchange exchange.Exchange
	engine   engine.Engine
	sandbox  bool

	mu       sync.Mutex
	trades   map[string]*trade.Config
	keys     []string // 注册顺序
	balances model.Balances

	ledger   *ledger
	recorder recorder.Recorder
	node     *uuid.SnowNode
}

func newCore(ex exchange.Exchange, eng engine.Engine, sandbox bool, opts ...Option) (*core, error) {
	o := options{nodeID: 1}
	for _, opt := range opts {
		opt(&o)
	}
	l, err := newLedger(o.ledgerSize)
	if err != nil {
		return nil, err
	}
	node, err := uuid.NewNode(o.nodeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrConfiguration, err)
	}
	return &core{
		exchange: ex,
		engine:   eng,
		sandbox:  sandbox,
		trades:   make(map[string]*trade.Config),
		balances: model.Balances{},
		ledger:   l,
		recorder: o.recorder,
		node:     node,
	}, nil
}

// SetTrade 注册交易配置，同一个 key 再次注册会整体替换，注册顺序保持不变
func (c *core) SetTrade(spec trade.Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	market, err := c.exchange.Market(spec.Symbol)
	if err != nil {
		return fmt.Errorf("%w: trade %q: %w", model.ErrConfiguration, spec.Key, err)
	}
	cfg := trade.NewConfig(spec, c.sandbox)
	cfg.ConfigureMarketData(market)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.trades[spec.Key]; !ok {
		c.keys = append(c.keys, spec.Key)
	}
	c.trades[spec.Key] = cfg
	return nil
}

func (c *core) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

// Balances 最近一次同步的余额（已去掉汇总字段）
func (c *core) Balances() model.Balances {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances.Clone()
}

func (c *core) State(key string) (trade.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.trades[key]
	if !ok {
		return trade.State{}, unknownKey(key)
	}
	return cfg.State(), nil
}

func unknownKey(key string) error {
	return fmt.Errorf("%w: key %s does not exist", model.ErrConfiguration, key)
}

func (c *core) symbolOf(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.trades[key]
	if !ok {
		return "", unknownKey(key)
	}
	return cfg.Symbol, nil
}

// applyBalances 所有交易看到同一份余额快照，各自持有独立拷贝
func (c *core) applyBalances(raw model.Balances) error {
	cleaned := model.ParseBalances(raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances = cleaned
	for _, key := range c.keys {
		if err := c.trades[key].SetBalances(cleaned.Clone()); err != nil {
			return fmt.Errorf("trade %s: %w", key, err)
		}
	}
	return nil
}

// applyHistory 先订单后成交
func (c *core) applyHistory(key string, orders, trades []model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.trades[key]
	if !ok {
		return unknownKey(key)
	}
	cfg.SetOrders(orders...)
	cfg.SetTrades(trades...)
	return nil
}

// refresh 同步余额，再按注册顺序同步每个交易的订单和成交。
// suspend 在每次网络请求之前调用，返回错误时中止本轮。
func (c *core) refresh(ctx context.Context, days int, suspend func() error) error {
	cycle := c.node.GenSnowStr()
	start := time.Now()
	logger.Info("[Refresh] start", logger.Pair("cycle", cycle), logger.Pair("days", days))

	if err := suspend(); err != nil {
		return err
	}
	raw, err := c.exchange.FetchBalance(ctx)
	if err != nil {
		logger.Error("[Refresh] fetch balance failed", logger.Pair("cycle", cycle), logger.Pair("err", err.Error()))
		return err
	}
	if err := c.applyBalances(raw); err != nil {
		return err
	}

	since, err := c.exchange.Parse8601(model.DateFromDays(time.Now(), days))
	if err != nil {
		return err
	}

	for _, key := range c.Keys() {
		symbol, err := c.symbolOf(key)
		if err != nil {
			return err
		}

		if err := suspend(); err != nil {
			return err
		}
		orders, err := c.exchange.FetchOrders(ctx, symbol, since, c.timestampParams())
		if err != nil {
			logger.Error("[Refresh] fetch orders failed", logger.Pair("cycle", cycle), logger.Pair("key", key), logger.Pair("err", err.Error()))
			return err
		}

		if err := suspend(); err != nil {
			return err
		}
		trades, err := c.exchange.FetchMyTrades(ctx, symbol, since, c.timestampParams())
		if err != nil {
			logger.Error("[Refresh] fetch trades failed", logger.Pair("cycle", cycle), logger.Pair("key", key), logger.Pair("err", err.Error()))
			return err
		}

		if err := c.applyHistory(key, orders, trades); err != nil {
			return err
		}
		logger.Debug("[Refresh] trade synced", logger.Pair("cycle", cycle), logger.Pair("key", key),
			logger.Pair("orders", len(orders)), logger.Pair("trades", len(trades)))
	}

	logger.Info("[Refresh] done", logger.Pair("cycle", cycle), logger.Cost("cost", time.Since(start)))
	return nil
}

func (c *core) timestampParams() map[string]string {
	return map[string]string{"timestamp": strconv.FormatInt(c.exchange.Msec(), 10)}
}

// Client 阻塞式客户端，所有步骤按顺序执行
type Client struct {
	*core
}

func New(ex exchange.Exchange, eng engine.Engine, sandbox bool, opts ...Option) (*Client, error) {
	c, err := newCore(ex, eng, sandbox, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{core: c}, nil
}

// SetState 同步最近 days 天的余额、订单和成交，出错立即返回
func (c *Client) SetState(ctx context.Context, days int) error {
	return c.refresh(ctx, days, func() error { return nil })
}

// Close 释放交易所连接
func (c *Client) Close(ctx context.Context) error {
	return c.exchange.Close(ctx)
}
