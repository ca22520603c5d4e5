package client

import (
	"context"
	"sync"

	"tradebridge/conf"
	"tradebridge/internal/engine"
	"tradebridge/internal/exchange"
	"tradebridge/pkg/logger"

	"go.uber.org/multierr"
)

// Configuration 只创建一次交易所连接和客户端，之后的调用都返回同一个实例，
// 传入的新凭证会被忽略。首次创建失败不会被缓存，下次调用重新尝试。
type Configuration struct {
	// NewExchange 默认使用 exchange.New，测试时可以替换
	NewExchange func(cfg conf.ExchangeConfig) (exchange.Exchange, error)
	Engine      engine.Engine
	Options     []Option

	mu     sync.Mutex
	client *Client
	async  *AsyncClient
}

func NewConfiguration(eng engine.Engine, opts ...Option) *Configuration {
	return &Configuration{
		NewExchange: exchange.New,
		Engine:      eng,
		Options:     opts,
	}
}

func (c *Configuration) connect(ctx context.Context, creds conf.ExchangeConfig) (exchange.Exchange, error) {
	newExchange := c.NewExchange
	if newExchange == nil {
		newExchange = exchange.New
	}
	ex, err := newExchange(creds)
	if err != nil {
		return nil, err
	}
	// 加载失败时连接不会被缓存，这里关掉
	if err := ex.LoadMarkets(ctx); err != nil {
		return nil, multierr.Append(err, ex.Close(ctx))
	}
	logger.Info("[Configuration] exchange connected", logger.Pair("exchange", creds.Name))
	return ex, nil
}

// Client 返回阻塞式客户端
func (c *Configuration) Client(ctx context.Context, creds conf.ExchangeConfig, sandbox bool) (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	ex, err := c.connect(ctx, creds)
	if err != nil {
		return nil, err
	}
	cl, err := New(ex, c.Engine, sandbox, c.Options...)
	if err != nil {
		return nil, multierr.Append(err, ex.Close(ctx))
	}
	c.client = cl
	return cl, nil
}

// AsyncClient 返回可并发的客户端，加载完市场数据后先关闭连接，之后每轮同步按需重连
func (c *Configuration) AsyncClient(ctx context.Context, creds conf.ExchangeConfig, sandbox bool) (*AsyncClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.async != nil {
		return c.async, nil
	}
	ex, err := c.connect(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := ex.Close(ctx); err != nil {
		return nil, err
	}
	cl, err := NewAsync(ex, c.Engine, sandbox, c.Options...)
	if err != nil {
		return nil, err
	}
	c.async = cl
	return cl, nil
}
