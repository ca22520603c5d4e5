package exchange

import (
	"context"
	"fmt"
	"strings"

	"tradebridge/conf"
	"tradebridge/internal/model"
)

// Exchange 交易所账户接口：市场数据、余额、订单和成交
type Exchange interface {
	// 加载所有交易对的市场数据
	LoadMarkets(ctx context.Context) error
	// 获取交易对的精度等元数据，symbol 形如 BTC/USDT
	Market(symbol string) (*model.Market, error)
	// 账户余额
	FetchBalance(ctx context.Context) (model.Balances, error)
	// since 之后的订单（毫秒时间戳）
	FetchOrders(ctx context.Context, symbol string, since int64, params map[string]string) ([]model.Record, error)
	// since 之后的成交
	FetchMyTrades(ctx context.Context, symbol string, since int64, params map[string]string) ([]model.Record, error)
	// ISO-8601 -> 毫秒时间戳
	Parse8601(iso string) (int64, error)
	// 当前毫秒时间戳
	Msec() int64
	// 释放连接，之后的调用会重新建立
	Close(ctx context.Context) error
}

// New 根据配置创建交易所
func New(cfg conf.ExchangeConfig) (Exchange, error) {
	switch strings.ToLower(cfg.Name) {
	case "okx":
		return NewGoexExchange(cfg)
	case "simulated", "":
		return NewSimulatedExchange(), nil
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", cfg.Name)
	}
}
