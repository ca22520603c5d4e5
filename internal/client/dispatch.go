package client

import (
	"context"
	"errors"
	"time"

	"tradebridge/internal/engine"
	"tradebridge/internal/model"
	"tradebridge/pkg/logger"
	"tradebridge/utils/uuid"

	"github.com/shopspring/decimal"
)

// DispatchOption 单次下单的可选参数
type DispatchOption func(*dispatchOptions)

type dispatchOptions struct {
	token string
}

// WithIdempotencyKey 相同 key 的下单只会调用一次执行引擎，不传时每次生成新的 uuid
func WithIdempotencyKey(key string) DispatchOption {
	return func(o *dispatchOptions) { o.token = key }
}

// DispatchRecord 下单审计记录
type DispatchRecord struct {
	Token  string           `json:"token"`
	Key    string           `json:"key"`
	Method string           `json:"method"`
	Args   engine.OrderArgs `json:"args"`
	Price  string           `json:"price,omitempty"`
	Status int32            `json:"status"`
	Error  string           `json:"error,omitempty"`
	Time   int64            `json:"time"`
}

// PlaceOrderbookOrder 按盘口价下单，返回引擎的状态码
func (c *core) PlaceOrderbookOrder(ctx context.Context, key string, opts ...DispatchOption) (int32, error) {
	return c.dispatch(ctx, key, "PlaceOrder", "", opts, func(call engine.Call) (int32, error) {
		return call.Place(c.engine)
	})
}

// PlaceCustomOrder 按指定价格下单
func (c *core) PlaceCustomOrder(ctx context.Context, key string, price decimal.Decimal, opts ...DispatchOption) (int32, error) {
	return c.dispatch(ctx, key, "TradeCustomPrice", price.String(), opts, func(call engine.Call) (int32, error) {
		return call.PlaceCustom(c.engine, price)
	})
}

func (c *core) dispatch(ctx context.Context, key, method, price string, opts []DispatchOption, place func(engine.Call) (int32, error)) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	o := dispatchOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.token == "" {
		o.token = uuid.GenUUID()
	}

	call, err := c.buildCall(key)
	if err != nil {
		return 0, err
	}

	entry, seen, err := c.ledger.begin(o.token)
	if err != nil {
		return 0, err
	}
	if seen {
		logger.Info("[Dispatch] duplicate idempotency key, skip engine call",
			logger.Pair("token", o.token), logger.Pair("key", key), logger.Pair("status", entry.status))
		return entry.status, entry.err
	}

	// 引擎调用是同步的
	status, err := place(call)
	if err == nil || errors.Is(err, model.ErrOrderRejected) {
		c.ledger.finish(o.token, status, err)
	} else {
		c.ledger.forget(o.token)
	}

	rec := DispatchRecord{
		Token:  o.token,
		Key:    key,
		Method: method,
		Args:   call.Args,
		Price:  price,
		Status: status,
		Time:   time.Now().UnixMilli(),
	}
	if err != nil {
		rec.Error = err.Error()
		if errors.Is(err, model.ErrOrderRejected) {
			logger.Warn("[Dispatch] engine rejected order", logger.Pair("key", key), logger.Pair("method", method), logger.Pair("err", err.Error()))
		} else {
			logger.Error("[Dispatch] engine call failed", logger.Pair("key", key), logger.Pair("method", method), logger.Pair("err", err.Error()))
		}
	} else {
		logger.Info("[Dispatch] order placed", logger.Pair("key", key), logger.Pair("method", method),
			logger.Pair("symbol", call.Args.Symbol), logger.Pair("amount", call.Args.Amount), logger.Pair("status", status))
	}
	if c.recorder != nil {
		if rerr := c.recorder.Record(rec); rerr != nil {
			logger.Warn("[Dispatch] write audit record failed", logger.Pair("err", rerr.Error()))
		}
	}
	return status, err
}

// buildCall 在锁内解析参数，调用引擎前释放锁
func (c *core) buildCall(key string) (engine.Call, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.trades[key]
	if !ok {
		return engine.Call{}, unknownKey(key)
	}
	return engine.NewCall(cfg)
}
