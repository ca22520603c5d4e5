package client

import (
	"context"

	"tradebridge/internal/engine"
	"tradebridge/internal/exchange"
	"tradebridge/pkg/logger"

	"go.uber.org/multierr"
)

// AsyncClient 可以和其它任务并发运行的客户端。
// 每次网络请求前检查 ctx，一轮同步结束（无论成功失败）关闭一次交易所连接。
type AsyncClient struct {
	*core
}

func NewAsync(ex exchange.Exchange, eng engine.Engine, sandbox bool, opts ...Option) (*AsyncClient, error) {
	c, err := newCore(ex, eng, sandbox, opts...)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{core: c}, nil
}

// SetState 返回本轮的原始错误，关闭连接失败时追加在后面
func (a *AsyncClient) SetState(ctx context.Context, days int) (err error) {
	defer func() {
		if cerr := a.exchange.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Warn("[Refresh] close exchange failed", logger.Pair("err", cerr.Error()))
			err = multierr.Append(err, cerr)
		}
	}()
	return a.refresh(ctx, days, ctx.Err)
}

// Go 在单独的 goroutine 里跑一轮同步，结果写入返回的 channel 后关闭
func (a *AsyncClient) Go(ctx context.Context, days int) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- a.SetState(ctx, days)
	}()
	return done
}
