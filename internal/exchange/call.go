package exchange

import (
	"context"
	"time"
)

const defaultCallTimeout = 10 * time.Second

type callResult[T any] struct {
	v   T
	raw []byte
	err error
}

// goex 的私有接口没有 context，放到协程里执行，用 ctx 和超时控制等待
func call[T any](ctx context.Context, timeout time.Duration, fn func() (T, []byte, error)) (T, []byte, error) {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// 带缓冲，超时返回后协程仍能写入并退出
	ch := make(chan callResult[T], 1)
	go func() {
		v, raw, err := fn()
		ch <- callResult[T]{v: v, raw: raw, err: err}
	}()

	select {
	case <-timeoutCtx.Done():
		var zero T
		return zero, nil, timeoutCtx.Err()
	case r := <-ch:
		return r.v, r.raw, r.err
	}
}
