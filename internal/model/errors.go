package model

import "errors"

var (
	// ErrConfiguration 交易配置错误：未知的 key、计算方式，或余额/市场数据尚未就绪
	ErrConfiguration = errors.New("configuration error")
	// ErrForeignCall 执行引擎调用失败
	ErrForeignCall = errors.New("foreign call error")
	// ErrOrderRejected 引擎已执行但返回状态 0，总是和 ErrForeignCall 一起出现
	ErrOrderRejected = errors.New("engine returned status 0")
	// ErrDispatchInFlight 相同幂等 key 的下单仍在执行
	ErrDispatchInFlight = errors.New("dispatch with the same idempotency key is in flight")
)
