package engine

// OrderArgs 传给执行引擎的固定参数，顺序与动态库导出函数一致
type OrderArgs struct {
	Symbol          string `json:"symbol"`      // BASEQUOTE，无分隔符
	Side            int32  `json:"side"`        // 0 买 1 卖
	AmountKind      int32  `json:"amount_kind"` // 0 基础币 1 计价币
	Amount          string `json:"amount"`      // 十进制文本，不用浮点
	AmountPrecision int32  `json:"amount_precision"`
	Mode            int32  `json:"mode"` // 0 实盘 1 测试
}

// Engine 外部执行引擎。返回的状态码原样透传，引擎用 0 表示失败，其它为订单号。
type Engine interface {
	PlaceOrder(args OrderArgs) (int32, error)
	TradeCustomPrice(args OrderArgs, price string, pricePrecision int32) (int32, error)
}
