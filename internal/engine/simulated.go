package engine

import (
	"fmt"
	"sync"
)

// SimulatedCall 模拟引擎收到的一次调用
type SimulatedCall struct {
	Method         string
	Args           OrderArgs
	Price          string
	PricePrecision int32
	Status         int32
}

// Simulated 模拟执行引擎：订单号从 1 开始递增，记录每次调用
type Simulated struct {
	mu     sync.Mutex
	nextID int32
	calls  []SimulatedCall
	fail   map[string]error
	reject bool
}

func NewSimulated() *Simulated {
	return &Simulated{
		fail: make(map[string]error),
	}
}

// FailOn 指定方法返回错误（模拟动态库加载失败），err 为 nil 时恢复
func (s *Simulated) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, method)
		return
	}
	s.fail[method] = err
}

// Reject 之后的下单都返回状态 0
func (s *Simulated) Reject(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = reject
}

func (s *Simulated) Calls() []SimulatedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SimulatedCall(nil), s.calls...)
}

func (s *Simulated) place(call SimulatedCall) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.fail[call.Method]; ok {
		return 0, fmt.Errorf("simulated %s: %w", call.Method, err)
	}
	if !s.reject {
		s.nextID++
		call.Status = s.nextID
	}
	s.calls = append(s.calls, call)
	return call.Status, nil
}

func (s *Simulated) PlaceOrder(args OrderArgs) (int32, error) {
	return s.place(SimulatedCall{Method: "PlaceOrder", Args: args})
}

func (s *Simulated) TradeCustomPrice(args OrderArgs, price string, pricePrecision int32) (int32, error) {
	return s.place(SimulatedCall{Method: "TradeCustomPrice", Args: args, Price: price, PricePrecision: pricePrecision})
}
