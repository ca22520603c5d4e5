package client

import (
	"fmt"
	"sync"

	"tradebridge/internal/model"

	lru "github.com/hashicorp/golang-lru"
)

const defaultLedgerSize = 1024

type ledgerEntry struct {
	done   bool
	status int32
	err    error
}

// ledger 记录幂等 key 对应的下单结果，容量有限，最久未使用的先淘汰
type ledger struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newLedger(size int) (*ledger, error) {
	if size <= 0 {
		size = defaultLedgerSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ledger{cache: cache}, nil
}

// begin 占用 token。已完成的返回记录的结果，仍在执行的返回 ErrDispatchInFlight。
func (l *ledger) begin(token string) (entry ledgerEntry, seen bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.cache.Get(token); ok {
		entry = v.(ledgerEntry)
		if !entry.done {
			return entry, true, fmt.Errorf("%w: %s", model.ErrDispatchInFlight, token)
		}
		return entry, true, nil
	}
	l.cache.Add(token, ledgerEntry{})
	return ledgerEntry{}, false, nil
}

func (l *ledger) finish(token string, status int32, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Add(token, ledgerEntry{done: true, status: status, err: err})
}

// forget 引擎没有执行（加载失败等），释放 token 允许用同一个 key 重试
func (l *ledger) forget(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Remove(token)
}

func (l *ledger) len() int {
	return l.cache.Len()
}
