package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tradebridge/conf"
	"tradebridge/internal/client"
	"tradebridge/internal/engine"
	"tradebridge/internal/exchange"
	"tradebridge/internal/trade"
	"tradebridge/pkg/logger"
	"tradebridge/pkg/recorder"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// 同步账户状态并按配置下单

/*
示例

go run ./cmd/tradebridge -config conf/config.yaml -days 3
go run ./cmd/tradebridge -config conf/config.yaml -place btc-dca -idempotency signal-20250810-01
go run ./cmd/tradebridge -config conf/config.yaml -place eth-grid -price 4324.70 -async
*/

type tradeClient interface {
	SetTrade(spec trade.Spec) error
	Keys() []string
	State(key string) (trade.State, error)
	PlaceOrderbookOrder(ctx context.Context, key string, opts ...client.DispatchOption) (int32, error)
	PlaceCustomOrder(ctx context.Context, key string, price decimal.Decimal, opts ...client.DispatchOption) (int32, error)
}

func main() {
	configPath := flag.String("config", "conf/config.yaml", "配置文件路径")
	days := flag.Int("days", 0, "同步最近几天的订单和成交，0 使用配置文件的值")
	async := flag.Bool("async", false, "使用异步客户端，每轮同步结束关闭连接")
	place := flag.String("place", "", "同步完成后下单的交易 key")
	price := flag.String("price", "", "指定价格下单，为空时按盘口价")
	idempotency := flag.String("idempotency", "", "下单幂等 key")
	flag.Parse()

	// 加载配置文件
	if err := conf.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appCfg := conf.AppConfig
	if err := conf.LoadEnv(&appCfg); err != nil {
		log.Fatalf("Failed to load env: %v", err)
	}
	logger.InitLogger(&appCfg.Log, appCfg.AppName)
	defer logger.Sync()

	if *days <= 0 {
		*days = appCfg.State.Days
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &appCfg, *days, *async, *place, *price, *idempotency); err != nil {
		logger.Error("tradebridge exit with error", logger.Pair("err", err.Error()))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg *conf.Config, days int, async bool, place, price, idempotency string) error {
	var eng engine.Engine
	if appCfg.Engine.Library != "" {
		eng = engine.NewLibrary(appCfg.Engine.Library)
	} else {
		logger.Warn("engine library not configured, orders go to the simulated engine")
		eng = engine.NewSimulated()
	}

	opts := []client.Option{client.WithLedgerSize(appCfg.Engine.LedgerSize)}
	if appCfg.Engine.AuditFile != "" {
		opts = append(opts, client.WithRecorder(recorder.NewJSONFileRecorder(appCfg.Engine.AuditFile)))
	}
	cfg := client.NewConfiguration(eng, opts...)
	cfg.NewExchange = func(c conf.ExchangeConfig) (exchange.Exchange, error) {
		ex, err := exchange.New(c)
		if err != nil {
			return nil, err
		}
		if sim, ok := ex.(*exchange.SimulatedExchange); ok {
			seedSimulated(sim, appCfg.Trades)
		}
		return ex, nil
	}

	var (
		cl      tradeClient
		refresh func(ctx context.Context) error
	)
	if async {
		ac, err := cfg.AsyncClient(ctx, appCfg.Exchange, appCfg.Sandbox)
		if err != nil {
			return err
		}
		cl = ac
		refresh = func(ctx context.Context) error { return <-ac.Go(ctx, days) }
	} else {
		bc, err := cfg.Client(ctx, appCfg.Exchange, appCfg.Sandbox)
		if err != nil {
			return err
		}
		defer bc.Close(context.WithoutCancel(ctx))
		cl = bc
		refresh = func(ctx context.Context) error { return bc.SetState(ctx, days) }
	}

	for _, entry := range appCfg.Trades {
		spec, err := trade.ParseSpec(entry.Key, entry.Symbol, entry.Calculation, entry.Amount, entry.Side)
		if err != nil {
			return err
		}
		if err := cl.SetTrade(spec); err != nil {
			return err
		}
	}

	if err := refresh(ctx); err != nil {
		return err
	}

	states := make(map[string]trade.State, len(appCfg.Trades))
	for _, key := range cl.Keys() {
		st, err := cl.State(key)
		if err != nil {
			return err
		}
		states[key] = st
	}
	out, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if place == "" {
		return nil
	}
	var dispatchOpts []client.DispatchOption
	if idempotency != "" {
		dispatchOpts = append(dispatchOpts, client.WithIdempotencyKey(idempotency))
	}
	var status int32
	if price != "" {
		p, perr := decimal.NewFromString(price)
		if perr != nil {
			return fmt.Errorf("invalid price %q: %w", price, perr)
		}
		status, err = cl.PlaceCustomOrder(ctx, place, p, dispatchOpts...)
	} else {
		status, err = cl.PlaceOrderbookOrder(ctx, place, dispatchOpts...)
	}
	if err != nil {
		return err
	}
	fmt.Printf("order placed: key=%s status=%d\n", place, status)
	return nil
}

// seedSimulated 模拟交易所没有行情数据，按配置的交易对补上市场精度
func seedSimulated(sim *exchange.SimulatedExchange, trades []conf.TradeEntry) {
	for _, t := range trades {
		spec, err := trade.ParseSpec(t.Key, t.Symbol, t.Calculation, t.Amount, t.Side)
		if err != nil {
			continue
		}
		sim.AddMarket(spec.Symbol, 8, 2)
	}
}
