package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// 配置加载（API密钥等）

type ExchangeConfig struct {
	Name           string `yaml:"name"` // okx / simulated
	ApiKey         string `yaml:"apiKey"`
	SecretKey      string `yaml:"secretKey"`
	Password       string `yaml:"password"`
	Simulated      bool   `yaml:"simulated"`       // okx 模拟盘
	TimeoutSeconds int    `yaml:"timeout-seconds"` // 单次请求超时
}

type EngineConfig struct {
	Library    string `yaml:"library"`     // 执行引擎动态库路径，为空时使用模拟引擎
	AuditFile  string `yaml:"audit-file"`  // 下单审计日志（JSON lines）
	LedgerSize int    `yaml:"ledger-size"` // 幂等记录的最大条数
}

type StateConfig struct {
	Days int `yaml:"days"` // 同步最近几天的订单和成交
}

type TradeEntry struct {
	Key         string `yaml:"key"`
	Symbol      string `yaml:"symbol"`      // BTC/USDT
	Calculation string `yaml:"calculation"` // fixed_base_from_percentage / fixed_quote_from_percentage / fixed_base / fixed_quote
	Amount      string `yaml:"amount"`
	Side        string `yaml:"side"` // buy / sell
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

type Config struct {
	AppName string `yaml:"app_name"`
	Sandbox bool   `yaml:"sandbox"` // 执行引擎走测试下单

	Log      LogConfig      `yaml:"log"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Engine   EngineConfig   `yaml:"engine"`
	State    StateConfig    `yaml:"state"`
	Trades   []TradeEntry   `yaml:"trades"`
}

var AppConfig Config

func LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Read config file error %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("Unmarshal config yaml error: %w", err)
	}
	AppConfig = cfg
	return nil
}

func Default() Config {
	return Config{
		AppName: "tradebridge",
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
		Exchange: ExchangeConfig{
			Name:           "simulated",
			TimeoutSeconds: 10,
		},
		Engine: EngineConfig{
			LedgerSize: 1024,
		},
		State: StateConfig{
			Days: 5,
		},
	}
}

// LoadEnv 读取 .env，环境变量优先于配置文件
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Exchange.ApiKey = v
	}
	if v := os.Getenv("SECRET"); v != "" {
		cfg.Exchange.SecretKey = v
	}
	if v := os.Getenv("PASSPHRASE"); v != "" {
		cfg.Exchange.Password = v
	}
	if v := os.Getenv("SANDBOX"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("SANDBOX: %w", err)
		}
		cfg.Sandbox = b
	}
	if v := os.Getenv("ENGINE_LIBRARY"); v != "" {
		cfg.Engine.Library = v
	}
	return nil
}
