package logger

import (
	"os"
	"sync"
	"time"

	"tradebridge/conf"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	log   = zap.NewNop()
	sugar = log.Sugar()
)

const defaultTimeFormat = "2006-01-02 15:04:05.000"

// InitLogger 初始化全局日志：控制台 + 按大小切割的日志文件
func InitLogger(cfg *conf.LogConfig, appName string) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core
	if cfg.Console || cfg.FileName == "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level))
	}
	if cfg.FileName != "" {
		writer := &lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(writer), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).
		With(zap.String("app", appName))
	Set(l)
}

// Set 替换全局 logger，测试里可以传入 zaptest / observer 的 logger
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
	sugar = l.Sugar()
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func S() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Sync() {
	_ = L().Sync()
}

func Pair(key string, v any) zap.Field {
	return zap.Any(key, v)
}

func Cost(key string, d time.Duration) zap.Field {
	return zap.Duration(key, d)
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

func Debugf(format string, args ...any) { S().Debugf(format, args...) }
func Infof(format string, args ...any)  { S().Infof(format, args...) }
func Warnf(format string, args ...any)  { S().Warnf(format, args...) }
func Errorf(format string, args ...any) { S().Errorf(format, args...) }
func Fatalf(format string, args ...any) { S().Fatalf(format, args...) }
