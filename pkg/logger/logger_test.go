package logger

import (
	"os"
	"path/filepath"
	"testing"

	"tradebridge/conf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetAndPair(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := L()
	Set(zap.New(core))
	defer Set(prev)

	Info("[Refresh] done", Pair("key", "btc"), Pair("orders", 3))
	Debugf("orders=%d", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "[Refresh] done", entries[0].Message)
	assert.Equal(t, "btc", entries[0].ContextMap()["key"])
	assert.Equal(t, "orders=2", entries[1].Message)
}

func TestInitLogger_File(t *testing.T) {
	prev := L()
	defer Set(prev)

	path := filepath.Join(t.TempDir(), "app.log")
	InitLogger(&conf.LogConfig{Level: "debug", FileName: path, MaxSize: 1}, "tradebridge")
	Info("hello", Pair("k", "v"))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"app":"tradebridge"`)
}
