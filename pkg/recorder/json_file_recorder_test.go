package recorder

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileRecorder_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "dispatch.jsonl")
	r := NewJSONFileRecorder(path)

	require.NoError(t, r.Record(map[string]any{"key": "btc", "status": 1}))
	require.NoError(t, r.Record(map[string]any{"key": "eth", "status": 0}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var keys []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		keys = append(keys, line["key"].(string))
	}
	assert.Equal(t, []string{"btc", "eth"}, keys)
}
