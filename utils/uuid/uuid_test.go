package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowNode(t *testing.T) {
	n, err := NewNode(3)
	require.NoError(t, err)
	a, b := n.GenSnowID(), n.GenSnowID()
	assert.Greater(t, b, a)
	assert.NotEmpty(t, n.GenSnowStr())
}

func TestNewNode_InvalidID(t *testing.T) {
	for _, id := range []int64{-1, 1024} {
		n, err := NewNode(id)
		assert.Error(t, err, "id %d", id)
		assert.Nil(t, n)
	}
}

func TestGenUUID(t *testing.T) {
	assert.Len(t, GenUUID(), 36)
	assert.NotEqual(t, GenUUID(), GenUUID())
}
