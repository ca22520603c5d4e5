package uuid

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// SnowNode 雪花算法节点，每个进程内的节点号不能重复
type SnowNode struct {
	node *snowflake.Node
}

// NewNode 节点号范围 0-1023
func NewNode(id int64) (*SnowNode, error) {
	node, err := snowflake.NewNode(id)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", id, err)
	}
	return &SnowNode{node: node}, nil
}

func (s *SnowNode) GenSnowID() int64 {
	return s.node.Generate().Int64()
}

func (s *SnowNode) GenSnowStr() string {
	return s.node.Generate().String()
}

// GenUUID 随机 uuid，用作幂等 key
func GenUUID() string {
	return uuid.NewString()
}
