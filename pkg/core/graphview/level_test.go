package graphview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamondGraph 构造菱形依赖: A -> B, A -> C, B -> D, C -> D
func diamondGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "A", Label: "采集行情", Status: StatusCompleted},
			{ID: "B", Label: "清洗数据", Status: StatusRunning},
			{ID: "C", Label: "计算因子", Status: StatusRunning},
			{ID: "D", Label: "入库归档", Status: StatusPending},
		},
		Edges: []Edge{
			{ID: "e1", Source: "A", Target: "B"},
			{ID: "e2", Source: "A", Target: "C"},
			{ID: "e3", Source: "B", Target: "D"},
			{ID: "e4", Source: "C", Target: "D"},
		},
	}
}

func TestAssignLevels_Diamond(t *testing.T) {
	levels := AssignLevels(diamondGraph())

	// D经两条路径可达，取两条路径中的最大深度
	assert.Equal(t, 0, levels["A"])
	assert.Equal(t, 1, levels["B"])
	assert.Equal(t, 1, levels["C"])
	assert.Equal(t, 2, levels["D"])
}

func TestAssignLevels_RootsAtZero(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "r1"}, {ID: "r2"}, {ID: "c1"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "r1", Target: "c1"},
		},
	}

	levels := AssignLevels(g)

	// 无入边的节点层级必须为0
	assert.Equal(t, 0, levels["r1"])
	assert.Equal(t, 0, levels["r2"])
	assert.Equal(t, 1, levels["c1"])
}

func TestAssignLevels_StrictlyGreaterThanPredecessors(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}, {ID: "f"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "c"},
			{ID: "e3", Source: "b", Target: "d"},
			{ID: "e4", Source: "c", Target: "d"},
			{ID: "e5", Source: "d", Target: "e"},
			{ID: "e6", Source: "a", Target: "e"},
			{ID: "e7", Source: "e", Target: "f"},
		},
	}

	levels := AssignLevels(g)

	// 无环图中每条边的终点层级严格大于起点层级
	for _, edge := range g.Edges {
		src, ok := levels[edge.Source]
		require.True(t, ok, "起点%s应已分配层级", edge.Source)
		dst, ok := levels[edge.Target]
		require.True(t, ok, "终点%s应已分配层级", edge.Target)
		assert.Greater(t, dst, src, "边%s->%s违反层级约束", edge.Source, edge.Target)
	}
}

func TestAssignLevels_MaxDepthAcrossPaths(t *testing.T) {
	// 短路边 a->c 不应把 c 拉回第1层
	g := &Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "c"},
			{ID: "e3", Source: "a", Target: "c"},
		},
	}

	levels := AssignLevels(g)

	assert.Equal(t, 0, levels["a"])
	assert.Equal(t, 1, levels["b"])
	assert.Equal(t, 2, levels["c"])
}

func TestAssignLevels_EmptyGraph(t *testing.T) {
	levels := AssignLevels(&Graph{})
	assert.Empty(t, levels)
}

func TestAssignLevels_IsolatedNodeIsRoot(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "solo"}},
	}

	levels := AssignLevels(g)

	level, ok := levels["solo"]
	require.True(t, ok)
	assert.Equal(t, 0, level)
}

func TestAssignLevels_CycleNodesOmitted(t *testing.T) {
	// x<->y 构成环且无根可达，不应出现在层级映射中
	g := &Graph{
		Nodes: []Node{{ID: "r"}, {ID: "x"}, {ID: "y"}},
		Edges: []Edge{
			{ID: "e1", Source: "x", Target: "y"},
			{ID: "e2", Source: "y", Target: "x"},
		},
	}

	levels := AssignLevels(g)

	assert.Equal(t, 0, levels["r"])
	_, hasX := levels["x"]
	_, hasY := levels["y"]
	assert.False(t, hasX)
	assert.False(t, hasY)
}

func TestAssignLevels_CyclicPayloadTerminates(t *testing.T) {
	// 根可达的环：深度预算截断传播，调用必须返回而不是无限递归
	g := &Graph{
		Nodes: []Node{{ID: "r"}, {ID: "x"}, {ID: "y"}},
		Edges: []Edge{
			{ID: "e1", Source: "r", Target: "x"},
			{ID: "e2", Source: "x", Target: "y"},
			{ID: "e3", Source: "y", Target: "x"},
		},
	}

	levels := AssignLevels(g)

	assert.Equal(t, 0, levels["r"])
	// 环内节点层级被截断在预算内，具体取值不作承诺
	assert.LessOrEqual(t, levels["x"], len(g.Nodes)+1)
	assert.LessOrEqual(t, levels["y"], len(g.Nodes)+1)
}
