package graphview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLayout_XFromLevel(t *testing.T) {
	opts := DefaultLayoutOptions()
	layout := ComputeLayout(diamondGraph(), opts)

	assert.Equal(t, opts.BaseX, layout.Positions["A"].X)
	assert.Equal(t, opts.HSpacing+opts.BaseX, layout.Positions["B"].X)
	assert.Equal(t, opts.HSpacing+opts.BaseX, layout.Positions["C"].X)
	assert.Equal(t, opts.HSpacing*2+opts.BaseX, layout.Positions["D"].X)
}

func TestComputeLayout_YStepWithinLevel(t *testing.T) {
	// 同层节点y坐标按插入顺序以固定步长严格递增
	g := &Graph{
		Nodes: []Node{
			{ID: "root"},
			{ID: "s1"}, {ID: "s2"}, {ID: "s3"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "root", Target: "s1"},
			{ID: "e2", Source: "root", Target: "s2"},
			{ID: "e3", Source: "root", Target: "s3"},
		},
	}

	opts := DefaultLayoutOptions()
	layout := ComputeLayout(g, opts)

	siblings := []string{"s1", "s2", "s3"}
	for i, id := range siblings {
		pos, ok := layout.Positions[id]
		require.True(t, ok)
		assert.Equal(t, opts.VSpacing*float64(i)+opts.BaseY, pos.Y)
	}
	// 严格递增
	assert.Less(t, layout.Positions["s1"].Y, layout.Positions["s2"].Y)
	assert.Less(t, layout.Positions["s2"].Y, layout.Positions["s3"].Y)
}

func TestComputeLayout_UnleveledNodeFallsBackToLevelZero(t *testing.T) {
	// 环内节点未分配层级，坐标计算时回落到第0层（可能与真实根节点重叠）
	g := &Graph{
		Nodes: []Node{{ID: "r"}, {ID: "x"}, {ID: "y"}},
		Edges: []Edge{
			{ID: "e1", Source: "x", Target: "y"},
			{ID: "e2", Source: "y", Target: "x"},
		},
	}

	opts := DefaultLayoutOptions()
	layout := ComputeLayout(g, opts)

	assert.Equal(t, opts.BaseX, layout.Positions["x"].X)
	assert.Equal(t, opts.BaseX, layout.Positions["y"].X)
	// 三个节点都落在第0层，按插入顺序纵向堆叠
	assert.Equal(t, opts.BaseY, layout.Positions["r"].Y)
	assert.Equal(t, opts.VSpacing+opts.BaseY, layout.Positions["x"].Y)
	assert.Equal(t, opts.VSpacing*2+opts.BaseY, layout.Positions["y"].Y)
}

func TestComputeLayout_EmptyGraph(t *testing.T) {
	layout := ComputeLayout(&Graph{}, DefaultLayoutOptions())

	assert.Empty(t, layout.Positions)
	assert.Empty(t, layout.Levels)
}

func TestComputeLayout_DeterministicForFixedInput(t *testing.T) {
	g := diamondGraph()
	opts := DefaultLayoutOptions()

	first := ComputeLayout(g, opts)
	second := ComputeLayout(g, opts)

	assert.Equal(t, first.Positions, second.Positions)
	assert.Equal(t, first.Levels, second.Levels)
}
