package graphview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGraph_FieldFallbacks(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "n1", "data": {"label": "采集行情", "taskType": "fetch", "status": "running", "progress": 0.4}},
			{"id": "n2", "data": {"status": "奇怪状态"}},
			{"id": "n3", "data": {"progress": 1.5}},
			{"data": {"label": "没有ID的节点"}}
		],
		"edges": [
			{"source": "n1", "target": "n2"},
			{"id": "e-custom", "source": "n2", "target": "n3", "label": "成功时"},
			{"source": "n1"}
		],
		"metadata": {"chain_id": "chain-1", "version": 3}
	}`)

	g := ParseGraph(raw)

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "采集行情", g.Nodes[0].Label)
	assert.Equal(t, "fetch", g.Nodes[0].TaskType)
	assert.Equal(t, StatusRunning, g.Nodes[0].Status)
	require.NotNil(t, g.Nodes[0].Progress)
	assert.Equal(t, 0.4, *g.Nodes[0].Progress)

	// 缺失label回退节点ID，未知status回退pending
	assert.Equal(t, "n2", g.Nodes[1].Label)
	assert.Equal(t, StatusPending, g.Nodes[1].Status)

	// 超出[0,1]的progress视为缺失
	assert.Nil(t, g.Nodes[2].Progress)

	require.Len(t, g.Edges, 2)
	// 缺ID的边用source->target拼出稳定ID
	assert.Equal(t, "n1->n2", g.Edges[0].ID)
	assert.Equal(t, "e-custom", g.Edges[1].ID)
	assert.Equal(t, "成功时", g.Edges[1].Label)

	// 元数据只保留字符串值
	assert.Equal(t, map[string]string{"chain_id": "chain-1"}, g.Metadata)
}

func TestParseGraph_UnparseablePayloadReturnsEmptyGraph(t *testing.T) {
	g := ParseGraph([]byte("这不是JSON"))

	require.NotNil(t, g)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestParseStatus_UnknownFallsBackToPending(t *testing.T) {
	assert.Equal(t, StatusCompleted, ParseStatus("completed"))
	assert.Equal(t, StatusPending, ParseStatus(""))
	assert.Equal(t, StatusPending, ParseStatus("exploded"))
}

func TestStyleFor_EveryKnownStatusHasStyle(t *testing.T) {
	for status := range validStatuses {
		style := StyleFor(status)
		assert.NotEmpty(t, style.Background, "状态%s缺少背景色", status)
		assert.NotEmpty(t, style.Icon, "状态%s缺少图标", status)
	}
	// 未知状态用pending样式
	assert.Equal(t, StyleFor(StatusPending), StyleFor(Status("weird")))
}

func TestBuildDescriptors_DefaultsAndStatePassthrough(t *testing.T) {
	g := diamondGraph()
	layout := ComputeLayout(g, DefaultLayoutOptions())

	rg := BuildDescriptors(g, layout, DescriptorOptions{})

	require.Len(t, rg.Nodes, 4)
	require.Len(t, rg.Edges, 4)

	for _, n := range rg.Nodes {
		assert.Equal(t, "taskNode", n.Type)
		assert.Equal(t, layout.Positions[n.ID], n.Position)
	}

	byID := make(map[string]RenderNode, len(rg.Nodes))
	for _, n := range rg.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, "采集行情", byID["A"].Data.Label)
	assert.Equal(t, StatusCompleted, byID["A"].Data.Status)
	assert.Equal(t, StyleFor(StatusCompleted), byID["A"].Data.Style)
	assert.Equal(t, StyleFor(StatusRunning), byID["B"].Data.Style)

	// 起点处于running的边才流动
	for _, e := range rg.Edges {
		assert.Equal(t, defaultMarker, e.MarkerEnd)
		assert.Equal(t, e.Source == "B" || e.Source == "C", e.Animated, "边%s", e.ID)
	}
}

func TestBuildDescriptors_CustomOptions(t *testing.T) {
	g := diamondGraph()
	layout := ComputeLayout(g, DefaultLayoutOptions())
	marker := ArrowMarker{Type: "arrow", Width: 20, Height: 20, Color: "#000"}

	rg := BuildDescriptors(g, layout, DescriptorOptions{NodeType: "customNode", Marker: marker})

	assert.Equal(t, "customNode", rg.Nodes[0].Type)
	assert.Equal(t, marker, rg.Edges[0].MarkerEnd)
}

func TestProject_EndToEnd(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "fetch", "data": {"label": "拉取行情", "status": "completed"}},
			{"id": "store", "data": {"label": "入库", "status": "pending"}}
		],
		"edges": [{"source": "fetch", "target": "store"}]
	}`)

	opts := DefaultLayoutOptions()
	rg := Project(raw, opts, DescriptorOptions{})

	require.Len(t, rg.Nodes, 2)
	assert.Equal(t, opts.BaseX, rg.Nodes[0].Position.X)
	assert.Equal(t, opts.HSpacing+opts.BaseX, rg.Nodes[1].Position.X)
	assert.Equal(t, StyleFor(StatusCompleted), rg.Nodes[0].Data.Style)
}

func TestExportDOT_ContainsQuotedNodesAndStatusColors(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "fetch", Label: "拉取行情", Status: StatusCompleted},
			{ID: "store", Label: "入库", Status: StatusFailed},
		},
		Edges: []Edge{
			{ID: "e1", Source: "fetch", Target: "store", Label: "成功时"},
		},
	}

	dot, err := ExportDOT(g, "chain_demo")
	require.NoError(t, err)

	assert.Contains(t, dot, "digraph chain_demo")
	assert.Contains(t, dot, "rankdir=LR")
	assert.Contains(t, dot, `"拉取行情"`)
	assert.Contains(t, dot, StyleFor(StatusCompleted).Background)
	assert.Contains(t, dot, StyleFor(StatusFailed).Background)
	assert.Contains(t, dot, `"成功时"`)
	assert.True(t, strings.Contains(dot, `"fetch"`) && strings.Contains(dot, `"store"`))
}

func TestExportDOT_EmptyNameDefaultsToChain(t *testing.T) {
	dot, err := ExportDOT(&Graph{Nodes: []Node{{ID: "a", Label: "a"}}}, "")
	require.NoError(t, err)
	assert.Contains(t, dot, "digraph chain")
}

func TestExecutionPlan_DiamondStages(t *testing.T) {
	plan, err := ExecutionPlan(diamondGraph())
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"A"}, {"B", "C"}, {"D"}}, plan.Stages)
	assert.Equal(t, 3, plan.Depth)
	assert.Equal(t, 2, plan.Width)
}

func TestExecutionPlan_CycleIsRejected(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "x"}, {ID: "y"}},
		Edges: []Edge{
			{ID: "e1", Source: "x", Target: "y"},
			{ID: "e2", Source: "y", Target: "x"},
		},
	}

	_, err := ExecutionPlan(g)
	require.Error(t, err)
}

func TestExecutionPlan_DanglingEdgeIsRejected(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "x"}},
		Edges: []Edge{{ID: "e1", Source: "x", Target: "ghost"}},
	}

	_, err := ExecutionPlan(g)
	require.Error(t, err)
}
