// Package graphview 提供任务链DAG的可视化投影：从引擎返回的原始节点/边数据
// 计算层级、分配坐标，并组装成前端渲染组件可直接消费的描述符。
// 本包只做展示投影，不承担任何执行语义——DAG的调度执行在上游引擎侧完成。
package graphview

import (
	"encoding/json"
)

// Status 节点执行状态（对外导出）
type Status string

const (
	StatusPending   Status = "pending"   // 等待调度
	StatusQueued    Status = "queued"    // 已入队
	StatusRunning   Status = "running"   // 运行中
	StatusCompleted Status = "completed" // 已完成
	StatusFailed    Status = "failed"    // 已失败
	StatusCancelled Status = "cancelled" // 已取消
	StatusSkipped   Status = "skipped"   // 已跳过
)

// validStatuses 已知状态集合
var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusQueued:    true,
	StatusRunning:   true,
	StatusCompleted: true,
	StatusFailed:    true,
	StatusCancelled: true,
	StatusSkipped:   true,
}

// ParseStatus 解析状态字符串，未知或缺失的状态回退为pending（对外导出）
func ParseStatus(s string) Status {
	status := Status(s)
	if validStatuses[status] {
		return status
	}
	return StatusPending
}

// Node 任务链节点（对外导出）
// 瞬态数据：每次拉取后重建，客户端不持久化
type Node struct {
	ID       string   `json:"id"`                 // 节点唯一ID（图内唯一）
	Label    string   `json:"label"`              // 显示名称
	TaskType string   `json:"task_type"`          // 任务类型标签
	Status   Status   `json:"status"`             // 执行状态
	Progress *float64 `json:"progress,omitempty"` // 进度 [0,1]（可选）
	Error    string   `json:"error,omitempty"`    // 错误信息（可选）
}

// Edge 任务链有向边（对外导出）
// source/target必须引用已存在的节点ID；悬空边属于上游数据错误，不做特殊处理
type Edge struct {
	ID     string `json:"id"`              // 边唯一ID
	Source string `json:"source"`          // 起点节点ID
	Target string `json:"target"`          // 终点节点ID
	Label  string `json:"label,omitempty"` // 标签/条件文本（可选）
}

// Position 节点渲染坐标（对外导出）
// 由(层级, 层内序号)推导，随每次渲染重新计算
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Graph 任务链图（对外导出）
type Graph struct {
	Nodes    []Node            `json:"nodes"`              // 节点列表（保持上游顺序）
	Edges    []Edge            `json:"edges"`              // 边列表
	Metadata map[string]string `json:"metadata,omitempty"` // 可选元数据
}

// rawGraph 上游原始载荷的容错解析结构
type rawGraph struct {
	Nodes    []json.RawMessage `json:"nodes"`
	Edges    []json.RawMessage `json:"edges"`
	Metadata map[string]any    `json:"metadata"`
}

// ParseGraph 解析引擎返回的原始图载荷（对外导出）
// 容错语义：缺失或类型错误的字段回退默认值（label回退节点ID、status回退pending、
// progress非法视为缺失），整体载荷无法解析时返回空图——展示层永不因脏数据硬失败。
func ParseGraph(raw []byte) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}

	var rg rawGraph
	if err := json.Unmarshal(raw, &rg); err != nil {
		return g
	}

	for _, rawNode := range rg.Nodes {
		node, ok := parseNode(rawNode)
		if !ok {
			continue // 无ID的节点无法渲染，跳过
		}
		g.Nodes = append(g.Nodes, node)
	}

	for _, rawEdge := range rg.Edges {
		edge, ok := parseEdge(rawEdge)
		if !ok {
			continue
		}
		g.Edges = append(g.Edges, edge)
	}

	if len(rg.Metadata) > 0 {
		g.Metadata = make(map[string]string, len(rg.Metadata))
		for k, v := range rg.Metadata {
			if s, ok := v.(string); ok {
				g.Metadata[k] = s
			}
		}
	}

	return g
}

// parseNode 解析单个节点条目，逐字段容错
func parseNode(raw json.RawMessage) (Node, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Node{}, false
	}

	id := stringField(fields, "id")
	if id == "" {
		return Node{}, false
	}

	node := Node{ID: id, Status: StatusPending}

	data, _ := fields["data"].(map[string]any)
	node.Label = stringField(data, "label")
	if node.Label == "" {
		node.Label = id // 缺失label时回退节点ID
	}
	node.TaskType = stringField(data, "taskType")
	node.Status = ParseStatus(stringField(data, "status"))
	node.Error = stringField(data, "error")

	if p, ok := floatField(data, "progress"); ok && p >= 0 && p <= 1 {
		node.Progress = &p
	}

	return node, true
}

// parseEdge 解析单个边条目
func parseEdge(raw json.RawMessage) (Edge, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Edge{}, false
	}

	edge := Edge{
		ID:     stringField(fields, "id"),
		Source: stringField(fields, "source"),
		Target: stringField(fields, "target"),
		Label:  stringField(fields, "label"),
	}
	if edge.Source == "" || edge.Target == "" {
		return Edge{}, false
	}
	if edge.ID == "" {
		edge.ID = edge.Source + "->" + edge.Target
	}
	return edge, true
}

// stringField 从map中取字符串字段，类型不符返回空串
func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// floatField 从map中取数值字段
func floatField(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	if f, ok := m[key].(float64); ok {
		return f, true
	}
	return 0, false
}

// NodeByID 按ID查找节点（对外导出）
func (g *Graph) NodeByID(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}
