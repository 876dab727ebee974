package graphview

// NodeStyle 节点渲染样式（对外导出）
type NodeStyle struct {
	Color       string `json:"color"`        // 主色
	Background  string `json:"background"`   // 背景色
	BorderColor string `json:"border_color"` // 边框色
	Icon        string `json:"icon"`         // 状态图标
}

// statusStyles 状态 -> 渲染样式的变体映射表
// 有限枚举到渲染参数的表驱动分发，新增状态只需扩表
var statusStyles = map[Status]NodeStyle{
	StatusPending:   {Color: "#8c8c8c", Background: "#fafafa", BorderColor: "#d9d9d9", Icon: "⏳"},
	StatusQueued:    {Color: "#1677ff", Background: "#e6f4ff", BorderColor: "#91caff", Icon: "📥"},
	StatusRunning:   {Color: "#1677ff", Background: "#e6f4ff", BorderColor: "#1677ff", Icon: "🔄"},
	StatusCompleted: {Color: "#52c41a", Background: "#f6ffed", BorderColor: "#b7eb8f", Icon: "✅"},
	StatusFailed:    {Color: "#ff4d4f", Background: "#fff2f0", BorderColor: "#ffccc7", Icon: "❌"},
	StatusCancelled: {Color: "#faad14", Background: "#fffbe6", BorderColor: "#ffe58f", Icon: "🛑"},
	StatusSkipped:   {Color: "#bfbfbf", Background: "#f5f5f5", BorderColor: "#d9d9d9", Icon: "⏭️"},
}

// StyleFor 获取状态对应的渲染样式（对外导出）
// 未知状态使用pending样式
func StyleFor(status Status) NodeStyle {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return statusStyles[StatusPending]
}

// ArrowMarker 边箭头标记（对外导出）
type ArrowMarker struct {
	Type   string `json:"type"`   // 箭头类型
	Width  int    `json:"width"`  // 宽度
	Height int    `json:"height"` // 高度
	Color  string `json:"color"`  // 颜色
}

// defaultMarker 默认的闭合箭头标记
var defaultMarker = ArrowMarker{
	Type:   "arrowclosed",
	Width:  16,
	Height: 16,
	Color:  "#8c8c8c",
}

// RenderNodeData 渲染节点携带的业务负载（对外导出）
// 状态与标签原样透传：按节点ID回查可无损还原原始数据
type RenderNodeData struct {
	Label    string    `json:"label"`              // 显示名称
	TaskType string    `json:"task_type"`          // 任务类型标签
	Status   Status    `json:"status"`             // 执行状态
	Progress *float64  `json:"progress,omitempty"` // 进度（可选）
	Error    string    `json:"error,omitempty"`    // 错误信息（可选）
	Style    NodeStyle `json:"style"`              // 状态样式
}

// RenderNode 渲染器节点描述符（对外导出）
type RenderNode struct {
	ID       string         `json:"id"`       // 节点ID
	Type     string         `json:"type"`     // 渲染组件类型
	Position Position       `json:"position"` // 计算出的坐标
	Data     RenderNodeData `json:"data"`     // 业务负载
}

// RenderEdge 渲染器边描述符（对外导出）
type RenderEdge struct {
	ID        string      `json:"id"`              // 边ID
	Source    string      `json:"source"`          // 起点节点ID
	Target    string      `json:"target"`          // 终点节点ID
	Label     string      `json:"label,omitempty"` // 标签/条件文本
	Animated  bool        `json:"animated"`        // 起点运行中时边流动
	MarkerEnd ArrowMarker `json:"marker_end"`      // 箭头标记
}

// RenderGraph 渲染器输入结构（对外导出）
type RenderGraph struct {
	Nodes    []RenderNode      `json:"nodes"`              // 节点描述符
	Edges    []RenderEdge      `json:"edges"`              // 边描述符
	Metadata map[string]string `json:"metadata,omitempty"` // 透传元数据
}

// DescriptorOptions 描述符组装选项（对外导出）
type DescriptorOptions struct {
	NodeType string      // 渲染组件类型，默认taskNode
	Marker   ArrowMarker // 边箭头标记，零值时用默认标记
}

// BuildDescriptors 组装渲染器输入结构（对外导出）
// 纯数据形变：节点嵌入计算坐标与状态样式，边嵌入箭头标记，无额外语义。
func BuildDescriptors(g *Graph, layout *Layout, opts DescriptorOptions) *RenderGraph {
	if opts.NodeType == "" {
		opts.NodeType = "taskNode"
	}
	if opts.Marker == (ArrowMarker{}) {
		opts.Marker = defaultMarker
	}

	rg := &RenderGraph{
		Nodes:    make([]RenderNode, 0, len(g.Nodes)),
		Edges:    make([]RenderEdge, 0, len(g.Edges)),
		Metadata: g.Metadata,
	}

	running := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Status == StatusRunning {
			running[n.ID] = true
		}
	}

	for _, n := range g.Nodes {
		rg.Nodes = append(rg.Nodes, RenderNode{
			ID:       n.ID,
			Type:     opts.NodeType,
			Position: layout.Positions[n.ID],
			Data: RenderNodeData{
				Label:    n.Label,
				TaskType: n.TaskType,
				Status:   n.Status,
				Progress: n.Progress,
				Error:    n.Error,
				Style:    StyleFor(n.Status),
			},
		})
	}

	for _, e := range g.Edges {
		rg.Edges = append(rg.Edges, RenderEdge{
			ID:        e.ID,
			Source:    e.Source,
			Target:    e.Target,
			Label:     e.Label,
			Animated:  running[e.Source],
			MarkerEnd: opts.Marker,
		})
	}

	return rg
}

// Project 一步完成解析->层级->布局->描述符的完整投影（对外导出）
func Project(raw []byte, layoutOpts LayoutOptions, descOpts DescriptorOptions) *RenderGraph {
	g := ParseGraph(raw)
	layout := ComputeLayout(g, layoutOpts)
	return BuildDescriptors(g, layout, descOpts)
}
