package graphview

// LayoutOptions 布局参数（对外导出）
type LayoutOptions struct {
	HSpacing float64 `json:"h_spacing"` // 层间水平间距
	VSpacing float64 `json:"v_spacing"` // 层内垂直间距
	BaseX    float64 `json:"base_x"`    // 水平基准偏移
	BaseY    float64 `json:"base_y"`    // 垂直基准偏移
}

// DefaultLayoutOptions 默认布局参数（对外导出）
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		HSpacing: 250,
		VSpacing: 120,
		BaseX:    50,
		BaseY:    50,
	}
}

// Layout 布局结果（对外导出）
type Layout struct {
	Levels    map[string]int      `json:"levels"`    // 节点ID -> 层级
	Positions map[string]Position `json:"positions"` // 节点ID -> 坐标
	Options   LayoutOptions       `json:"options"`   // 使用的布局参数
}

// ComputeLayout 计算从左到右的分层布局（对外导出）
// 契约：按层级分组，层内按节点在输入集合中的出现顺序排序；
// x = 水平间距×层级 + 基准偏移，y = 垂直间距×层内序号 + 基准偏移。
// 对固定的输入顺序布局是确定的；上游重新拉取后顺序变化时不保证跨次一致。
// 未分配层级的节点（不可达节点）回退到第0层。
func ComputeLayout(g *Graph, opts LayoutOptions) *Layout {
	levels := AssignLevels(g)

	layout := &Layout{
		Levels:    levels,
		Positions: make(map[string]Position, len(g.Nodes)),
		Options:   opts,
	}

	// 层内序号按输入顺序递增
	indexInLevel := make(map[int]int)
	for _, n := range g.Nodes {
		level := levels[n.ID] // 缺失时零值即第0层
		idx := indexInLevel[level]
		indexInLevel[level] = idx + 1

		layout.Positions[n.ID] = Position{
			X: opts.HSpacing*float64(level) + opts.BaseX,
			Y: opts.VSpacing*float64(idx) + opts.BaseY,
		}
	}

	return layout
}
