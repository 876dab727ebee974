package graphview

import "log"

// AssignLevels 计算每个节点的层级（对外导出）
// 契约：层级 = 从任意根节点（无入边节点）到该节点的最长路径长度，
// 保证任何节点的层级严格大于其所有前驱的层级——下游节点绝不会渲染在依赖的左侧。
//
// 算法：从每个根节点做深度优先传播，子节点层级 = 父层级+1，
// 仅当新层级严格大于已记录层级时才覆盖并继续向下传播，
// 因此多路径可达的节点最终落在所有路径中的最大深度上。
//
// 从任何根都不可达的节点（孤立节点或环内节点）不会出现在返回的映射中，
// 坐标计算时回退到第0层。
func AssignLevels(g *Graph) map[string]int {
	levels := make(map[string]int, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return levels
	}

	// 邻接表与入边标记
	outgoing := make(map[string][]string, len(g.Nodes))
	hasIncoming := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
		hasIncoming[e.Target] = true
	}

	// 深度预算：无环图中最长根路径 < 节点数，预算内行为与无保护版本完全一致；
	// 上游违反无环契约时传播在预算处截断，不会无限递归
	maxDepth := len(g.Nodes)
	truncated := false

	var propagate func(id string, level, depth int)
	propagate = func(id string, level, depth int) {
		if depth > maxDepth {
			truncated = true
			return
		}
		if recorded, ok := levels[id]; ok && recorded >= level {
			return // 仅严格更大才覆盖
		}
		levels[id] = level
		for _, child := range outgoing[id] {
			propagate(child, level+1, depth+1)
		}
	}

	for _, n := range g.Nodes {
		if !hasIncoming[n.ID] {
			propagate(n.ID, 0, 0)
		}
	}

	if truncated {
		log.Printf("⚠️ [图布局] 层级传播超出深度预算（节点数=%d），上游载荷疑似存在环", len(g.Nodes))
	}

	return levels
}
