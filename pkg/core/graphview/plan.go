package graphview

import (
	"fmt"
	"sort"

	dag "github.com/begmaroman/go-dag"
)

// Plan 任务链执行计划（对外导出）
// 拓扑分批结果：同一阶段内的节点彼此无依赖，引擎侧可并行执行。
// 注意这与布局层级是两套计算——布局遵循最长路径规则服务于视觉展现，
// 执行计划服务于链路详情页的"执行预览"面板。
type Plan struct {
	Stages [][]string `json:"stages"` // 每一阶段可并行的节点ID列表
	Depth  int        `json:"depth"`  // 阶段数
	Width  int        `json:"width"`  // 最大并行度
}

// planVertex go-dag节点包装（实现Identifiable接口）
type planVertex struct {
	node Node
}

// ID 实现Identifiable接口
func (v *planVertex) ID() string {
	return v.node.ID
}

// ExecutionPlan 基于go-dag构建执行计划（对外导出）
// 与渲染投影不同，这里对数据契约严格：重复节点、悬空边、环均返回错误
// （go-dag在AddEdge时自动做环检测）。
func ExecutionPlan(g *Graph) (*Plan, error) {
	d := dag.NewDAG[*planVertex]()

	for i := range g.Nodes {
		if _, err := d.AddVertex(&planVertex{node: g.Nodes[i]}); err != nil {
			return nil, fmt.Errorf("构建执行计划失败: 添加节点%s失败, Error=%w", g.Nodes[i].ID, err)
		}
	}

	for _, e := range g.Edges {
		if err := d.AddEdge(e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("构建执行计划失败: 添加边%s->%s失败, Error=%w", e.Source, e.Target, err)
		}
	}

	// 输入顺序索引，用于稳定每个阶段内的输出顺序
	order := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		order[n.ID] = i
	}

	// Kahn算法分层：不断移出入度为0的节点，同一轮移出的节点构成一个阶段
	inDegree := make(map[string]int, len(g.Nodes))
	for id := range d.GetVertices() {
		parents, err := d.GetParents(id)
		if err != nil {
			return nil, fmt.Errorf("构建执行计划失败: 查询节点%s的前驱失败, Error=%w", id, err)
		}
		inDegree[id] = len(parents)
	}

	queue := make([]string, 0)
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	plan := &Plan{Stages: make([][]string, 0)}
	processed := 0

	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool {
			return order[queue[i]] < order[queue[j]]
		})

		stage := make([]string, len(queue))
		copy(stage, queue)
		plan.Stages = append(plan.Stages, stage)
		processed += len(stage)
		if len(stage) > plan.Width {
			plan.Width = len(stage)
		}

		next := make([]string, 0)
		for _, id := range stage {
			children, err := d.GetChildren(id)
			if err != nil {
				continue
			}
			for childID := range children {
				inDegree[childID]--
				if inDegree[childID] == 0 {
					next = append(next, childID)
				}
			}
		}
		queue = next
	}

	if processed != len(g.Nodes) {
		return nil, fmt.Errorf("构建执行计划失败: 存在未处理的节点（%d/%d）", processed, len(g.Nodes))
	}

	plan.Depth = len(plan.Stages)
	return plan, nil
}
