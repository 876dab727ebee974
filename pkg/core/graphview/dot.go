package graphview

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
)

// ExportDOT 将任务链图导出为Graphviz DOT文本（对外导出）
// 节点携带label与状态填充色，边携带条件标签，可直接喂给dot工具离线出图
func ExportDOT(g *Graph, name string) (string, error) {
	if name == "" {
		name = "chain"
	}

	gv := gographviz.NewGraph()
	if err := gv.SetName(name); err != nil {
		return "", fmt.Errorf("设置图名称失败: %w", err)
	}
	if err := gv.SetDir(true); err != nil {
		return "", fmt.Errorf("设置有向图失败: %w", err)
	}
	if err := gv.AddAttr(name, "rankdir", "LR"); err != nil {
		return "", fmt.Errorf("设置布局方向失败: %w", err)
	}

	for _, n := range g.Nodes {
		style := StyleFor(n.Status)
		attrs := map[string]string{
			"label":     fmt.Sprintf("%q", n.Label),
			"shape":     "box",
			"style":     `"rounded,filled"`,
			"fillcolor": fmt.Sprintf("%q", style.Background),
			"color":     fmt.Sprintf("%q", style.BorderColor),
		}
		if err := gv.AddNode(name, fmt.Sprintf("%q", n.ID), attrs); err != nil {
			return "", fmt.Errorf("添加节点失败: ID=%s, Error=%w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		var attrs map[string]string
		if e.Label != "" {
			attrs = map[string]string{"label": fmt.Sprintf("%q", e.Label)}
		}
		if err := gv.AddEdge(fmt.Sprintf("%q", e.Source), fmt.Sprintf("%q", e.Target), true, attrs); err != nil {
			return "", fmt.Errorf("添加边失败: %s -> %s, Error=%w", e.Source, e.Target, err)
		}
	}

	return gv.String(), nil
}
