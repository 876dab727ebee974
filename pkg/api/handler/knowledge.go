package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/dto"
	"github.com/LENAX/quant-board/pkg/core/graphview"
	"github.com/LENAX/quant-board/pkg/core/poller"
	"github.com/LENAX/quant-board/pkg/upstream"
)

// KnowledgeHandler 知识图谱视图处理器
// 无参请求吃轮询快照，带root/depth的子图请求实时拉取
type KnowledgeHandler struct {
	engine    *upstream.Client
	snapshots *poller.SnapshotStore
	layout    graphview.LayoutOptions
}

// NewKnowledgeHandler 创建KnowledgeHandler
func NewKnowledgeHandler(engine *upstream.Client, snapshots *poller.SnapshotStore, layout graphview.LayoutOptions) *KnowledgeHandler {
	return &KnowledgeHandler{engine: engine, snapshots: snapshots, layout: layout}
}

// Graph 渲染就绪的知识图谱
// GET /api/v1/knowledge/graph?root=&depth=
func (h *KnowledgeHandler) Graph(c *gin.Context) {
	root := c.Query("root")
	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "0"))

	var g *graphview.Graph
	if root == "" && depth == 0 {
		if snap, ok := h.snapshots.Get(poller.KeyKnowledge); ok {
			if cached, ok := snap.Value.(*graphview.Graph); ok {
				g = cached
			}
		}
	}
	if g == nil {
		fetched, err := h.engine.GetKnowledgeGraph(c.Request.Context(), root, depth)
		if err != nil {
			c.JSON(http.StatusBadGateway, dto.NewErrorResponse(502, "引擎不可达: "+err.Error()))
			return
		}
		g = fetched
	}

	layout := graphview.ComputeLayout(g, h.layout)
	rg := graphview.BuildDescriptors(g, layout, graphview.DescriptorOptions{})
	c.JSON(http.StatusOK, dto.NewSuccessResponse(rg))
}
